package testplan

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError(t *testing.T) {
	cause := errors.New("plan file missing")
	err := fmt.Errorf("starting: %w", NewRuntimeError(cause))

	assert.True(t, IsRuntimeError(err))
	assert.False(t, IsTestFailureError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "starting: runtime error: plan file missing", err.Error())
	assert.False(t, IsRuntimeError(nil))
}

func TestTestFailureError(t *testing.T) {
	err := NewTestFailureError("3 failed")

	assert.True(t, IsTestFailureError(err))
	assert.False(t, IsRuntimeError(err))
	assert.Equal(t, "test failure: 3 failed", err.Error())
	assert.False(t, IsTestFailureError(nil))
}
