package legacy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	events []string
}

func (e *eventRecorder) StartTest(test Test)          { e.events = append(e.events, "start") }
func (e *eventRecorder) AddError(test Test, _ error)   { e.events = append(e.events, "error") }
func (e *eventRecorder) AddFailure(test Test, _ error) { e.events = append(e.events, "failure") }
func (e *eventRecorder) EndTest(test Test)            { e.events = append(e.events, "end") }

func TestSuite_RunsCasesInOrder(t *testing.T) {
	var order []string
	record := func(name string, err error) *Case {
		return NewCase("OldTest", name, func() error {
			order = append(order, name)
			return err
		})
	}

	suite := NewSuite("OldTest",
		record("passes", nil),
		record("fails", Fail("nope")),
		record("errors", errors.New("io")),
	)
	suite.AddTest(NewCase("OldTest", "panics", func() error { panic("boom") }))

	result := NewResult()
	recorder := &eventRecorder{}
	result.AddListener(recorder)
	suite.Run(result)

	assert.Equal(t, []string{"passes", "fails", "errors"}, order)
	assert.Equal(t, 4, suite.CountTestCases())
	assert.Equal(t, 4, result.RunCount())
	assert.Equal(t, 1, result.FailureCount())
	assert.Equal(t, 2, result.ErrorCount())
	assert.False(t, result.WasSuccessful())
	assert.Equal(t, []string{
		"start", "end",
		"start", "failure", "end",
		"start", "error", "end",
		"start", "error", "end",
	}, recorder.events)
	assert.Contains(t, result.Errors()[1].Err.Error(), "boom")
}

func TestSuite_Stop(t *testing.T) {
	result := NewResult()
	runs := 0
	suite := NewSuite("s",
		NewCase("C", "first", func() error {
			runs++
			result.Stop()
			return nil
		}),
		NewCase("C", "second", func() error {
			runs++
			return nil
		}),
	)

	suite.Run(result)
	assert.Equal(t, 1, runs)
	assert.True(t, result.ShouldStop())
}

func TestCase_RunBare(t *testing.T) {
	var calls []string
	c := &Case{
		Class:    "C",
		Name:     "withFixtures",
		SetUp:    func() error { calls = append(calls, "setUp"); return nil },
		Body:     func() error { calls = append(calls, "body"); return Fail("body failed") },
		TearDown: func() error { calls = append(calls, "tearDown"); return errors.New("teardown failed") },
	}

	err := c.RunBare()
	require.Error(t, err)
	assert.Equal(t, "body failed", err.Error())
	assert.Equal(t, []string{"setUp", "body", "tearDown"}, calls)
	assert.Equal(t, "withFixtures(C)", c.String())

	missing := &Case{Class: "C", Name: "ghost"}
	assert.Contains(t, missing.RunBare().Error(), `method "ghost" not found`)
}

func TestSuite_Nested(t *testing.T) {
	inner := NewSuite("inner", NewCase("C", "a", func() error { return nil }))
	outer := NewSuite("", inner, NewCase("C", "b", func() error { return AssertEquals(1, 2) }))

	result := NewResult()
	outer.Run(result)

	assert.Equal(t, 2, outer.CountTestCases())
	assert.Equal(t, 2, outer.TestCount())
	assert.Equal(t, 1, result.FailureCount())
	assert.Equal(t, "expected:<1> but was:<2>", result.Failures()[0].Err.Error())
	assert.Equal(t, "*legacy.Suite", outer.String())
	assert.Len(t, outer.Tests(), 2)
}
