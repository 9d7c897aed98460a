package notification

import (
	"errors"
	"strings"
	"testing"

	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockListener struct {
	mock.Mock
}

func (m *mockListener) TestRunStarted(plan *types.Description) { m.Called(plan) }
func (m *mockListener) TestStarted(desc *types.Description)    { m.Called(desc) }
func (m *mockListener) TestFailure(failure *Failure)           { m.Called(failure) }
func (m *mockListener) TestAssumptionFailure(failure *Failure) { m.Called(failure) }
func (m *mockListener) TestIgnored(desc *types.Description)    { m.Called(desc) }
func (m *mockListener) TestFinished(desc *types.Description)   { m.Called(desc) }
func (m *mockListener) TestRunFinished(plan *types.Description, result *Result) {
	m.Called(plan, result)
}

// recordingListener keeps the event stream as strings
type recordingListener struct {
	BaseListener
	events []string
}

func (r *recordingListener) TestStarted(d *types.Description) {
	r.events = append(r.events, "started "+d.DisplayName())
}

func (r *recordingListener) TestFailure(f *Failure) {
	r.events = append(r.events, "failure "+f.TestHeader())
}

func (r *recordingListener) TestFinished(d *types.Description) {
	r.events = append(r.events, "finished "+d.DisplayName())
}

type panickingListener struct {
	BaseListener
}

func (panickingListener) TestStarted(*types.Description) {
	panic("listener exploded")
}

func newTestNotifier() *RunNotifier {
	return NewRunNotifier(log.NewLogger(log.DiscardHandler()))
}

func TestRunNotifier_DeliversInOrder(t *testing.T) {
	notifier := newTestNotifier()
	desc := types.NewTestDescription("Fibonacci", "test[0]")
	plan := types.NewSuiteDescription("Fibonacci", desc)
	result := NewResult()
	failure := NewFailure(desc, types.Failf("expected:<1> but was:<0>"))

	listener := new(mockListener)
	listener.On("TestRunStarted", plan).Once()
	listener.On("TestStarted", desc).Once()
	listener.On("TestFailure", failure).Once()
	listener.On("TestFinished", desc).Once()
	listener.On("TestRunFinished", plan, result).Once()
	notifier.AddListener(listener)

	notifier.FireTestRunStarted(plan)
	notifier.FireTestStarted(desc)
	notifier.FireTestFailure(failure)
	notifier.FireTestFinished(desc)
	notifier.FireTestRunFinished(plan, result)

	listener.AssertExpectations(t)
}

func TestRunNotifier_AddFirstListener(t *testing.T) {
	notifier := newTestNotifier()
	second := &recordingListener{}
	first := &recordingListener{}
	notifier.AddListener(second)
	notifier.AddFirstListener(first)

	listeners := notifier.Listeners()
	require.Len(t, listeners, 2)
	assert.Same(t, first, listeners[0])

	notifier.RemoveListener(first)
	assert.Len(t, notifier.Listeners(), 1)
}

func TestRunNotifier_RemovesPanickingListener(t *testing.T) {
	notifier := newTestNotifier()
	recorder := &recordingListener{}
	notifier.AddListener(panickingListener{})
	notifier.AddListener(recorder)

	desc := types.NewTestDescription("A", "a")
	notifier.FireTestStarted(desc)
	notifier.FireTestFinished(desc)

	require.Len(t, notifier.Listeners(), 1)
	assert.Equal(t, []string{
		"started a(A)",
		"failure Test mechanism",
		"finished a(A)",
	}, recorder.events)
}

func TestResult_CountsEvents(t *testing.T) {
	notifier := newTestNotifier()
	result := NewResult()
	notifier.AddListener(result.Listener())

	pass := types.NewTestDescription("A", "pass")
	fail := types.NewTestDescription("A", "fail")
	skip := types.NewTestDescription("A", "skip")
	ignored := types.NewIgnoredTestDescription("A", "ignored")
	plan := types.NewSuiteDescription("A", pass, fail, skip, ignored)

	notifier.FireTestRunStarted(plan)
	for _, d := range []*types.Description{pass, fail, skip} {
		notifier.FireTestStarted(d)
		switch d {
		case fail:
			notifier.FireTestFailure(NewFailure(d, types.Failf("boom")))
		case skip:
			notifier.FireTestAssumptionFailed(NewFailure(d, types.Assume(false, "offline")))
		}
		notifier.FireTestFinished(d)
	}
	notifier.FireTestIgnored(ignored)
	notifier.FireTestRunFinished(plan, result)

	assert.Equal(t, 3, result.RunCount())
	assert.Equal(t, 1, result.FailureCount())
	assert.Equal(t, 1, result.IgnoreCount())
	assert.Equal(t, 1, result.AssumptionFailureCount())
	assert.False(t, result.WasSuccessful())
	assert.Equal(t, "fail(A)", result.Failures()[0].TestHeader())
}

func TestFailure_Trace(t *testing.T) {
	desc := types.NewTestDescription("NamedFibonacci", "test[failing test1]")
	failure := NewFailure(desc, types.Failf("expected:<1> but was:<0>"))

	assert.Equal(t, "test[failing test1](NamedFibonacci)", failure.TestHeader())
	assert.Equal(t, "expected:<1> but was:<0>", failure.Message())
	assert.True(t, strings.HasPrefix(failure.Trace(), "expected:<1> but was:<0>"))
	assert.Contains(t, failure.Trace(), "TestFailure_Trace")

	var assertion *types.AssertionFailure
	assert.True(t, errors.As(failure.Err, &assertion))
	assert.Equal(t, "test[failing test1](NamedFibonacci): expected:<1> but was:<0>", failure.String())
}
