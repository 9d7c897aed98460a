package legacy

import (
	"errors"
	"sync"

	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/sourcegraph/conc/panics"
)

// TestFailure pairs a test with the error it reported.
type TestFailure struct {
	Test Test
	Err  error
}

// Result collects failures and errors and forwards every event to its
// listeners.
type Result struct {
	mu        sync.Mutex
	failures  []TestFailure
	errors    []TestFailure
	listeners []Listener
	runTests  int
	stop      bool
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{}
}

// AddListener registers a listener.
func (r *Result) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

func (r *Result) snapshot() []Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Listener(nil), r.listeners...)
}

// StartTest counts test and tells the listeners.
func (r *Result) StartTest(test Test) {
	count := test.CountTestCases()
	r.mu.Lock()
	r.runTests += count
	r.mu.Unlock()
	for _, l := range r.snapshot() {
		l.StartTest(test)
	}
}

// EndTest tells the listeners test is done.
func (r *Result) EndTest(test Test) {
	for _, l := range r.snapshot() {
		l.EndTest(test)
	}
}

// AddFailure records a failed assertion.
func (r *Result) AddFailure(test Test, err error) {
	r.mu.Lock()
	r.failures = append(r.failures, TestFailure{Test: test, Err: err})
	r.mu.Unlock()
	for _, l := range r.snapshot() {
		l.AddFailure(test, err)
	}
}

// AddError records an unexpected error.
func (r *Result) AddError(test Test, err error) {
	r.mu.Lock()
	r.errors = append(r.errors, TestFailure{Test: test, Err: err})
	r.mu.Unlock()
	for _, l := range r.snapshot() {
		l.AddError(test, err)
	}
}

func (r *Result) run(c *Case) {
	r.StartTest(c)
	r.RunProtected(c, c.RunBare)
	r.EndTest(c)
}

// RunProtected runs fn and records what it returns or panics with. Assertion
// failures are failures, everything else is an error.
func (r *Result) RunProtected(test Test, fn func() error) {
	var err error
	if recovered := panics.Try(func() { err = fn() }); recovered != nil {
		r.AddError(test, recovered.AsError())
		return
	}
	if err == nil {
		return
	}
	var assertion *types.AssertionFailure
	if errors.As(err, &assertion) {
		r.AddFailure(test, err)
		return
	}
	r.AddError(test, err)
}

// RunCount is the number of test cases started.
func (r *Result) RunCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runTests
}

// FailureCount is the number of failed assertions.
func (r *Result) FailureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

// ErrorCount is the number of unexpected errors.
func (r *Result) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

// Failures returns the recorded assertion failures.
func (r *Result) Failures() []TestFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TestFailure(nil), r.failures...)
}

// Errors returns the recorded errors.
func (r *Result) Errors() []TestFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TestFailure(nil), r.errors...)
}

// WasSuccessful reports whether nothing failed or errored.
func (r *Result) WasSuccessful() bool {
	return r.FailureCount() == 0 && r.ErrorCount() == 0
}

// ShouldStop reports whether Stop was called.
func (r *Result) ShouldStop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop
}

// Stop asks running suites to stop after the current test.
func (r *Result) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stop = true
}
