package notification

import (
	"sync"
	"time"

	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// Result counts what happened during a run.
type Result struct {
	mu                 sync.Mutex
	runCount           int
	ignoreCount        int
	assumptionFailures int
	failures           []*Failure
	startTime          time.Time
	runTime            time.Duration
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{}
}

// RunCount is the number of leaves that finished.
func (r *Result) RunCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runCount
}

// FailureCount is the number of reported failures.
func (r *Result) FailureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

// IgnoreCount is the number of leaves reported as ignored.
func (r *Result) IgnoreCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ignoreCount
}

// AssumptionFailureCount is the number of assumption violations.
func (r *Result) AssumptionFailureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assumptionFailures
}

// Failures returns the failures in report order.
func (r *Result) Failures() []*Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Failure(nil), r.failures...)
}

// RunTime is the wall time between run start and run finish.
func (r *Result) RunTime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runTime
}

// WasSuccessful reports whether nothing failed.
func (r *Result) WasSuccessful() bool {
	return r.FailureCount() == 0
}

// Listener returns the listener that fills in this result.
func (r *Result) Listener() RunListener {
	return &resultListener{result: r}
}

type resultListener struct {
	BaseListener
	result *Result
}

func (l *resultListener) TestRunStarted(*types.Description) {
	l.result.mu.Lock()
	defer l.result.mu.Unlock()
	l.result.startTime = time.Now()
}

func (l *resultListener) TestRunFinished(*types.Description, *Result) {
	l.result.mu.Lock()
	defer l.result.mu.Unlock()
	l.result.runTime = time.Since(l.result.startTime)
}

func (l *resultListener) TestFinished(*types.Description) {
	l.result.mu.Lock()
	defer l.result.mu.Unlock()
	l.result.runCount++
}

func (l *resultListener) TestFailure(failure *Failure) {
	l.result.mu.Lock()
	defer l.result.mu.Unlock()
	l.result.failures = append(l.result.failures, failure)
}

func (l *resultListener) TestIgnored(*types.Description) {
	l.result.mu.Lock()
	defer l.result.mu.Unlock()
	l.result.ignoreCount++
}

func (l *resultListener) TestAssumptionFailure(*Failure) {
	l.result.mu.Lock()
	defer l.result.mu.Unlock()
	l.result.assumptionFailures++
}
