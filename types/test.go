package types

import (
	"errors"
	"time"
)

// TestStatus represents the possible states of a test execution
type TestStatus string

const (
	TestStatusPass  TestStatus = "pass"
	TestStatusFail  TestStatus = "fail"
	TestStatusSkip  TestStatus = "skip"
	TestStatusError TestStatus = "error"
)

// TestResult captures the outcome of a single leaf of the plan
type TestResult struct {
	Description    *Description
	Status         TestStatus
	Error          error         // First failure, if any
	Failures       []error       // Every failure reported for this leaf
	Duration       time.Duration // Time between started and finished
	ExecutionOrder int           // 1-based position in the run
	Ignored        bool          // Reported as ignored, never started
	SkipReason     string        // Assumption that did not hold
}

// Name returns the display name of the test
func (tr *TestResult) Name() string {
	if tr.Description == nil {
		return ""
	}
	return tr.Description.DisplayName()
}

// AddFailure records a failure and downgrades the status accordingly. An
// assertion failure makes the test fail; anything else is an error.
func (tr *TestResult) AddFailure(err error) {
	if tr.Error == nil {
		tr.Error = err
	}
	tr.Failures = append(tr.Failures, err)
	var assertion *AssertionFailure
	if errors.As(err, &assertion) {
		if tr.Status != TestStatusError {
			tr.Status = TestStatusFail
		}
		return
	}
	tr.Status = TestStatusError
}

// Skip marks the test as skipped because an assumption did not hold.
func (tr *TestResult) Skip(reason string) {
	if tr.Status == TestStatusPass {
		tr.Status = TestStatusSkip
	}
	tr.SkipReason = reason
}
