package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ConfigurationError means no valid plan can be formed for a template: a
// missing or ambiguous data provider, a provider result of the wrong shape,
// or a constructor count other than one.
type ConfigurationError struct {
	Template string
	Method   string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("%s.%s(): %v", e.Template, e.Method, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Template, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError checks if the error is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return err != nil && errors.As(err, &target)
}

// InitializationError collects every validation problem found while building
// a runner. Each cause becomes its own "initializationError" node.
type InitializationError struct {
	Causes []error
}

// NewInitializationError flattens nested initialization errors.
func NewInitializationError(causes ...error) *InitializationError {
	e := &InitializationError{}
	for _, cause := range causes {
		var nested *InitializationError
		if errors.As(cause, &nested) {
			e.Causes = append(e.Causes, nested.Causes...)
			continue
		}
		if cause != nil {
			e.Causes = append(e.Causes, cause)
		}
	}
	return e
}

func (e *InitializationError) Error() string {
	msgs := make([]string, 0, len(e.Causes))
	for _, cause := range e.Causes {
		msgs = append(msgs, cause.Error())
	}
	return "initialization failed: " + strings.Join(msgs, "; ")
}

func (e *InitializationError) Unwrap() []error {
	return e.Causes
}

// InstantiationError is raised when a template instance cannot be built from
// an argument tuple.
type InstantiationError struct {
	Err error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("cannot instantiate test: %v", e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// IsInstantiationError checks if the error is or wraps an InstantiationError
func IsInstantiationError(err error) bool {
	var target *InstantiationError
	return err != nil && errors.As(err, &target)
}

// AssertionFailure is a failed expectation inside a test body.
type AssertionFailure struct {
	Message string
}

func (e *AssertionFailure) Error() string {
	return e.Message
}

// Failf returns an AssertionFailure with a formatted message.
func Failf(format string, args ...any) error {
	return &AssertionFailure{Message: fmt.Sprintf(format, args...)}
}

// AssertEqual fails with the usual "expected:<x> but was:<y>" message.
func AssertEqual(expected, actual any) error {
	if reflect.DeepEqual(expected, actual) {
		return nil
	}
	return Failf("expected:<%v> but was:<%v>", expected, actual)
}

// AssumptionViolation means a test's precondition does not hold. It is
// reported separately from failures.
type AssumptionViolation struct {
	Reason string
}

func (e *AssumptionViolation) Error() string {
	return "assumption violated: " + e.Reason
}

// Assume returns an AssumptionViolation unless cond holds.
func Assume(cond bool, reason string) error {
	if cond {
		return nil
	}
	return &AssumptionViolation{Reason: reason}
}

// IsAssumptionViolation checks if the error is or wraps an AssumptionViolation
func IsAssumptionViolation(err error) bool {
	var target *AssumptionViolation
	return err != nil && errors.As(err, &target)
}

// AdapterFailure is raised when a legacy suite factory fails while building
// its suite.
type AdapterFailure struct {
	Template string
	Method   string
	Err      error
}

func (e *AdapterFailure) Error() string {
	return fmt.Sprintf("%s.%s() failed to build a legacy suite: %v", e.Template, e.Method, e.Err)
}

func (e *AdapterFailure) Unwrap() error {
	return e.Err
}

// IsAdapterFailure checks if the error is or wraps an AdapterFailure
func IsAdapterFailure(err error) bool {
	var target *AdapterFailure
	return err != nil && errors.As(err, &target)
}
