package runner

import (
	"errors"

	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// InitializationErrorMethod is the method name of the synthetic leaves that
// stand in for a runner which could not be built.
const InitializationErrorMethod = "initializationError"

// ErrorReportingRunner stands in for a runner that could not be built. Each
// cause becomes one "initializationError" leaf that fails when run.
type ErrorReportingRunner struct {
	className string
	causes    []error
	leaves    []*types.Description
}

var _ Runner = (*ErrorReportingRunner)(nil)

// NewErrorReportingRunner reports err against className. An
// InitializationError contributes one leaf per cause.
func NewErrorReportingRunner(className string, err error) *ErrorReportingRunner {
	var causes []error
	var initErr *types.InitializationError
	if errors.As(err, &initErr) && len(initErr.Causes) > 0 {
		causes = initErr.Causes
	} else {
		causes = []error{err}
	}

	r := &ErrorReportingRunner{className: className, causes: causes}
	for range causes {
		r.leaves = append(r.leaves, types.NewTestDescription(className, InitializationErrorMethod))
	}
	return r
}

// Causes returns the errors this runner reports.
func (r *ErrorReportingRunner) Causes() []error {
	return append([]error(nil), r.causes...)
}

func (r *ErrorReportingRunner) Describe() *types.Description {
	return types.NewSuiteDescription(r.className, r.leaves...)
}

func (r *ErrorReportingRunner) TestCount() int {
	return len(r.leaves)
}

func (r *ErrorReportingRunner) Run(notifier notification.Notifier) {
	for i, cause := range r.causes {
		desc := r.leaves[i]
		notifier.FireTestStarted(desc)
		notifier.FireTestFailure(notification.NewFailure(desc, cause))
		notifier.FireTestFinished(desc)
	}
}

// IgnoredClassRunner reports every test method of an ignored template as
// ignored without building anything.
type IgnoredClassRunner struct {
	name   string
	leaves []*types.Description
}

var _ Runner = (*IgnoredClassRunner)(nil)

// NewIgnoredClassRunner creates the runner for a template marked ignored.
func NewIgnoredClassRunner(template *types.Template) *IgnoredClassRunner {
	r := &IgnoredClassRunner{name: template.Name}
	for _, m := range template.MethodsWith(types.MarkerTest) {
		r.leaves = append(r.leaves, types.NewIgnoredTestDescription(template.Name, m.Name))
	}
	return r
}

func (r *IgnoredClassRunner) Describe() *types.Description {
	return types.NewSuiteDescription(r.name, r.leaves...)
}

func (r *IgnoredClassRunner) TestCount() int {
	return len(r.leaves)
}

func (r *IgnoredClassRunner) Run(notifier notification.Notifier) {
	for _, leaf := range r.leaves {
		notifier.FireTestIgnored(leaf)
	}
}
