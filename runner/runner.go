package runner

import (
	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/sourcegraph/conc/panics"
)

// Runner describes a plan and executes it.
type Runner interface {
	// Describe returns the plan. It has no side effects and repeated calls
	// return structurally equal plans whose leaves are the same nodes the
	// runner reports events for.
	Describe() *types.Description
	// Run executes every planned leaf in plan order.
	Run(notifier notification.Notifier)
	// TestCount is the number of leaves in the plan.
	TestCount() int
}

// Filterable runners can drop the parts of their plan a filter rejects.
type Filterable interface {
	// Filter prunes the plan. It returns ErrNoTestsRemain when nothing is left.
	Filter(filter Filter) error
}

// runProtected runs fn and returns what it returned or panicked with.
func runProtected(fn func() error) error {
	var err error
	if recovered := panics.Try(func() { err = fn() }); recovered != nil {
		return recovered.AsError()
	}
	return err
}

// reportFailure turns err into the matching failure event for desc.
func reportFailure(notifier notification.Notifier, desc *types.Description, err error) {
	if types.IsAssumptionViolation(err) {
		notifier.FireTestAssumptionFailed(notification.NewFailure(desc, err))
		return
	}
	notifier.FireTestFailure(notification.NewFailure(desc, err))
}
