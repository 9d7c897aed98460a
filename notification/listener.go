// Package notification delivers run and test lifecycle events from runners to
// listeners.
package notification

import "github.com/ethereum-optimism/infra/op-testplan/types"

// RunListener receives lifecycle events. For every leaf that is not ignored
// the order is TestStarted, zero or more TestFailure/TestAssumptionFailure,
// then TestFinished. Ignored leaves only produce TestIgnored.
type RunListener interface {
	TestRunStarted(plan *types.Description)
	TestStarted(desc *types.Description)
	TestFailure(failure *Failure)
	TestAssumptionFailure(failure *Failure)
	TestIgnored(desc *types.Description)
	TestFinished(desc *types.Description)
	TestRunFinished(plan *types.Description, result *Result)
}

// BaseListener implements RunListener with no-ops. Embed it to handle only
// the events you care about.
type BaseListener struct{}

var _ RunListener = BaseListener{}

func (BaseListener) TestRunStarted(*types.Description)            {}
func (BaseListener) TestStarted(*types.Description)               {}
func (BaseListener) TestFailure(*Failure)                         {}
func (BaseListener) TestAssumptionFailure(*Failure)               {}
func (BaseListener) TestIgnored(*types.Description)               {}
func (BaseListener) TestFinished(*types.Description)              {}
func (BaseListener) TestRunFinished(*types.Description, *Result) {}
