// Package exitcodes defines the standard exit codes used by op-testplan.
package exitcodes

// Exit code constants used by op-testplan
//
// * Success (0): every planned test ran and none failed
// * TestFailure (1): one or more tests failed
// * RuntimeErr (2): the plan could not be loaded or run
const (
	Success     = 0 // All tests pass
	TestFailure = 1 // Test failures
	RuntimeErr  = 2 // Runtime errors
)
