// Package runner turns test templates into runnable plans.
//
// The main components are:
//   - Runner: describes itself as a plan and runs against a Notifier
//   - ClassRunner: runs the test methods of one template, optionally bound to a parameter set
//   - Suite: ordered composite of child runners
//   - Parameterized: a Suite with one ClassRunner per resolved parameter set
//   - LegacySuiteAdapter / LegacyTest: bridge the legacy suite model in both directions
//   - Builder and Request: pick the runner for a template and apply filters
//   - Core: runs a request, wrapping it in run-started/run-finished events
//   - ResultCollector: records one result per plan leaf, keyed by the leaf itself
//
// Execution is single threaded and depth first. Every planned leaf is attempted;
// failures are reported through the Notifier and never abort siblings.
package runner
