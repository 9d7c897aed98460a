package runner

import (
	"sync"
	"time"

	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// ResultCollector records one TestResult per leaf. Results are keyed by the
// leaf node itself, so leaves that share a name keep separate results.
type ResultCollector struct {
	notification.BaseListener

	mu      sync.Mutex
	plan    *types.Description
	results map[*types.Description]*types.TestResult
	ordered []*types.TestResult
	started map[*types.Description]time.Time
	runTime time.Duration
}

var _ notification.RunListener = (*ResultCollector)(nil)

// NewResultCollector creates an empty collector.
func NewResultCollector() *ResultCollector {
	return &ResultCollector{
		results: make(map[*types.Description]*types.TestResult),
		started: make(map[*types.Description]time.Time),
	}
}

func (c *ResultCollector) TestRunStarted(plan *types.Description) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plan = plan
	c.results = make(map[*types.Description]*types.TestResult)
	c.started = make(map[*types.Description]time.Time)
	c.ordered = nil
}

func (c *ResultCollector) TestStarted(desc *types.Description) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resultLocked(desc)
	c.started[desc] = time.Now()
}

func (c *ResultCollector) TestFailure(failure *notification.Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resultLocked(failure.Description).AddFailure(failure.Err)
}

func (c *ResultCollector) TestAssumptionFailure(failure *notification.Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resultLocked(failure.Description).Skip(failure.Message())
}

func (c *ResultCollector) TestIgnored(desc *types.Description) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := c.resultLocked(desc)
	result.Status = types.TestStatusSkip
	result.Ignored = true
}

func (c *ResultCollector) TestFinished(desc *types.Description) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := c.resultLocked(desc)
	if start, ok := c.started[desc]; ok {
		result.Duration = time.Since(start)
	}
}

func (c *ResultCollector) TestRunFinished(_ *types.Description, result *notification.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runTime = result.RunTime()
}

// resultLocked returns the result for desc, creating it in execution order.
func (c *ResultCollector) resultLocked(desc *types.Description) *types.TestResult {
	if result, ok := c.results[desc]; ok {
		return result
	}
	result := &types.TestResult{
		Description:    desc,
		Status:         types.TestStatusPass,
		ExecutionOrder: len(c.ordered) + 1,
	}
	c.results[desc] = result
	c.ordered = append(c.ordered, result)
	return result
}

// Plan returns the plan of the last run.
func (c *ResultCollector) Plan() *types.Description {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plan
}

// Result returns the result recorded for desc.
func (c *ResultCollector) Result(desc *types.Description) (*types.TestResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.results[desc]
	return result, ok
}

// Results returns the results by leaf.
func (c *ResultCollector) Results() map[*types.Description]*types.TestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	results := make(map[*types.Description]*types.TestResult, len(c.results))
	for desc, result := range c.results {
		results[desc] = result
	}
	return results
}

// Ordered returns the results in the order the leaves first reported.
func (c *ResultCollector) Ordered() []*types.TestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.TestResult(nil), c.ordered...)
}

// RunTime is the duration of the last run.
func (c *ResultCollector) RunTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runTime
}

// Tree builds the result tree of the last run.
func (c *ResultCollector) Tree(runID, planName string, logPath func(*types.TestResult) string) *types.TestTree {
	builder := types.NewTestTreeBuilder()
	if logPath != nil {
		builder = builder.WithLogPathGenerator(logPath)
	}
	return builder.BuildFromPlan(c.Plan(), c.Results(), runID, planName)
}
