package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// Listener records run events as prometheus metrics
type Listener struct {
	notification.BaseListener

	mu       sync.Mutex
	plan     string
	started  map[*types.Description]time.Time
	outcomes map[*types.Description]types.TestStatus
}

var _ notification.RunListener = (*Listener)(nil)

func NewListener() *Listener {
	return &Listener{
		started:  make(map[*types.Description]time.Time),
		outcomes: make(map[*types.Description]types.TestStatus),
	}
}

func (l *Listener) TestRunStarted(plan *types.Description) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.plan = plan.DisplayName()
	l.started = make(map[*types.Description]time.Time)
	l.outcomes = make(map[*types.Description]types.TestStatus)
}

func (l *Listener) TestStarted(desc *types.Description) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started[desc] = time.Now()
}

func (l *Listener) TestFailure(failure *notification.Failure) {
	var assertion *types.AssertionFailure
	status := types.TestStatusError
	if errors.As(failure.Err, &assertion) {
		status = types.TestStatusFail
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.outcomes[failure.Description] != types.TestStatusError {
		l.outcomes[failure.Description] = status
	}
	if status == types.TestStatusError {
		RecordErrorDetails("test", failure.Err)
	}
}

func (l *Listener) TestAssumptionFailure(failure *notification.Failure) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.outcomes[failure.Description]; !ok {
		l.outcomes[failure.Description] = types.TestStatusSkip
	}
}

func (l *Listener) TestIgnored(desc *types.Description) {
	l.mu.Lock()
	plan := l.plan
	l.mu.Unlock()
	RecordTest(plan, desc.ClassName(), types.TestStatusSkip, 0)
}

func (l *Listener) TestFinished(desc *types.Description) {
	l.mu.Lock()
	plan := l.plan
	status, ok := l.outcomes[desc]
	if !ok {
		status = types.TestStatusPass
	}
	var seconds float64
	if start, ok := l.started[desc]; ok {
		seconds = time.Since(start).Seconds()
	}
	delete(l.outcomes, desc)
	delete(l.started, desc)
	l.mu.Unlock()

	RecordTest(plan, desc.ClassName(), status, seconds)
}

func (l *Listener) TestRunFinished(plan *types.Description, result *notification.Result) {
	RecordRun(plan.DisplayName(), result)
}
