package notification

import (
	"fmt"
	"sync"

	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/sourcegraph/conc/panics"
)

// Notifier is the event sink runners report to. Events are only appended;
// runners never read anything back.
type Notifier interface {
	FireTestRunStarted(plan *types.Description)
	FireTestStarted(desc *types.Description)
	FireTestFailure(failure *Failure)
	FireTestAssumptionFailed(failure *Failure)
	FireTestIgnored(desc *types.Description)
	FireTestFinished(desc *types.Description)
	FireTestRunFinished(plan *types.Description, result *Result)
}

// RunNotifier fans events out to its listeners in registration order. A
// listener that panics is removed and the remaining listeners are told about
// it through a failure of types.TestMechanism.
type RunNotifier struct {
	log       log.Logger
	mu        sync.RWMutex
	listeners []RunListener
}

var _ Notifier = (*RunNotifier)(nil)

// NewRunNotifier creates a notifier without listeners.
func NewRunNotifier(logger log.Logger) *RunNotifier {
	if logger == nil {
		logger = log.New()
		logger.Error("No logger provided, using default")
	}
	return &RunNotifier{log: logger}
}

// AddListener appends a listener.
func (n *RunNotifier) AddListener(l RunListener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// AddFirstListener puts a listener ahead of all others, so that it sees every
// event before anyone else does.
func (n *RunNotifier) AddFirstListener(l RunListener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append([]RunListener{l}, n.listeners...)
}

// RemoveListener removes the first occurrence of l.
func (n *RunNotifier) RemoveListener(l RunListener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removeLocked([]RunListener{l})
}

// Listeners returns a snapshot of the registered listeners.
func (n *RunNotifier) Listeners() []RunListener {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]RunListener(nil), n.listeners...)
}

func (n *RunNotifier) FireTestRunStarted(plan *types.Description) {
	n.fire("TestRunStarted", func(l RunListener) { l.TestRunStarted(plan) })
}

func (n *RunNotifier) FireTestStarted(desc *types.Description) {
	n.fire("TestStarted", func(l RunListener) { l.TestStarted(desc) })
}

func (n *RunNotifier) FireTestFailure(failure *Failure) {
	n.fire("TestFailure", func(l RunListener) { l.TestFailure(failure) })
}

func (n *RunNotifier) FireTestAssumptionFailed(failure *Failure) {
	n.fire("TestAssumptionFailure", func(l RunListener) { l.TestAssumptionFailure(failure) })
}

func (n *RunNotifier) FireTestIgnored(desc *types.Description) {
	n.fire("TestIgnored", func(l RunListener) { l.TestIgnored(desc) })
}

func (n *RunNotifier) FireTestFinished(desc *types.Description) {
	n.fire("TestFinished", func(l RunListener) { l.TestFinished(desc) })
}

func (n *RunNotifier) FireTestRunFinished(plan *types.Description, result *Result) {
	n.fire("TestRunFinished", func(l RunListener) { l.TestRunFinished(plan, result) })
}

// fire delivers one event to every listener. Panicking listeners are dropped
// and reported once the event has gone round.
func (n *RunNotifier) fire(event string, deliver func(RunListener)) {
	var broken []RunListener
	var failures []*Failure
	for _, l := range n.Listeners() {
		var catcher panics.Catcher
		catcher.Try(func() { deliver(l) })
		if recovered := catcher.Recovered(); recovered != nil {
			n.log.Error("Listener panicked, removing it", "event", event, "listener", fmt.Sprintf("%T", l), "panic", recovered.Value)
			broken = append(broken, l)
			failures = append(failures, NewFailure(types.TestMechanism, recovered.AsError()))
		}
	}
	if len(broken) == 0 {
		return
	}

	n.mu.Lock()
	n.removeLocked(broken)
	n.mu.Unlock()

	for _, failure := range failures {
		n.FireTestFailure(failure)
	}
}

func (n *RunNotifier) removeLocked(remove []RunListener) {
	for _, r := range remove {
		for i, l := range n.listeners {
			if l == r {
				n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
				break
			}
		}
	}
}
