package runner

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum-optimism/infra/op-testplan/legacy"
	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum/go-ethereum/log"
)

// LegacySuiteAdapter runs a legacy test wherever a Runner is expected. Legacy
// suites become Suites, adapted modern templates run on their own runner with
// the caller's notifier, and any other legacy test runs against a legacy
// Result whose events are forwarded.
type LegacySuiteAdapter struct {
	test legacy.Test
	root Runner
}

var (
	_ Runner     = (*LegacySuiteAdapter)(nil)
	_ Filterable = (*LegacySuiteAdapter)(nil)
)

// NewLegacySuiteAdapter adapts test. name labels the top suite when the
// legacy suite has none of its own.
func NewLegacySuiteAdapter(name string, test legacy.Test) *LegacySuiteAdapter {
	return &LegacySuiteAdapter{test: test, root: adaptLegacy(name, test)}
}

func adaptLegacy(name string, test legacy.Test) Runner {
	switch t := test.(type) {
	case *LegacyTest:
		return t.Runner()
	case *legacy.Suite:
		if t.Name != "" {
			name = t.Name
		}
		if name == "" {
			name = t.String()
		}
		tests := t.Tests()
		children := make([]Runner, 0, len(tests))
		for _, child := range tests {
			children = append(children, adaptLegacy("", child))
		}
		return NewSuite(name, children...)
	default:
		return newLegacyLeafRunner(test)
	}
}

// Test returns the adapted legacy test.
func (a *LegacySuiteAdapter) Test() legacy.Test {
	return a.test
}

func (a *LegacySuiteAdapter) Describe() *types.Description {
	return a.root.Describe()
}

func (a *LegacySuiteAdapter) TestCount() int {
	return a.root.TestCount()
}

func (a *LegacySuiteAdapter) Run(notifier notification.Notifier) {
	a.root.Run(notifier)
}

func (a *LegacySuiteAdapter) Filter(filter Filter) error {
	return applyFilter(a.root, filter)
}

// legacyLeafRunner runs one legacy test against a legacy Result.
type legacyLeafRunner struct {
	test legacy.Test
	desc *types.Description
}

func newLegacyLeafRunner(test legacy.Test) *legacyLeafRunner {
	return &legacyLeafRunner{test: test, desc: describeLegacy(test)}
}

func describeLegacy(test legacy.Test) *types.Description {
	switch t := test.(type) {
	case legacy.Describable:
		return t.Describe()
	case *legacy.Case:
		return types.NewTestDescription(t.Class, t.Name)
	case fmt.Stringer:
		return types.NewSuiteDescription(t.String())
	default:
		return types.NewSuiteDescription(fmt.Sprintf("%T", test))
	}
}

func (r *legacyLeafRunner) Describe() *types.Description {
	return r.desc
}

func (r *legacyLeafRunner) TestCount() int {
	return r.test.CountTestCases()
}

func (r *legacyLeafRunner) Run(notifier notification.Notifier) {
	result := legacy.NewResult()
	result.AddListener(&notifierBridge{notifier: notifier, root: r.test, rootDesc: r.desc})
	r.test.Run(result)
}

func (r *legacyLeafRunner) Filter(filter Filter) error {
	if !filter.ShouldRun(r.desc) {
		return ErrNoTestsRemain
	}
	return nil
}

// notifierBridge forwards legacy Result events to a Notifier.
type notifierBridge struct {
	notifier notification.Notifier
	root     legacy.Test
	rootDesc *types.Description
}

func (b *notifierBridge) descFor(test legacy.Test) *types.Description {
	if test == b.root {
		return b.rootDesc
	}
	return describeLegacy(test)
}

func (b *notifierBridge) StartTest(test legacy.Test) {
	b.notifier.FireTestStarted(b.descFor(test))
}

func (b *notifierBridge) AddError(test legacy.Test, err error) {
	b.notifier.FireTestFailure(notification.NewFailure(b.descFor(test), err))
}

func (b *notifierBridge) AddFailure(test legacy.Test, err error) {
	b.notifier.FireTestFailure(notification.NewFailure(b.descFor(test), err))
}

func (b *notifierBridge) EndTest(test legacy.Test) {
	b.notifier.FireTestFinished(b.descFor(test))
}

// defaultBuilder builds the runners of LegacyTests created without a builder.
var defaultBuilder = NewBuilder(BuilderConfig{Log: log.Root()})

// LegacyTest adapts a modern template into the legacy model. Ignored tests
// are stripped before counting or running, as the legacy model has no notion
// of them. A template left with no tests reports an initialization error.
type LegacyTest struct {
	template *types.Template
	runner   Runner

	mu    sync.Mutex
	cache map[*types.Description]*describedTest
}

var (
	_ legacy.Test        = (*LegacyTest)(nil)
	_ legacy.Describable = (*LegacyTest)(nil)
)

// NewLegacyTest adapts template using the default builder.
func NewLegacyTest(template *types.Template) *LegacyTest {
	return NewLegacyTestWithBuilder(template, defaultBuilder)
}

// NewLegacyTestWithBuilder adapts template, building its runner with builder.
func NewLegacyTestWithBuilder(template *types.Template, builder *Builder) *LegacyTest {
	request := ClassWithoutSuiteMethod(template).FilterWith(StripIgnored())
	return &LegacyTest{
		template: template,
		runner:   request.Runner(builder),
		cache:    make(map[*types.Description]*describedTest),
	}
}

// Runner returns the modern runner behind this test.
func (t *LegacyTest) Runner() Runner {
	return t.runner
}

// Template returns the adapted template.
func (t *LegacyTest) Template() *types.Template {
	return t.template
}

func (t *LegacyTest) CountTestCases() int {
	return t.runner.TestCount()
}

func (t *LegacyTest) Describe() *types.Description {
	return t.runner.Describe()
}

// Run runs the modern runner and reports into result.
func (t *LegacyTest) Run(result *legacy.Result) {
	notifier := notification.NewRunNotifier(log.Root())
	notifier.AddListener(&resultBridge{result: result, test: t})
	t.runner.Run(notifier)
}

func (t *LegacyTest) String() string {
	return t.template.Name
}

// testFor returns the same legacy handle for the same leaf every time.
func (t *LegacyTest) testFor(desc *types.Description) *describedTest {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cached, ok := t.cache[desc]; ok {
		return cached
	}
	test := &describedTest{desc: desc}
	t.cache[desc] = test
	return test
}

// describedTest is the legacy face of one modern leaf.
type describedTest struct {
	desc *types.Description
}

func (d *describedTest) CountTestCases() int          { return 1 }
func (d *describedTest) Run(*legacy.Result)           {}
func (d *describedTest) Describe() *types.Description { return d.desc }
func (d *describedTest) String() string               { return d.desc.DisplayName() }

// resultBridge forwards modern events into a legacy Result.
type resultBridge struct {
	notification.BaseListener
	result *legacy.Result
	test   *LegacyTest
}

func (b *resultBridge) TestStarted(desc *types.Description) {
	b.result.StartTest(b.test.testFor(desc))
}

func (b *resultBridge) TestFailure(failure *notification.Failure) {
	test := b.test.testFor(failure.Description)
	var assertion *types.AssertionFailure
	if errors.As(failure.Err, &assertion) {
		b.result.AddFailure(test, failure.Err)
		return
	}
	b.result.AddError(test, failure.Err)
}

func (b *resultBridge) TestFinished(desc *types.Description) {
	b.result.EndTest(b.test.testFor(desc))
}
