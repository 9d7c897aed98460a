package runner

import (
	"errors"
	"fmt"

	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// ClassRunner runs the test methods of a single template. A fresh instance is
// built for every method, immediately before it runs, so a constructor failure
// is reported against that method.
type ClassRunner struct {
	template *types.Template
	ctor     *types.Constructor
	name     string
	params   *types.ParameterSet
	methods  []*types.Method
	leaves   []*types.Description
}

var (
	_ Runner     = (*ClassRunner)(nil)
	_ Filterable = (*ClassRunner)(nil)
)

// NewClassRunner validates template as a plain test class. Its only
// constructor must take no arguments.
func NewClassRunner(template *types.Template) (*ClassRunner, error) {
	r, err := newClassRunner(template, nil)
	if err != nil {
		return nil, err
	}
	if len(r.ctor.Params) != 0 {
		return nil, types.NewInitializationError(&types.ConfigurationError{
			Template: template.Name,
			Err:      errors.New("test class should have exactly one public zero-argument constructor"),
		})
	}
	return r, nil
}

// newClassRunner builds a runner bound to params, or unbound when params is
// nil. Argument arity is only checked when an instance is built.
func newClassRunner(template *types.Template, params *types.ParameterSet) (*ClassRunner, error) {
	var causes []error
	ctor, err := template.OnlyConstructor()
	if err != nil {
		causes = append(causes, err)
	}

	methods := template.MethodsWith(types.MarkerTest)
	if len(methods) == 0 {
		causes = append(causes, &types.ConfigurationError{Template: template.Name, Err: errors.New("no runnable methods")})
	}
	for _, m := range methods {
		if m.Static {
			causes = append(causes, &types.ConfigurationError{Template: template.Name, Method: m.Name, Err: errors.New("method should not be static")})
		}
		if !m.Public {
			causes = append(causes, &types.ConfigurationError{Template: template.Name, Method: m.Name, Err: errors.New("method should be public")})
		}
		if m.Invoke == nil {
			causes = append(causes, &types.ConfigurationError{Template: template.Name, Method: m.Name, Err: errors.New("method has no body")})
		}
	}
	if len(causes) > 0 {
		return nil, types.NewInitializationError(causes...)
	}

	r := &ClassRunner{
		template: template,
		ctor:     ctor,
		name:     template.Name,
		params:   params,
		methods:  methods,
	}
	if params != nil {
		r.name = params.ChildName()
	}
	for _, m := range methods {
		r.leaves = append(r.leaves, r.describeMethod(m))
	}
	return r, nil
}

func (r *ClassRunner) describeMethod(m *types.Method) *types.Description {
	name := m.Name
	if r.params != nil {
		name = r.params.TestName(m.Name)
	}
	if m.HasMarker(types.MarkerIgnore) {
		return types.NewIgnoredTestDescription(r.template.Name, name)
	}
	return types.NewTestDescription(r.template.Name, name)
}

// Name is the display name of the runner's plan node.
func (r *ClassRunner) Name() string {
	return r.name
}

func (r *ClassRunner) Describe() *types.Description {
	return types.NewSuiteDescription(r.name, r.leaves...)
}

func (r *ClassRunner) TestCount() int {
	return len(r.leaves)
}

func (r *ClassRunner) Run(notifier notification.Notifier) {
	for i, m := range r.methods {
		r.runMethod(notifier, m, r.leaves[i])
	}
}

func (r *ClassRunner) runMethod(notifier notification.Notifier, m *types.Method, desc *types.Description) {
	if desc.Ignored() {
		notifier.FireTestIgnored(desc)
		return
	}

	notifier.FireTestStarted(desc)
	defer notifier.FireTestFinished(desc)

	err := runProtected(func() error {
		instance, err := r.ctor.Instantiate(r.args())
		if err != nil {
			return err
		}
		_, err = m.Invoke(instance)
		return err
	})
	if err != nil {
		reportFailure(notifier, desc, err)
	}
}

func (r *ClassRunner) args() []any {
	if r.params == nil {
		return nil
	}
	return r.params.Values
}

func (r *ClassRunner) Filter(filter Filter) error {
	var methods []*types.Method
	var leaves []*types.Description
	for i, leaf := range r.leaves {
		if filter.ShouldRun(leaf) {
			methods = append(methods, r.methods[i])
			leaves = append(leaves, leaf)
		}
	}
	r.methods = methods
	r.leaves = leaves
	if len(leaves) == 0 {
		return fmt.Errorf("%s: %w", r.name, ErrNoTestsRemain)
	}
	return nil
}
