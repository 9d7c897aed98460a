package runner

import (
	"errors"
	"fmt"

	"github.com/ethereum-optimism/infra/op-testplan/legacy"
	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum/go-ethereum/log"
)

// errContainsItself marks a suite template that includes itself.
var errContainsItself = errors.New("contains itself")

// BuilderConfig configures a Builder
type BuilderConfig struct {
	Log      log.Logger
	Resolver ParameterSetResolver
}

// Builder picks the runner for a template. In order: an ignored template, an
// explicitly requested runner kind, a legacy suite factory, and finally a
// plain ClassRunner.
type Builder struct {
	log                log.Logger
	resolver           ParameterSetResolver
	ignoreSuiteMethods bool
}

// NewBuilder creates a builder.
func NewBuilder(cfg BuilderConfig) *Builder {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	return &Builder{log: cfg.Log, resolver: cfg.Resolver}
}

// WithoutSuiteMethod returns a builder that treats templates with a legacy
// suite factory as plain templates.
func (b *Builder) WithoutSuiteMethod() *Builder {
	clone := *b
	clone.ignoreSuiteMethods = true
	return &clone
}

// RunnerFor builds the runner for template.
func (b *Builder) RunnerFor(template *types.Template) (Runner, error) {
	return b.runnerFor(template, make(map[*types.Template]bool))
}

// SafeRunnerFor builds the runner for template, reporting construction
// errors through an ErrorReportingRunner instead of returning them.
func (b *Builder) SafeRunnerFor(template *types.Template) Runner {
	r, err := b.RunnerFor(template)
	if err != nil {
		b.log.Warn("Could not build runner", "template", template.Name, "err", err)
		return NewErrorReportingRunner(template.Name, err)
	}
	return r
}

func (b *Builder) runnerFor(template *types.Template, parents map[*types.Template]bool) (Runner, error) {
	if template.Ignored {
		return NewIgnoredClassRunner(template), nil
	}

	switch template.RunWith {
	case types.RunWithParameterized:
		return NewParameterized(template, b.resolver)
	case types.RunWithSuite:
		return b.suiteFor(template, parents)
	case types.RunWithDefault:
	default:
		return nil, &types.ConfigurationError{Template: template.Name, Err: fmt.Errorf("unknown runner kind %q", template.RunWith)}
	}

	if !b.ignoreSuiteMethods {
		factories := publicStatic(template.MethodsWith(types.MarkerSuite))
		switch len(factories) {
		case 0:
		case 1:
			return b.legacySuiteFor(template, factories[0])
		default:
			return nil, &types.ConfigurationError{
				Template: template.Name,
				Err:      fmt.Errorf("found %d suite methods, expected at most one", len(factories)),
			}
		}
	}

	return NewClassRunner(template)
}

// suiteFor builds a Suite over the template's children. A child that cannot
// be built becomes an ErrorReportingRunner; a template that contains itself
// fails the whole suite.
func (b *Builder) suiteFor(template *types.Template, parents map[*types.Template]bool) (Runner, error) {
	if parents[template] {
		return nil, &types.ConfigurationError{
			Template: template.Name,
			Err:      fmt.Errorf("class %s (possibly indirectly) %w", template.Name, errContainsItself),
		}
	}
	if len(template.Children) == 0 {
		return nil, &types.ConfigurationError{Template: template.Name, Err: errors.New("suite has no child templates")}
	}

	parents[template] = true
	defer delete(parents, template)

	children := make([]Runner, 0, len(template.Children))
	for _, child := range template.Children {
		r, err := b.runnerFor(child, parents)
		if errors.Is(err, errContainsItself) {
			return nil, err
		}
		if err != nil {
			b.log.Warn("Could not build suite child", "suite", template.Name, "template", child.Name, "err", err)
			r = NewErrorReportingRunner(child.Name, err)
		}
		children = append(children, r)
	}
	return NewSuite(template.Name, children...), nil
}

// legacySuiteFor calls the template's suite factory and adapts its result.
// A factory that fails is reported as an AdapterFailure and nothing of the
// template runs.
func (b *Builder) legacySuiteFor(template *types.Template, factory *types.Method) (Runner, error) {
	var value any
	err := runProtected(func() error {
		var invokeErr error
		value, invokeErr = factory.Invoke(nil)
		return invokeErr
	})
	if err != nil {
		return nil, &types.AdapterFailure{Template: template.Name, Method: factory.Name, Err: err}
	}

	test, ok := value.(legacy.Test)
	if !ok || test == nil {
		return nil, &types.ConfigurationError{
			Template: template.Name,
			Method:   factory.Name,
			Err:      fmt.Errorf("must return a legacy test, got %T", value),
		}
	}
	b.log.Debug("Using legacy suite", "template", template.Name, "method", factory.Name, "tests", test.CountTestCases())
	return NewLegacySuiteAdapter(template.Name, test), nil
}

func publicStatic(methods []*types.Method) []*types.Method {
	var found []*types.Method
	for _, m := range methods {
		if m.Public && m.Static {
			found = append(found, m)
		}
	}
	return found
}
