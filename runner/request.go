package runner

import (
	"fmt"

	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// Request is a recipe for a runner. Nothing is built until Runner is called.
type Request struct {
	name  string
	build func(b *Builder) Runner
}

// AClass requests the runner the builder picks for template.
func AClass(template *types.Template) Request {
	return Request{
		name: template.Name,
		build: func(b *Builder) Runner {
			return b.SafeRunnerFor(template)
		},
	}
}

// ClassWithoutSuiteMethod requests template's runner ignoring any legacy
// suite factory on it.
func ClassWithoutSuiteMethod(template *types.Template) Request {
	return Request{
		name: template.Name,
		build: func(b *Builder) Runner {
			return b.WithoutSuiteMethod().SafeRunnerFor(template)
		},
	}
}

// Templates requests a suite named name over the given templates. A template
// that cannot be built does not keep the others from running.
func Templates(name string, templates ...*types.Template) Request {
	return Request{
		name: name,
		build: func(b *Builder) Runner {
			children := make([]Runner, 0, len(templates))
			for _, t := range templates {
				children = append(children, b.SafeRunnerFor(t))
			}
			return NewSuite(name, children...)
		},
	}
}

// Compose requests a suite named name whose children are the given requests'
// runners, in order.
func Compose(name string, requests ...Request) Request {
	return Request{
		name: name,
		build: func(b *Builder) Runner {
			children := make([]Runner, 0, len(requests))
			for _, r := range requests {
				children = append(children, r.Runner(b))
			}
			return NewSuite(name, children...)
		},
	}
}

// ForRunner requests an already built runner.
func ForRunner(name string, r Runner) Request {
	return Request{
		name: name,
		build: func(*Builder) Runner {
			return r
		},
	}
}

// FilterWith narrows the request. When nothing matches, the runner reports
// a single initialization error instead.
func (r Request) FilterWith(filter Filter) Request {
	inner := r
	return Request{
		name: r.name,
		build: func(b *Builder) Runner {
			runner := inner.Runner(b)
			if err := applyFilter(runner, filter); err != nil {
				return NewErrorReportingRunner(inner.name,
					fmt.Errorf("no tests found matching %s from %s: %w", filter.Describe(), inner.name, err))
			}
			return runner
		},
	}
}

// Name identifies the request in messages.
func (r Request) Name() string {
	return r.name
}

// Runner builds the requested runner.
func (r Request) Runner(b *Builder) Runner {
	return r.build(b)
}
