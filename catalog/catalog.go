// Package catalog holds the templates shipped with the binary. They double as
// worked examples of every runner kind and as fixtures for the runner tests.
package catalog

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/ethereum-optimism/infra/op-testplan/types"
)

var intType = reflect.TypeOf(0)

// Recorder counts which test bodies ran. Each caller owns its own recorder.
type Recorder struct {
	mu   sync.Mutex
	runs map[string]int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{runs: make(map[string]int)}
}

// Mark records one run of name.
func (r *Recorder) Mark(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[name]++
}

// Ran reports whether name ran at least once.
func (r *Recorder) Ran(name string) bool {
	return r.Count(name) > 0
}

// Count is the number of runs of name.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[name]
}

// Catalog maps template names to constructors. Templates are built fresh on
// every lookup so runs never share recorders.
type Catalog struct {
	builders map[string]func(*Recorder) *types.Template
}

// New returns the catalog of every shipped template.
func New() *Catalog {
	return &Catalog{builders: map[string]func(*Recorder) *types.Template{
		"Fibonacci":           func(*Recorder) *types.Template { return Fibonacci(Compute) },
		"NamedFibonacci":      func(*Recorder) *types.Template { return NamedFibonacci(AlwaysZero) },
		"DuplicateNames":      func(*Recorder) *types.Template { return DuplicateNames() },
		"OldTest":             OldTest,
		"NewTest":             NewTest,
		"CompatibilityTest":   CompatibilityTest,
		"NewTestSuiteFails":   NewTestSuiteFails,
		"NewTestSuiteNotUsed": NewTestSuiteNotUsed,
		"AllExamples":         AllExamples,
	}}
}

// Names returns the template names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.builders))
	for name := range c.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template builds the named template reporting into rec.
func (c *Catalog) Template(name string, rec *Recorder) (*types.Template, error) {
	build, ok := c.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	if rec == nil {
		rec = NewRecorder()
	}
	return build(rec), nil
}

// AllExamples is a suite over every example template.
func AllExamples(rec *Recorder) *types.Template {
	return types.NewTemplate("AllExamples").
		WithRunner(types.RunWithSuite).
		WithChildren(
			Fibonacci(Compute),
			OldTest(rec),
			NewTest(rec),
			NewTestSuiteNotUsed(rec),
		)
}
