package catalog

import (
	"github.com/ethereum-optimism/infra/op-testplan/legacy"
	"github.com/ethereum-optimism/infra/op-testplan/runner"
	"github.com/ethereum-optimism/infra/op-testplan/types"
)

func newEmpty([]any) (any, error) {
	return struct{}{}, nil
}

func mark(rec *Recorder, name string) *types.Method {
	return types.TestMethod(name, func(any) error {
		rec.Mark(name)
		return nil
	})
}

func ignored(rec *Recorder, name string) *types.Method {
	return types.TestMethod(name, func(any) error {
		rec.Mark(name)
		return nil
	}, types.MarkerIgnore)
}

// OldTest builds its own legacy suite holding a case with an unusual name.
func OldTest(rec *Recorder) *types.Template {
	return types.NewTemplate("OldTest").
		WithConstructor(newEmpty).
		WithMethods(types.SuiteMethod("suite", func() (any, error) {
			return legacy.NewSuite("",
				legacy.NewCase("OldTest", "notObviouslyATest", func() error {
					rec.Mark("notObviouslyATest")
					return nil
				}),
			), nil
		}))
}

// NewTest is a modern template whose suite factory adapts itself.
func NewTest(rec *Recorder) *types.Template {
	var t *types.Template
	t = types.NewTemplate("NewTest").
		WithConstructor(newEmpty).
		WithMethods(
			mark(rec, "sample"),
			types.SuiteMethod("suite", func() (any, error) {
				return runner.NewLegacyTest(t), nil
			}),
		)
	return t
}

// CompatibilityTest has only an ignored test. Adapted into the legacy model
// nothing is left, so it reports an initialization error.
func CompatibilityTest(rec *Recorder) *types.Template {
	var t *types.Template
	t = types.NewTemplate("CompatibilityTest").
		WithConstructor(newEmpty).
		WithMethods(
			ignored(rec, "ignored"),
			types.SuiteMethod("suite", func() (any, error) {
				return runner.NewLegacyTest(t), nil
			}),
		)
	return t
}

// NewTestSuiteFails has a suite factory that fails before building anything.
func NewTestSuiteFails(rec *Recorder) *types.Template {
	return types.NewTemplate("NewTestSuiteFails").
		WithConstructor(newEmpty).
		WithMethods(
			mark(rec, "sample"),
			types.SuiteMethod("suite", func() (any, error) {
				return nil, legacy.Fail("called with modern runner")
			}),
		)
}

// NewTestSuiteNotUsed adapts itself; its ignored test is stripped.
func NewTestSuiteNotUsed(rec *Recorder) *types.Template {
	var t *types.Template
	t = types.NewTemplate("NewTestSuiteNotUsed").
		WithConstructor(newEmpty).
		WithMethods(
			mark(rec, "sample"),
			ignored(rec, "ignore"),
			types.SuiteMethod("suite", func() (any, error) {
				return runner.NewLegacyTest(t), nil
			}),
		)
	return t
}
