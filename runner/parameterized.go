package runner

import (
	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// Parameterized is a Suite with one child per parameter set. The child for
// set "x" is named "[x]" and reports method m as "m[x]". Parameter sets are
// resolved once, when the runner is built.
type Parameterized struct {
	*Suite
	sets []types.ParameterSet
}

var (
	_ Runner     = (*Parameterized)(nil)
	_ Filterable = (*Parameterized)(nil)
)

// NewParameterized resolves the template's parameter sets and builds the
// children. A row whose values do not fit the constructor still gets a child;
// it fails when it runs.
func NewParameterized(template *types.Template, resolver ParameterSetResolver) (*Parameterized, error) {
	sets, err := resolver.Resolve(template)
	if err != nil {
		return nil, err
	}

	children := make([]Runner, 0, len(sets))
	for i := range sets {
		child, err := newClassRunner(template, &sets[i])
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	return &Parameterized{
		Suite: NewSuite(template.Name, children...),
		sets:  sets,
	}, nil
}

// ParameterSets returns the resolved sets in plan order.
func (p *Parameterized) ParameterSets() []types.ParameterSet {
	return append([]types.ParameterSet(nil), p.sets...)
}
