package runner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// errParametersShape is the decode error for an unsupported provider result.
var errParametersShape = errors.New("must return [][]any, []types.ParameterSet, an ordered *linkedhashmap.Map of string to []any, or map[string][]any")

// ParameterSetResolver finds a template's data provider, calls it and
// normalizes the result into ordered, named parameter sets.
type ParameterSetResolver struct{}

// Resolve returns the parameter sets in provider order. It fails with a
// ConfigurationError when there is not exactly one public static provider,
// when the provider fails, or when its result has an unsupported shape.
func (ParameterSetResolver) Resolve(template *types.Template) ([]types.ParameterSet, error) {
	provider, err := parametersMethod(template)
	if err != nil {
		return nil, err
	}

	var value any
	err = runProtected(func() error {
		var invokeErr error
		value, invokeErr = provider.Invoke(nil)
		return invokeErr
	})
	if err != nil {
		return nil, &types.ConfigurationError{Template: template.Name, Method: provider.Name, Err: err}
	}

	sets, err := decodeParameters(value)
	if err != nil {
		return nil, &types.ConfigurationError{Template: template.Name, Method: provider.Name, Err: err}
	}
	return sets, nil
}

func parametersMethod(template *types.Template) (*types.Method, error) {
	var candidates []*types.Method
	for _, m := range template.MethodsWith(types.MarkerParameters) {
		if m.Static && m.Public {
			candidates = append(candidates, m)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, &types.ConfigurationError{
			Template: template.Name,
			Err:      fmt.Errorf("no public static parameters method on class %s", template.Name),
		}
	case 1:
		return candidates[0], nil
	default:
		return nil, &types.ConfigurationError{
			Template: template.Name,
			Err:      fmt.Errorf("found %d public static parameters methods, expected exactly one", len(candidates)),
		}
	}
}

// decodeParameters normalizes a provider result. Ordered shapes keep their
// order; a plain map is sorted by key since it has none.
func decodeParameters(value any) ([]types.ParameterSet, error) {
	switch v := value.(type) {
	case [][]any:
		return types.IndexedParameterSets(v), nil
	case []types.ParameterSet:
		return append([]types.ParameterSet(nil), v...), nil
	case []any:
		rows := make([][]any, 0, len(v))
		for i, elem := range v {
			row, ok := elem.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T, not []any", errParametersShape, i, elem)
			}
			rows = append(rows, row)
		}
		return types.IndexedParameterSets(rows), nil
	case *linkedhashmap.Map:
		if v == nil {
			break
		}
		sets := make([]types.ParameterSet, 0, v.Size())
		it := v.Iterator()
		for it.Next() {
			name, ok := it.Key().(string)
			if !ok {
				return nil, fmt.Errorf("%w: key %v is %T, not string", errParametersShape, it.Key(), it.Key())
			}
			row, ok := it.Value().([]any)
			if !ok {
				return nil, fmt.Errorf("%w: value for %q is %T, not []any", errParametersShape, name, it.Value())
			}
			sets = append(sets, types.ParameterSet{Name: name, Values: row})
		}
		return sets, nil
	case map[string][]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		sets := make([]types.ParameterSet, 0, len(names))
		for _, name := range names {
			sets = append(sets, types.ParameterSet{Name: name, Values: v[name]})
		}
		return sets, nil
	}
	return nil, fmt.Errorf("%w, got %T", errParametersShape, value)
}
