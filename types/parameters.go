package types

import (
	"fmt"
	"strconv"
)

// ParameterSet is one named argument tuple produced by a data provider.
// Several sets may share a name.
type ParameterSet struct {
	Name   string
	Values []any
}

// Named builds a ParameterSet.
func Named(name string, values ...any) ParameterSet {
	return ParameterSet{Name: name, Values: values}
}

// Rows builds the ordered-collection provider shape from literal rows.
func Rows(rows ...[]any) [][]any {
	return rows
}

// IndexedParameterSets names rows by their zero-based position.
func IndexedParameterSets(rows [][]any) []ParameterSet {
	sets := make([]ParameterSet, 0, len(rows))
	for i, row := range rows {
		sets = append(sets, ParameterSet{Name: strconv.Itoa(i), Values: row})
	}
	return sets
}

// ChildName is the display name of the runner bound to this set.
func (p ParameterSet) ChildName() string {
	return fmt.Sprintf("[%s]", p.Name)
}

// TestName is the reported name of method when run with this set.
func (p ParameterSet) TestName(method string) string {
	return fmt.Sprintf("%s[%s]", method, p.Name)
}
