package catalog

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// Compute returns the n-th Fibonacci number.
func Compute(n int) int {
	a, b := 0, 1
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return a
}

// AlwaysZero is a broken Compute.
func AlwaysZero(int) int {
	return 0
}

type fibonacciCase struct {
	input    int
	expected int
}

func newFibonacciCase(args []any) (any, error) {
	return &fibonacciCase{input: args[0].(int), expected: args[1].(int)}, nil
}

func fibonacciTest(compute func(int) int) *types.Method {
	return types.TestMethod("test", func(receiver any) error {
		c := receiver.(*fibonacciCase)
		return types.AssertEqual(c.expected, compute(c.input))
	})
}

// FibonacciRows are the rows indexed by position.
func FibonacciRows() [][]any {
	return types.Rows(
		[]any{0, 0},
		[]any{1, 1},
		[]any{2, 1},
		[]any{3, 2},
		[]any{4, 3},
		[]any{5, 5},
		[]any{6, 8},
	)
}

// Fibonacci checks compute against FibonacciRows, reported as test[0] to test[6].
func Fibonacci(compute func(int) int) *types.Template {
	return types.NewTemplate("Fibonacci").
		WithRunner(types.RunWithParameterized).
		WithConstructor(newFibonacciCase, intType, intType).
		WithMethods(
			types.ParametersMethod("data", func() (any, error) {
				return FibonacciRows(), nil
			}),
			fibonacciTest(compute),
		)
}

// NamedRows are the named rows in insertion order. "failing test6" is put
// twice; the second tuple replaces the first in place.
func NamedRows() *linkedhashmap.Map {
	rows := linkedhashmap.New()
	rows.Put("passing test", []any{0, 0})
	rows.Put("failing test1", []any{1, 1})
	rows.Put("failing test2", []any{2, 1})
	rows.Put("failing test3", []any{3, 2})
	rows.Put("failing test4", []any{4, 3})
	rows.Put("failing test5", []any{5, 5})
	rows.Put("failing test6", []any{6, 8})
	rows.Put("failing test6", []any{7, 9})
	return rows
}

// NamedFibonacci checks compute against NamedRows.
func NamedFibonacci(compute func(int) int) *types.Template {
	return types.NewTemplate("NamedFibonacci").
		WithRunner(types.RunWithParameterized).
		WithConstructor(newFibonacciCase, intType, intType).
		WithMethods(
			types.ParametersMethod("data", func() (any, error) {
				return NamedRows(), nil
			}),
			fibonacciTest(compute),
		)
}

// DuplicateNames keeps two rows under the same name; both run.
func DuplicateNames() *types.Template {
	return types.NewTemplate("DuplicateNames").
		WithRunner(types.RunWithParameterized).
		WithConstructor(newFibonacciCase, intType, intType).
		WithMethods(
			types.ParametersMethod("data", func() (any, error) {
				return []types.ParameterSet{
					types.Named("same", 6, 8),
					types.Named("same", 7, 9),
				}, nil
			}),
			fibonacciTest(Compute),
		)
}
