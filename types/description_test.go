package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescription_Equal(t *testing.T) {
	tests := []struct {
		name string
		a    *Description
		b    *Description
		want bool
	}{
		{
			name: "same leaf identity",
			a:    NewTestDescription("Fibonacci", "test[0]"),
			b:    NewTestDescription("Fibonacci", "test[0]"),
			want: true,
		},
		{
			name: "different method",
			a:    NewTestDescription("Fibonacci", "test[0]"),
			b:    NewTestDescription("Fibonacci", "test[1]"),
			want: false,
		},
		{
			name: "containers by display name",
			a:    NewSuiteDescription("[0]", NewTestDescription("Fibonacci", "test[0]")),
			b:    NewSuiteDescription("[0]"),
			want: true,
		},
		{
			name: "leaf never equals container",
			a:    NewTestDescription("Fibonacci", "test"),
			b:    NewSuiteDescription("test(Fibonacci)"),
			want: false,
		},
		{
			name: "nil on one side",
			a:    NewSuiteDescription("x"),
			b:    nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestDescription_DuplicateLeavesKeepPositionIdentity(t *testing.T) {
	first := NewTestDescription("Named", "test[dup]")
	second := NewTestDescription("Named", "test[dup]")

	assert.True(t, first.Equal(second))
	assert.NotSame(t, first, second)

	results := map[*Description]string{first: "pass", second: "fail"}
	assert.Len(t, results, 2)
}

func TestDescription_TestCountAndLeaves(t *testing.T) {
	plan := NewSuiteDescription("Fibonacci",
		NewSuiteDescription("[0]", NewTestDescription("Fibonacci", "test[0]"), NewTestDescription("Fibonacci", "other[0]")),
		NewSuiteDescription("[1]", NewTestDescription("Fibonacci", "test[1]")),
		NewSuiteDescription("[empty]"),
	)

	assert.Equal(t, 3, plan.TestCount())
	assert.True(t, plan.IsSuite())
	assert.False(t, plan.IsTest())

	leaves := plan.Leaves()
	require.Len(t, leaves, 3)
	assert.Equal(t, "test[0](Fibonacci)", leaves[0].DisplayName())
	assert.Equal(t, "test[1](Fibonacci)", leaves[2].DisplayName())
}

func TestDescription_ChildrenIsACopy(t *testing.T) {
	plan := NewSuiteDescription("root", NewTestDescription("A", "a"))
	children := plan.Children()
	children[0] = NewTestDescription("B", "b")

	assert.Equal(t, "a(A)", plan.Children()[0].DisplayName())
}

func TestDescription_WalkStopsDescending(t *testing.T) {
	plan := NewSuiteDescription("root",
		NewSuiteDescription("skip-me", NewTestDescription("A", "a")),
		NewTestDescription("B", "b"),
	)

	var visited []string
	plan.Walk(func(d *Description) bool {
		visited = append(visited, d.DisplayName())
		return d.DisplayName() != "skip-me"
	})

	assert.Equal(t, []string{"root", "skip-me", "b(B)"}, visited)
}

func TestStructurallyEqual(t *testing.T) {
	build := func() *Description {
		return NewSuiteDescription("Fibonacci",
			NewSuiteDescription("[0]", NewTestDescription("Fibonacci", "test[0]")),
			NewSuiteDescription("[1]", NewIgnoredTestDescription("Fibonacci", "test[1]")),
		)
	}

	assert.True(t, StructurallyEqual(build(), build()))

	reordered := NewSuiteDescription("Fibonacci",
		NewSuiteDescription("[1]", NewIgnoredTestDescription("Fibonacci", "test[1]")),
		NewSuiteDescription("[0]", NewTestDescription("Fibonacci", "test[0]")),
	)
	assert.False(t, StructurallyEqual(build(), reordered))

	notIgnored := NewSuiteDescription("Fibonacci",
		NewSuiteDescription("[0]", NewTestDescription("Fibonacci", "test[0]")),
		NewSuiteDescription("[1]", NewTestDescription("Fibonacci", "test[1]")),
	)
	assert.False(t, StructurallyEqual(build(), notIgnored))
}

func TestNewSuiteDescription_RequiresName(t *testing.T) {
	assert.Panics(t, func() { NewSuiteDescription("") })
}

func TestDescription_String(t *testing.T) {
	plan := NewSuiteDescription("root", NewSuiteDescription("[0]", NewTestDescription("A", "a[0]")))
	assert.Equal(t, "root\n  [0]\n    a[0](A)\n", plan.String())
}

func TestEmptyDescription(t *testing.T) {
	assert.True(t, EmptyDescription.IsEmpty())
	assert.Equal(t, 0, EmptyDescription.TestCount())
	assert.False(t, TestMechanism.IsEmpty())
}
