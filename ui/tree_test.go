package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/stretchr/testify/assert"
)

func TestBuildTreePrefix(t *testing.T) {
	tests := []struct {
		name         string
		depth        int
		isLast       bool
		parentIsLast []bool
		expected     string
	}{
		{name: "depth 0", depth: 0, expected: ""},
		{name: "depth 1, not last", depth: 1, expected: "├── "},
		{name: "depth 1, is last", depth: 1, isLast: true, expected: "└── "},
		{name: "depth 2, parent not last", depth: 2, parentIsLast: []bool{false}, expected: "│   ├── "},
		{name: "depth 2, parent last", depth: 2, isLast: true, parentIsLast: []bool{true}, expected: "    └── "},
		{name: "depth 3, mixed", depth: 3, parentIsLast: []bool{true, false}, expected: "    │   ├── "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildTreePrefix(tt.depth, tt.isLast, tt.parentIsLast))
		})
	}
}

func TestPlanOutline(t *testing.T) {
	plan := types.NewSuiteDescription("Fibonacci",
		types.NewSuiteDescription("[0]", types.NewTestDescription("Fibonacci", "test[0]")),
		types.NewSuiteDescription("[1]", types.NewIgnoredTestDescription("Fibonacci", "test[1]")),
	)

	expected := strings.Join([]string{
		"Fibonacci (2)",
		"├── [0] (1)",
		"│   └── test[0](Fibonacci)",
		"└── [1] (1)",
		"    └── test[1](Fibonacci) (ignored)",
		"",
	}, "\n")
	assert.Equal(t, expected, PlanOutline(plan))
}

func TestBuildBox(t *testing.T) {
	header := BuildBoxHeader("PLAN", 12)
	lines := strings.Split(strings.TrimSuffix(header, "\n"), "\n")
	assert.Len(t, lines, 3)
	for _, line := range lines {
		assert.Equal(t, 12, utf8.RuneCountInString(line))
	}

	// Width grows to fit the title
	assert.Contains(t, BuildBoxHeader("a long title", 4), "│ a long title │")

	line := BuildBoxLine("truncate this content", 12)
	assert.Equal(t, "│ trunc... │\n", line)
	assert.Equal(t, "└──────────┘\n", BuildBoxFooter(12))
}
