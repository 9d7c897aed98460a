package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() (*Description, []*Description) {
	leaves := []*Description{
		NewTestDescription("Named", "test[dup]"),
		NewTestDescription("Named", "test[dup]"),
		NewTestDescription("Named", "test[other]"),
		NewTestDescription("Named", "test[never]"),
	}
	plan := NewSuiteDescription("Named",
		NewSuiteDescription("[dup]", leaves[0]),
		NewSuiteDescription("[dup]", leaves[1]),
		NewSuiteDescription("[other]", leaves[2]),
		NewSuiteDescription("[never]", leaves[3]),
	)
	return plan, leaves
}

func TestTestTreeBuilder_BuildFromPlan(t *testing.T) {
	plan, leaves := samplePlan()
	results := map[*Description]*TestResult{
		leaves[0]: {Description: leaves[0], Status: TestStatusPass, Duration: time.Second, ExecutionOrder: 1},
		leaves[1]: {Description: leaves[1], Status: TestStatusFail, Duration: 2 * time.Second, Error: errors.New("expected:<1> but was:<0>"), ExecutionOrder: 2},
		leaves[2]: {Description: leaves[2], Status: TestStatusSkip, ExecutionOrder: 3},
	}

	tree := NewTestTreeBuilder().
		WithLogPathGenerator(func(r *TestResult) string { return "failed/" + r.Name() }).
		BuildFromPlan(plan, results, "run-1", "default")

	assert.Equal(t, "run-1", tree.RunID)
	assert.Equal(t, "default", tree.PlanName)
	assert.Equal(t, TestTreeStats{
		Total:    4,
		Passed:   1,
		Failed:   1,
		Skipped:  1,
		NotRun:   1,
		PassRate: 25,
		Status:   TestStatusFail,
	}, tree.Stats)
	assert.Equal(t, 3*time.Second, tree.Duration)

	require.Len(t, tree.TestNodes, 4)
	// Both leaves named test[dup] keep their own outcome
	assert.Equal(t, TestStatusPass, tree.TestNodes[0].Status)
	assert.Equal(t, TestStatusFail, tree.TestNodes[1].Status)
	assert.Equal(t, "failed/test[dup](Named)", tree.TestNodes[1].LogPath)

	require.Len(t, tree.FailedNodes, 1)
	assert.Same(t, leaves[1], tree.FailedNodes[0].Description)
	assert.Equal(t, "Named/[dup]/test[dup](Named)", tree.FailedNodes[0].GetPath())

	top := tree.Root.Children[0]
	assert.Equal(t, NodeTypeSuite, top.Type)
	assert.Equal(t, TestStatusFail, top.Status)
	assert.Equal(t, 1, top.Depth)
	assert.Equal(t, 4, top.GetTestStats().Total)
	assert.Same(t, top, tree.FindNode(top.ID))
}

func TestTestTree_ShowOnlyFailed(t *testing.T) {
	plan, leaves := samplePlan()
	results := map[*Description]*TestResult{
		leaves[0]: {Status: TestStatusPass},
		leaves[1]: {Status: TestStatusError},
	}
	tree := NewTestTreeBuilder().BuildFromPlan(plan, results, "run", "plan")

	tree.ShowOnlyFailed()
	visible := tree.GetVisibleNodes()
	require.Len(t, visible, 4) // root, Named, [dup], the errored leaf
	assert.Same(t, leaves[1], visible[3].Description)

	tree.ShowAll()
	assert.Len(t, tree.GetVisibleNodes(), len(tree.AllNodes)+1)

	tree.Filter(func(n *TestTreeNode) bool { return n.Type != NodeTypeTest })
	for _, node := range tree.GetVisibleNodes() {
		assert.NotEqual(t, NodeTypeTest, node.Type)
	}
}

func TestTestTreeBuilder_EmptyPlan(t *testing.T) {
	tree := NewTestTreeBuilder().BuildFromPlan(nil, nil, "run", "plan")
	assert.Empty(t, tree.Root.Children)
	assert.Equal(t, 0, tree.Stats.Total)
	assert.Equal(t, TestStatusError, tree.Stats.Status)
}
