package types

import (
	"fmt"
	"time"
)

// TestTreeNode represents a node in the hierarchical test tree
type TestTreeNode struct {
	// Node identity and metadata
	ID         string           // Unique identifier for this node
	Name       string           // Display name
	Type       TestTreeNodeType // Type of node (suite, test)
	ClassName  string           // Template name for test nodes
	MethodName string           // Reported method name for test nodes

	// Test execution data
	Status         TestStatus    // Overall status of this node
	Duration       time.Duration // Total duration including children
	Error          error         // Error if failed
	LogPath        string        // Path to the failure log, if written
	ExecutionOrder int           // Order in which this was executed

	// Hierarchy
	Children []*TestTreeNode // Child nodes
	Parent   *TestTreeNode   // Parent node (nil for root)
	Depth    int             // Depth in tree (0 = root level)

	// Display control
	IsVisible bool // Whether this node should be visible (for filtering)

	// Raw data
	Description *Description // Plan node this tree node was built from
	TestResult  *TestResult  // Outcome, nil when the test never reported
}

// TestTreeNodeType defines the type of node in the test tree
type TestTreeNodeType string

const (
	NodeTypeRoot  TestTreeNodeType = "root"  // Root container
	NodeTypeSuite TestTreeNodeType = "suite" // Runner container
	NodeTypeTest  TestTreeNodeType = "test"  // Individual test
)

// TestTreeStats contains aggregated statistics for a tree node
type TestTreeStats struct {
	Total    int        // Total number of test nodes (excludes containers)
	Passed   int        // Number of passed tests
	Failed   int        // Number of failed tests
	Skipped  int        // Number of skipped or ignored tests
	Errored  int        // Number of errored tests
	NotRun   int        // Number of planned tests that never reported
	PassRate float64    // Pass rate percentage
	Status   TestStatus // Overall status (PASS/FAIL/SKIP/ERROR)
}

// TestTree represents the complete hierarchical test structure
type TestTree struct {
	Root      *TestTreeNode // Root node containing the plan
	Stats     TestTreeStats // Overall statistics
	Duration  time.Duration // Total execution time
	RunID     string        // Test run identifier
	Timestamp time.Time     // When the tree was built
	PlanName  string        // Name of the plan that was run

	// Flat indices for quick lookup
	AllNodes    []*TestTreeNode // All nodes in plan order
	TestNodes   []*TestTreeNode // Only test nodes (no containers)
	FailedNodes []*TestTreeNode // Only failed or errored test nodes

	nodesByID map[string]*TestTreeNode
}

// TestTreeBuilder builds a TestTree from a plan and the results of running it
type TestTreeBuilder struct {
	logPathGenerator func(*TestResult) string
}

// NewTestTreeBuilder creates a new test tree builder
func NewTestTreeBuilder() *TestTreeBuilder {
	return &TestTreeBuilder{
		logPathGenerator: func(*TestResult) string { return "" },
	}
}

// WithLogPathGenerator sets the function for generating log paths
func (b *TestTreeBuilder) WithLogPathGenerator(fn func(*TestResult) string) *TestTreeBuilder {
	b.logPathGenerator = fn
	return b
}

// BuildFromPlan creates a TestTree shaped like plan. Results are looked up by
// the identity of the plan's leaf nodes, so two leaves with equal names keep
// their own outcome.
func (b *TestTreeBuilder) BuildFromPlan(plan *Description, results map[*Description]*TestResult, runID, planName string) *TestTree {
	tree := &TestTree{
		RunID:       runID,
		PlanName:    planName,
		Timestamp:   time.Now(),
		nodesByID:   make(map[string]*TestTreeNode),
		AllNodes:    make([]*TestTreeNode, 0),
		TestNodes:   make([]*TestTreeNode, 0),
		FailedNodes: make([]*TestTreeNode, 0),
	}

	tree.Root = &TestTreeNode{
		ID:        "root",
		Name:      "Test Results",
		Type:      NodeTypeRoot,
		Children:  make([]*TestTreeNode, 0),
		IsVisible: true,
	}
	tree.nodesByID["root"] = tree.Root

	if plan != nil {
		counter := 0
		b.addPlanNode(tree, tree.Root, plan, results, &counter)
	}

	tree.Stats = b.calculateNodeStats(tree.Root)
	tree.Duration = tree.Root.Duration
	return tree
}

// addPlanNode mirrors one plan node and its subtree into the tree
func (b *TestTreeBuilder) addPlanNode(tree *TestTree, parent *TestTreeNode, desc *Description, results map[*Description]*TestResult, counter *int) {
	*counter++
	node := &TestTreeNode{
		Name:        desc.DisplayName(),
		Parent:      parent,
		Children:    make([]*TestTreeNode, 0),
		Depth:       parent.Depth + 1,
		IsVisible:   true,
		Description: desc,
	}

	if desc.IsTest() {
		node.ID = fmt.Sprintf("test-%d", *counter)
		node.Type = NodeTypeTest
		node.ClassName = desc.ClassName()
		node.MethodName = desc.MethodName()
		if result, ok := results[desc]; ok {
			node.TestResult = result
			node.Status = result.Status
			node.Duration = result.Duration
			node.Error = result.Error
			node.ExecutionOrder = result.ExecutionOrder
			node.LogPath = b.logPathGenerator(result)
		}
	} else {
		node.ID = fmt.Sprintf("suite-%d", *counter)
		node.Type = NodeTypeSuite
	}

	parent.Children = append(parent.Children, node)
	tree.AllNodes = append(tree.AllNodes, node)
	tree.nodesByID[node.ID] = node

	if node.Type == NodeTypeTest {
		tree.TestNodes = append(tree.TestNodes, node)
		if node.Status == TestStatusFail || node.Status == TestStatusError {
			tree.FailedNodes = append(tree.FailedNodes, node)
		}
		return
	}

	for _, child := range desc.Children() {
		b.addPlanNode(tree, node, child, results, counter)
	}
}

// calculateNodeStats calculates statistics for a node and its children,
// storing the derived status and duration on containers
func (b *TestTreeBuilder) calculateNodeStats(node *TestTreeNode) TestTreeStats {
	stats := TestTreeStats{}

	if node.Type == NodeTypeTest {
		stats.Total = 1
		switch node.Status {
		case TestStatusPass:
			stats.Passed = 1
		case TestStatusFail:
			stats.Failed = 1
		case TestStatusSkip:
			stats.Skipped = 1
		case TestStatusError:
			stats.Errored = 1
		default:
			stats.NotRun = 1
		}
	}

	var duration time.Duration
	for _, child := range node.Children {
		childStats := b.calculateNodeStats(child)
		stats.Total += childStats.Total
		stats.Passed += childStats.Passed
		stats.Failed += childStats.Failed
		stats.Skipped += childStats.Skipped
		stats.Errored += childStats.Errored
		stats.NotRun += childStats.NotRun
		duration += child.Duration
	}

	if stats.Total > 0 {
		stats.PassRate = float64(stats.Passed) / float64(stats.Total) * 100
	}

	// Determine overall status
	switch {
	case stats.Errored > 0:
		stats.Status = TestStatusError
	case stats.Failed > 0:
		stats.Status = TestStatusFail
	case stats.Passed > 0:
		stats.Status = TestStatusPass
	case stats.Skipped > 0:
		stats.Status = TestStatusSkip
	default:
		stats.Status = TestStatusError
	}

	if node.isContainer() {
		node.Status = stats.Status
		node.Duration = duration
	}

	return stats
}

// isContainer returns true if this node is a container (not a test)
func (n *TestTreeNode) isContainer() bool {
	return n.Type == NodeTypeRoot || n.Type == NodeTypeSuite
}

// GetPath returns the hierarchical path to this node
func (n *TestTreeNode) GetPath() string {
	if n.Parent == nil || n.Parent.Type == NodeTypeRoot {
		return n.Name
	}
	return n.Parent.GetPath() + "/" + n.Name
}

// GetTestStats returns statistics for this node
func (n *TestTreeNode) GetTestStats() TestTreeStats {
	stats := TestTreeStats{Status: n.Status}
	n.collectStats(&stats)
	if stats.Total > 0 {
		stats.PassRate = float64(stats.Passed) / float64(stats.Total) * 100
	}
	return stats
}

func (n *TestTreeNode) collectStats(stats *TestTreeStats) {
	if n.Type == NodeTypeTest {
		stats.Total++
		switch n.Status {
		case TestStatusPass:
			stats.Passed++
		case TestStatusFail:
			stats.Failed++
		case TestStatusSkip:
			stats.Skipped++
		case TestStatusError:
			stats.Errored++
		default:
			stats.NotRun++
		}
		return
	}
	for _, child := range n.Children {
		child.collectStats(stats)
	}
}

// Walk traverses the tree calling the visitor function for each node
func (tree *TestTree) Walk(visitor func(*TestTreeNode) bool) {
	tree.walkNode(tree.Root, visitor)
}

// walkNode recursively walks a node and its children
func (tree *TestTree) walkNode(node *TestTreeNode, visitor func(*TestTreeNode) bool) {
	if !visitor(node) {
		return // Stop traversal if visitor returns false
	}

	for _, child := range node.Children {
		tree.walkNode(child, visitor)
	}
}

// FindNode finds a node by ID
func (tree *TestTree) FindNode(id string) *TestTreeNode {
	return tree.nodesByID[id]
}

// GetVisibleNodes returns all currently visible nodes (for filtering)
func (tree *TestTree) GetVisibleNodes() []*TestTreeNode {
	var visible []*TestTreeNode
	tree.Walk(func(node *TestTreeNode) bool {
		if node.IsVisible {
			visible = append(visible, node)
		}
		return true
	})
	return visible
}

// Filter applies a filter function to determine node visibility
func (tree *TestTree) Filter(filterFn func(*TestTreeNode) bool) {
	tree.Walk(func(node *TestTreeNode) bool {
		node.IsVisible = filterFn(node)
		return true
	})
}

// ShowAll makes all nodes visible
func (tree *TestTree) ShowAll() {
	tree.Walk(func(node *TestTreeNode) bool {
		node.IsVisible = true
		return true
	})
}

// ShowOnlyFailed shows only failed tests and their parents
func (tree *TestTree) ShowOnlyFailed() {
	tree.Walk(func(node *TestTreeNode) bool {
		node.IsVisible = false
		return true
	})

	for _, node := range tree.FailedNodes {
		for current := node; current != nil; current = current.Parent {
			current.IsVisible = true
		}
	}
}
