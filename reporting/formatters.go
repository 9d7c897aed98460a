package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum-optimism/infra/op-testplan/ui"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TreeJSONResponse represents the complete JSON response for a test tree
type TreeJSONResponse struct {
	RunID       string              `json:"runId"`
	PlanName    string              `json:"planName,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
	Duration    time.Duration       `json:"duration"`
	Stats       types.TestTreeStats `json:"stats"`
	Tests       []TestNodeJSON      `json:"tests"`
	FailedTests []string            `json:"failedTests"`
}

// TestNodeJSON represents a flat test node in JSON format
type TestNodeJSON struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Template       string           `json:"template"`
	Method         string           `json:"method"`
	Status         types.TestStatus `json:"status"`
	Duration       time.Duration    `json:"duration"`
	ExecutionOrder int              `json:"executionOrder"`
	Path           string           `json:"path"`
	Error          string           `json:"error,omitempty"`
	SkipReason     string           `json:"skipReason,omitempty"`
	LogPath        string           `json:"logPath,omitempty"`
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}

// getStatusString returns a consistent lowercase status string
func getStatusString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "pass"
	case types.TestStatusFail:
		return "fail"
	case types.TestStatusSkip:
		return "skip"
	case types.TestStatusError:
		return "error"
	default:
		return "not run"
	}
}

// TreeTableFormatter formats test trees as ASCII tables
type TreeTableFormatter struct {
	title              string
	showContainers     bool
	showExecutionOrder bool
}

// NewTreeTableFormatter creates a new tree-based table formatter
func NewTreeTableFormatter(title string, showContainers, showExecutionOrder bool) *TreeTableFormatter {
	return &TreeTableFormatter{
		title:              title,
		showContainers:     showContainers,
		showExecutionOrder: showExecutionOrder,
	}
}

// Format formats a test tree as an ASCII table
func (f *TreeTableFormatter) Format(tree *types.TestTree) (string, error) {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle(f.title)

	headers := []interface{}{"TYPE", "ID", "DURATION", "TESTS", "PASSED", "FAILED", "SKIPPED", "STATUS"}
	if f.showExecutionOrder {
		headers = append([]interface{}{"ORDER"}, headers...)
	}
	t.AppendHeader(table.Row(headers))

	configs := []table.ColumnConfig{
		{Name: "TYPE", AutoMerge: true},
		{Name: "ID", WidthMax: 200, WidthMaxEnforcer: text.WrapSoft},
		{Name: "DURATION", Align: text.AlignRight},
		{Name: "TESTS", Align: text.AlignRight},
		{Name: "PASSED", Align: text.AlignRight},
		{Name: "FAILED", Align: text.AlignRight},
		{Name: "SKIPPED", Align: text.AlignRight},
	}
	if f.showExecutionOrder {
		configs = append([]table.ColumnConfig{{Name: "ORDER", Align: text.AlignRight}}, configs...)
	}
	t.SetColumnConfigs(configs)

	tree.Walk(func(node *types.TestTreeNode) bool {
		if node.Type == types.NodeTypeRoot || !node.IsVisible {
			return true
		}
		if !f.showContainers && node.Type != types.NodeTypeTest {
			return true
		}
		f.addNodeRow(t, node)
		return true
	})

	switch tree.Stats.Status {
	case types.TestStatusFail, types.TestStatusError:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	default:
		t.SetStyle(table.StyleDefault)
	}

	footerRow := []interface{}{
		"TOTAL",
		"",
		formatDuration(tree.Duration),
		tree.Stats.Total,
		tree.Stats.Passed,
		tree.Stats.Failed + tree.Stats.Errored,
		tree.Stats.Skipped,
		strings.ToUpper(getStatusString(tree.Stats.Status)),
	}
	if f.showExecutionOrder {
		footerRow = append([]interface{}{""}, footerRow...)
	}
	t.AppendFooter(table.Row(footerRow))

	t.Render()
	return buf.String(), nil
}

// addNodeRow adds a single node as a row in the table
func (f *TreeTableFormatter) addNodeRow(t table.Writer, node *types.TestTreeNode) {
	stats := node.GetTestStats()
	rowData := []interface{}{
		getNodeTypeString(node),
		generateTreePrefix(node) + node.Name,
		formatDuration(node.Duration),
		stats.Total,
		stats.Passed,
		stats.Failed + stats.Errored,
		stats.Skipped,
		strings.ToUpper(getStatusString(node.Status)),
	}

	if f.showExecutionOrder {
		orderStr := ""
		if node.Type == types.NodeTypeTest && node.ExecutionOrder > 0 {
			orderStr = fmt.Sprintf("%d", node.ExecutionOrder)
		}
		rowData = append([]interface{}{orderStr}, rowData...)
	}

	t.AppendRow(table.Row(rowData))
}

// generateTreePrefix generates the tree-style prefix for a node
func generateTreePrefix(node *types.TestTreeNode) string {
	if node.Parent == nil || node.Parent.Type == types.NodeTypeRoot {
		return ""
	}

	isLast := isLastSibling(node)

	var parentIsLast []bool
	current := node.Parent
	for current != nil && current.Parent != nil && current.Parent.Type != types.NodeTypeRoot {
		parentIsLast = append([]bool{isLastSibling(current)}, parentIsLast...)
		current = current.Parent
	}

	return ui.BuildTreePrefix(node.Depth-1, isLast, parentIsLast)
}

// isLastSibling checks if a node is the last among its siblings
func isLastSibling(node *types.TestTreeNode) bool {
	if node.Parent == nil {
		return true
	}
	siblings := node.Parent.Children
	for i, sibling := range siblings {
		if sibling == node {
			return i == len(siblings)-1
		}
	}
	return true
}

func getNodeTypeString(node *types.TestTreeNode) string {
	switch node.Type {
	case types.NodeTypeSuite:
		return "Suite"
	case types.NodeTypeTest:
		return "Test"
	default:
		return "Unknown"
	}
}

// TreeTextFormatter formats test trees as plain text
type TreeTextFormatter struct {
	includeContainers bool
	includeStats      bool
	includeDetails    bool
}

// NewTreeTextFormatter creates a new tree-based text formatter
func NewTreeTextFormatter(includeContainers, includeStats, includeDetails bool) *TreeTextFormatter {
	return &TreeTextFormatter{
		includeContainers: includeContainers,
		includeStats:      includeStats,
		includeDetails:    includeDetails,
	}
}

// Format formats a test tree as plain text
func (f *TreeTextFormatter) Format(tree *types.TestTree) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("Test Results Summary\n")
	buf.WriteString(strings.Repeat("=", 50) + "\n\n")

	if f.includeStats {
		fmt.Fprintf(&buf, "Run ID: %s\n", tree.RunID)
		if tree.PlanName != "" {
			fmt.Fprintf(&buf, "Plan: %s\n", tree.PlanName)
		}
		fmt.Fprintf(&buf, "Duration: %s\n", formatDuration(tree.Duration))
		fmt.Fprintf(&buf, "Total Tests: %d\n", tree.Stats.Total)
		fmt.Fprintf(&buf, "Passed: %d\n", tree.Stats.Passed)
		fmt.Fprintf(&buf, "Failed: %d\n", tree.Stats.Failed)
		fmt.Fprintf(&buf, "Skipped: %d\n", tree.Stats.Skipped)
		fmt.Fprintf(&buf, "Errored: %d\n", tree.Stats.Errored)
		fmt.Fprintf(&buf, "Pass Rate: %.1f%%\n", tree.Stats.PassRate)
		fmt.Fprintf(&buf, "Status: %s\n", strings.ToUpper(getStatusString(tree.Stats.Status)))
		buf.WriteString("\n")
	}

	buf.WriteString("Test Hierarchy:\n")
	buf.WriteString(strings.Repeat("-", 30) + "\n")

	tree.Walk(func(node *types.TestTreeNode) bool {
		if node.Type == types.NodeTypeRoot || !node.IsVisible {
			return true
		}
		if !f.includeContainers && node.Type != types.NodeTypeTest {
			return true
		}
		indent := ""
		if f.includeContainers {
			indent = generateTreePrefix(node)
		}
		fmt.Fprintf(&buf, "%s[%s] %s (%s)\n", indent, strings.ToUpper(getStatusString(node.Status)), node.Name, formatDuration(node.Duration))
		return true
	})

	if len(tree.FailedNodes) > 0 {
		buf.WriteString("\nFailed Tests:\n")
		buf.WriteString(strings.Repeat("-", 20) + "\n")
		for _, node := range tree.FailedNodes {
			fmt.Fprintf(&buf, "- %s", node.GetPath())
			if f.includeDetails && node.Error != nil {
				fmt.Fprintf(&buf, " (Error: %s)", node.Error.Error())
			}
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}

// TreeJSONFormatter formats test trees as JSON
type TreeJSONFormatter struct {
	indent bool
}

// NewTreeJSONFormatter creates a new JSON formatter
func NewTreeJSONFormatter(indent bool) *TreeJSONFormatter {
	return &TreeJSONFormatter{indent: indent}
}

// Format formats a test tree as JSON
func (f *TreeJSONFormatter) Format(tree *types.TestTree) (string, error) {
	response := TreeJSONResponse{
		RunID:       tree.RunID,
		PlanName:    tree.PlanName,
		Timestamp:   tree.Timestamp,
		Duration:    tree.Duration,
		Stats:       tree.Stats,
		Tests:       make([]TestNodeJSON, 0, len(tree.TestNodes)),
		FailedTests: make([]string, 0, len(tree.FailedNodes)),
	}

	for _, node := range tree.TestNodes {
		entry := TestNodeJSON{
			ID:             node.ID,
			Name:           node.Name,
			Template:       node.ClassName,
			Method:         node.MethodName,
			Status:         node.Status,
			Duration:       node.Duration,
			ExecutionOrder: node.ExecutionOrder,
			Path:           node.GetPath(),
			LogPath:        node.LogPath,
		}
		if node.Error != nil {
			entry.Error = node.Error.Error()
		}
		if node.TestResult != nil {
			entry.SkipReason = node.TestResult.SkipReason
		}
		response.Tests = append(response.Tests, entry)
	}
	for _, node := range tree.FailedNodes {
		response.FailedTests = append(response.FailedTests, node.GetPath())
	}

	var data []byte
	var err error
	if f.indent {
		data, err = json.MarshalIndent(response, "", "  ")
	} else {
		data, err = json.Marshal(response)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}
