package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// Tree hierarchy symbols using box drawing characters
const (
	TreeBranch     = "├── " // Branch connector
	TreeLastBranch = "└── " // Last branch connector
	TreeContinue   = "│   " // Parent has more siblings
	TreeIndent     = "    " // Parent was last

	BoxTopLeft     = "┌"
	BoxTopRight    = "┐"
	BoxBottomLeft  = "└"
	BoxBottomRight = "┘"
	BoxVertical    = "│"
	BoxHorizontal  = "─"
	BoxTeeRight    = "├"
	BoxTeeLeft     = "┤"
)

// BuildTreePrefix generates a tree prefix based on depth, position, and parent positions
func BuildTreePrefix(depth int, isLast bool, parentIsLast []bool) string {
	if depth == 0 {
		return ""
	}

	var sb strings.Builder
	for i := 0; i < depth-1; i++ {
		if i < len(parentIsLast) && parentIsLast[i] {
			sb.WriteString(TreeIndent)
		} else {
			sb.WriteString(TreeContinue)
		}
	}

	if isLast {
		sb.WriteString(TreeLastBranch)
	} else {
		sb.WriteString(TreeBranch)
	}
	return sb.String()
}

// PlanOutline renders a plan as a tree. Containers show their leaf count and
// ignored leaves are marked.
func PlanOutline(plan *types.Description) string {
	var sb strings.Builder
	writeOutline(&sb, plan, 0, true, nil)
	return sb.String()
}

func writeOutline(sb *strings.Builder, node *types.Description, depth int, isLast bool, parentIsLast []bool) {
	sb.WriteString(BuildTreePrefix(depth, isLast, parentIsLast))
	sb.WriteString(node.DisplayName())
	switch {
	case node.IsTest() && node.Ignored():
		sb.WriteString(" (ignored)")
	case !node.IsTest():
		fmt.Fprintf(sb, " (%d)", node.TestCount())
	}
	sb.WriteString("\n")

	children := node.Children()
	// The root's own position never draws a connector
	var nextParents []bool
	if depth > 0 {
		nextParents = append(append([]bool(nil), parentIsLast...), isLast)
	}
	for i, child := range children {
		writeOutline(sb, child, depth+1, i == len(children)-1, nextParents)
	}
}

// BuildBoxHeader creates a box header with the given title and width
func BuildBoxHeader(title string, width int) string {
	titleLen := utf8.RuneCountInString(title)
	if width < titleLen+4 {
		width = titleLen + 4
	}
	padding := width - 4 - titleLen

	header := BoxTopLeft + repeatString(BoxHorizontal, width-2) + BoxTopRight + "\n"
	header += BoxVertical + " " + title + repeatString(" ", padding+1) + BoxVertical + "\n"
	header += BoxTeeRight + repeatString(BoxHorizontal, width-2) + BoxTeeLeft + "\n"
	return header
}

// BuildBoxLine creates a content line within a box
func BuildBoxLine(content string, width int) string {
	contentLen := utf8.RuneCountInString(content)
	maxContentLen := width - 4

	if contentLen > maxContentLen {
		runes := []rune(content)
		content = string(runes[:maxContentLen-3]) + "..."
		contentLen = maxContentLen
	}

	padding := maxContentLen - contentLen
	return BoxVertical + " " + content + repeatString(" ", padding+1) + BoxVertical + "\n"
}

// BuildBoxFooter creates a box footer with the given width
func BuildBoxFooter(width int) string {
	return BoxBottomLeft + repeatString(BoxHorizontal, width-2) + BoxBottomRight + "\n"
}

func repeatString(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}
