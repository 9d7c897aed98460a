// Package types contains shared types used across the test plan engine
package types

import (
	"fmt"
	"strings"
)

// Description is a node of a runner's plan. Leaf nodes identify a single test
// by (class name, method name); container nodes only carry a display name.
// A Description is never mutated once built.
type Description struct {
	displayName string
	className   string
	methodName  string
	ignored     bool
	children    []*Description
}

// TestMechanism is the synthetic node failures of the engine itself are
// attributed to, e.g. a listener that panicked.
var TestMechanism = NewSuiteDescription("Test mechanism")

// EmptyDescription describes a runner with nothing in it.
var EmptyDescription = NewSuiteDescription("No Tests")

// NewSuiteDescription creates a container node with the given children.
func NewSuiteDescription(name string, children ...*Description) *Description {
	if name == "" {
		panic("suite description must have a name")
	}
	return &Description{
		displayName: name,
		children:    append([]*Description(nil), children...),
	}
}

// NewTestDescription creates a leaf node for methodName on className.
func NewTestDescription(className, methodName string) *Description {
	return &Description{
		displayName: FormatDisplayName(methodName, className),
		className:   className,
		methodName:  methodName,
	}
}

// NewIgnoredTestDescription creates a leaf node for a test that is marked to
// be skipped.
func NewIgnoredTestDescription(className, methodName string) *Description {
	d := NewTestDescription(className, methodName)
	d.ignored = true
	return d
}

// FormatDisplayName renders the "method(class)" header used for leaves.
func FormatDisplayName(methodName, className string) string {
	return fmt.Sprintf("%s(%s)", methodName, className)
}

// DisplayName returns the human readable name of this node
func (d *Description) DisplayName() string {
	return d.displayName
}

// ClassName returns the template name of a leaf, or "" for containers.
func (d *Description) ClassName() string {
	return d.className
}

// MethodName returns the method name of a leaf, or "" for containers.
func (d *Description) MethodName() string {
	return d.methodName
}

// Ignored reports whether the leaf was marked to be skipped.
func (d *Description) Ignored() bool {
	return d.ignored
}

// Children returns a copy of the ordered child list.
func (d *Description) Children() []*Description {
	return append([]*Description(nil), d.children...)
}

// IsTest reports whether this node is a leaf test.
func (d *Description) IsTest() bool {
	return len(d.children) == 0 && d.methodName != ""
}

// IsSuite reports whether this node is a container.
func (d *Description) IsSuite() bool {
	return !d.IsTest()
}

// IsEmpty reports whether this is the empty plan.
func (d *Description) IsEmpty() bool {
	return d.Equal(EmptyDescription)
}

// TestCount returns the number of leaves under this node.
func (d *Description) TestCount() int {
	if d.IsTest() {
		return 1
	}
	count := 0
	for _, child := range d.children {
		count += child.TestCount()
	}
	return count
}

// Equal compares identities: the (class, method) pair when both nodes are
// leaves, the display name otherwise. Children and position are ignored.
func (d *Description) Equal(other *Description) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.methodName != "" && other.methodName != "" {
		return d.className == other.className && d.methodName == other.methodName
	}
	if d.methodName != "" || other.methodName != "" {
		return false
	}
	return d.displayName == other.displayName
}

// StructurallyEqual compares two plans node by node, in order.
func StructurallyEqual(a, b *Description) bool {
	if !a.Equal(b) {
		return false
	}
	if a == nil {
		return true
	}
	if a.displayName != b.displayName || a.ignored != b.ignored || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !StructurallyEqual(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// Walk visits this node and its descendants depth-first in plan order. The
// walk does not descend into a node when visitor returns false.
func (d *Description) Walk(visitor func(*Description) bool) {
	if !visitor(d) {
		return
	}
	for _, child := range d.children {
		child.Walk(visitor)
	}
}

// Leaves returns the test nodes under this node in plan order.
func (d *Description) Leaves() []*Description {
	var leaves []*Description
	d.Walk(func(node *Description) bool {
		if node.IsTest() {
			leaves = append(leaves, node)
		}
		return true
	})
	return leaves
}

// String renders the plan as an indented outline.
func (d *Description) String() string {
	var sb strings.Builder
	d.writeOutline(&sb, 0)
	return sb.String()
}

func (d *Description) writeOutline(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(d.displayName)
	sb.WriteString("\n")
	for _, child := range d.children {
		child.writeOutline(sb, depth+1)
	}
}
