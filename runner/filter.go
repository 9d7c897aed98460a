package runner

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// ErrNoTestsRemain is returned by Filterable runners left with an empty plan.
var ErrNoTestsRemain = errors.New("no tests remain")

// Filter decides which leaves of a plan run.
type Filter interface {
	// ShouldRun is asked about leaves and containers. A container should run
	// when any of its leaves should.
	ShouldRun(desc *types.Description) bool
	// Describe explains the filter in error messages.
	Describe() string
}

// leafFilter lifts a leaf predicate to containers.
type leafFilter struct {
	match       func(*types.Description) bool
	description string
}

func (f *leafFilter) ShouldRun(desc *types.Description) bool {
	if desc.IsTest() {
		return f.match(desc)
	}
	for _, child := range desc.Children() {
		if f.ShouldRun(child) {
			return true
		}
	}
	return false
}

func (f *leafFilter) Describe() string {
	return f.description
}

// MatchMethod keeps only leaves equal to desc.
func MatchMethod(desc *types.Description) Filter {
	return &leafFilter{
		match:       desc.Equal,
		description: fmt.Sprintf("Method %s", desc.DisplayName()),
	}
}

// MatchPattern keeps leaves whose display name matches re.
func MatchPattern(re *regexp.Regexp) Filter {
	return &leafFilter{
		match: func(d *types.Description) bool {
			return re.MatchString(d.DisplayName())
		},
		description: fmt.Sprintf("Pattern %s", re.String()),
	}
}

// StripIgnored drops leaves marked as ignored.
func StripIgnored() Filter {
	return &leafFilter{
		match: func(d *types.Description) bool {
			return !d.Ignored()
		},
		description: "not ignored",
	}
}

// applyFilter filters r when it supports it. Runners that do not are kept
// whole when any of their leaves match.
func applyFilter(r Runner, filter Filter) error {
	if f, ok := r.(Filterable); ok {
		return f.Filter(filter)
	}
	if !filter.ShouldRun(r.Describe()) {
		return ErrNoTestsRemain
	}
	return nil
}
