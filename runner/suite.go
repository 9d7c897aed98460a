package runner

import (
	"fmt"

	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// Suite runs its children in order. It adds no policy of its own beyond
// keeping one child's panic from reaching the next.
type Suite struct {
	name     string
	children []Runner
}

var (
	_ Runner     = (*Suite)(nil)
	_ Filterable = (*Suite)(nil)
)

// NewSuite creates a suite. The suite owns children from here on.
func NewSuite(name string, children ...Runner) *Suite {
	return &Suite{name: name, children: children}
}

// Name is the display name of the suite's plan node.
func (s *Suite) Name() string {
	return s.name
}

// Children returns the child runners in order.
func (s *Suite) Children() []Runner {
	return append([]Runner(nil), s.children...)
}

func (s *Suite) Describe() *types.Description {
	children := make([]*types.Description, 0, len(s.children))
	for _, child := range s.children {
		children = append(children, child.Describe())
	}
	return types.NewSuiteDescription(s.name, children...)
}

func (s *Suite) TestCount() int {
	count := 0
	for _, child := range s.children {
		count += child.TestCount()
	}
	return count
}

func (s *Suite) Run(notifier notification.Notifier) {
	for _, child := range s.children {
		if err := runProtected(func() error {
			child.Run(notifier)
			return nil
		}); err != nil {
			notifier.FireTestFailure(notification.NewFailure(child.Describe(), err))
		}
	}
}

func (s *Suite) Filter(filter Filter) error {
	var kept []Runner
	for _, child := range s.children {
		if err := applyFilter(child, filter); err != nil {
			continue
		}
		kept = append(kept, child)
	}
	s.children = kept
	if len(kept) == 0 {
		return fmt.Errorf("%s: %w", s.name, ErrNoTestsRemain)
	}
	return nil
}
