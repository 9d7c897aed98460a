// Package legacy is the older aggregation model: tests build their own suites
// and report into a Result they are handed. The runner package adapts it in
// both directions.
package legacy

import (
	"fmt"

	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// Test is anything that can be counted and run against a Result.
type Test interface {
	CountTestCases() int
	Run(result *Result)
}

// Describable is implemented by legacy tests that already know their plan
// node, such as modern templates adapted into this model.
type Describable interface {
	Describe() *types.Description
}

// Listener observes a Result.
type Listener interface {
	StartTest(test Test)
	AddError(test Test, err error)
	AddFailure(test Test, err error)
	EndTest(test Test)
}

// Fail returns an assertion failure with message.
func Fail(message string) error {
	return &types.AssertionFailure{Message: message}
}

// AssertEquals fails when expected and actual differ.
func AssertEquals(expected, actual any) error {
	return types.AssertEqual(expected, actual)
}

// Case is a single named test body with optional set up and tear down.
type Case struct {
	Class    string
	Name     string
	SetUp    func() error
	TearDown func() error
	Body     func() error
}

var _ Test = (*Case)(nil)

// NewCase creates a case named name on class.
func NewCase(class, name string, body func() error) *Case {
	return &Case{Class: class, Name: name, Body: body}
}

func (c *Case) CountTestCases() int {
	return 1
}

func (c *Case) Run(result *Result) {
	result.run(c)
}

// RunBare runs set up, the body and tear down. Tear down runs whenever set up
// succeeded; the first error wins.
func (c *Case) RunBare() error {
	if c.SetUp != nil {
		if err := c.SetUp(); err != nil {
			return err
		}
	}
	var err error
	if c.Body == nil {
		err = Fail(fmt.Sprintf("method %q not found", c.Name))
	} else {
		err = c.Body()
	}
	if c.TearDown != nil {
		if tdErr := c.TearDown(); err == nil {
			err = tdErr
		}
	}
	return err
}

func (c *Case) String() string {
	return types.FormatDisplayName(c.Name, c.Class)
}

// Suite runs its tests in order until the result is asked to stop.
type Suite struct {
	Name  string
	tests []Test
}

var _ Test = (*Suite)(nil)

// NewSuite creates a suite with the given tests.
func NewSuite(name string, tests ...Test) *Suite {
	return &Suite{Name: name, tests: tests}
}

// AddTest appends a test.
func (s *Suite) AddTest(test Test) {
	s.tests = append(s.tests, test)
}

// Tests returns the tests in order.
func (s *Suite) Tests() []Test {
	return append([]Test(nil), s.tests...)
}

// TestCount is the number of direct children.
func (s *Suite) TestCount() int {
	return len(s.tests)
}

func (s *Suite) CountTestCases() int {
	count := 0
	for _, test := range s.tests {
		count += test.CountTestCases()
	}
	return count
}

func (s *Suite) Run(result *Result) {
	for _, test := range s.tests {
		if result.ShouldStop() {
			break
		}
		test.Run(result)
	}
}

func (s *Suite) String() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%T", s)
}
