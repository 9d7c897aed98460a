package notification

import (
	"fmt"

	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/pkg/errors"
)

// Failure is one failed leaf (or failed runner) with the error that caused it.
type Failure struct {
	Description *types.Description
	Err         error
}

// NewFailure attaches a stack trace to err unless it already carries one.
func NewFailure(desc *types.Description, err error) *Failure {
	if _, ok := err.(interface{ StackTrace() errors.StackTrace }); !ok {
		err = errors.WithStack(err)
	}
	return &Failure{Description: desc, Err: err}
}

// TestHeader is the display name of the failing node, e.g.
// "test[failing test1](NamedFibonacci)".
func (f *Failure) TestHeader() string {
	return f.Description.DisplayName()
}

// Message returns the error message without a trace.
func (f *Failure) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// Trace renders the error including any captured stack.
func (f *Failure) Trace() string {
	return fmt.Sprintf("%+v", f.Err)
}

func (f *Failure) String() string {
	return f.TestHeader() + ": " + f.Message()
}
