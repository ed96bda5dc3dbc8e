package param

import (
	"fmt"

	"github.com/cwbudde/algo-afx/dsp/core"
)

// Error reports a rejected parameter name or value. It unwraps to
// core.ErrInvalidParameter.
type Error struct {
	Name   string
	Value  float64
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("param %q = %g: %s: %v", e.Name, e.Value, e.Reason, core.ErrInvalidParameter)
}

func (e *Error) Unwrap() error {
	return core.ErrInvalidParameter
}
