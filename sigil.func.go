package sigil

import (
	"github.com/itsatony/go-sigil/internal"
)

// Func represents a custom function callable from template
// expressions. Functions receive already-evaluated argument values
// and return a single Value.
type Func struct {
	// Name is the function identifier used in expressions (e.g., "double" for double(x))
	Name string
	// MinArgs is the minimum number of arguments required
	MinArgs int
	// MaxArgs is the maximum number of arguments allowed (-1 for variadic)
	MaxArgs int
	// Fn is the function implementation
	Fn func(args []Value) (Value, error)
}

// toInternal converts the function to its registry representation.
func (f *Func) toInternal() *internal.Func {
	return &internal.Func{
		Name:    f.Name,
		MinArgs: f.MinArgs,
		MaxArgs: f.MaxArgs,
		Fn:      f.Fn,
	}
}
