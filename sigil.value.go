package sigil

import (
	"github.com/itsatony/go-sigil/internal"
)

// Value is the engine's strict value type: a number (float64), a
// string, or a boolean. Values never coerce implicitly; conversions
// happen only through the num and str builtins or at final output.
type Value = internal.Value

// Kind identifies which variant a Value holds.
type Kind = internal.Kind

// Value kind constants
const (
	KindNumber = internal.KindNumber
	KindString = internal.KindString
	KindBool   = internal.KindBool
)

// Number creates a numeric Value.
func Number(v float64) Value {
	return internal.NumberValue(v)
}

// String creates a string Value.
func String(v string) Value {
	return internal.StringValue(v)
}

// Bool creates a boolean Value.
func Bool(v bool) Value {
	return internal.BoolValue(v)
}
