package internal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Argument index constants for error reporting
const (
	ArgIndexFirst  = 0
	ArgIndexSecond = 1
)

// RegisterBuiltins registers the default function set with the registry
func RegisterBuiltins(r *FuncRegistry) {
	registerStringBuiltins(r)
	registerNumberBuiltins(r)
	registerConversionBuiltins(r)
}

// registerStringBuiltins registers string manipulation functions
func registerStringBuiltins(r *FuncRegistry) {
	// len(s string) number
	r.MustRegister(&Func{
		Name:    FuncNameLen,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			s, err := argString(FuncNameLen, args, ArgIndexFirst)
			if err != nil {
				return Value{}, err
			}
			return NumberValue(float64(utf8.RuneCountInString(s))), nil
		},
	})

	// upper(s string) string
	r.MustRegister(&Func{
		Name:    FuncNameUpper,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			s, err := argString(FuncNameUpper, args, ArgIndexFirst)
			if err != nil {
				return Value{}, err
			}
			return StringValue(strings.ToUpper(s)), nil
		},
	})

	// lower(s string) string
	r.MustRegister(&Func{
		Name:    FuncNameLower,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			s, err := argString(FuncNameLower, args, ArgIndexFirst)
			if err != nil {
				return Value{}, err
			}
			return StringValue(strings.ToLower(s)), nil
		},
	})

	// trim(s string) string
	r.MustRegister(&Func{
		Name:    FuncNameTrim,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			s, err := argString(FuncNameTrim, args, ArgIndexFirst)
			if err != nil {
				return Value{}, err
			}
			return StringValue(strings.TrimSpace(s)), nil
		},
	})

	// contains(s, substr string) bool
	r.MustRegister(&Func{
		Name:    FuncNameContains,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(args []Value) (Value, error) {
			s, err := argString(FuncNameContains, args, ArgIndexFirst)
			if err != nil {
				return Value{}, err
			}
			substr, err := argString(FuncNameContains, args, ArgIndexSecond)
			if err != nil {
				return Value{}, err
			}
			return BoolValue(strings.Contains(s, substr)), nil
		},
	})
}

// registerNumberBuiltins registers numeric functions
func registerNumberBuiltins(r *FuncRegistry) {
	// abs(n number) number
	r.MustRegister(&Func{
		Name:    FuncNameAbs,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			n, err := argNumber(FuncNameAbs, args, ArgIndexFirst)
			if err != nil {
				return Value{}, err
			}
			return NumberValue(math.Abs(n)), nil
		},
	})

	// round(n number) number - half away from zero
	r.MustRegister(&Func{
		Name:    FuncNameRound,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			n, err := argNumber(FuncNameRound, args, ArgIndexFirst)
			if err != nil {
				return Value{}, err
			}
			return NumberValue(math.Round(n)), nil
		},
	})

	// floor(n number) number
	r.MustRegister(&Func{
		Name:    FuncNameFloor,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			n, err := argNumber(FuncNameFloor, args, ArgIndexFirst)
			if err != nil {
				return Value{}, err
			}
			return NumberValue(math.Floor(n)), nil
		},
	})

	// ceil(n number) number
	r.MustRegister(&Func{
		Name:    FuncNameCeil,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			n, err := argNumber(FuncNameCeil, args, ArgIndexFirst)
			if err != nil {
				return Value{}, err
			}
			return NumberValue(math.Ceil(n)), nil
		},
	})

	// min(n number, ...) number
	r.MustRegister(&Func{
		Name:    FuncNameMin,
		MinArgs: 1,
		MaxArgs: -1,
		Fn: func(args []Value) (Value, error) {
			return foldNumbers(FuncNameMin, args, math.Min)
		},
	})

	// max(n number, ...) number
	r.MustRegister(&Func{
		Name:    FuncNameMax,
		MinArgs: 1,
		MaxArgs: -1,
		Fn: func(args []Value) (Value, error) {
			return foldNumbers(FuncNameMax, args, math.Max)
		},
	})
}

// registerConversionBuiltins registers the explicit conversion functions.
// These are the only sanctioned way to cross value kinds.
func registerConversionBuiltins(r *FuncRegistry) {
	// num(v number|string) number
	r.MustRegister(&Func{
		Name:    FuncNameNum,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			v := args[ArgIndexFirst]
			if v.IsNumber() {
				return v, nil
			}
			if !v.IsString() {
				return Value{}, newFuncArgTypeError(FuncNameNum, ArgIndexFirst, ErrMsgFuncExpectedStr, v.Kind())
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), FloatBitSize64)
			if err != nil {
				return Value{}, &TypeError{
					Op:      FuncNameNum,
					Message: fmt.Sprintf("%s: %s %q", FuncNameNum, ErrMsgFuncNotNumeric, v.Text()),
				}
			}
			return NumberValue(n), nil
		},
	})

	// str(v any) string
	r.MustRegister(&Func{
		Name:    FuncNameStr,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			return StringValue(args[ArgIndexFirst].Format()), nil
		},
	})
}

// foldNumbers reduces the argument list with the given combiner
func foldNumbers(name string, args []Value, combine func(a, b float64) float64) (Value, error) {
	acc, err := argNumber(name, args, ArgIndexFirst)
	if err != nil {
		return Value{}, err
	}
	for i := 1; i < len(args); i++ {
		n, err := argNumber(name, args, i)
		if err != nil {
			return Value{}, err
		}
		acc = combine(acc, n)
	}
	return NumberValue(acc), nil
}

// argString extracts a string argument or reports a type mismatch
func argString(name string, args []Value, idx int) (string, error) {
	v := args[idx]
	if !v.IsString() {
		return "", newFuncArgTypeError(name, idx, ErrMsgFuncExpectedStr, v.Kind())
	}
	return v.Text(), nil
}

// argNumber extracts a number argument or reports a type mismatch
func argNumber(name string, args []Value, idx int) (float64, error) {
	v := args[idx]
	if !v.IsNumber() {
		return 0, newFuncArgTypeError(name, idx, ErrMsgFuncExpectedNum, v.Kind())
	}
	return v.Number(), nil
}

// newFuncArgTypeError builds a TypeError for a mismatched argument.
// Argument positions are reported 1-based.
func newFuncArgTypeError(name string, idx int, msg string, got Kind) *TypeError {
	return &TypeError{
		Op:      name,
		Message: fmt.Sprintf("%s: %s (argument %d, got %s)", name, msg, idx+1, got),
	}
}
