package internal

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the runtime type of a Value
type Kind int

// Value kind constants - the closed set of runtime types
const (
	KindNumber Kind = iota
	KindString
	KindBool
)

// Kind name constants
const (
	KindNameNumber = "number"
	KindNameString = "string"
	KindNameBool   = "boolean"
)

// String returns the human-readable kind name
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return KindNameNumber
	case KindString:
		return KindNameString
	case KindBool:
		return KindNameBool
	default:
		return KindNameNumber
	}
}

// Value is the runtime value of an expression: a number (float64), a
// string, or a boolean. Values are immutable; operations return new
// values. There is no nil/undefined kind - an unresolved name is an
// error, never a value.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

// NumberValue creates a number value
func NumberValue(v float64) Value {
	return Value{kind: KindNumber, num: v}
}

// StringValue creates a string value
func StringValue(v string) Value {
	return Value{kind: KindString, str: v}
}

// BoolValue creates a boolean value
func BoolValue(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// Kind returns the value's runtime kind
func (v Value) Kind() Kind {
	return v.kind
}

// IsNumber returns true for number values
func (v Value) IsNumber() bool {
	return v.kind == KindNumber
}

// IsString returns true for string values
func (v Value) IsString() bool {
	return v.kind == KindString
}

// IsBool returns true for boolean values
func (v Value) IsBool() bool {
	return v.kind == KindBool
}

// Number returns the numeric content; zero unless IsNumber
func (v Value) Number() float64 {
	return v.num
}

// Text returns the string content; empty unless IsString
func (v Value) Text() string {
	return v.str
}

// Bool returns the boolean content; false unless IsBool
func (v Value) Bool() bool {
	return v.b
}

// Format returns the output text for a value. This is the only place a
// value is coerced to text: numbers render as their shortest exact
// decimal form (no trailing ".0", no exponent for typical magnitudes),
// strings verbatim, booleans as "true"/"false".
func (v Value) Format() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		if v.b {
			return StrTrue
		}
		return StrFalse
	default:
		return ""
	}
}

// String returns a debug representation (strings quoted)
func (v Value) String() string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	return v.Format()
}

// Add implements the + operator: number addition or string concatenation.
// Mixing kinds is a type error - there is no implicit stringification.
func Add(a, b Value) (Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return NumberValue(a.num + b.num), nil
	}
	if a.IsString() && b.IsString() {
		return StringValue(a.str + b.str), nil
	}
	return Value{}, newBinaryTypeError(OpPlus, ErrMsgAddOperands, a, b)
}

// Subtract implements the - operator for numbers
func Subtract(a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Value{}, newBinaryTypeError(OpMinus, ErrMsgNumericOperands, a, b)
	}
	return NumberValue(a.num - b.num), nil
}

// Multiply implements the * operator for numbers
func Multiply(a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Value{}, newBinaryTypeError(OpStar, ErrMsgNumericOperands, a, b)
	}
	return NumberValue(a.num * b.num), nil
}

// Divide implements the / operator for numbers. Division by zero is an
// arithmetic error, never an infinity or NaN.
func Divide(a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Value{}, newBinaryTypeError(OpSlash, ErrMsgNumericOperands, a, b)
	}
	if b.num == 0 {
		return Value{}, &ArithmeticError{Op: OpSlash, Message: ErrMsgDivisionByZero}
	}
	return NumberValue(a.num / b.num), nil
}

// Modulo implements the % operator for numbers (truncated-division
// remainder, sign of the dividend). Modulo by zero is an arithmetic
// error.
func Modulo(a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Value{}, newBinaryTypeError(OpPercent, ErrMsgNumericOperands, a, b)
	}
	if b.num == 0 {
		return Value{}, &ArithmeticError{Op: OpPercent, Message: ErrMsgModuloByZero}
	}
	return NumberValue(math.Mod(a.num, b.num)), nil
}

// Negate implements unary minus for numbers
func Negate(a Value) (Value, error) {
	if !a.IsNumber() {
		return Value{}, newUnaryTypeError(OpMinus, ErrMsgNumericOperand, a)
	}
	return NumberValue(-a.num), nil
}

// LogicalNot implements the not operator for booleans
func LogicalNot(a Value) (Value, error) {
	if !a.IsBool() {
		return Value{}, newUnaryTypeError(OpNot, ErrMsgBooleanOperand, a)
	}
	return BoolValue(!a.b), nil
}

// Equal implements the == operator. Equality is defined within a single
// kind only; comparing values of different kinds is a type error rather
// than a silent false.
func Equal(a, b Value) (Value, error) {
	eq, err := sameKindEqual(OpEq, a, b)
	if err != nil {
		return Value{}, err
	}
	return BoolValue(eq), nil
}

// NotEqual implements the != operator with the same kind rules as Equal
func NotEqual(a, b Value) (Value, error) {
	eq, err := sameKindEqual(OpNeq, a, b)
	if err != nil {
		return Value{}, err
	}
	return BoolValue(!eq), nil
}

// Less implements the < operator
func Less(a, b Value) (Value, error) {
	cmp, err := order(OpLt, a, b)
	if err != nil {
		return Value{}, err
	}
	return BoolValue(cmp < 0), nil
}

// LessEqual implements the <= operator
func LessEqual(a, b Value) (Value, error) {
	cmp, err := order(OpLte, a, b)
	if err != nil {
		return Value{}, err
	}
	return BoolValue(cmp <= 0), nil
}

// Greater implements the > operator
func Greater(a, b Value) (Value, error) {
	cmp, err := order(OpGt, a, b)
	if err != nil {
		return Value{}, err
	}
	return BoolValue(cmp > 0), nil
}

// GreaterEqual implements the >= operator
func GreaterEqual(a, b Value) (Value, error) {
	cmp, err := order(OpGte, a, b)
	if err != nil {
		return Value{}, err
	}
	return BoolValue(cmp >= 0), nil
}

// sameKindEqual compares two values of the same kind for equality
func sameKindEqual(op string, a, b Value) (bool, error) {
	if a.kind != b.kind {
		return false, newBinaryTypeError(op, ErrMsgEqualityKinds, a, b)
	}
	switch a.kind {
	case KindNumber:
		return a.num == b.num, nil
	case KindString:
		return a.str == b.str, nil
	default:
		return a.b == b.b, nil
	}
}

// order compares two values for the ordering operators. Numbers order
// numerically, strings lexicographically by byte; booleans do not order
// at all.
func order(op string, a, b Value) (int, error) {
	if a.IsNumber() && b.IsNumber() {
		switch {
		case a.num < b.num:
			return -1, nil
		case a.num > b.num:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.IsString() && b.IsString() {
		switch {
		case a.str < b.str:
			return -1, nil
		case a.str > b.str:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, newBinaryTypeError(op, ErrMsgOrderingKinds, a, b)
}

// TypeError reports an operator applied to operand kinds outside its domain
type TypeError struct {
	Op      string
	Message string
}

// Error implements the error interface
func (e *TypeError) Error() string {
	return e.Message
}

// ArithmeticError reports division or modulo by zero
type ArithmeticError struct {
	Op      string
	Message string
}

// Error implements the error interface
func (e *ArithmeticError) Error() string {
	return e.Message
}

// newBinaryTypeError builds a TypeError naming both operand kinds
func newBinaryTypeError(op, msg string, a, b Value) *TypeError {
	return &TypeError{
		Op:      op,
		Message: fmt.Sprintf("%s: operator %q got %s and %s", msg, op, a.kind, b.kind),
	}
}

// newUnaryTypeError builds a TypeError naming the operand kind
func newUnaryTypeError(op, msg string, a Value) *TypeError {
	return &TypeError{
		Op:      op,
		Message: fmt.Sprintf("%s: operator %q got %s", msg, op, a.kind),
	}
}

// Value rule error messages
const (
	ErrMsgAddOperands     = "operator requires two numbers or two strings"
	ErrMsgNumericOperands = "operator requires number operands"
	ErrMsgNumericOperand  = "operator requires a number operand"
	ErrMsgBooleanOperand  = "operator requires a boolean operand"
	ErrMsgBooleanOperands = "operator requires boolean operands"
	ErrMsgEqualityKinds   = "equality requires operands of the same kind"
	ErrMsgOrderingKinds   = "ordering requires two numbers or two strings"
	ErrMsgDivisionByZero  = "division by zero"
	ErrMsgModuloByZero    = "modulo by zero"
)
