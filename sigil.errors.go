package sigil

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/itsatony/go-cuserr"

	"github.com/itsatony/go-sigil/internal"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	ErrMsgCompileFailed     = "template compilation failed"
	ErrMsgRenderFailed      = "template rendering failed"
	ErrMsgOutputTooLarge    = "rendered output exceeds configured maximum size"
	ErrMsgNegativeMaxOutput = "maximum output size cannot be negative"
	ErrMsgFuncRegistration  = "function registration failed"
)

// Position represents a location in the source template
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// positionFromInternal converts an internal position to the public type.
func positionFromInternal(pos internal.Position) Position {
	return Position{
		Offset: pos.Offset,
		Line:   pos.Line,
		Column: pos.Column,
	}
}

// newCompileError wraps a lexer or parser failure with its code, kind,
// and position metadata.
func newCompileError(cause error) error {
	var lexErr *internal.LexerError
	if errors.As(cause, &lexErr) {
		err := cuserr.WrapStdError(cause, ErrCodeLex, ErrMsgCompileFailed).
			WithMetadata(MetaKeyKind, ErrorKindLex)
		return withPositionMetadata(err, positionFromInternal(lexErr.Position))
	}

	var parseErr *internal.ParserError
	if errors.As(cause, &parseErr) {
		err := cuserr.WrapStdError(cause, ErrCodeParse, ErrMsgCompileFailed).
			WithMetadata(MetaKeyKind, ErrorKindParse)
		return withPositionMetadata(err, positionFromInternal(parseErr.Position))
	}

	return cuserr.WrapStdError(cause, ErrCodeParse, ErrMsgCompileFailed).
		WithMetadata(MetaKeyKind, ErrorKindParse)
}

// newRenderError wraps an evaluation failure with its code, kind, and
// position metadata.
func newRenderError(cause error) error {
	var renderErr *internal.RenderError
	if !errors.As(cause, &renderErr) {
		return cuserr.WrapStdError(cause, ErrCodeRender, ErrMsgRenderFailed)
	}

	code, kind := renderCodeAndKind(renderErr.Kind)
	err := cuserr.WrapStdError(cause, code, ErrMsgRenderFailed).
		WithMetadata(MetaKeyKind, kind)
	return withPositionMetadata(err, positionFromInternal(renderErr.Position))
}

// renderCodeAndKind maps an internal render error kind to the public
// error code and kind name.
func renderCodeAndKind(kind internal.RenderErrorKind) (string, string) {
	switch kind {
	case internal.RenderErrName:
		return ErrCodeName, ErrorKindName
	case internal.RenderErrArity:
		return ErrCodeArity, ErrorKindArity
	case internal.RenderErrArithmetic:
		return ErrCodeArithmetic, ErrorKindArithmetic
	default:
		return ErrCodeType, ErrorKindType
	}
}

// withPositionMetadata attaches line/column/offset metadata.
func withPositionMetadata(err *cuserr.CustomError, pos Position) error {
	return err.
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset))
}

// newOutputSizeError creates an error for renders exceeding the
// configured output cap.
func newOutputSizeError(actual, limit int) error {
	return cuserr.NewValidationError(ErrCodeRender, ErrMsgOutputTooLarge).
		WithMetadata(MetaKeyLimit, strconv.Itoa(limit)).
		WithMetadata(MetaKeyActual, strconv.Itoa(actual))
}

// newConfigError creates an error for invalid engine configuration.
func newConfigError(msg string) error {
	return cuserr.NewValidationError(ErrCodeConfig, msg)
}

// newFuncRegistrationError wraps a function registry failure.
func newFuncRegistrationError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeRegistry, ErrMsgFuncRegistration)
}

// ErrorKind returns the kind name recorded on a sigil error
// (ErrorKindLex, ErrorKindType, ...). The second return is false for
// errors that did not come from this package.
func ErrorKind(err error) (string, bool) {
	var custom *cuserr.CustomError
	if !errors.As(err, &custom) {
		return "", false
	}
	return custom.GetMetadata(MetaKeyKind)
}

// errorKindIs reports whether err carries the given kind.
func errorKindIs(err error, kind string) bool {
	got, ok := ErrorKind(err)
	return ok && got == kind
}

// IsLexError reports whether err is a lexical compile error.
func IsLexError(err error) bool { return errorKindIs(err, ErrorKindLex) }

// IsParseError reports whether err is a syntactic compile error.
func IsParseError(err error) bool { return errorKindIs(err, ErrorKindParse) }

// IsTypeError reports whether err is a render-stage type error.
func IsTypeError(err error) bool { return errorKindIs(err, ErrorKindType) }

// IsNameError reports whether err names an undefined variable or function.
func IsNameError(err error) bool { return errorKindIs(err, ErrorKindName) }

// IsArityError reports whether err is a function argument-count error.
func IsArityError(err error) bool { return errorKindIs(err, ErrorKindArity) }

// IsArithmeticError reports whether err is a division or modulo by zero.
func IsArithmeticError(err error) bool { return errorKindIs(err, ErrorKindArithmetic) }

// IsCompileError reports whether err occurred before any evaluation.
func IsCompileError(err error) bool { return IsLexError(err) || IsParseError(err) }

// ErrorPosition returns the source position recorded on a sigil error.
func ErrorPosition(err error) (Position, bool) {
	var custom *cuserr.CustomError
	if !errors.As(err, &custom) {
		return Position{}, false
	}

	lineStr, ok := custom.GetMetadata(MetaKeyLine)
	if !ok {
		return Position{}, false
	}
	columnStr, ok := custom.GetMetadata(MetaKeyColumn)
	if !ok {
		return Position{}, false
	}
	offsetStr, _ := custom.GetMetadata(MetaKeyOffset)

	line, err2 := strconv.Atoi(lineStr)
	if err2 != nil {
		return Position{}, false
	}
	column, err2 := strconv.Atoi(columnStr)
	if err2 != nil {
		return Position{}, false
	}
	offset, _ := strconv.Atoi(offsetStr)

	return Position{Offset: offset, Line: line, Column: column}, true
}
