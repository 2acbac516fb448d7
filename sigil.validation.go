package sigil

import (
	"errors"

	"github.com/itsatony/go-sigil/internal"
)

// ValidationResult contains the results of a compile-only template check.
type ValidationResult struct {
	// Valid is true when the source compiled cleanly.
	Valid bool

	// Errors lists the problems found. Compilation stops at the first
	// error, so an invalid template reports exactly one issue.
	Errors []ValidationIssue
}

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	// Kind is the error kind name (ErrorKindLex or ErrorKindParse).
	Kind string

	// Message describes the problem.
	Message string

	// Position locates the problem in the source.
	Position Position
}

// Validate compiles a template without rendering it and reports any
// problems with their positions. The returned error is reserved for
// failures of the validation itself; an invalid template is reported
// through the result, not the error.
func (e *Engine) Validate(source string) (*ValidationResult, error) {
	lexer := internal.NewLexer(source, e.logger)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return invalidResult(err), nil
	}

	parser := internal.NewParser(tokens, e.logger)
	if _, err := parser.Parse(); err != nil {
		return invalidResult(err), nil
	}

	return &ValidationResult{Valid: true}, nil
}

// invalidResult builds a single-issue result from a compile failure.
func invalidResult(err error) *ValidationResult {
	return &ValidationResult{
		Valid:  false,
		Errors: []ValidationIssue{issueFromCompileError(err)},
	}
}

// issueFromCompileError converts an internal lex/parse failure into a
// validation issue.
func issueFromCompileError(err error) ValidationIssue {
	var lexErr *internal.LexerError
	if errors.As(err, &lexErr) {
		return ValidationIssue{
			Kind:     ErrorKindLex,
			Message:  err.Error(),
			Position: positionFromInternal(lexErr.Position),
		}
	}

	var parseErr *internal.ParserError
	if errors.As(err, &parseErr) {
		return ValidationIssue{
			Kind:     ErrorKindParse,
			Message:  err.Error(),
			Position: positionFromInternal(parseErr.Position),
		}
	}

	return ValidationIssue{
		Kind:     ErrorKindParse,
		Message:  err.Error(),
		Position: Position{Offset: 0, Line: 1, Column: 1},
	}
}
