package internal

import "fmt"

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

// Token represents a lexical token produced by the lexer.
// Text tokens carry raw template text; expression-mode tokens carry
// the token's source spelling (string tokens carry the decoded content).
type Token struct {
	Type     TokenType // The type of token
	Value    string    // The token's value/content
	Position Position  // Source position
	Number   float64   // Parsed value for number tokens
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	if t.Value == "" {
		return fmt.Sprintf("Token{%s @ %s}", t.Type, t.Position)
	}
	return fmt.Sprintf("Token{%s: %q @ %s}", t.Type, t.Value, t.Position)
}

// IsEOF returns true if this is an end-of-input token
func (t Token) IsEOF() bool {
	return t.Type == TokenTypeEOF
}

// IsText returns true if this is a literal text token
func (t Token) IsText() bool {
	return t.Type == TokenTypeText
}

// IsOpenDelim returns true if this token opens an expression block
func (t Token) IsOpenDelim() bool {
	return t.Type == TokenTypeOpenDelim
}

// IsCloseDelim returns true if this token closes an expression block
func (t Token) IsCloseDelim() bool {
	return t.Type == TokenTypeCloseDelim
}

// IsKeyword returns true for conditional keywords (if/elif/else) and the end tag
func (t Token) IsKeyword() bool {
	switch t.Type {
	case TokenTypeIf, TokenTypeElif, TokenTypeElse, TokenTypeEndIf:
		return true
	default:
		return false
	}
}

// NewToken creates a new token with the given type, value, and position
func NewToken(tokenType TokenType, value string, pos Position) Token {
	return Token{
		Type:     tokenType,
		Value:    value,
		Position: pos,
	}
}

// NewTextToken creates a text token with the given content
func NewTextToken(content string, pos Position) Token {
	return Token{
		Type:     TokenTypeText,
		Value:    content,
		Position: pos,
	}
}

// NewNumberToken creates a number token carrying both the literal text and its parsed value
func NewNumberToken(literal string, value float64, pos Position) Token {
	return Token{
		Type:     TokenTypeNumber,
		Value:    literal,
		Position: pos,
		Number:   value,
	}
}

// NewStringToken creates a string token carrying the decoded content
func NewStringToken(content string, pos Position) Token {
	return Token{
		Type:     TokenTypeString,
		Value:    content,
		Position: pos,
	}
}

// NewOpenDelimToken creates an open delimiter token
func NewOpenDelimToken(pos Position) Token {
	return Token{
		Type:     TokenTypeOpenDelim,
		Value:    StrOpenDelim,
		Position: pos,
	}
}

// NewCloseDelimToken creates a close delimiter token
func NewCloseDelimToken(pos Position) Token {
	return Token{
		Type:     TokenTypeCloseDelim,
		Value:    StrCloseDelim,
		Position: pos,
	}
}

// NewEOFToken creates an EOF token at the given position
func NewEOFToken(pos Position) Token {
	return Token{
		Type:     TokenTypeEOF,
		Position: pos,
	}
}
