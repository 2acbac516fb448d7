package internal

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Lexer tokenizes template source into a single token stream.
// It operates in two modes: text mode accumulates literal output until
// the opening delimiter, expression mode tokenizes everything between
// {{ and }}. Only the exact delimiter pairs switch modes; a lone brace
// is ordinary text.
type Lexer struct {
	source     string
	pos        int  // Current byte position
	line       int  // Current line (1-indexed)
	column     int  // Current column (1-indexed)
	inExpr     bool // True while between {{ and }}
	atExprHead bool // True for the first token after {{, where /fi is legal
	openPos    Position
	logger     *zap.Logger
}

// NewLexer creates a new lexer for the given source
func NewLexer(source string, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgLexerCreated, zap.Int(LogFieldSource, len(source)))
	return &Lexer{
		source: source,
		pos:    0,
		line:   1,
		column: 1,
		logger: logger,
	}
}

// Tokenize processes the source and returns the full token stream.
// The stream always ends with an EOF token. Any lexical problem aborts
// tokenization with a *LexerError carrying the offending position.
func (l *Lexer) Tokenize() ([]Token, error) {
	l.logger.Debug(LogMsgTokenizeStart)
	var tokens []Token

	for !l.isAtEnd() {
		if !l.inExpr {
			if l.matchStr(StrOpenDelim) {
				pos := l.currentPosition()
				l.advanceN(len(StrOpenDelim))
				tokens = append(tokens, NewOpenDelimToken(pos))
				l.inExpr = true
				l.atExprHead = true
				l.openPos = pos
				continue
			}

			textToken := l.scanText()
			if textToken.Value != "" {
				tokens = append(tokens, textToken)
			}
			continue
		}

		l.skipWhitespace()
		if l.isAtEnd() {
			break
		}

		if l.matchStr(StrCloseDelim) {
			pos := l.currentPosition()
			l.advanceN(len(StrCloseDelim))
			tokens = append(tokens, NewCloseDelimToken(pos))
			l.inExpr = false
			continue
		}

		token, err := l.scanExprToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
		l.atExprHead = false
	}

	if l.inExpr {
		return nil, &LexerError{
			Message:  ErrMsgUnterminatedExpr,
			Position: l.openPos,
		}
	}

	tokens = append(tokens, NewEOFToken(l.currentPosition()))
	l.logger.Debug(LogMsgTokenizeEnd, zap.Int(LogFieldTokens, len(tokens)))
	return tokens, nil
}

// scanText scans literal text until the next opening delimiter or end of input
func (l *Lexer) scanText() Token {
	startPos := l.currentPosition()
	var sb strings.Builder

	for !l.isAtEnd() {
		if l.matchStr(StrOpenDelim) {
			break
		}
		sb.WriteByte(l.advance())
	}

	return NewTextToken(sb.String(), startPos)
}

// scanExprToken scans a single expression-mode token
func (l *Lexer) scanExprToken() (Token, error) {
	startPos := l.currentPosition()
	ch := l.peek()

	// The end tag /fi is only legal directly after the opening delimiter;
	// everywhere else a slash is the division operator.
	if ch == CharSlash && l.atExprHead {
		return l.scanEndTag()
	}

	if ch == CharDoubleQuote || ch == CharSingleQuote {
		return l.scanString()
	}

	if isDigit(ch) {
		return l.scanNumber()
	}

	if isLetter(ch) || ch == CharUnderscore {
		return l.scanIdentifier()
	}

	// Two-character operators before their one-character prefixes
	if l.pos+1 < len(l.source) {
		switch l.source[l.pos : l.pos+2] {
		case OpEq:
			l.advanceN(2)
			return NewToken(TokenTypeEq, OpEq, startPos), nil
		case OpNeq:
			l.advanceN(2)
			return NewToken(TokenTypeNeq, OpNeq, startPos), nil
		case OpLte:
			l.advanceN(2)
			return NewToken(TokenTypeLte, OpLte, startPos), nil
		case OpGte:
			l.advanceN(2)
			return NewToken(TokenTypeGte, OpGte, startPos), nil
		}
	}

	l.advance()
	switch ch {
	case '<':
		return NewToken(TokenTypeLt, OpLt, startPos), nil
	case '>':
		return NewToken(TokenTypeGt, OpGt, startPos), nil
	case '+':
		return NewToken(TokenTypePlus, OpPlus, startPos), nil
	case '-':
		return NewToken(TokenTypeMinus, OpMinus, startPos), nil
	case '*':
		return NewToken(TokenTypeStar, OpStar, startPos), nil
	case '/':
		return NewToken(TokenTypeSlash, OpSlash, startPos), nil
	case '%':
		return NewToken(TokenTypePercent, OpPercent, startPos), nil
	case '(':
		return NewToken(TokenTypeLParen, "(", startPos), nil
	case ')':
		return NewToken(TokenTypeRParen, ")", startPos), nil
	case ',':
		return NewToken(TokenTypeComma, ",", startPos), nil
	}

	return Token{}, &LexerError{
		Message:  ErrMsgUnexpectedChar,
		Position: startPos,
		Detail:   string(ch),
	}
}

// scanEndTag scans the /fi end tag
func (l *Lexer) scanEndTag() (Token, error) {
	startPos := l.currentPosition()
	l.advance() // consume the slash

	var sb strings.Builder
	for !l.isAtEnd() && (isLetter(l.peek()) || isDigit(l.peek()) || l.peek() == CharUnderscore) {
		sb.WriteByte(l.advance())
	}

	name := sb.String()
	if name != EndTagName {
		return Token{}, &LexerError{
			Message:  ErrMsgUnknownEndTag,
			Position: startPos,
			Detail:   "/" + name,
		}
	}

	return NewToken(TokenTypeEndIf, "/"+name, startPos), nil
}

// scanString scans a quoted string literal, decoding escape sequences
func (l *Lexer) scanString() (Token, error) {
	startPos := l.currentPosition()
	quote := l.advance()

	var sb strings.Builder
	for !l.isAtEnd() {
		ch := l.peek()

		if ch == quote {
			l.advance()
			return NewStringToken(sb.String(), startPos), nil
		}

		if ch == CharBackslash {
			escPos := l.currentPosition()
			l.advance()
			if l.isAtEnd() {
				break
			}
			escaped := l.advance()
			switch escaped {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			default:
				return Token{}, &LexerError{
					Message:  ErrMsgInvalidEscape,
					Position: escPos,
					Detail:   "\\" + string(escaped),
				}
			}
			continue
		}

		sb.WriteByte(l.advance())
	}

	return Token{}, &LexerError{
		Message:  ErrMsgUnterminatedStr,
		Position: startPos,
	}
}

// scanNumber scans a decimal number literal. The fractional dot is only
// consumed when a digit follows it, so "12." leaves the dot behind.
func (l *Lexer) scanNumber() (Token, error) {
	startPos := l.currentPosition()
	start := l.pos

	for !l.isAtEnd() && isDigit(l.peek()) {
		l.advance()
	}

	if !l.isAtEnd() && l.peek() == CharDot && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1]) {
		l.advance() // consume the dot
		for !l.isAtEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}

	literal := l.source[start:l.pos]
	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return Token{}, &LexerError{
			Message:  ErrMsgInvalidNumber,
			Position: startPos,
			Detail:   literal,
		}
	}

	return NewNumberToken(literal, value, startPos), nil
}

// scanIdentifier scans an identifier or keyword
func (l *Lexer) scanIdentifier() (Token, error) {
	startPos := l.currentPosition()
	start := l.pos

	l.advance() // first character already validated by caller
	for !l.isAtEnd() {
		ch := l.peek()
		if isLetter(ch) || isDigit(ch) || ch == CharUnderscore {
			l.advance()
			continue
		}
		break
	}

	value := l.source[start:l.pos]
	return NewToken(LookupIdent(value), value, startPos), nil
}

// Helper methods

// currentPosition returns the current position
func (l *Lexer) currentPosition() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

// isAtEnd returns true if we've reached the end of source
func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

// peek returns the current character without advancing
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == CharNewline {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

// advanceN advances by n characters
func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.advance()
	}
}

// matchStr returns true if the remaining source starts with s
func (l *Lexer) matchStr(s string) bool {
	return strings.HasPrefix(l.source[l.pos:], s)
}

// skipWhitespace skips whitespace characters in expression mode
func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		ch := l.peek()
		if ch == CharSpace || ch == CharTab || ch == CharNewline || ch == CharCarriageRet {
			l.advance()
		} else {
			break
		}
	}
}

// Character classification helpers

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// LexerError represents a lexical error with position
type LexerError struct {
	Message  string
	Position Position
	Detail   string
}

func (e *LexerError) Error() string {
	if e.Detail != "" {
		return e.Message + " " + strconv.Quote(e.Detail) + " at " + e.Position.String()
	}
	return e.Message + " at " + e.Position.String()
}

// Error message constants for the lexer
const (
	ErrMsgUnterminatedExpr = "unterminated expression block"
	ErrMsgUnterminatedStr  = "unterminated string literal"
	ErrMsgInvalidEscape    = "invalid escape sequence"
	ErrMsgInvalidNumber    = "invalid number literal"
	ErrMsgUnexpectedChar   = "unexpected character"
	ErrMsgUnknownEndTag    = "unknown end tag"
)
