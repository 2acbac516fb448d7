package internal

import (
	"fmt"

	"go.uber.org/zap"
)

// Parser produces a template AST from the lexer's token stream. It owns
// a cursor into the token slice and nothing else, so instances are
// single-use but cheap, and parsing is reentrant across instances.
type Parser struct {
	tokens []Token
	pos    int
	logger *zap.Logger
}

// NewParser creates a new parser for the given token stream
func NewParser(tokens []Token, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgParserCreated, zap.Int(LogFieldTokens, len(tokens)))
	return &Parser{
		tokens: tokens,
		pos:    0,
		logger: logger,
	}
}

// Parse produces the template root node from the token stream.
// The parse is all-or-nothing: any structural problem returns a
// *ParserError and no partial tree.
func (p *Parser) Parse() (*TemplateNode, error) {
	p.logger.Debug(LogMsgParseStart)

	nodes, err := p.parseNodes()
	if err != nil {
		return nil, err
	}

	// parseNodes stops at conditional branch tags; at the top level
	// there is no enclosing chain they could belong to.
	if !p.isAtEnd() {
		branchTok := p.peekAt(1)
		return nil, &ParserError{
			Message:  ErrMsgStrayBranchTag,
			Position: branchTok.Position,
			Detail:   branchTok.Value,
		}
	}

	root := NewTemplateNode(nodes)
	p.logger.Debug(LogMsgParseEnd, zap.Int(LogFieldNodes, len(nodes)))
	return root, nil
}

// parseNodes parses a sequence of text/expression/conditional nodes
// until EOF or a branch tag (elif/else/end) at the current nesting
// depth. Nested conditionals are consumed whole by parseConditional, so
// a branch tag seen here always belongs to the innermost open chain.
func (p *Parser) parseNodes() ([]Node, error) {
	var nodes []Node

	for !p.isAtEnd() && !p.atBranchTag() {
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}

	return nodes, nil
}

// parseNode parses a single node (text or expression block)
func (p *Parser) parseNode() (Node, error) {
	tok := p.current()

	switch tok.Type {
	case TokenTypeText:
		p.advance()
		return NewTextNode(tok.Value, tok.Position), nil
	case TokenTypeOpenDelim:
		return p.parseBlock()
	case TokenTypeEOF:
		return nil, nil
	default:
		return nil, p.newUnexpectedTokenError(tok)
	}
}

// parseBlock parses one {{ ... }} construct: a conditional chain when
// it starts with if, otherwise an output expression.
func (p *Parser) parseBlock() (Node, error) {
	openTok := p.advance() // consume {{

	switch p.current().Type {
	case TokenTypeIf:
		return p.parseConditional(openTok.Position)
	case TokenTypeElif, TokenTypeElse, TokenTypeEndIf:
		tok := p.current()
		return nil, &ParserError{
			Message:  ErrMsgStrayBranchTag,
			Position: tok.Position,
			Detail:   tok.Value,
		}
	case TokenTypeCloseDelim:
		return nil, &ParserError{
			Message:  ErrMsgEmptyBlock,
			Position: openTok.Position,
		}
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expectCloseDelim(); err != nil {
		return nil, err
	}

	return NewOutputNode(expr, openTok.Position), nil
}

// parseConditional parses a whole if/elif/else chain through its end
// tag. pos is the position of the opening delimiter of the if tag.
func (p *Parser) parseConditional(pos Position) (*ConditionalNode, error) {
	p.advance() // consume if

	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectCloseDelim(); err != nil {
		return nil, err
	}

	children, err := p.parseNodes()
	if err != nil {
		return nil, err
	}

	branches := []ConditionalBranch{NewConditionalBranch(condition, children, false, pos)}
	sawElse := false

	for {
		if p.isAtEnd() {
			return nil, &ParserError{
				Message:  ErrMsgMissingEndTag,
				Position: pos,
			}
		}

		p.advance() // consume {{
		branchTok := p.advance()

		switch branchTok.Type {
		case TokenTypeElif:
			if sawElse {
				return nil, &ParserError{
					Message:  ErrMsgElifAfterElse,
					Position: branchTok.Position,
				}
			}
			condition, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectCloseDelim(); err != nil {
				return nil, err
			}
			children, err := p.parseNodes()
			if err != nil {
				return nil, err
			}
			branches = append(branches, NewConditionalBranch(condition, children, false, branchTok.Position))

		case TokenTypeElse:
			if sawElse {
				return nil, &ParserError{
					Message:  ErrMsgDuplicateElse,
					Position: branchTok.Position,
				}
			}
			if err := p.expectCloseDelim(); err != nil {
				return nil, err
			}
			children, err := p.parseNodes()
			if err != nil {
				return nil, err
			}
			branches = append(branches, NewConditionalBranch(nil, children, true, branchTok.Position))
			sawElse = true

		case TokenTypeEndIf:
			if err := p.expectCloseDelim(); err != nil {
				return nil, err
			}
			return NewConditionalNode(branches, pos), nil

		default:
			return nil, p.newUnexpectedTokenError(branchTok)
		}
	}
}

// Expression parsing - one method per precedence level, low to high.

// parseExpression parses a full expression
func (p *Parser) parseExpression() (ExprNode, error) {
	return p.parseOr()
}

// parseOr parses logical-or expressions (lowest precedence)
func (p *Parser) parseOr() (ExprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.match(TokenTypeOr) {
		opTok := p.previous()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, opTok.Type, right, opTok.Position)
	}

	return left, nil
}

// parseAnd parses logical-and expressions
func (p *Parser) parseAnd() (ExprNode, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	for p.match(TokenTypeAnd) {
		opTok := p.previous()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, opTok.Type, right, opTok.Position)
	}

	return left, nil
}

// parseEquality parses equality expressions (==, !=)
func (p *Parser) parseEquality() (ExprNode, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for p.matchAny(TokenTypeEq, TokenTypeNeq) {
		opTok := p.previous()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, opTok.Type, right, opTok.Position)
	}

	return left, nil
}

// parseComparison parses relational expressions (<, <=, >, >=)
func (p *Parser) parseComparison() (ExprNode, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for p.matchAny(TokenTypeLt, TokenTypeLte, TokenTypeGt, TokenTypeGte) {
		opTok := p.previous()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, opTok.Type, right, opTok.Position)
	}

	return left, nil
}

// parseAdditive parses additive expressions (+, -)
func (p *Parser) parseAdditive() (ExprNode, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.matchAny(TokenTypePlus, TokenTypeMinus) {
		opTok := p.previous()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, opTok.Type, right, opTok.Position)
	}

	return left, nil
}

// parseMultiplicative parses multiplicative expressions (*, /, %)
func (p *Parser) parseMultiplicative() (ExprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.matchAny(TokenTypeStar, TokenTypeSlash, TokenTypePercent) {
		opTok := p.previous()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, opTok.Type, right, opTok.Position)
	}

	return left, nil
}

// parseUnary parses unary expressions (-x, not x); right-recursive so
// "not not a" and "--2" nest naturally
func (p *Parser) parseUnary() (ExprNode, error) {
	if p.matchAny(TokenTypeMinus, TokenTypeNot) {
		opTok := p.previous()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewUnary(opTok.Type, right, opTok.Position), nil
	}

	return p.parseCall()
}

// parseCall parses primary expressions and promotes an identifier
// followed by an opening parenthesis into a function call
func (p *Parser) parseCall() (ExprNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	if variable, ok := node.(*VariableNode); ok {
		if p.match(TokenTypeLParen) {
			return p.finishCall(variable.Name, variable.Pos())
		}
	}

	return node, nil
}

// finishCall parses the argument list after the opening parenthesis
func (p *Parser) finishCall(name string, pos Position) (ExprNode, error) {
	var args []ExprNode

	if !p.check(TokenTypeRParen) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if !p.match(TokenTypeComma) {
				break
			}
		}
	}

	if !p.match(TokenTypeRParen) {
		tok := p.current()
		return nil, &ParserError{
			Message:  ErrMsgExpectedRParen,
			Position: tok.Position,
			Detail:   tok.Value,
		}
	}

	return NewCall(name, args, pos), nil
}

// parsePrimary parses literals, variable references and parenthesized
// groups. Groups collapse to their inner expression; evaluation order
// is already fixed by the tree shape.
func (p *Parser) parsePrimary() (ExprNode, error) {
	if p.match(TokenTypeNumber) {
		tok := p.previous()
		return NewLiteral(NumberValue(tok.Number), tok.Position), nil
	}

	if p.match(TokenTypeString) {
		tok := p.previous()
		return NewLiteral(StringValue(tok.Value), tok.Position), nil
	}

	if p.match(TokenTypeBool) {
		tok := p.previous()
		return NewLiteral(BoolValue(tok.Value == KeywordTrue), tok.Position), nil
	}

	if p.match(TokenTypeIdentifier) {
		tok := p.previous()
		return NewVariable(tok.Value, tok.Position), nil
	}

	if p.match(TokenTypeLParen) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.match(TokenTypeRParen) {
			tok := p.current()
			return nil, &ParserError{
				Message:  ErrMsgExpectedRParen,
				Position: tok.Position,
				Detail:   tok.Value,
			}
		}
		return expr, nil
	}

	tok := p.current()
	return nil, &ParserError{
		Message:  ErrMsgExpectedExpression,
		Position: tok.Position,
		Detail:   tok.Value,
	}
}

// Helper methods

// expectCloseDelim consumes the closing delimiter or reports what was
// found instead
func (p *Parser) expectCloseDelim() error {
	if p.match(TokenTypeCloseDelim) {
		return nil
	}
	tok := p.current()
	return &ParserError{
		Message:  ErrMsgExpectedCloseDelim,
		Position: tok.Position,
		Detail:   tok.Value,
	}
}

// atBranchTag returns true when the next block opens with elif, else or
// the end tag
func (p *Parser) atBranchTag() bool {
	if p.current().Type != TokenTypeOpenDelim {
		return false
	}
	switch p.peekAt(1).Type {
	case TokenTypeElif, TokenTypeElse, TokenTypeEndIf:
		return true
	default:
		return false
	}
}

// match checks if the current token matches and advances if so
func (p *Parser) match(tokenType TokenType) bool {
	if p.check(tokenType) {
		p.advance()
		return true
	}
	return false
}

// matchAny checks if the current token matches any of the given types
func (p *Parser) matchAny(types ...TokenType) bool {
	for _, t := range types {
		if p.match(t) {
			return true
		}
	}
	return false
}

// check returns true if the current token is of the given type
func (p *Parser) check(tokenType TokenType) bool {
	return p.current().Type == tokenType
}

// current returns the token at the cursor
func (p *Parser) current() Token {
	return p.peekAt(0)
}

// peekAt returns the token n positions ahead of the cursor
func (p *Parser) peekAt(n int) Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		if len(p.tokens) == 0 {
			return NewEOFToken(Position{Line: 1, Column: 1})
		}
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

// advance moves past the current token and returns it
func (p *Parser) advance() Token {
	tok := p.current()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

// previous returns the most recently consumed token
func (p *Parser) previous() Token {
	if p.pos == 0 {
		return p.peekAt(0)
	}
	return p.tokens[p.pos-1]
}

// isAtEnd returns true once the cursor reaches the EOF token
func (p *Parser) isAtEnd() bool {
	return p.current().Type == TokenTypeEOF
}

// newUnexpectedTokenError builds a ParserError for an out-of-place token
func (p *Parser) newUnexpectedTokenError(tok Token) error {
	return &ParserError{
		Message:  ErrMsgUnexpectedToken,
		Position: tok.Position,
		Detail:   tok.Value,
	}
}

// ParserError represents a structural error with position
type ParserError struct {
	Message  string
	Position Position
	Detail   string
}

func (e *ParserError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %q at %s", e.Message, e.Detail, e.Position)
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Position)
}

// Error message constants for the parser
const (
	ErrMsgUnexpectedToken    = "unexpected token"
	ErrMsgExpectedExpression = "expected expression"
	ErrMsgExpectedCloseDelim = "expected closing delimiter"
	ErrMsgExpectedRParen     = "expected closing parenthesis"
	ErrMsgEmptyBlock         = "empty expression block"
	ErrMsgMissingEndTag      = "conditional missing end tag"
	ErrMsgStrayBranchTag     = "conditional branch tag without preceding if"
	ErrMsgElifAfterElse      = "elif branch after else"
	ErrMsgDuplicateElse      = "duplicate else branch"
)

// ParseTemplate is a convenience that tokenizes and parses source in one
// step
func ParseTemplate(source string, logger *zap.Logger) (*TemplateNode, error) {
	lexer := NewLexer(source, logger)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}

	parser := NewParser(tokens, logger)
	return parser.Parse()
}
