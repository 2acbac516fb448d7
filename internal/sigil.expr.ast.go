package internal

import (
	"fmt"
	"strings"
)

// ExprNodeType identifies the type of expression AST node
type ExprNodeType int

// Expression node type constants
const (
	ExprNodeTypeLiteral ExprNodeType = iota
	ExprNodeTypeVariable
	ExprNodeTypeUnary
	ExprNodeTypeBinary
	ExprNodeTypeCall
)

// Expression node type names for debugging
const (
	ExprNodeTypeNameLiteral  = "LITERAL"
	ExprNodeTypeNameVariable = "VARIABLE"
	ExprNodeTypeNameUnary    = "UNARY"
	ExprNodeTypeNameBinary   = "BINARY"
	ExprNodeTypeNameCall     = "CALL"
)

// String returns the string representation of the node type
func (t ExprNodeType) String() string {
	switch t {
	case ExprNodeTypeLiteral:
		return ExprNodeTypeNameLiteral
	case ExprNodeTypeVariable:
		return ExprNodeTypeNameVariable
	case ExprNodeTypeUnary:
		return ExprNodeTypeNameUnary
	case ExprNodeTypeBinary:
		return ExprNodeTypeNameBinary
	case ExprNodeTypeCall:
		return ExprNodeTypeNameCall
	default:
		return ExprNodeTypeNameLiteral
	}
}

// ExprNode is the interface for all expression AST nodes. Nodes are
// immutable once constructed; each parent exclusively owns its children.
type ExprNode interface {
	// Type returns the node type
	Type() ExprNodeType
	// Pos returns the source position of the node
	Pos() Position
	// String returns a string representation for debugging
	String() string
	// exprNode is a marker method to ensure type safety
	exprNode()
}

// LiteralNode represents a literal value (number, string or boolean)
type LiteralNode struct {
	Value Value
	pos   Position
}

func (n *LiteralNode) Type() ExprNodeType { return ExprNodeTypeLiteral }
func (n *LiteralNode) Pos() Position      { return n.pos }
func (n *LiteralNode) exprNode()          {}

func (n *LiteralNode) String() string {
	return n.Value.String()
}

// VariableNode represents a variable reference
type VariableNode struct {
	Name string
	pos  Position
}

func (n *VariableNode) Type() ExprNodeType { return ExprNodeTypeVariable }
func (n *VariableNode) Pos() Position      { return n.pos }
func (n *VariableNode) exprNode()          {}

func (n *VariableNode) String() string {
	return n.Name
}

// UnaryNode represents a unary operation (-x, not x)
type UnaryNode struct {
	Op    TokenType
	Right ExprNode
	pos   Position
}

func (n *UnaryNode) Type() ExprNodeType { return ExprNodeTypeUnary }
func (n *UnaryNode) Pos() Position      { return n.pos }
func (n *UnaryNode) exprNode()          {}

func (n *UnaryNode) String() string {
	if n.Op == TokenTypeNot {
		return fmt.Sprintf("(%s %s)", opText(n.Op), n.Right.String())
	}
	return fmt.Sprintf("(%s%s)", opText(n.Op), n.Right.String())
}

// BinaryNode represents a binary operation (a + b, a and b, ...)
type BinaryNode struct {
	Left  ExprNode
	Op    TokenType
	Right ExprNode
	pos   Position
}

func (n *BinaryNode) Type() ExprNodeType { return ExprNodeTypeBinary }
func (n *BinaryNode) Pos() Position      { return n.pos }
func (n *BinaryNode) exprNode()          {}

func (n *BinaryNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.String(), opText(n.Op), n.Right.String())
}

// CallNode represents a function call (double(21))
type CallNode struct {
	Name string
	Args []ExprNode
	pos  Position
}

func (n *CallNode) Type() ExprNodeType { return ExprNodeTypeCall }
func (n *CallNode) Pos() Position      { return n.pos }
func (n *CallNode) exprNode()          {}

func (n *CallNode) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
}

// NewLiteral creates a literal node
func NewLiteral(value Value, pos Position) *LiteralNode {
	return &LiteralNode{Value: value, pos: pos}
}

// NewVariable creates a variable reference node
func NewVariable(name string, pos Position) *VariableNode {
	return &VariableNode{Name: name, pos: pos}
}

// NewUnary creates a unary operation node
func NewUnary(op TokenType, right ExprNode, pos Position) *UnaryNode {
	return &UnaryNode{Op: op, Right: right, pos: pos}
}

// NewBinary creates a binary operation node. The node's position is the
// operator's, so type errors point at the operator, not the left operand.
func NewBinary(left ExprNode, op TokenType, right ExprNode, pos Position) *BinaryNode {
	return &BinaryNode{Left: left, Op: op, Right: right, pos: pos}
}

// NewCall creates a function call node
func NewCall(name string, args []ExprNode, pos Position) *CallNode {
	return &CallNode{Name: name, Args: args, pos: pos}
}

// opText returns the source spelling for an operator token type
func opText(t TokenType) string {
	switch t {
	case TokenTypeEq:
		return OpEq
	case TokenTypeNeq:
		return OpNeq
	case TokenTypeLt:
		return OpLt
	case TokenTypeLte:
		return OpLte
	case TokenTypeGt:
		return OpGt
	case TokenTypeGte:
		return OpGte
	case TokenTypePlus:
		return OpPlus
	case TokenTypeMinus:
		return OpMinus
	case TokenTypeStar:
		return OpStar
	case TokenTypeSlash:
		return OpSlash
	case TokenTypePercent:
		return OpPercent
	case TokenTypeAnd:
		return OpAnd
	case TokenTypeOr:
		return OpOr
	case TokenTypeNot:
		return OpNot
	default:
		return string(t)
	}
}
