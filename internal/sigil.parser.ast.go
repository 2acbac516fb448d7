package internal

import (
	"fmt"
	"strings"
)

// Display truncation for long text content in debug output
const (
	MaxStringDisplayLength = 40
	TruncatedStringLength  = 37
	TruncationSuffix       = "..."
)

// Node is the interface all template-level AST nodes implement
type Node interface {
	// Type returns the node type identifier
	Type() NodeType
	// Pos returns the source position of this node
	Pos() Position
	// String returns a human-readable representation
	String() string
}

// TemplateNode is the root of a compiled template: its children in
// document order. The tree is immutable after parsing and safe to share
// across concurrent renders.
type TemplateNode struct {
	Children []Node
}

// Type returns NodeTypeTemplate
func (n *TemplateNode) Type() NodeType {
	return NodeTypeTemplate
}

// Pos returns the start-of-document position
func (n *TemplateNode) Pos() Position {
	return Position{Offset: 0, Line: 1, Column: 1}
}

// String returns a string representation of the template node
func (n *TemplateNode) String() string {
	var sb strings.Builder
	sb.WriteString("TemplateNode{\n")
	for i, child := range n.Children {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", i, child.String()))
	}
	sb.WriteString("}")
	return sb.String()
}

// NewTemplateNode creates the root node for a parsed template
func NewTemplateNode(children []Node) *TemplateNode {
	return &TemplateNode{Children: children}
}

// TextNode represents literal text content, emitted verbatim
type TextNode struct {
	pos     Position
	Content string
}

// Type returns NodeTypeText
func (n *TextNode) Type() NodeType {
	return NodeTypeText
}

// Pos returns the source position
func (n *TextNode) Pos() Position {
	return n.pos
}

// String returns a string representation
func (n *TextNode) String() string {
	content := n.Content
	if len(content) > MaxStringDisplayLength {
		content = content[:TruncatedStringLength] + TruncationSuffix
	}
	return fmt.Sprintf("TextNode{%q @ %s}", content, n.pos)
}

// NewTextNode creates a new text node
func NewTextNode(content string, pos Position) *TextNode {
	return &TextNode{
		pos:     pos,
		Content: content,
	}
}

// OutputNode represents an expression block whose value is written to
// the output ({{ expr }})
type OutputNode struct {
	pos  Position
	Expr ExprNode
}

// Type returns NodeTypeOutput
func (n *OutputNode) Type() NodeType {
	return NodeTypeOutput
}

// Pos returns the source position
func (n *OutputNode) Pos() Position {
	return n.pos
}

// String returns a string representation
func (n *OutputNode) String() string {
	return fmt.Sprintf("OutputNode{%s @ %s}", n.Expr.String(), n.pos)
}

// NewOutputNode creates a new output node
func NewOutputNode(expr ExprNode, pos Position) *OutputNode {
	return &OutputNode{
		pos:  pos,
		Expr: expr,
	}
}

// ConditionalNode represents a whole if/elif/else/{{/fi}} chain as one
// node: ordered branches, at most one trailing else branch.
type ConditionalNode struct {
	pos      Position
	Branches []ConditionalBranch
}

// ConditionalBranch represents a single branch in a conditional chain
type ConditionalBranch struct {
	Condition ExprNode // nil for the else branch
	Children  []Node   // Content to render when the branch is selected
	IsElse    bool     // True for the terminal else branch
	Pos       Position
}

// Type returns NodeTypeConditional
func (n *ConditionalNode) Type() NodeType {
	return NodeTypeConditional
}

// Pos returns the source position
func (n *ConditionalNode) Pos() Position {
	return n.pos
}

// String returns a string representation
func (n *ConditionalNode) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ConditionalNode{branches=%d @ %s", len(n.Branches), n.pos))
	for i, branch := range n.Branches {
		if branch.IsElse {
			sb.WriteString(fmt.Sprintf(", [%d]else", i))
		} else {
			sb.WriteString(fmt.Sprintf(", [%d]if(%s)", i, branch.Condition.String()))
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// NewConditionalNode creates a new conditional node
func NewConditionalNode(branches []ConditionalBranch, pos Position) *ConditionalNode {
	return &ConditionalNode{
		pos:      pos,
		Branches: branches,
	}
}

// NewConditionalBranch creates a new conditional branch
func NewConditionalBranch(condition ExprNode, children []Node, isElse bool, pos Position) ConditionalBranch {
	return ConditionalBranch{
		Condition: condition,
		Children:  children,
		IsElse:    isElse,
		Pos:       pos,
	}
}
