package internal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// VarResolver supplies variable bindings during a render.
// Implementations must be safe for concurrent readers.
type VarResolver interface {
	// Resolve returns the value bound to name, if any.
	Resolve(name string) (Value, bool)
	// Names returns the bound variable names. Callers may retain and
	// sort the returned slice, so implementations must return a copy.
	Names() []string
}

// RenderErrorKind classifies evaluation failures
type RenderErrorKind int

// Render error kinds
const (
	RenderErrType RenderErrorKind = iota
	RenderErrName
	RenderErrArity
	RenderErrArithmetic
)

// Render error kind names
const (
	RenderErrNameType       = "TypeError"
	RenderErrNameName       = "NameError"
	RenderErrNameArity      = "ArityError"
	RenderErrNameArithmetic = "ArithmeticError"
)

// String returns the kind name
func (k RenderErrorKind) String() string {
	switch k {
	case RenderErrType:
		return RenderErrNameType
	case RenderErrName:
		return RenderErrNameName
	case RenderErrArity:
		return RenderErrNameArity
	case RenderErrArithmetic:
		return RenderErrNameArithmetic
	default:
		return fmt.Sprintf("RenderErrorKind(%d)", int(k))
	}
}

// RenderError represents an evaluation failure with position
type RenderError struct {
	Kind     RenderErrorKind
	Message  string
	Position Position
}

// Error implements the error interface
func (e *RenderError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Position)
}

// Renderer walks a template AST and produces output text. A renderer
// holds only read references, so one instance may serve concurrent
// renders of different trees.
type Renderer struct {
	vars   VarResolver
	funcs  *FuncRegistry
	logger *zap.Logger
}

// NewRenderer creates a new renderer over the given bindings
func NewRenderer(vars VarResolver, funcs *FuncRegistry, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRendererCreated)
	return &Renderer{
		vars:   vars,
		funcs:  funcs,
		logger: logger,
	}
}

// Render evaluates the tree in document order and returns the output.
// The first failure aborts the render; no partial output is returned.
func (r *Renderer) Render(root *TemplateNode) (string, error) {
	if root == nil {
		return "", &RenderError{
			Kind:     RenderErrType,
			Message:  ErrMsgNilTemplate,
			Position: Position{Offset: 0, Line: 1, Column: 1},
		}
	}

	r.logger.Debug(LogMsgRenderStart, zap.Int(LogFieldNodes, len(root.Children)))

	var sb strings.Builder
	for _, child := range root.Children {
		if err := r.renderNode(&sb, child); err != nil {
			return "", err
		}
	}

	out := sb.String()
	r.logger.Debug(LogMsgRenderEnd, zap.Int(LogFieldOutput, len(out)))
	return out, nil
}

// renderNode appends one node's contribution to the output
func (r *Renderer) renderNode(sb *strings.Builder, node Node) error {
	switch n := node.(type) {
	case *TextNode:
		sb.WriteString(n.Content)
		return nil

	case *OutputNode:
		val, err := r.eval(n.Expr)
		if err != nil {
			return err
		}
		sb.WriteString(val.Format())
		return nil

	case *ConditionalNode:
		return r.renderConditional(sb, n)

	default:
		return &RenderError{
			Kind:     RenderErrType,
			Message:  fmt.Sprintf("%s: %T", ErrMsgUnknownNode, node),
			Position: node.Pos(),
		}
	}
}

// renderConditional renders the first branch whose condition is true,
// or the else branch if none matched. Later conditions stay untouched
// once a branch has been taken.
func (r *Renderer) renderConditional(sb *strings.Builder, node *ConditionalNode) error {
	for i, branch := range node.Branches {
		if branch.IsElse {
			r.logger.Debug(LogMsgBranchSelected, zap.Int(LogFieldBranch, i))
			return r.renderChildren(sb, branch.Children)
		}

		cond, err := r.eval(branch.Condition)
		if err != nil {
			return err
		}
		if !cond.IsBool() {
			return &RenderError{
				Kind:     RenderErrType,
				Message:  fmt.Sprintf("%s, got %s", ErrMsgCondNotBool, cond.Kind()),
				Position: branch.Condition.Pos(),
			}
		}
		if cond.Bool() {
			r.logger.Debug(LogMsgBranchSelected, zap.Int(LogFieldBranch, i))
			return r.renderChildren(sb, branch.Children)
		}
	}

	// All conditions false and no else: the chain contributes nothing.
	return nil
}

// renderChildren renders a branch body in document order
func (r *Renderer) renderChildren(sb *strings.Builder, children []Node) error {
	for _, child := range children {
		if err := r.renderNode(sb, child); err != nil {
			return err
		}
	}
	return nil
}

// eval evaluates an expression node to a value
func (r *Renderer) eval(node ExprNode) (Value, error) {
	switch n := node.(type) {
	case *LiteralNode:
		return n.Value, nil

	case *VariableNode:
		return r.evalVariable(n)

	case *UnaryNode:
		return r.evalUnary(n)

	case *BinaryNode:
		return r.evalBinary(n)

	case *CallNode:
		return r.evalCall(n)

	default:
		pos := Position{Offset: 0, Line: 1, Column: 1}
		if node != nil {
			pos = node.Pos()
		}
		return Value{}, &RenderError{
			Kind:     RenderErrType,
			Message:  fmt.Sprintf("%s: %T", ErrMsgUnknownExprNode, node),
			Position: pos,
		}
	}
}

// evalVariable looks up a variable binding
func (r *Renderer) evalVariable(node *VariableNode) (Value, error) {
	if r.vars != nil {
		if val, ok := r.vars.Resolve(node.Name); ok {
			return val, nil
		}
	}
	return Value{}, r.newUndefinedNameError(ErrMsgUndefinedVar, node.Name, node.Pos())
}

// evalUnary evaluates a unary operation
func (r *Renderer) evalUnary(node *UnaryNode) (Value, error) {
	right, err := r.eval(node.Right)
	if err != nil {
		return Value{}, err
	}

	var val Value
	switch node.Op {
	case TokenTypeMinus:
		val, err = Negate(right)
	case TokenTypeNot:
		val, err = LogicalNot(right)
	default:
		return Value{}, r.newUnknownOperatorError(node.Op, node.Pos())
	}

	if err != nil {
		return Value{}, r.wrapValueError(err, node.Pos())
	}
	return val, nil
}

// evalBinary evaluates a binary operation
func (r *Renderer) evalBinary(node *BinaryNode) (Value, error) {
	// and/or need control over evaluation order, everything else is
	// eager on both sides.
	if node.Op == TokenTypeAnd || node.Op == TokenTypeOr {
		return r.evalLogical(node)
	}

	left, err := r.eval(node.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := r.eval(node.Right)
	if err != nil {
		return Value{}, err
	}

	var val Value
	switch node.Op {
	case TokenTypeEq:
		val, err = Equal(left, right)
	case TokenTypeNeq:
		val, err = NotEqual(left, right)
	case TokenTypeLt:
		val, err = Less(left, right)
	case TokenTypeLte:
		val, err = LessEqual(left, right)
	case TokenTypeGt:
		val, err = Greater(left, right)
	case TokenTypeGte:
		val, err = GreaterEqual(left, right)
	case TokenTypePlus:
		val, err = Add(left, right)
	case TokenTypeMinus:
		val, err = Subtract(left, right)
	case TokenTypeStar:
		val, err = Multiply(left, right)
	case TokenTypeSlash:
		val, err = Divide(left, right)
	case TokenTypePercent:
		val, err = Modulo(left, right)
	default:
		return Value{}, r.newUnknownOperatorError(node.Op, node.Pos())
	}

	if err != nil {
		return Value{}, r.wrapValueError(err, node.Pos())
	}
	return val, nil
}

// evalLogical evaluates and/or with short-circuiting. The right side
// is never evaluated once the left side decides the result.
func (r *Renderer) evalLogical(node *BinaryNode) (Value, error) {
	op := OpAnd
	if node.Op == TokenTypeOr {
		op = OpOr
	}

	left, err := r.eval(node.Left)
	if err != nil {
		return Value{}, err
	}
	if !left.IsBool() {
		return Value{}, r.wrapValueError(newUnaryTypeError(op, ErrMsgBooleanOperands, left), node.Pos())
	}

	if node.Op == TokenTypeAnd && !left.Bool() {
		return BoolValue(false), nil
	}
	if node.Op == TokenTypeOr && left.Bool() {
		return BoolValue(true), nil
	}

	right, err := r.eval(node.Right)
	if err != nil {
		return Value{}, err
	}
	if !right.IsBool() {
		return Value{}, r.wrapValueError(newUnaryTypeError(op, ErrMsgBooleanOperands, right), node.Pos())
	}

	return BoolValue(right.Bool()), nil
}

// evalCall evaluates a function call: arguments left to right, then
// the invocation itself
func (r *Renderer) evalCall(node *CallNode) (Value, error) {
	args := make([]Value, len(node.Args))
	for i, argNode := range node.Args {
		val, err := r.eval(argNode)
		if err != nil {
			return Value{}, err
		}
		args[i] = val
	}

	if r.funcs == nil {
		return Value{}, r.newUndefinedNameError(ErrMsgUndefinedFunc, node.Name, node.Pos())
	}

	r.logger.Debug(LogMsgFuncInvoked,
		zap.String(LogFieldFunc, node.Name),
		zap.Int(LogFieldArgs, len(args)))

	result, err := r.funcs.Call(node.Name, args)
	if err != nil {
		return Value{}, r.classifyCallError(err, node)
	}
	return result, nil
}

// classifyCallError maps registry failures onto render error kinds
func (r *Renderer) classifyCallError(err error, node *CallNode) error {
	var notFound *FuncNotFoundError
	if errors.As(err, &notFound) {
		return r.newUndefinedNameError(ErrMsgUndefinedFunc, node.Name, node.Pos())
	}

	var arity *FuncArityError
	if errors.As(err, &arity) {
		return &RenderError{
			Kind:     RenderErrArity,
			Message:  arity.Error(),
			Position: node.Pos(),
		}
	}

	return r.wrapValueError(err, node.Pos())
}

// wrapValueError attaches a position to a value-level failure and
// classifies its kind
func (r *Renderer) wrapValueError(err error, pos Position) error {
	kind := RenderErrType

	var arith *ArithmeticError
	if errors.As(err, &arith) {
		kind = RenderErrArithmetic
	}

	return &RenderError{
		Kind:     kind,
		Message:  err.Error(),
		Position: pos,
	}
}

// newUndefinedNameError builds a name error with did-you-mean
// suggestions, falling back to listing what is bound
func (r *Renderer) newUndefinedNameError(msg, name string, pos Position) error {
	candidates := r.nameCandidates()

	suffix := FormatSuggestions(FindSimilarNames(name, candidates, DefaultMaxSuggestions))
	if suffix == "" {
		sort.Strings(candidates)
		suffix = FormatAvailableNames(candidates, DefaultMaxListedNames)
	}

	return &RenderError{
		Kind:     RenderErrName,
		Message:  fmt.Sprintf("%s: %s%s", msg, name, suffix),
		Position: pos,
	}
}

// nameCandidates merges bound variable and function names
func (r *Renderer) nameCandidates() []string {
	var candidates []string
	if r.vars != nil {
		candidates = append(candidates, r.vars.Names()...)
	}
	if r.funcs != nil {
		candidates = append(candidates, r.funcs.List()...)
	}
	return candidates
}

// newUnknownOperatorError reports an operator the evaluator cannot
// dispatch; the parser should never produce one
func (r *Renderer) newUnknownOperatorError(op TokenType, pos Position) error {
	return &RenderError{
		Kind:     RenderErrType,
		Message:  fmt.Sprintf("%s: %s", ErrMsgUnknownOperator, op),
		Position: pos,
	}
}

// Renderer error messages
const (
	ErrMsgNilTemplate     = "nil template root"
	ErrMsgUnknownNode     = "unknown node type"
	ErrMsgUnknownExprNode = "unknown expression node type"
	ErrMsgUnknownOperator = "unknown operator"
	ErrMsgCondNotBool     = "condition must be a boolean"
	ErrMsgUndefinedVar    = "undefined variable"
	ErrMsgUndefinedFunc   = "undefined function"
)
