package internal

// TokenType represents the type of a lexical token
type TokenType string

// Token type constants
const (
	TokenTypeText       TokenType = "TEXT"
	TokenTypeOpenDelim  TokenType = "OPEN_DELIM"
	TokenTypeCloseDelim TokenType = "CLOSE_DELIM"
	TokenTypeIdentifier TokenType = "IDENT"
	TokenTypeNumber     TokenType = "NUMBER"
	TokenTypeString     TokenType = "STRING"
	TokenTypeBool       TokenType = "BOOL"
	TokenTypeIf         TokenType = "IF"
	TokenTypeElif       TokenType = "ELIF"
	TokenTypeElse       TokenType = "ELSE"
	TokenTypeEndIf      TokenType = "END_IF"
	TokenTypeAnd        TokenType = "AND"
	TokenTypeOr         TokenType = "OR"
	TokenTypeNot        TokenType = "NOT"
	TokenTypeEq         TokenType = "EQ"
	TokenTypeNeq        TokenType = "NEQ"
	TokenTypeLt         TokenType = "LT"
	TokenTypeLte        TokenType = "LTE"
	TokenTypeGt         TokenType = "GT"
	TokenTypeGte        TokenType = "GTE"
	TokenTypePlus       TokenType = "PLUS"
	TokenTypeMinus      TokenType = "MINUS"
	TokenTypeStar       TokenType = "STAR"
	TokenTypeSlash      TokenType = "SLASH"
	TokenTypePercent    TokenType = "PERCENT"
	TokenTypeLParen     TokenType = "LPAREN"
	TokenTypeRParen     TokenType = "RPAREN"
	TokenTypeComma      TokenType = "COMMA"
	TokenTypeEOF        TokenType = "EOF"
)

// Operator spellings as they appear in template source
const (
	OpEq      = "=="
	OpNeq     = "!="
	OpLt      = "<"
	OpLte     = "<="
	OpGt      = ">"
	OpGte     = ">="
	OpPlus    = "+"
	OpMinus   = "-"
	OpStar    = "*"
	OpSlash   = "/"
	OpPercent = "%"
	OpAnd     = "and"
	OpOr      = "or"
	OpNot     = "not"
)

// Keyword spellings
const (
	KeywordIf    = "if"
	KeywordElif  = "elif"
	KeywordElse  = "else"
	KeywordTrue  = "true"
	KeywordFalse = "false"
	KeywordAnd   = "and"
	KeywordOr    = "or"
	KeywordNot   = "not"
)

// EndTagName is the identifier that closes a conditional chain ({{/fi}})
const EndTagName = "fi"

// keywords maps reserved identifiers to their token types
var keywords = map[string]TokenType{
	KeywordIf:    TokenTypeIf,
	KeywordElif:  TokenTypeElif,
	KeywordElse:  TokenTypeElse,
	KeywordTrue:  TokenTypeBool,
	KeywordFalse: TokenTypeBool,
	KeywordAnd:   TokenTypeAnd,
	KeywordOr:    TokenTypeOr,
	KeywordNot:   TokenTypeNot,
}

// LookupIdent returns the keyword token type for ident, or TokenTypeIdentifier
// if ident is not a reserved word.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenTypeIdentifier
}

// NodeType identifies template-level AST node types
type NodeType int

// Node type constants
const (
	NodeTypeTemplate NodeType = iota
	NodeTypeText
	NodeTypeOutput
	NodeTypeConditional
)

// Node type string names for debugging
const (
	NodeTypeNameTemplate    = "TEMPLATE"
	NodeTypeNameText        = "TEXT"
	NodeTypeNameOutput      = "OUTPUT"
	NodeTypeNameConditional = "CONDITIONAL"
)

// String returns the string representation of the node type
func (n NodeType) String() string {
	switch n {
	case NodeTypeTemplate:
		return NodeTypeNameTemplate
	case NodeTypeText:
		return NodeTypeNameText
	case NodeTypeOutput:
		return NodeTypeNameOutput
	case NodeTypeConditional:
		return NodeTypeNameConditional
	default:
		return NodeTypeNameTemplate
	}
}

// Character constants
const (
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharBackslash   = '\\'
	CharSlash       = '/'
	CharUnderscore  = '_'
	CharDot         = '.'
	CharNewline     = '\n'
	CharSpace       = ' '
	CharTab         = '\t'
	CharCarriageRet = '\r'
)

// String constants for delimiter matching
const (
	StrOpenDelim  = "{{"
	StrCloseDelim = "}}"
)

// Boolean output spellings - the only spellings the renderer ever emits
const (
	StrTrue  = "true"
	StrFalse = "false"
)

// Log message constants
const (
	LogMsgLexerCreated    = "lexer created"
	LogMsgTokenizeStart   = "starting tokenization"
	LogMsgTokenizeEnd     = "tokenization complete"
	LogMsgParserCreated   = "parser created"
	LogMsgParseStart      = "starting parse"
	LogMsgParseEnd        = "parse complete"
	LogMsgRendererCreated = "renderer created"
	LogMsgRenderStart     = "starting render"
	LogMsgRenderEnd       = "render complete"
	LogMsgBranchSelected  = "conditional branch selected"
	LogMsgFuncInvoked     = "function invoked"
)

// Log field names
const (
	LogFieldSource  = "source_length"
	LogFieldTokens  = "token_count"
	LogFieldNodes   = "node_count"
	LogFieldOutput  = "output_length"
	LogFieldLine    = "line"
	LogFieldColumn  = "column"
	LogFieldFunc    = "function"
	LogFieldArgs    = "arg_count"
	LogFieldBranch  = "branch"
	LogFieldVarName = "variable"
)
