package sigil

// Error code constants for categorization
const (
	ErrCodeLex        = "SIGIL_LEX"
	ErrCodeParse      = "SIGIL_PARSE"
	ErrCodeType       = "SIGIL_TYPE"
	ErrCodeName       = "SIGIL_NAME"
	ErrCodeArity      = "SIGIL_ARITY"
	ErrCodeArithmetic = "SIGIL_ARITHMETIC"
	ErrCodeRender     = "SIGIL_RENDER"
	ErrCodeConfig     = "SIGIL_CONFIG"
	ErrCodeRegistry   = "SIGIL_REGISTRY"
	ErrCodeStore      = "SIGIL_STORE"
	ErrCodeBundle     = "SIGIL_BUNDLE"
)

// Error kind names recorded under MetaKeyKind. Compile-stage kinds are
// ErrorKindLex and ErrorKindParse; the rest are render-stage.
const (
	ErrorKindLex        = "LexError"
	ErrorKindParse      = "ParseError"
	ErrorKindType       = "TypeError"
	ErrorKindName       = "NameError"
	ErrorKindArity      = "ArityError"
	ErrorKindArithmetic = "ArithmeticError"
)

// Metadata key constants for error context
const (
	MetaKeyKind     = "kind"
	MetaKeyLine     = "line"
	MetaKeyColumn   = "column"
	MetaKeyOffset   = "offset"
	MetaKeyTemplate = "template"
	MetaKeyVersion  = "version"
	MetaKeyDriver   = "driver"
	MetaKeyLimit    = "limit"
	MetaKeyActual   = "actual"
	MetaKeyIssue    = "issue"
)

// Engine defaults
const (
	// DefaultMaxOutputSize is the default cap on rendered output in
	// bytes; 0 means no limit.
	DefaultMaxOutputSize = 0
)
