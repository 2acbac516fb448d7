package sigil

import (
	"go.uber.org/zap"

	"github.com/itsatony/go-sigil/internal"
)

// Engine is the main entry point for the sigil templating system.
// It compiles template source into reusable Templates.
type Engine struct {
	config *engineConfig
	logger *zap.Logger
}

// New creates a new sigil Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	if config.maxOutputSize < 0 {
		return nil, newConfigError(ErrMsgNegativeMaxOutput)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		config: config,
		logger: logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Compile lexes and parses a template source string into a Template.
// Compilation is all-or-nothing: the first lexical or syntactic
// problem fails the whole template, and nothing is ever evaluated at
// compile time. The returned Template can be rendered any number of
// times, concurrently.
func (e *Engine) Compile(source string) (*Template, error) {
	lexer := internal.NewLexer(source, e.logger)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, newCompileError(err)
	}

	parser := internal.NewParser(tokens, e.logger)
	root, err := parser.Parse()
	if err != nil {
		return nil, newCompileError(err)
	}

	return newTemplate(source, root, e.config, e.logger), nil
}

// Render is a convenience method that compiles and renders in one
// step. For templates rendered more than once, use Compile and reuse
// the Template.
func (e *Engine) Render(source string, env *Env) (string, error) {
	tmpl, err := e.Compile(source)
	if err != nil {
		return "", err
	}
	return tmpl.Render(env)
}
