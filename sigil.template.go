package sigil

import (
	"go.uber.org/zap"

	"github.com/itsatony/go-sigil/internal"
)

// Template represents a compiled template. The underlying tree is
// immutable, so a Template is safe for concurrent renders with
// different environments.
type Template struct {
	source string
	root   *internal.TemplateNode
	config *engineConfig
	logger *zap.Logger
}

// newTemplate creates a compiled template (internal use).
func newTemplate(source string, root *internal.TemplateNode, config *engineConfig, logger *zap.Logger) *Template {
	return &Template{
		source: source,
		root:   root,
		config: config,
		logger: logger,
	}
}

// Render evaluates the template against env and returns the output.
// The environment is never mutated. A nil env renders with an
// implicit environment that binds no variables; it carries the
// builtin functions unless the engine was built WithoutBuiltins.
func (t *Template) Render(env *Env) (string, error) {
	if env == nil {
		if t.config.withoutBuiltins {
			env = NewEmptyEnv()
		} else {
			env = NewEnv()
		}
	}

	renderer := internal.NewRenderer(env, env.registry(), t.logger)
	out, err := renderer.Render(t.root)
	if err != nil {
		return "", newRenderError(err)
	}

	if t.config.maxOutputSize > 0 && len(out) > t.config.maxOutputSize {
		return "", newOutputSizeError(len(out), t.config.maxOutputSize)
	}

	return out, nil
}

// Source returns the original template source string.
func (t *Template) Source() string {
	return t.source
}
