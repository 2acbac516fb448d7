package sigil

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	logger          *zap.Logger
	maxOutputSize   int
	withoutBuiltins bool
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		logger:          nil,
		maxOutputSize:   DefaultMaxOutputSize,
		withoutBuiltins: false,
	}
}

// WithLogger sets the logger for the engine and everything it creates.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithMaxOutputSize caps rendered output at size bytes; renders
// producing more fail. Use 0 for no limit.
// Default: 0
func WithMaxOutputSize(size int) Option {
	return func(c *engineConfig) {
		c.maxOutputSize = size
	}
}

// WithoutBuiltins makes renders given a nil environment run without
// the builtin function set. Caller-built environments control their
// own function set through NewEnv and NewEmptyEnv.
func WithoutBuiltins() Option {
	return func(c *engineConfig) {
		c.withoutBuiltins = true
	}
}
