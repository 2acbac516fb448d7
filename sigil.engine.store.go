package sigil

import (
	"context"
	"sync"

	"github.com/itsatony/go-cuserr"
)

// StoreEngine combines a template store with the rendering engine.
// It provides a unified API for saving, compiling, and rendering
// templates from any store backend, with a version-aware cache of
// compiled templates.
type StoreEngine struct {
	engine *Engine
	store  TemplateStore

	// Compiled template cache
	mu           sync.RWMutex
	compiled     map[string]*compiledCacheEntry
	cacheEnabled bool
}

// compiledCacheEntry caches a compiled template with its version.
type compiledCacheEntry struct {
	template *Template
	version  int
}

// StoreEngineConfig configures the StoreEngine.
type StoreEngineConfig struct {
	// Store is the template store backend (required).
	Store TemplateStore

	// Engine is the rendering engine to use.
	// If nil, a new engine with default options is created.
	Engine *Engine

	// DisableCompiledCache disables caching of compiled templates.
	// By default (false), templates are cached and only recompiled
	// when their stored version changes.
	DisableCompiledCache bool
}

// NewStoreEngine creates a new StoreEngine with the given configuration.
func NewStoreEngine(config StoreEngineConfig) (*StoreEngine, error) {
	if config.Store == nil {
		return nil, cuserr.NewValidationError(ErrCodeStore, ErrMsgNilStore).
			WithMetadata(MetaKeyKind, ErrorKindStore)
	}

	engine := config.Engine
	if engine == nil {
		var err error
		engine, err = New()
		if err != nil {
			return nil, err
		}
	}

	return &StoreEngine{
		engine:       engine,
		store:        config.Store,
		compiled:     make(map[string]*compiledCacheEntry),
		cacheEnabled: !config.DisableCompiledCache,
	}, nil
}

// MustNewStoreEngine creates a new StoreEngine, panicking on error.
func MustNewStoreEngine(config StoreEngineConfig) *StoreEngine {
	se, err := NewStoreEngine(config)
	if err != nil {
		panic(err)
	}
	return se
}

// RenderStored loads, compiles, and renders the latest version of a
// stored template against the given environment. This is the primary
// method for rendering templates from a store.
func (se *StoreEngine) RenderStored(ctx context.Context, name string, env *Env) (string, error) {
	tmpl, err := se.CompileStored(ctx, name)
	if err != nil {
		return "", err
	}

	return tmpl.Render(env)
}

// RenderStoredVersion renders a specific version of a stored template.
// Version-specific renders bypass the compiled cache.
func (se *StoreEngine) RenderStoredVersion(ctx context.Context, name string, version int, env *Env) (string, error) {
	stored, err := se.store.GetVersion(ctx, name, version)
	if err != nil {
		return "", err
	}

	tmpl, err := se.engine.Compile(stored.Source)
	if err != nil {
		return "", err
	}

	return tmpl.Render(env)
}

// CompileStored loads the latest version of a stored template and
// compiles it. Compiled templates are cached per name and reused until
// the stored version changes.
func (se *StoreEngine) CompileStored(ctx context.Context, name string) (*Template, error) {
	stored, err := se.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if se.cacheEnabled {
		se.mu.RLock()
		entry, ok := se.compiled[name]
		se.mu.RUnlock()

		if ok && entry.version == stored.Version {
			return entry.template, nil
		}
	}

	tmpl, err := se.engine.Compile(stored.Source)
	if err != nil {
		return nil, err
	}

	if se.cacheEnabled {
		se.mu.Lock()
		if se.compiled != nil {
			se.compiled[name] = &compiledCacheEntry{
				template: tmpl,
				version:  stored.Version,
			}
		}
		se.mu.Unlock()
	}

	return tmpl, nil
}

// ValidateStored validates the latest version of a stored template
// without rendering it.
func (se *StoreEngine) ValidateStored(ctx context.Context, name string) (*ValidationResult, error) {
	stored, err := se.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	return se.engine.Validate(stored.Source)
}

// ValidateStoredVersion validates a specific version of a stored
// template.
func (se *StoreEngine) ValidateStoredVersion(ctx context.Context, name string, version int) (*ValidationResult, error) {
	stored, err := se.store.GetVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}

	return se.engine.Validate(stored.Source)
}

// SaveTemplate stores a new template or creates a new version.
// The template source is compiled for validation before saving, so a
// template that fails to compile is never stored.
func (se *StoreEngine) SaveTemplate(ctx context.Context, tmpl *StoredTemplate) error {
	if tmpl == nil {
		return newStoreInvalidNameError(ErrMsgInvalidTemplateName, "")
	}

	result, err := se.engine.Validate(tmpl.Source)
	if err != nil {
		return err
	}
	if !result.Valid {
		err := cuserr.NewValidationError(ErrCodeStore, ErrMsgInvalidTemplateSource).
			WithMetadata(MetaKeyKind, ErrorKindStore).
			WithMetadata(MetaKeyTemplate, tmpl.Name)
		if len(result.Errors) > 0 {
			err = err.WithMetadata(MetaKeyIssue, result.Errors[0].Message)
		}
		return err
	}

	if err := se.store.Save(ctx, tmpl); err != nil {
		return err
	}

	se.invalidateCompiled(tmpl.Name)
	return nil
}

// SaveTemplateUnchecked stores a template without validating its
// source. Use with caution - invalid templates will fail when rendered.
func (se *StoreEngine) SaveTemplateUnchecked(ctx context.Context, tmpl *StoredTemplate) error {
	if tmpl == nil {
		return newStoreInvalidNameError(ErrMsgInvalidTemplateName, "")
	}

	if err := se.store.Save(ctx, tmpl); err != nil {
		return err
	}

	se.invalidateCompiled(tmpl.Name)
	return nil
}

// DeleteTemplate removes all versions of a template from the store.
func (se *StoreEngine) DeleteTemplate(ctx context.Context, name string) error {
	if err := se.store.Delete(ctx, name); err != nil {
		return err
	}

	se.invalidateCompiled(name)
	return nil
}

// DeleteTemplateVersion removes a specific version of a template.
func (se *StoreEngine) DeleteTemplateVersion(ctx context.Context, name string, version int) error {
	if err := se.store.DeleteVersion(ctx, name, version); err != nil {
		return err
	}

	se.invalidateCompiled(name)
	return nil
}

// GetTemplate retrieves the latest version of a stored template.
func (se *StoreEngine) GetTemplate(ctx context.Context, name string) (*StoredTemplate, error) {
	return se.store.Get(ctx, name)
}

// GetTemplateVersion retrieves a specific version of a stored template.
func (se *StoreEngine) GetTemplateVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	return se.store.GetVersion(ctx, name, version)
}

// ListTemplates returns stored templates matching the query.
func (se *StoreEngine) ListTemplates(ctx context.Context, query *StoreQuery) ([]*StoredTemplate, error) {
	return se.store.List(ctx, query)
}

// TemplateExists checks if a template exists in the store.
func (se *StoreEngine) TemplateExists(ctx context.Context, name string) (bool, error) {
	return se.store.Exists(ctx, name)
}

// ListTemplateVersions returns all version numbers for a template.
func (se *StoreEngine) ListTemplateVersions(ctx context.Context, name string) ([]int, error) {
	return se.store.ListVersions(ctx, name)
}

// Engine returns the underlying rendering engine.
func (se *StoreEngine) Engine() *Engine {
	return se.engine
}

// Store returns the underlying store backend.
func (se *StoreEngine) Store() TemplateStore {
	return se.store
}

// Close closes the store engine and the underlying store.
func (se *StoreEngine) Close() error {
	se.mu.Lock()
	se.compiled = nil
	se.mu.Unlock()

	return se.store.Close()
}

// ClearCompiledCache clears the compiled template cache.
func (se *StoreEngine) ClearCompiledCache() {
	se.mu.Lock()
	se.compiled = make(map[string]*compiledCacheEntry)
	se.mu.Unlock()
}

// CompiledCacheStats contains compiled cache statistics.
type CompiledCacheStats struct {
	Entries int
	Enabled bool
}

// CacheStats returns statistics about the compiled template cache.
func (se *StoreEngine) CacheStats() CompiledCacheStats {
	se.mu.RLock()
	defer se.mu.RUnlock()

	return CompiledCacheStats{
		Entries: len(se.compiled),
		Enabled: se.cacheEnabled,
	}
}

// invalidateCompiled removes a template from the compiled cache.
func (se *StoreEngine) invalidateCompiled(name string) {
	se.mu.Lock()
	delete(se.compiled, name)
	se.mu.Unlock()
}

// Store engine error messages
const (
	ErrMsgNilStore              = "store is nil"
	ErrMsgInvalidTemplateSource = "template source is invalid"
)
