package sigil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of TemplateStore.
// It is safe for concurrent use and suitable for testing, development,
// and embedded use cases where persistence is not required.
//
// All templates are lost when the process exits.
type MemoryStore struct {
	mu sync.RWMutex

	// templates maps name -> versions (newest first)
	templates map[string][]*StoredTemplate

	closed bool
}

// memoryStoreDriver implements StoreDriver for in-memory stores.
type memoryStoreDriver struct{}

// Open creates a new in-memory store. The connection string is ignored.
func (d *memoryStoreDriver) Open(connectionString string) (TemplateStore, error) {
	return NewMemoryStore(), nil
}

func init() {
	RegisterStoreDriver(StoreDriverNameMemory, &memoryStoreDriver{})
}

// NewMemoryStore creates a new empty in-memory template store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string][]*StoredTemplate),
	}
}

// Get retrieves the latest version of a template by name.
func (s *MemoryStore) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions, ok := s.templates[name]
	if !ok || len(versions) == 0 {
		return nil, NewStoreNotFoundError(name)
	}

	return copyStoredTemplate(versions[0]), nil
}

// GetVersion retrieves a specific version of a template.
func (s *MemoryStore) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions, ok := s.templates[name]
	if !ok {
		return nil, NewStoreNotFoundError(name)
	}

	for _, tmpl := range versions {
		if tmpl.Version == version {
			return copyStoredTemplate(tmpl), nil
		}
	}

	return nil, NewStoreVersionNotFoundError(name, version)
}

// Save stores a template, creating a new version if the name exists.
// The input template's ID, Version, CreatedAt, and UpdatedAt fields
// are updated to reflect the stored version.
func (s *MemoryStore) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tmpl == nil || tmpl.Name == "" {
		name := ""
		if tmpl != nil {
			name = tmpl.Name
		}
		return newStoreInvalidNameError(ErrMsgInvalidTemplateName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	now := time.Now().UTC()
	versions := s.templates[tmpl.Name]

	nextVersion := 1
	if len(versions) > 0 {
		nextVersion = versions[0].Version + 1
	}

	tmpl.ID = generateTemplateID()
	tmpl.Version = nextVersion
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	stored := copyStoredTemplate(tmpl)
	s.templates[tmpl.Name] = append([]*StoredTemplate{stored}, versions...)

	return nil
}

// Delete removes all versions of a template by name.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	if _, ok := s.templates[name]; !ok {
		return NewStoreNotFoundError(name)
	}

	delete(s.templates, name)
	return nil
}

// DeleteVersion removes a specific version of a template.
func (s *MemoryStore) DeleteVersion(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	versions, ok := s.templates[name]
	if !ok {
		return NewStoreNotFoundError(name)
	}

	for i, tmpl := range versions {
		if tmpl.Version == version {
			remaining := append(versions[:i:i], versions[i+1:]...)
			if len(remaining) == 0 {
				delete(s.templates, name)
			} else {
				s.templates[name] = remaining
			}
			return nil
		}
	}

	return NewStoreVersionNotFoundError(name, version)
}

// List returns templates matching the query, ordered by name then by
// version descending.
func (s *MemoryStore) List(ctx context.Context, query *StoreQuery) ([]*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	if query == nil {
		query = &StoreQuery{}
	}

	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []*StoredTemplate
	for _, name := range names {
		versions := s.templates[name]
		if len(versions) == 0 {
			continue
		}

		candidates := versions[:1]
		if query.IncludeAllVersions {
			candidates = versions
		}

		for _, tmpl := range candidates {
			if matchesStoreQuery(tmpl, query) {
				results = append(results, copyStoredTemplate(tmpl))
			}
		}
	}

	return applyQueryWindow(results, query), nil
}

// Exists checks if a template with the given name exists.
func (s *MemoryStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStoreClosedError()
	}

	versions, ok := s.templates[name]
	return ok && len(versions) > 0, nil
}

// ListVersions returns all version numbers for a template, newest first.
func (s *MemoryStore) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions := s.templates[name]
	result := make([]int, 0, len(versions))
	for _, tmpl := range versions {
		result = append(result, tmpl.Version)
	}
	return result, nil
}

// Close marks the store as closed. Subsequent operations fail with a
// store-closed error.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.templates = nil
	return nil
}

// matchesStoreQuery reports whether a template satisfies the query's
// name and tag filters.
func matchesStoreQuery(tmpl *StoredTemplate, query *StoreQuery) bool {
	if query.NamePrefix != "" && !strings.HasPrefix(tmpl.Name, query.NamePrefix) {
		return false
	}
	for _, want := range query.Tags {
		if !hasTag(tmpl.Tags, want) {
			return false
		}
	}
	return true
}

// hasTag reports whether tags contains want.
func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

// applyQueryWindow applies offset and limit to a result set.
func applyQueryWindow(results []*StoredTemplate, query *StoreQuery) []*StoredTemplate {
	if query.Offset > 0 {
		if query.Offset >= len(results) {
			return []*StoredTemplate{}
		}
		results = results[query.Offset:]
	}
	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results
}
