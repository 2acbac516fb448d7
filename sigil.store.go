package sigil

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"sync"
	"time"

	"github.com/itsatony/go-cuserr"
)

// TemplateID is a unique identifier for a stored template version.
// Uses prefixed random format (e.g., "sig_6ByTSYmGzT2c").
type TemplateID string

// StoredTemplate represents a template with metadata kept in a store
// backend.
type StoredTemplate struct {
	// ID is the unique identifier for this template version.
	ID TemplateID `yaml:"id"`

	// Name is the template name used for lookups.
	Name string `yaml:"name"`

	// Source is the raw template source code.
	Source string `yaml:"source"`

	// Description is an optional human-readable summary.
	Description string `yaml:"description,omitempty"`

	// Version is the version number (1, 2, 3, ...).
	// Higher versions are newer.
	Version int `yaml:"version"`

	// Tags for categorization and querying.
	Tags []string `yaml:"tags,omitempty"`

	// Metadata contains arbitrary key-value pairs for user-defined data.
	Metadata map[string]string `yaml:"metadata,omitempty"`

	// CreatedAt is when this version was created.
	CreatedAt time.Time `yaml:"created_at"`

	// UpdatedAt is when this version was last modified.
	UpdatedAt time.Time `yaml:"updated_at"`
}

// StoreQuery defines filters for listing templates.
type StoreQuery struct {
	// NamePrefix filters to names starting with this prefix.
	NamePrefix string

	// Tags filters to templates having ALL specified tags.
	Tags []string

	// Limit is the maximum number of results (0 = no limit).
	Limit int

	// Offset is the number of results to skip (for pagination).
	Offset int

	// IncludeAllVersions includes all versions, not just the latest.
	IncludeAllVersions bool
}

// TemplateStore is the interface for pluggable template storage
// backends. Implementations must be safe for concurrent use.
//
// The interface follows patterns from database/sql for familiarity:
// context for cancellation, explicit error returns, Close for
// resource cleanup.
type TemplateStore interface {
	// Get retrieves the latest version of a template by name.
	// Returns a store not-found error if the template doesn't exist.
	Get(ctx context.Context, name string) (*StoredTemplate, error)

	// GetVersion retrieves a specific version of a template.
	GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error)

	// Save stores a template. If a template with the same name exists,
	// a new version is created. The template's ID, Version, CreatedAt,
	// and UpdatedAt fields are set by the store implementation.
	Save(ctx context.Context, tmpl *StoredTemplate) error

	// Delete removes all versions of a template by name.
	Delete(ctx context.Context, name string) error

	// DeleteVersion removes a specific version of a template.
	DeleteVersion(ctx context.Context, name string, version int) error

	// List returns templates matching the query, ordered by name,
	// then by version (descending).
	List(ctx context.Context, query *StoreQuery) ([]*StoredTemplate, error)

	// Exists checks if a template with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// ListVersions returns all version numbers for a template, newest
	// first. Returns an empty slice if the template doesn't exist.
	ListVersions(ctx context.Context, name string) ([]int, error)

	// Close releases any resources held by the store.
	// After Close, the store must not be used.
	Close() error
}

// StoreDriver is a factory for creating store instances.
// Drivers register themselves during init().
type StoreDriver interface {
	// Open creates a new store with the given connection string.
	// The format of the connection string is driver-specific.
	Open(connectionString string) (TemplateStore, error)
}

// Store driver name constants
const (
	StoreDriverNameMemory     = "memory"
	StoreDriverNameFilesystem = "filesystem"
	StoreDriverNamePostgres   = "postgres"
)

// Store driver registry
var (
	storeDriversMu sync.RWMutex
	storeDrivers   = make(map[string]StoreDriver)
)

// RegisterStoreDriver registers a store driver by name. This is
// typically called from a driver's init() function. Panics if a
// driver with the same name is already registered.
func RegisterStoreDriver(name string, driver StoreDriver) {
	storeDriversMu.Lock()
	defer storeDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStoreDriver)
	}
	if _, exists := storeDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	storeDrivers[name] = driver
}

// OpenStore opens a store using the named driver. The connection
// string format is driver-specific.
//
// Example:
//
//	store, err := sigil.OpenStore("memory", "")
//	store, err := sigil.OpenStore("filesystem", "/var/lib/sigil/templates")
func OpenStore(driverName, connectionString string) (TemplateStore, error) {
	storeDriversMu.RLock()
	driver, ok := storeDrivers[driverName]
	storeDriversMu.RUnlock()

	if !ok {
		return nil, NewStoreDriverNotFoundError(driverName)
	}

	return driver.Open(connectionString)
}

// ListStoreDrivers returns the names of all registered store drivers.
func ListStoreDrivers() []string {
	storeDriversMu.RLock()
	defer storeDriversMu.RUnlock()

	names := make([]string, 0, len(storeDrivers))
	for name := range storeDrivers {
		names = append(names, name)
	}
	return names
}

// Store error message constants
const (
	ErrMsgNilStoreDriver          = "store driver is nil"
	ErrMsgDriverAlreadyRegistered = "store driver already registered"
	ErrMsgStoreDriverNotFound     = "store driver not found"
	ErrMsgStoreClosed             = "store is closed"
	ErrMsgStoreTemplateNotFound   = "template not found in store"
	ErrMsgStoreVersionNotFound    = "template version not found in store"
	ErrMsgInvalidTemplateName     = "invalid template name"
	ErrMsgPathTraversalDetected   = "invalid template name: path traversal characters detected"
)

// Store error kind names recorded under MetaKeyKind
const (
	ErrorKindStoreNotFound = "StoreNotFoundError"
	ErrorKindStoreClosed   = "StoreClosedError"
	ErrorKindStore         = "StoreError"
)

// NewStoreNotFoundError creates an error for a template missing from
// the store.
func NewStoreNotFoundError(name string) error {
	return cuserr.NewNotFoundError(MetaKeyTemplate, ErrMsgStoreTemplateNotFound).
		WithMetadata(MetaKeyKind, ErrorKindStoreNotFound).
		WithMetadata(MetaKeyTemplate, name)
}

// NewStoreVersionNotFoundError creates an error for a missing template
// version.
func NewStoreVersionNotFoundError(name string, version int) error {
	return cuserr.NewNotFoundError(MetaKeyTemplate, ErrMsgStoreVersionNotFound).
		WithMetadata(MetaKeyKind, ErrorKindStoreNotFound).
		WithMetadata(MetaKeyTemplate, name).
		WithMetadata(MetaKeyVersion, strconv.Itoa(version))
}

// NewStoreClosedError creates an error for operations on a closed store.
func NewStoreClosedError() error {
	return cuserr.NewValidationError(ErrCodeStore, ErrMsgStoreClosed).
		WithMetadata(MetaKeyKind, ErrorKindStoreClosed)
}

// NewStoreDriverNotFoundError creates an error for a missing store driver.
func NewStoreDriverNotFoundError(name string) error {
	return cuserr.NewNotFoundError(MetaKeyDriver, ErrMsgStoreDriverNotFound).
		WithMetadata(MetaKeyKind, ErrorKindStore).
		WithMetadata(MetaKeyDriver, name)
}

// newStoreInvalidNameError creates an error for an unusable template name.
func newStoreInvalidNameError(msg, name string) error {
	return cuserr.NewValidationError(ErrCodeStore, msg).
		WithMetadata(MetaKeyKind, ErrorKindStore).
		WithMetadata(MetaKeyTemplate, name)
}

// newStoreError wraps a backend failure with store context.
func newStoreError(msg, name string, cause error) error {
	err := cuserr.WrapStdError(cause, ErrCodeStore, msg).
		WithMetadata(MetaKeyKind, ErrorKindStore)
	if name != "" {
		err = err.WithMetadata(MetaKeyTemplate, name)
	}
	return err
}

// IsStoreNotFound reports whether err means a template or version was
// not in the store.
func IsStoreNotFound(err error) bool {
	return errorKindIs(err, ErrorKindStoreNotFound)
}

// IsStoreClosed reports whether err means the store was already closed.
func IsStoreClosed(err error) bool {
	return errorKindIs(err, ErrorKindStoreClosed)
}

// generateTemplateID generates a unique template ID.
func generateTemplateID() TemplateID {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	id := base64.RawURLEncoding.EncodeToString(b)
	return TemplateID(TemplateIDPrefix + id)
}

// TemplateIDPrefix prefixes every generated template ID.
const TemplateIDPrefix = "sig_"

// copyStoredTemplate creates a deep copy of a StoredTemplate.
func copyStoredTemplate(tmpl *StoredTemplate) *StoredTemplate {
	if tmpl == nil {
		return nil
	}
	return &StoredTemplate{
		ID:          tmpl.ID,
		Name:        tmpl.Name,
		Source:      tmpl.Source,
		Description: tmpl.Description,
		Version:     tmpl.Version,
		Tags:        copyStringSlice(tmpl.Tags),
		Metadata:    copyStringMap(tmpl.Metadata),
		CreatedAt:   tmpl.CreatedAt,
		UpdatedAt:   tmpl.UpdatedAt,
	}
}

// copyStringMap creates a copy of a string map.
func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

// copyStringSlice creates a copy of a string slice.
func copyStringSlice(s []string) []string {
	if s == nil {
		return nil
	}
	result := make([]string, len(s))
	copy(result, s)
	return result
}
