package sigil

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Filesystem store constants
const (
	fsDirPerm  = 0o755
	fsFilePerm = 0o644

	fsVersionFilePrefix = "v"
	fsVersionFileExt    = ".yaml"

	// fsInvalidNameChars are rejected in template names because they
	// are path separators or reserved on common filesystems.
	fsInvalidNameChars = `/\:*?"<>|`
)

// Filesystem store error message constants
const (
	ErrMsgStoreBaseDirEmpty = "store base directory must not be empty"
	ErrMsgStoreDirCreate    = "failed to create store directory"
	ErrMsgStoreReadFailed   = "failed to read template from store"
	ErrMsgStoreWriteFailed  = "failed to write template to store"
	ErrMsgStoreDeleteFailed = "failed to delete template from store"
	ErrMsgStoreEncodeFailed = "failed to encode template"
	ErrMsgStoreDecodeFailed = "failed to decode template"
)

// FilesystemStore is a TemplateStore that persists templates as YAML
// files on disk. Each template gets a directory under the base
// directory, with one file per version (v1.yaml, v2.yaml, ...).
//
// Layout:
//
//	<baseDir>/
//	  greeting/
//	    v1.yaml
//	    v2.yaml
//	  report-header/
//	    v1.yaml
//
// The store is safe for concurrent use within a single process. It
// does not coordinate between processes.
type FilesystemStore struct {
	mu      sync.RWMutex
	baseDir string
	closed  bool
}

// filesystemStoreDriver implements StoreDriver for filesystem stores.
type filesystemStoreDriver struct{}

// Open creates a filesystem store rooted at the connection string path.
func (d *filesystemStoreDriver) Open(connectionString string) (TemplateStore, error) {
	return NewFilesystemStore(connectionString)
}

func init() {
	RegisterStoreDriver(StoreDriverNameFilesystem, &filesystemStoreDriver{})
}

// NewFilesystemStore creates a filesystem-backed template store rooted
// at baseDir. The directory is created if it does not exist.
func NewFilesystemStore(baseDir string) (*FilesystemStore, error) {
	if baseDir == "" {
		return nil, newStoreInvalidNameError(ErrMsgStoreBaseDirEmpty, baseDir)
	}
	if err := os.MkdirAll(baseDir, fsDirPerm); err != nil {
		return nil, newStoreError(ErrMsgStoreDirCreate, "", err)
	}
	return &FilesystemStore{baseDir: baseDir}, nil
}

// validateTemplateNameForFilesystem ensures a template name is safe to
// use as a directory name.
func validateTemplateNameForFilesystem(name string) error {
	if name == "" {
		return newStoreInvalidNameError(ErrMsgInvalidTemplateName, name)
	}
	if name == "." || strings.Contains(name, "..") {
		return newStoreInvalidNameError(ErrMsgPathTraversalDetected, name)
	}
	if strings.ContainsAny(name, fsInvalidNameChars) {
		return newStoreInvalidNameError(ErrMsgInvalidTemplateName, name)
	}
	return nil
}

// templateDir returns the directory holding a template's versions.
func (s *FilesystemStore) templateDir(name string) string {
	return filepath.Join(s.baseDir, name)
}

// versionFile returns the path of a specific version file.
func (s *FilesystemStore) versionFile(name string, version int) string {
	return filepath.Join(s.templateDir(name), fsVersionFileName(version))
}

// fsVersionFileName formats a version file name (e.g., "v3.yaml").
func fsVersionFileName(version int) string {
	return fsVersionFilePrefix + strconv.Itoa(version) + fsVersionFileExt
}

// parseVersionFileName extracts the version number from a file name
// like "v3.yaml". Returns false for files that are not version files.
func parseVersionFileName(fileName string) (int, bool) {
	if !strings.HasPrefix(fileName, fsVersionFilePrefix) || !strings.HasSuffix(fileName, fsVersionFileExt) {
		return 0, false
	}
	numPart := strings.TrimSuffix(strings.TrimPrefix(fileName, fsVersionFilePrefix), fsVersionFileExt)
	version, err := strconv.Atoi(numPart)
	if err != nil || version < 1 {
		return 0, false
	}
	return version, true
}

// listVersionNumbers returns a template's version numbers, newest
// first. Returns an empty slice if the template directory is missing.
func (s *FilesystemStore) listVersionNumbers(name string) ([]int, error) {
	entries, err := os.ReadDir(s.templateDir(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, newStoreError(ErrMsgStoreReadFailed, name, err)
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if version, ok := parseVersionFileName(entry.Name()); ok {
			versions = append(versions, version)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// readVersion loads and decodes a single version file.
func (s *FilesystemStore) readVersion(name string, version int) (*StoredTemplate, error) {
	data, err := os.ReadFile(s.versionFile(name, version))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStoreVersionNotFoundError(name, version)
		}
		return nil, newStoreError(ErrMsgStoreReadFailed, name, err)
	}

	var tmpl StoredTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, newStoreError(ErrMsgStoreDecodeFailed, name, err)
	}
	return &tmpl, nil
}

// Get retrieves the latest version of a template by name.
func (s *FilesystemStore) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions, err := s.listVersionNumbers(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewStoreNotFoundError(name)
	}

	return s.readVersion(name, versions[0])
}

// GetVersion retrieves a specific version of a template.
func (s *FilesystemStore) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	return s.readVersion(name, version)
}

// Save stores a template, creating a new version file. The input
// template's ID, Version, CreatedAt, and UpdatedAt fields are updated
// to reflect the stored version.
func (s *FilesystemStore) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tmpl == nil {
		return newStoreInvalidNameError(ErrMsgInvalidTemplateName, "")
	}
	if err := validateTemplateNameForFilesystem(tmpl.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	dir := s.templateDir(tmpl.Name)
	if err := os.MkdirAll(dir, fsDirPerm); err != nil {
		return newStoreError(ErrMsgStoreDirCreate, tmpl.Name, err)
	}

	versions, err := s.listVersionNumbers(tmpl.Name)
	if err != nil {
		return err
	}

	nextVersion := 1
	if len(versions) > 0 {
		nextVersion = versions[0] + 1
	}

	now := time.Now().UTC()
	tmpl.ID = generateTemplateID()
	tmpl.Version = nextVersion
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	data, err := yaml.Marshal(tmpl)
	if err != nil {
		return newStoreError(ErrMsgStoreEncodeFailed, tmpl.Name, err)
	}

	path := s.versionFile(tmpl.Name, nextVersion)
	if err := os.WriteFile(path, data, fsFilePerm); err != nil {
		return newStoreError(ErrMsgStoreWriteFailed, tmpl.Name, err)
	}

	return nil
}

// Delete removes all versions of a template by name.
func (s *FilesystemStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	dir := s.templateDir(name)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return NewStoreNotFoundError(name)
		}
		return newStoreError(ErrMsgStoreReadFailed, name, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return newStoreError(ErrMsgStoreDeleteFailed, name, err)
	}
	return nil
}

// DeleteVersion removes a specific version of a template. The
// template directory is removed once its last version is deleted.
func (s *FilesystemStore) DeleteVersion(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStoreClosedError()
	}

	path := s.versionFile(name, version)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return NewStoreVersionNotFoundError(name, version)
		}
		return newStoreError(ErrMsgStoreReadFailed, name, err)
	}

	if err := os.Remove(path); err != nil {
		return newStoreError(ErrMsgStoreDeleteFailed, name, err)
	}

	remaining, err := s.listVersionNumbers(name)
	if err == nil && len(remaining) == 0 {
		_ = os.Remove(s.templateDir(name))
	}
	return nil
}

// List returns templates matching the query, ordered by name then by
// version descending.
func (s *FilesystemStore) List(ctx context.Context, query *StoreQuery) ([]*StoredTemplate, error) {
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

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, newStoreError(ErrMsgStoreReadFailed, "", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var results []*StoredTemplate
	for _, name := range names {
		versions, err := s.listVersionNumbers(name)
		if err != nil {
			return nil, err
		}
		if len(versions) == 0 {
			continue
		}

		candidates := versions[:1]
		if query.IncludeAllVersions {
			candidates = versions
		}

		for _, version := range candidates {
			tmpl, err := s.readVersion(name, version)
			if err != nil {
				return nil, err
			}
			if matchesStoreQuery(tmpl, query) {
				results = append(results, tmpl)
			}
		}
	}

	return applyQueryWindow(results, query), nil
}

// Exists checks if a template with the given name exists.
func (s *FilesystemStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStoreClosedError()
	}

	versions, err := s.listVersionNumbers(name)
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

// ListVersions returns all version numbers for a template, newest first.
func (s *FilesystemStore) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	versions, err := s.listVersionNumbers(name)
	if err != nil {
		return nil, err
	}
	result := make([]int, 0, len(versions))
	result = append(result, versions...)
	return result, nil
}

// Close marks the store as closed. Files on disk are left untouched.
func (s *FilesystemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
