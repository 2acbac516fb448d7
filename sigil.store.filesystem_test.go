package sigil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemStore_NewFilesystemStore(t *testing.T) {
	t.Run("creates store with new directory", func(t *testing.T) {
		dir := t.TempDir()
		root := filepath.Join(dir, "templates")

		store, err := NewFilesystemStore(root)
		require.NoError(t, err)
		require.NotNil(t, store)
		defer store.Close()

		// Verify directory was created
		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("uses existing directory", func(t *testing.T) {
		dir := t.TempDir()

		store, err := NewFilesystemStore(dir)
		require.NoError(t, err)
		require.NotNil(t, store)
		defer store.Close()
	})

	t.Run("rejects empty base directory", func(t *testing.T) {
		_, err := NewFilesystemStore("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgStoreBaseDirEmpty)
	})
}

func TestFilesystemStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	t.Run("saves new template", func(t *testing.T) {
		tmpl := &StoredTemplate{
			Name:        "greeting",
			Source:      "Hello, {{ name }}!",
			Description: "standard greeting",
			Tags:        []string{"public"},
			Metadata:    map[string]string{"author": "test"},
		}

		err := store.Save(ctx, tmpl)
		require.NoError(t, err)

		// Verify generated fields
		assert.NotEmpty(t, tmpl.ID)
		assert.Equal(t, 1, tmpl.Version)
		assert.False(t, tmpl.CreatedAt.IsZero())

		// Verify file was created
		assert.FileExists(t, filepath.Join(dir, "greeting", "v1.yaml"))
	})

	t.Run("creates new version for existing template", func(t *testing.T) {
		tmpl1 := &StoredTemplate{Name: "versioned", Source: "v1"}
		err := store.Save(ctx, tmpl1)
		require.NoError(t, err)
		assert.Equal(t, 1, tmpl1.Version)

		tmpl2 := &StoredTemplate{Name: "versioned", Source: "v2"}
		err = store.Save(ctx, tmpl2)
		require.NoError(t, err)
		assert.Equal(t, 2, tmpl2.Version)

		assert.FileExists(t, filepath.Join(dir, "versioned", "v1.yaml"))
		assert.FileExists(t, filepath.Join(dir, "versioned", "v2.yaml"))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		tmpl := &StoredTemplate{Name: "", Source: "test"}
		err := store.Save(ctx, tmpl)
		require.Error(t, err)
	})

	t.Run("rejects invalid characters in name", func(t *testing.T) {
		for _, name := range []string{"invalid/name", `back\slash`, "col:on", "st*ar", "qu?mark", `"quoted"`, "an<gle>", "pi|pe"} {
			tmpl := &StoredTemplate{Name: name, Source: "test"}
			err := store.Save(ctx, tmpl)
			require.Error(t, err, "should reject name: %s", name)
		}
	})

	t.Run("rejects path traversal in name", func(t *testing.T) {
		traversalNames := []string{
			"..",
			"../etc/passwd",
			"foo..bar",
			"..test",
			"test..",
		}
		for _, name := range traversalNames {
			tmpl := &StoredTemplate{Name: name, Source: "test"}
			err := store.Save(ctx, tmpl)
			require.Error(t, err, "should reject path traversal: %s", name)
		}
	})
}

func TestFilesystemStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	saved := &StoredTemplate{
		Name:        "round-trip",
		Source:      "{{ if ok }}yes{{ else }}no{{/fi}}",
		Description: "conditional template",
		Tags:        []string{"test", "conditional"},
		Metadata:    map[string]string{"team": "platform"},
	}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Get(ctx, "round-trip")
	require.NoError(t, err)

	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, saved.Name, loaded.Name)
	assert.Equal(t, saved.Source, loaded.Source)
	assert.Equal(t, saved.Description, loaded.Description)
	assert.Equal(t, saved.Version, loaded.Version)
	assert.Equal(t, saved.Tags, loaded.Tags)
	assert.Equal(t, saved.Metadata, loaded.Metadata)
	assert.WithinDuration(t, saved.CreatedAt, loaded.CreatedAt, time.Second)
}

func TestFilesystemStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, &StoredTemplate{Name: "durable", Source: "v1"}))
	require.NoError(t, first.Save(ctx, &StoredTemplate{Name: "durable", Source: "v2"}))
	require.NoError(t, first.Close())

	second, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer second.Close()

	tmpl, err := second.Get(ctx, "durable")
	require.NoError(t, err)
	assert.Equal(t, 2, tmpl.Version)
	assert.Equal(t, "v2", tmpl.Source)

	versions, err := second.ListVersions(ctx, "durable")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, versions)
}

func TestFilesystemStore_Get(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_ = store.Save(ctx, &StoredTemplate{Name: "test", Source: "version 1"})
	_ = store.Save(ctx, &StoredTemplate{Name: "test", Source: "version 2"})

	t.Run("returns latest version", func(t *testing.T) {
		tmpl, err := store.Get(ctx, "test")
		require.NoError(t, err)
		assert.Equal(t, 2, tmpl.Version)
		assert.Equal(t, "version 2", tmpl.Source)
	})

	t.Run("returns not-found error for nonexistent template", func(t *testing.T) {
		_, err := store.Get(ctx, "nonexistent")
		require.Error(t, err)
		assert.True(t, IsStoreNotFound(err))
	})

	t.Run("returns error on closed store", func(t *testing.T) {
		s, err := NewFilesystemStore(t.TempDir())
		require.NoError(t, err)
		_ = s.Close()
		_, err = s.Get(ctx, "test")
		require.Error(t, err)
		assert.True(t, IsStoreClosed(err))
	})
}

func TestFilesystemStore_GetVersion(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_ = store.Save(ctx, &StoredTemplate{Name: "versioned", Source: "v1"})
	_ = store.Save(ctx, &StoredTemplate{Name: "versioned", Source: "v2"})

	t.Run("returns specific version", func(t *testing.T) {
		tmpl, err := store.GetVersion(ctx, "versioned", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, tmpl.Version)
		assert.Equal(t, "v1", tmpl.Source)
	})

	t.Run("returns not-found error for nonexistent version", func(t *testing.T) {
		_, err := store.GetVersion(ctx, "versioned", 99)
		require.Error(t, err)
		assert.True(t, IsStoreNotFound(err))
	})
}

func TestFilesystemStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_ = store.Save(ctx, &StoredTemplate{Name: "delete-me", Source: "v1"})
	_ = store.Save(ctx, &StoredTemplate{Name: "delete-me", Source: "v2"})

	t.Run("deletes all versions and the directory", func(t *testing.T) {
		err := store.Delete(ctx, "delete-me")
		require.NoError(t, err)

		exists, _ := store.Exists(ctx, "delete-me")
		assert.False(t, exists)
		assert.NoDirExists(t, filepath.Join(dir, "delete-me"))
	})

	t.Run("returns error for nonexistent template", func(t *testing.T) {
		err := store.Delete(ctx, "nonexistent")
		require.Error(t, err)
		assert.True(t, IsStoreNotFound(err))
	})
}

func TestFilesystemStore_DeleteVersion(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_ = store.Save(ctx, &StoredTemplate{Name: "partial", Source: "v1"})
	_ = store.Save(ctx, &StoredTemplate{Name: "partial", Source: "v2"})
	_ = store.Save(ctx, &StoredTemplate{Name: "partial", Source: "v3"})

	t.Run("deletes specific version file", func(t *testing.T) {
		err := store.DeleteVersion(ctx, "partial", 2)
		require.NoError(t, err)

		assert.NoFileExists(t, filepath.Join(dir, "partial", "v2.yaml"))

		versions, _ := store.ListVersions(ctx, "partial")
		assert.Equal(t, []int{3, 1}, versions)
	})

	t.Run("removes directory when last version deleted", func(t *testing.T) {
		s, err := NewFilesystemStore(t.TempDir())
		require.NoError(t, err)
		defer s.Close()

		_ = s.Save(ctx, &StoredTemplate{Name: "single", Source: "only"})
		require.NoError(t, s.DeleteVersion(ctx, "single", 1))

		exists, _ := s.Exists(ctx, "single")
		assert.False(t, exists)
	})

	t.Run("returns error for nonexistent version", func(t *testing.T) {
		err := store.DeleteVersion(ctx, "partial", 99)
		require.Error(t, err)
		assert.True(t, IsStoreNotFound(err))
	})
}

func TestFilesystemStore_List(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_ = store.Save(ctx, &StoredTemplate{Name: "alpha", Source: "a", Tags: []string{"x"}})
	_ = store.Save(ctx, &StoredTemplate{Name: "alpha", Source: "a2", Tags: []string{"x"}})
	_ = store.Save(ctx, &StoredTemplate{Name: "beta", Source: "b", Tags: []string{"x", "y"}})
	_ = store.Save(ctx, &StoredTemplate{Name: "gamma", Source: "g", Tags: []string{"y"}})

	t.Run("lists latest versions sorted by name", func(t *testing.T) {
		results, err := store.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "alpha", results[0].Name)
		assert.Equal(t, 2, results[0].Version)
		assert.Equal(t, "beta", results[1].Name)
		assert.Equal(t, "gamma", results[2].Name)
	})

	t.Run("filters by name prefix", func(t *testing.T) {
		results, err := store.List(ctx, &StoreQuery{NamePrefix: "be"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "beta", results[0].Name)
	})

	t.Run("filters by tags", func(t *testing.T) {
		results, err := store.List(ctx, &StoreQuery{Tags: []string{"x", "y"}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "beta", results[0].Name)
	})

	t.Run("includes all versions when requested", func(t *testing.T) {
		results, err := store.List(ctx, &StoreQuery{NamePrefix: "alpha", IncludeAllVersions: true})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, 2, results[0].Version)
		assert.Equal(t, 1, results[1].Version)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		results, err := store.List(ctx, &StoreQuery{Offset: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "beta", results[0].Name)
	})
}

func TestFilesystemStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	_ = store.Save(ctx, &StoredTemplate{Name: "real", Source: "content"})

	// Stray files in the template directory are not version files
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))

	versions, err := store.ListVersions(ctx, "real")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versions)

	results, err := store.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFilesystemStore_OpenViaRegistry(t *testing.T) {
	drivers := ListStoreDrivers()
	assert.Contains(t, drivers, StoreDriverNameFilesystem)

	dir := t.TempDir()
	store, err := OpenStore(StoreDriverNameFilesystem, dir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &StoredTemplate{Name: "via-driver", Source: "ok"}))

	tmpl, err := store.Get(ctx, "via-driver")
	require.NoError(t, err)
	assert.Equal(t, "ok", tmpl.Source)
}

func TestParseVersionFileName(t *testing.T) {
	tests := []struct {
		fileName string
		version  int
		ok       bool
	}{
		{"v1.yaml", 1, true},
		{"v42.yaml", 42, true},
		{"v0.yaml", 0, false},
		{"v-1.yaml", 0, false},
		{"v1.json", 0, false},
		{"1.yaml", 0, false},
		{"vx.yaml", 0, false},
		{"notes.txt", 0, false},
	}

	for _, tt := range tests {
		version, ok := parseVersionFileName(tt.fileName)
		assert.Equal(t, tt.ok, ok, "file %q", tt.fileName)
		if tt.ok {
			assert.Equal(t, tt.version, version, "file %q", tt.fileName)
		}
	}
}
