package sigil

import (
	"context"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"gopkg.in/yaml.v3"
)

// BundleFormatVersion is the current bundle file format version.
const BundleFormatVersion = 1

// Bundle error message constants
const (
	ErrMsgNilBundle                = "bundle is nil"
	ErrMsgBundleDecodeFailed       = "bundle decoding failed"
	ErrMsgBundleEncodeFailed       = "bundle encoding failed"
	ErrMsgBundleUnsupportedVersion = "unsupported bundle format version"
	ErrMsgBundleTemplateUnnamed    = "bundle template missing a name"
	ErrMsgBundleDuplicateName      = "duplicate template name in bundle"
	ErrMsgBundleInvalidTemplate    = "bundle template failed validation"
)

// ErrorKindBundle is recorded under MetaKeyKind on bundle errors.
const ErrorKindBundle = "BundleError"

// Bundle is a portable set of templates in a single YAML document,
// used to ship template sets between stores and environments.
//
// Example bundle file:
//
//	version: 1
//	name: onboarding
//	templates:
//	  - name: greeting
//	    source: "Hello {{ name }}!"
//	    tags: [email]
type Bundle struct {
	// Version is the bundle format version.
	Version int `yaml:"version"`

	// Name is an optional bundle name.
	Name string `yaml:"name,omitempty"`

	// Description is an optional human-readable summary.
	Description string `yaml:"description,omitempty"`

	// Templates are the templates carried by this bundle.
	Templates []BundleTemplate `yaml:"templates"`
}

// BundleTemplate is a single template inside a bundle.
type BundleTemplate struct {
	// Name is the template name used for lookups after import.
	Name string `yaml:"name"`

	// Source is the raw template source code.
	Source string `yaml:"source"`

	// Description is an optional human-readable summary.
	Description string `yaml:"description,omitempty"`

	// Tags for categorization and querying.
	Tags []string `yaml:"tags,omitempty"`

	// Metadata contains arbitrary key-value pairs carried into the
	// stored template.
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// ParseBundle decodes a YAML bundle document and checks its structure:
// a supported format version, a name on every template, and no
// duplicate names. Template sources are not compiled here; ImportBundle
// does that.
func ParseBundle(data []byte) (*Bundle, error) {
	var bundle Bundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, newBundleError(ErrMsgBundleDecodeFailed, err)
	}

	// A missing version means the current format.
	if bundle.Version == 0 {
		bundle.Version = BundleFormatVersion
	}
	if bundle.Version > BundleFormatVersion {
		return nil, newBundleVersionError(bundle.Version)
	}

	seen := make(map[string]bool, len(bundle.Templates))
	for _, tmpl := range bundle.Templates {
		if tmpl.Name == "" {
			return nil, newBundleTemplateError(ErrMsgBundleTemplateUnnamed, tmpl.Name)
		}
		if seen[tmpl.Name] {
			return nil, newBundleTemplateError(ErrMsgBundleDuplicateName, tmpl.Name)
		}
		seen[tmpl.Name] = true
	}

	return &bundle, nil
}

// Marshal encodes the bundle as a YAML document.
func (b *Bundle) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(b)
	if err != nil {
		return nil, newBundleError(ErrMsgBundleEncodeFailed, err)
	}
	return data, nil
}

// ImportBundle saves every template in the bundle to the store. All
// sources are compiled for validation before anything is saved, so a
// bundle containing an invalid template imports nothing. Returns the
// number of templates saved; a store failure mid-import returns the
// count saved up to that point along with the error.
func ImportBundle(ctx context.Context, store TemplateStore, bundle *Bundle) (int, error) {
	if store == nil {
		return 0, cuserr.NewValidationError(ErrCodeBundle, ErrMsgNilStore).
			WithMetadata(MetaKeyKind, ErrorKindBundle)
	}
	if bundle == nil {
		return 0, cuserr.NewValidationError(ErrCodeBundle, ErrMsgNilBundle).
			WithMetadata(MetaKeyKind, ErrorKindBundle)
	}
	if bundle.Version > BundleFormatVersion {
		return 0, newBundleVersionError(bundle.Version)
	}

	engine := MustNew()

	seen := make(map[string]bool, len(bundle.Templates))
	for _, tmpl := range bundle.Templates {
		if tmpl.Name == "" {
			return 0, newBundleTemplateError(ErrMsgBundleTemplateUnnamed, tmpl.Name)
		}
		if seen[tmpl.Name] {
			return 0, newBundleTemplateError(ErrMsgBundleDuplicateName, tmpl.Name)
		}
		seen[tmpl.Name] = true

		result, err := engine.Validate(tmpl.Source)
		if err != nil {
			return 0, err
		}
		if !result.Valid {
			err := newBundleTemplateError(ErrMsgBundleInvalidTemplate, tmpl.Name)
			if len(result.Errors) > 0 {
				err = err.WithMetadata(MetaKeyIssue, result.Errors[0].Message)
			}
			return 0, err
		}
	}

	imported := 0
	for _, tmpl := range bundle.Templates {
		stored := &StoredTemplate{
			Name:        tmpl.Name,
			Source:      tmpl.Source,
			Description: tmpl.Description,
			Tags:        copyStringSlice(tmpl.Tags),
			Metadata:    copyStringMap(tmpl.Metadata),
		}
		if err := store.Save(ctx, stored); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

// ExportBundle collects the latest versions of templates matching the
// query into a bundle.
func ExportBundle(ctx context.Context, store TemplateStore, query *StoreQuery) (*Bundle, error) {
	if store == nil {
		return nil, cuserr.NewValidationError(ErrCodeBundle, ErrMsgNilStore).
			WithMetadata(MetaKeyKind, ErrorKindBundle)
	}

	templates, err := store.List(ctx, query)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{
		Version:   BundleFormatVersion,
		Templates: make([]BundleTemplate, 0, len(templates)),
	}
	for _, stored := range templates {
		bundle.Templates = append(bundle.Templates, BundleTemplate{
			Name:        stored.Name,
			Source:      stored.Source,
			Description: stored.Description,
			Tags:        copyStringSlice(stored.Tags),
			Metadata:    copyStringMap(stored.Metadata),
		})
	}

	return bundle, nil
}

// newBundleError wraps a decode/encode failure with bundle context.
func newBundleError(msg string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeBundle, msg).
		WithMetadata(MetaKeyKind, ErrorKindBundle)
}

// newBundleVersionError reports an unsupported bundle format version.
func newBundleVersionError(version int) error {
	return cuserr.NewValidationError(ErrCodeBundle, ErrMsgBundleUnsupportedVersion).
		WithMetadata(MetaKeyKind, ErrorKindBundle).
		WithMetadata(MetaKeyVersion, strconv.Itoa(version))
}

// newBundleTemplateError reports a structural problem with one bundle
// template.
func newBundleTemplateError(msg, name string) *cuserr.CustomError {
	return cuserr.NewValidationError(ErrCodeBundle, msg).
		WithMetadata(MetaKeyKind, ErrorKindBundle).
		WithMetadata(MetaKeyTemplate, name)
}
