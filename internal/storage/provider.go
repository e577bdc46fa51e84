// Package storage defines the presentation library file-system abstraction.
package storage

import "github.com/starford/lectern/internal/models"

// Manifest and template locations inside the library.
const (
	ManifestFile = "manifest.json"
	TemplateDir  = "_templates"
)

// Provider is the interface for library file operations. A
// presentation is a folder directly under the library root that
// contains an index.html.
type Provider interface {
	// ListPresentations returns the ids (folder names) of every
	// discovered presentation, sorted.
	ListPresentations() ([]string, error)
	// Discover lists the .html assets of a presentation in discovery
	// order (stable, lexical by filename).
	Discover(id string) ([]models.Asset, error)
	// ReadFile returns the raw bytes of one file in a presentation folder.
	ReadFile(id, file string) ([]byte, error)
	// WriteFile atomically writes one file in a presentation folder.
	WriteFile(id, file string, content []byte) error
	// DeleteFile removes one file from a presentation folder.
	DeleteFile(id, file string) error
	// LoadManifest returns the raw manifest document, or os.ErrNotExist
	// when the presentation has none yet.
	LoadManifest(id string) ([]byte, error)
	// SaveManifest atomically replaces the manifest document.
	SaveManifest(id string, data []byte) error
	// LoadTemplate returns a template document by id from the shared
	// template directory.
	LoadTemplate(id string) ([]byte, error)
	// ListTemplates returns the available template ids, sorted.
	ListTemplates() ([]string, error)
}
