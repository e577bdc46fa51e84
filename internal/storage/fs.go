package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/lectern/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to library directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute library root.
func (f *FS) Root() string { return f.root }

// safePath resolves id/file against the library root and rejects any
// result that escapes it (directory traversal). Each part must be a
// single path element: joining before checking would let
// "deck/../other" collapse into a sibling that still sits under the
// root.
func (f *FS) safePath(parts ...string) (string, error) {
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("storage: empty path element")
		}
		if filepath.IsAbs(p) {
			return "", fmt.Errorf("storage: absolute paths not allowed: %s", p)
		}
		if p != filepath.Base(filepath.Clean(p)) || p == ".." || p == "." {
			return "", fmt.Errorf("storage: invalid path element: %s", p)
		}
	}
	abs, err := filepath.Abs(filepath.Join(append([]string{f.root}, parts...)...))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes library root: %s", filepath.Join(parts...))
	}
	return abs, nil
}

// ListPresentations returns every folder under the root that contains
// an index.html, sorted by name.
func (f *FS) ListPresentations() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list presentations: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || e.Name() == TemplateDir {
			continue
		}
		if _, err := os.Stat(filepath.Join(f.root, e.Name(), models.IndexFile)); err == nil {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Discover lists the .html files directly inside a presentation
// folder. os.ReadDir sorts by filename, which is the canonical
// discovery order.
func (f *FS) Discover(id string) ([]models.Asset, error) {
	dir, err := f.safePath(id)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: presentation %s: %w", id, os.ErrNotExist)
		}
		return nil, fmt.Errorf("storage: discover %s: %w", id, err)
	}
	var out []models.Asset
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".html") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, models.Asset{
			ID:        strings.TrimSuffix(name, ".html"),
			File:      name,
			IsIndex:   name == models.IndexFile,
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// ReadFile returns the raw bytes of one presentation file.
func (f *FS) ReadFile(id, file string) ([]byte, error) {
	abs, err := f.safePath(id, file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s/%s: %w", id, file, err)
	}
	return data, nil
}

// WriteFile atomically writes content: tmp file, fsync, rename.
func (f *FS) WriteFile(id, file string, content []byte) error {
	abs, err := f.safePath(id, file)
	if err != nil {
		return err
	}
	return atomicWrite(abs, content)
}

// DeleteFile removes one presentation file.
func (f *FS) DeleteFile(id, file string) error {
	abs, err := f.safePath(id, file)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s/%s: %w", id, file, err)
	}
	return nil
}

// LoadManifest reads the manifest document of a presentation.
func (f *FS) LoadManifest(id string) ([]byte, error) {
	abs, err := f.safePath(id, ManifestFile)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("storage: load manifest %s: %w", id, err)
	}
	return data, nil
}

// SaveManifest atomically replaces the manifest document.
func (f *FS) SaveManifest(id string, data []byte) error {
	abs, err := f.safePath(id, ManifestFile)
	if err != nil {
		return err
	}
	return atomicWrite(abs, data)
}

// LoadTemplate reads a template document from the shared directory.
func (f *FS) LoadTemplate(id string) ([]byte, error) {
	abs, err := f.safePath(TemplateDir, id+".json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("storage: load template %s: %w", id, err)
	}
	return data, nil
}

// ListTemplates returns the template ids under _templates, sorted.
func (f *FS) ListTemplates() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.root, TemplateDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("storage: list templates: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(out)
	return out, nil
}

// atomicWrite writes content via tmp file, fsync, rename.
func atomicWrite(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lectern-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
