// Package deckservice coordinates storage, catalog, and the manifest
// engine behind the API and MCP layers. It owns the
// single-writer-per-presentation discipline: every mutation runs a
// load -> apply -> validate -> save -> refresh -> notify cycle under a
// per-presentation lock, so no interleaving write can be observed for
// the same id.
package deckservice

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/catalog"
	"github.com/starford/lectern/internal/checksum"
	"github.com/starford/lectern/internal/manifest"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/storage"
)

// Notifier is the change-broadcast port. Implementations are
// fire-and-forget; the service calls it once per committed mutation.
type Notifier interface {
	Notify(presentationID, reason string)
}

// Service is the presentation aggregate service.
type Service struct {
	store    storage.Provider
	cat      *catalog.DB
	notifier Notifier

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new deck service. cat and notifier may be nil
// (no listing cache, no notifications), which tests rely on.
func NewService(store storage.Provider, cat *catalog.DB, notifier Notifier) *Service {
	return &Service{
		store:    store,
		cat:      cat,
		notifier: notifier,
		locks:    map[string]*sync.Mutex{},
	}
}

// lockFor returns the mutation lock for one presentation id.
func (s *Service) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// PresentationDetail is the full read model of one presentation: the
// manifest joined with live discovery, the resolved order, and the
// effective display mode.
type PresentationDetail struct {
	Presentation models.Presentation     `json:"presentation"`
	DisplayMode  manifest.DisplayMode    `json:"displayMode"`
	Tabs         []manifest.Tab          `json:"tabs"`
	Groups       map[string]manifest.Group `json:"groups"`
	Order        []manifest.OrderedAsset `json:"order"`
	Checksum     string                  `json:"checksum"`
}

// ListPresentations returns the cached library listing, falling back
// to a live scan when no catalog is attached.
func (s *Service) ListPresentations(_ context.Context) ([]models.Presentation, error) {
	if s.cat != nil {
		items, err := s.cat.List()
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.Presentation{}
		}
		return items, nil
	}

	ids, err := s.store.ListPresentations()
	if err != nil {
		return nil, err
	}
	out := make([]models.Presentation, 0, len(ids))
	for _, id := range ids {
		assets, err := s.store.Discover(id)
		if err != nil {
			continue
		}
		p := models.Presentation{ID: id, Title: manifest.Labelize(id)}
		for _, a := range assets {
			if !a.IsIndex && !manifest.IsTabIndex(a.File) {
				p.SlideCount++
			}
			if a.UpdatedAt.After(p.UpdatedAt) {
				p.UpdatedAt = a.UpdatedAt
			}
		}
		if m, raw, loadErr := s.loadManifestRaw(id); loadErr == nil && raw != nil {
			p.HasManifest = true
			p.TabCount = len(m.Tabs)
			p.GroupCount = len(m.Groups)
			if m.Meta.Title != "" {
				p.Title = m.Meta.Title
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// GetPresentation resolves the full read model for one presentation:
// discovery, manifest, canonical order, and display mode, all from a
// single consistent snapshot.
func (s *Service) GetPresentation(_ context.Context, id string) (*PresentationDetail, error) {
	assets, err := s.store.Discover(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NotFound("presentation %q", id)
		}
		return nil, err
	}
	m, raw, err := s.loadManifestRaw(id)
	if err != nil {
		return nil, err
	}

	detail := &PresentationDetail{
		DisplayMode: manifest.DetectDisplayMode(m, assets),
		Tabs:        m.Tabs,
		Groups:      m.Groups,
		Order:       manifest.ResolveOrder(assets, m),
		Checksum:    checksum.Sum(raw),
	}
	detail.Presentation = models.Presentation{ID: id, Title: manifest.Labelize(id), HasManifest: raw != nil}
	if m.Meta.Title != "" {
		detail.Presentation.Title = m.Meta.Title
	}
	detail.Presentation.TabCount = len(m.Tabs)
	detail.Presentation.GroupCount = len(m.Groups)
	for _, a := range assets {
		if !a.IsIndex && !manifest.IsTabIndex(a.File) {
			detail.Presentation.SlideCount++
		}
		if a.UpdatedAt.After(detail.Presentation.UpdatedAt) {
			detail.Presentation.UpdatedAt = a.UpdatedAt
		}
	}
	return detail, nil
}

// GetManifest returns the stored manifest in canonical form together
// with its checksum (used as an ETag by the HTTP layer). A
// presentation without a manifest yields an empty one.
func (s *Service) GetManifest(_ context.Context, id string) (*manifest.Manifest, string, error) {
	if err := s.ensureExists(id); err != nil {
		return nil, "", err
	}
	m, raw, err := s.loadManifestRaw(id)
	if err != nil {
		return nil, "", err
	}
	return m, checksum.Sum(raw), nil
}

// PutManifest validates and atomically replaces the whole manifest
// document. ifMatch, when non-empty, must equal the stored document's
// checksum (last-write-wins otherwise).
func (s *Service) PutManifest(_ context.Context, id string, candidate *manifest.Manifest, ifMatch string) (*manifest.Manifest, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.ensureExists(id); err != nil {
		return nil, err
	}
	if ifMatch != "" {
		_, raw, err := s.loadManifestRaw(id)
		if err != nil {
			return nil, err
		}
		if checksum.Sum(raw) != ifMatch {
			return nil, apperr.Conflict("manifest checksum mismatch")
		}
	}

	candidate.Normalize()
	if res := manifest.Validate(candidate); !res.Valid {
		return nil, res.Err()
	}
	if err := s.commit(id, candidate, "manifest.replaced"); err != nil {
		return nil, err
	}
	return candidate, nil
}

// ValidateManifest runs the validator against a candidate document,
// optionally with the filesystem pass.
func (s *Service) ValidateManifest(_ context.Context, id string, candidate *manifest.Manifest, checkFiles bool) (*manifest.Result, error) {
	candidate.Normalize()
	if !checkFiles {
		res := manifest.Validate(candidate)
		return &res, nil
	}
	assets, err := s.store.Discover(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NotFound("presentation %q", id)
		}
		return nil, err
	}
	res := manifest.CheckFiles(candidate, assets)
	return &res, nil
}

// ResolveOrder returns the canonical navigation order for one
// presentation.
func (s *Service) ResolveOrder(ctx context.Context, id string) ([]manifest.OrderedAsset, error) {
	detail, err := s.GetPresentation(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail.Order, nil
}

// mutate runs one manifest mutation under the presentation lock with
// the full load-apply-validate-save cycle. fn must not retain the
// manifest past its return.
func (s *Service) mutate(id, reason string, fn func(m *manifest.Manifest) error) (*manifest.Manifest, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.ensureExists(id); err != nil {
		return nil, err
	}
	m, err := s.loadManifest(id)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	if res := manifest.Validate(m); !res.Valid {
		return nil, res.Err()
	}
	if err := s.commit(id, m, reason); err != nil {
		return nil, err
	}
	return m, nil
}

// commit persists the manifest, refreshes the catalog row exactly
// once, and fires the change notification.
func (s *Service) commit(id string, m *manifest.Manifest, reason string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if err := s.store.SaveManifest(id, data); err != nil {
		return err
	}
	if s.cat != nil {
		if err := catalog.Refresh(s.cat, s.store, id); err != nil {
			return err
		}
	}
	if s.notifier != nil {
		s.notifier.Notify(id, reason)
	}
	return nil
}

// ensureExists maps a missing presentation folder to ErrNotFound.
func (s *Service) ensureExists(id string) error {
	_, err := s.store.Discover(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.NotFound("presentation %q", id)
		}
		return err
	}
	return nil
}

// loadManifest parses the stored manifest, returning an empty one for
// presentations that have none yet.
func (s *Service) loadManifest(id string) (*manifest.Manifest, error) {
	m, _, err := s.loadManifestRaw(id)
	return m, err
}

func (s *Service) loadManifestRaw(id string) (*manifest.Manifest, []byte, error) {
	raw, err := s.store.LoadManifest(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return manifest.New(), nil, nil
		}
		return nil, nil, err
	}
	m, err := manifest.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	return m, raw, nil
}
