package catalog

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/starford/lectern/internal/manifest"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/storage"
)

// Refresh rebuilds the catalog row for one presentation from disk.
// A presentation that disappeared is removed from the catalog.
func Refresh(db *DB, store storage.Provider, id string) error {
	assets, err := store.Discover(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return db.Delete(id)
		}
		return err
	}
	hasIndex := false
	for _, a := range assets {
		if a.IsIndex {
			hasIndex = true
			break
		}
	}
	if !hasIndex {
		// Without the index file the folder is not a presentation.
		return db.Delete(id)
	}
	return db.Upsert(buildRow(store, id, assets), assets)
}

// Sync walks the library and brings the catalog up to date: every
// discovered presentation is refreshed and stale rows are removed.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	ids, err := store.ListPresentations()
	if err != nil {
		return err
	}

	cached, err := db.AllIDs()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		disk[id] = struct{}{}
		if err := Refresh(db, store, id); err != nil {
			logger.Warn("catalog sync: refresh failed", slog.String("presentation", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("catalog sync: refreshed", slog.String("presentation", id))
		}
	}

	// Remove stale entries.
	for id := range cached {
		if _, ok := disk[id]; !ok {
			if err := db.Delete(id); err != nil {
				logger.Warn("catalog sync: delete failed", slog.String("presentation", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("catalog sync: removed stale", slog.String("presentation", id))
			}
		}
	}

	return nil
}

// buildRow derives the cached listing row from the asset list and the
// manifest document, when one exists.
func buildRow(store storage.Provider, id string, assets []models.Asset) models.Presentation {
	p := models.Presentation{ID: id, Title: manifest.Labelize(id)}
	var latest time.Time
	for _, a := range assets {
		if !a.IsIndex && !manifest.IsTabIndex(a.File) {
			p.SlideCount++
		}
		if a.UpdatedAt.After(latest) {
			latest = a.UpdatedAt
		}
	}
	p.UpdatedAt = latest

	data, err := store.LoadManifest(id)
	if err != nil {
		return p
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return p
	}
	p.HasManifest = true
	p.TabCount = len(m.Tabs)
	p.GroupCount = len(m.Groups)
	if m.Meta.Title != "" {
		p.Title = m.Meta.Title
	}
	if len(m.Slides) > p.SlideCount {
		p.SlideCount = len(m.Slides)
	}
	return p
}
