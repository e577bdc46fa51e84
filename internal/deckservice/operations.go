package deckservice

import (
	"context"
	"errors"
	"os"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/manifest"
)

// CreateTab adds a tab to a presentation's manifest.
func (s *Service) CreateTab(_ context.Context, id, tabID, label string) (*manifest.Manifest, error) {
	return s.mutate(id, "tab.created", func(m *manifest.Manifest) error {
		return manifest.CreateTab(m, tabID, label)
	})
}

// UpdateTab applies a partial tab update.
func (s *Service) UpdateTab(_ context.Context, id, tabID string, patch manifest.TabPatch) (*manifest.Manifest, error) {
	return s.mutate(id, "tab.updated", func(m *manifest.Manifest) error {
		return manifest.UpdateTab(m, tabID, patch)
	})
}

// DeleteTab removes a tab, resolving affiliated groups per strategy
// ("orphan", "cascade", or "reparent:<tabId>").
func (s *Service) DeleteTab(_ context.Context, id, tabID, strategy string) (*manifest.Manifest, error) {
	strat, err := manifest.ParseDeleteTabStrategy(strategy)
	if err != nil {
		return nil, err
	}
	return s.mutate(id, "tab.deleted", func(m *manifest.Manifest) error {
		return manifest.DeleteTab(m, tabID, strat)
	})
}

// ReorderTabs applies a full tab permutation.
func (s *Service) ReorderTabs(_ context.Context, id string, orderedIDs []string) (*manifest.Manifest, error) {
	return s.mutate(id, "tabs.reordered", func(m *manifest.Manifest) error {
		return manifest.ReorderTabs(m, orderedIDs)
	})
}

// CreateGroup adds a group to a presentation's manifest.
func (s *Service) CreateGroup(_ context.Context, id, groupID, label string) (*manifest.Manifest, error) {
	return s.mutate(id, "group.created", func(m *manifest.Manifest) error {
		return manifest.CreateGroup(m, groupID, label)
	})
}

// UpdateGroup applies a partial group update.
func (s *Service) UpdateGroup(_ context.Context, id, groupID string, patch manifest.GroupPatch) (*manifest.Manifest, error) {
	return s.mutate(id, "group.updated", func(m *manifest.Manifest) error {
		return manifest.UpdateGroup(m, groupID, patch)
	})
}

// DeleteGroup removes a group; its slides revert to ungrouped.
func (s *Service) DeleteGroup(_ context.Context, id, groupID string) (*manifest.Manifest, error) {
	return s.mutate(id, "group.deleted", func(m *manifest.Manifest) error {
		return manifest.DeleteGroup(m, groupID)
	})
}

// ReorderGroups applies a full group permutation.
func (s *Service) ReorderGroups(_ context.Context, id string, orderedIDs []string) (*manifest.Manifest, error) {
	return s.mutate(id, "groups.reordered", func(m *manifest.Manifest) error {
		return manifest.ReorderGroups(m, orderedIDs)
	})
}

// SetGroupParent links a group to the parent whose tab affiliation it
// inherits.
func (s *Service) SetGroupParent(_ context.Context, id, groupID, parentID string) (*manifest.Manifest, error) {
	return s.mutate(id, "group.updated", func(m *manifest.Manifest) error {
		return manifest.SetGroupParent(m, groupID, parentID)
	})
}

// RemoveGroupParent clears a group's parent link.
func (s *Service) RemoveGroupParent(_ context.Context, id, groupID string) (*manifest.Manifest, error) {
	return s.mutate(id, "group.updated", func(m *manifest.Manifest) error {
		return manifest.RemoveGroupParent(m, groupID)
	})
}

// AddSlide appends one slide entry.
func (s *Service) AddSlide(_ context.Context, id string, slide manifest.Slide) (*manifest.Manifest, error) {
	return s.mutate(id, "slide.added", func(m *manifest.Manifest) error {
		return manifest.AddSlide(m, slide)
	})
}

// UpdateSlide applies a partial update to one slide entry.
func (s *Service) UpdateSlide(_ context.Context, id, file string, patch manifest.SlidePatch) (*manifest.Manifest, error) {
	return s.mutate(id, "slide.updated", func(m *manifest.Manifest) error {
		return manifest.UpdateSlide(m, file, patch)
	})
}

// RemoveSlide drops one slide entry; the file stays on disk.
func (s *Service) RemoveSlide(_ context.Context, id, file string) (*manifest.Manifest, error) {
	return s.mutate(id, "slide.removed", func(m *manifest.Manifest) error {
		return manifest.RemoveSlide(m, file)
	})
}

// BulkAddSlides adds a batch of slides. With DryRun set nothing is
// persisted and no notification fires; the report describes the
// simulated outcome.
func (s *Service) BulkAddSlides(_ context.Context, id string, items []manifest.Slide, opts manifest.BulkOptions) (*manifest.BulkResult, error) {
	if opts.DryRun {
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
		return manifest.BulkAddSlides(m, items, opts)
	}

	var result *manifest.BulkResult
	_, err := s.mutate(id, "slides.bulk-added", func(m *manifest.Manifest) error {
		var err error
		result, err = manifest.BulkAddSlides(m, items, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BulkAddGroups adds a batch of groups with per-item outcomes.
func (s *Service) BulkAddGroups(_ context.Context, id string, groups map[string]manifest.Group, dryRun bool) (*manifest.BulkResult, error) {
	if dryRun {
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
		return manifest.BulkAddGroups(m, groups, true)
	}

	var result *manifest.BulkResult
	_, err := s.mutate(id, "groups.bulk-added", func(m *manifest.Manifest) error {
		var err error
		result, err = manifest.BulkAddGroups(m, groups, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyTemplate applies a shared template document to a presentation.
func (s *Service) ApplyTemplate(_ context.Context, id, templateID string, merge bool) (*manifest.Manifest, error) {
	raw, err := s.store.LoadTemplate(templateID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NotFound("template %q", templateID)
		}
		return nil, err
	}
	tpl, err := manifest.Parse(raw)
	if err != nil {
		return nil, apperr.NewValidation("template", "template %q is not a valid manifest document: %v", templateID, err)
	}
	return s.mutate(id, "template.applied", func(m *manifest.Manifest) error {
		manifest.ApplyTemplate(m, tpl, merge)
		return nil
	})
}

// ListTemplates returns the ids of the shared template documents.
func (s *Service) ListTemplates(_ context.Context) ([]string, error) {
	return s.store.ListTemplates()
}

// SyncManifest reconciles the manifest against the files on disk.
func (s *Service) SyncManifest(ctx context.Context, id string, opts manifest.SyncOptions) (*manifest.Manifest, *manifest.SyncReport, error) {
	var report *manifest.SyncReport
	m, err := s.mutate(id, "manifest.synced", func(m *manifest.Manifest) error {
		assets, err := s.store.Discover(id)
		if err != nil {
			return err
		}
		report, err = manifest.SyncManifest(ctx, m, assets, opts, s.fileReader(id))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return m, report, nil
}

// SyncFromIndex infers tabs, groups, and slide assignments from
// tab-pattern index files.
func (s *Service) SyncFromIndex(ctx context.Context, id string, opts manifest.IndexSyncOptions) (*manifest.Manifest, *manifest.IndexSyncReport, error) {
	var report *manifest.IndexSyncReport
	m, err := s.mutate(id, "manifest.synced-from-index", func(m *manifest.Manifest) error {
		assets, err := s.store.Discover(id)
		if err != nil {
			return err
		}
		report, err = manifest.SyncFromIndex(ctx, m, assets, opts, s.fileReader(id))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return m, report, nil
}

func (s *Service) fileReader(id string) manifest.ReadFileFunc {
	return func(file string) ([]byte, error) {
		return s.store.ReadFile(id, file)
	}
}
