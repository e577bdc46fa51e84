package manifest

import (
	"sort"

	"github.com/starford/lectern/internal/models"
)

// OrderedAsset is one entry of the canonical navigation order: the
// asset joined with its manifest metadata, if any.
type OrderedAsset struct {
	Asset models.Asset `json:"asset"`
	Slide *Slide       `json:"slide,omitempty"`
	Group string       `json:"group,omitempty"`
}

// ResolveOrder computes the single canonical order over non-index
// assets used for both sidebar rendering and keyboard navigation:
//
//  1. ungrouped assets, in filesystem discovery order;
//  2. grouped assets, bucketed by group, groups in ascending order
//     (id-tiebreak), members in discovery order;
//  3. orphan groups (referenced by a slide but absent from the group
//     table), last, sorted by id.
//
// The function is pure and stable: identical input yields identical
// output.
func ResolveOrder(assets []models.Asset, m *Manifest) []OrderedAsset {
	byFile := make(map[string]*Slide, len(m.Slides))
	for i := range m.Slides {
		byFile[m.Slides[i].File] = &m.Slides[i]
	}

	var root []OrderedAsset
	buckets := map[string][]OrderedAsset{}
	for _, a := range assets {
		if a.IsIndex || IsTabIndex(a.File) {
			continue
		}
		s := byFile[a.File]
		if s == nil || s.Group == "" {
			entry := OrderedAsset{Asset: a, Slide: s}
			root = append(root, entry)
			continue
		}
		buckets[s.Group] = append(buckets[s.Group], OrderedAsset{Asset: a, Slide: s, Group: s.Group})
	}

	out := make([]OrderedAsset, 0, len(assets))
	out = append(out, root...)

	for _, gid := range m.GroupIDsSorted() {
		out = append(out, buckets[gid]...)
		delete(buckets, gid)
	}

	// Orphan groups: referenced by slides but not declared.
	orphans := make([]string, 0, len(buckets))
	for gid := range buckets {
		orphans = append(orphans, gid)
	}
	sort.Strings(orphans)
	for _, gid := range orphans {
		out = append(out, buckets[gid]...)
	}
	return out
}

// groupedSlideThreshold is the collection size above which a grouped
// manifest switches to grouped display automatically.
const groupedSlideThreshold = 15

// DetectDisplayMode decides how the sidebar renders a presentation.
// Precedence:
//
//  1. an explicit meta displayMode is honoured, with the retired
//     legacy value coerced to grouped;
//  2. container tabs imply their own navigation chrome: grouped when
//     any group exists, flat otherwise;
//  3. grouped when groups exist and the collection is large;
//  4. flat.
//
// The retired value is never returned.
func DetectDisplayMode(m *Manifest, assets []models.Asset) DisplayMode {
	switch m.Meta.DisplayMode {
	case DisplayFlat, DisplayGrouped:
		return m.Meta.DisplayMode
	case legacyTabbed:
		return DisplayGrouped
	}

	if m.HasContainerTabs() {
		if len(m.Groups) > 0 {
			return DisplayGrouped
		}
		return DisplayFlat
	}

	if len(m.Groups) > 0 && slideCount(m, assets) > groupedSlideThreshold {
		return DisplayGrouped
	}
	return DisplayFlat
}

// slideCount prefers the real on-disk asset count and falls back to
// manifest entries when discovery produced nothing.
func slideCount(m *Manifest, assets []models.Asset) int {
	n := 0
	for _, a := range assets {
		if !a.IsIndex {
			n++
		}
	}
	if n == 0 {
		return len(m.Slides)
	}
	return n
}
