package manifest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/htmldoc"
	"github.com/starford/lectern/internal/models"
)

// Sync strategies.
const (
	SyncMerge   = "merge"
	SyncReplace = "replace"
	SyncAddOnly = "addOnly"
)

var tabIndexRe = regexp.MustCompile(`^index-([a-z0-9]+(?:-[a-z0-9]+)*)\.html$`)

// IsTabIndex reports whether a filename follows the tab index pattern
// index-{tabId}.html.
func IsTabIndex(file string) bool {
	return tabIndexRe.MatchString(file)
}

// ReadFileFunc reads one file of the presentation being synced.
type ReadFileFunc func(file string) ([]byte, error)

// SyncOptions configures SyncManifest.
type SyncOptions struct {
	Strategy    string `json:"strategy"`
	InferGroups bool   `json:"inferGroups"`
	InferTitles bool   `json:"inferTitles"`
}

// SyncReport summarises a filesystem reconciliation pass.
type SyncReport struct {
	Added    int      `json:"added"`
	Updated  int      `json:"updated"`
	Removed  int      `json:"removed"`
	Warnings []string `json:"warnings"`
}

// SyncManifest reconciles the slide list against the discovered files.
//
//   - merge: newly discovered files are added, existing entries kept
//     and stale fields (empty title/group) filled in;
//   - replace: the slide list is rebuilt from discovered files,
//     reusing metadata for files still present and dropping the rest;
//   - addOnly: existing entries are never touched, undiscovered files
//     are appended.
//
// The whole result is committed to m only on success; a cancelled
// context leaves m untouched.
func SyncManifest(ctx context.Context, m *Manifest, assets []models.Asset, opts SyncOptions, readFile ReadFileFunc) (*SyncReport, error) {
	if err := checkStrategy(opts.Strategy); err != nil {
		return nil, err
	}
	w := m.Clone()
	report := &SyncReport{Warnings: []string{}}

	discovered := slideAssets(assets)
	byFile := make(map[string]int, len(w.Slides))
	for i, s := range w.Slides {
		byFile[s.File] = i
	}

	inferTitle := func(file string) string {
		if !opts.InferTitles || readFile == nil {
			return ""
		}
		data, err := readFile(file)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("could not read %q for title inference", file))
			return ""
		}
		return htmldoc.Parse(data).Title
	}

	newEntry := func(a models.Asset) Slide {
		s := Slide{File: a.File}
		if opts.InferGroups {
			s.Group = inferGroupID(a.File)
			if s.Group != "" {
				if _, known := w.Groups[s.Group]; !known {
					w.Groups[s.Group] = Group{Label: Labelize(s.Group), Order: nextGroupOrder(w)}
				}
			}
		}
		s.Title = inferTitle(a.File)
		return s
	}

	switch opts.Strategy {
	case SyncReplace:
		rebuilt := make([]Slide, 0, len(discovered))
		for _, a := range discovered {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if i, ok := byFile[a.File]; ok {
				rebuilt = append(rebuilt, w.Slides[i])
			} else {
				rebuilt = append(rebuilt, newEntry(a))
				report.Added++
			}
		}
		report.Removed = len(w.Slides) - (len(rebuilt) - report.Added)
		w.Slides = rebuilt
	case SyncMerge, SyncAddOnly:
		for _, a := range discovered {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			i, ok := byFile[a.File]
			if !ok {
				w.Slides = append(w.Slides, newEntry(a))
				report.Added++
				continue
			}
			if opts.Strategy == SyncAddOnly {
				continue
			}
			changed := false
			if w.Slides[i].Title == "" {
				if t := inferTitle(a.File); t != "" {
					w.Slides[i].Title = t
					changed = true
				}
			}
			if w.Slides[i].Group == "" && opts.InferGroups {
				if gid := inferGroupID(a.File); gid != "" {
					if _, known := w.Groups[gid]; !known {
						w.Groups[gid] = Group{Label: Labelize(gid), Order: nextGroupOrder(w)}
					}
					w.Slides[i].Group = gid
					changed = true
				}
			}
			if changed {
				report.Updated++
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	*m = *w
	return report, nil
}

// IndexSyncOptions configures SyncFromIndex.
type IndexSyncOptions struct {
	Strategy   string `json:"strategy"`
	InferTabs  bool   `json:"inferTabs"`
	ParseCards bool   `json:"parseCards"`
}

// IndexSyncReport is the structured report of an index inference pass.
type IndexSyncReport struct {
	TabsCreated    int      `json:"tabsCreated"`
	TabsUpdated    int      `json:"tabsUpdated"`
	GroupsCreated  int      `json:"groupsCreated"`
	GroupsUpdated  int      `json:"groupsUpdated"`
	SlidesAssigned int      `json:"slidesAssigned"`
	SlidesSkipped  int      `json:"slidesSkipped"`
	SlidesOrphaned int      `json:"slidesOrphaned"`
	Warnings       []string `json:"warnings"`
}

// SyncFromIndex infers navigational structure from tab-pattern index
// files (index-{tabId}.html): one tab per match and, with ParseCards,
// an ordered slide list per tab assigned to a group representing that
// tab. Best-effort throughout: malformed fragments degrade to
// warnings, never failures. Committed to m only on success.
func SyncFromIndex(ctx context.Context, m *Manifest, assets []models.Asset, opts IndexSyncOptions, readFile ReadFileFunc) (*IndexSyncReport, error) {
	if err := checkStrategy(opts.Strategy); err != nil {
		return nil, err
	}
	w := m.Clone()
	report := &IndexSyncReport{Warnings: []string{}}

	onDisk := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		onDisk[a.File] = struct{}{}
	}
	assigned := map[string]struct{}{}

	for _, a := range assets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		match := tabIndexRe.FindStringSubmatch(a.File)
		if match == nil {
			continue
		}
		tabID := match[1]

		var doc *htmldoc.Document
		if readFile != nil {
			data, err := readFile(a.File)
			if err != nil {
				report.Warnings = append(report.Warnings, fmt.Sprintf("could not read index file %q", a.File))
				continue
			}
			doc = htmldoc.Parse(data)
		} else {
			doc = &htmldoc.Document{}
		}

		label := doc.Title
		if label == "" {
			label = Labelize(tabID)
		}

		if opts.InferTabs {
			if i := w.TabIndex(tabID); i < 0 {
				order := 0
				for _, t := range w.Tabs {
					if t.Order >= order {
						order = t.Order + 1
					}
				}
				w.Tabs = append(w.Tabs, Tab{ID: tabID, Label: label, File: a.File, Order: order})
				report.TabsCreated++
			} else if opts.Strategy == SyncReplace {
				w.Tabs[i].Label = label
				w.Tabs[i].File = a.File
				report.TabsUpdated++
			}
		}

		if !opts.ParseCards {
			continue
		}

		// The tab's slides live in a group representing the tab.
		if g, exists := w.Groups[tabID]; !exists {
			w.Groups[tabID] = Group{Label: label, Order: nextGroupOrder(w), TabID: tabID}
			report.GroupsCreated++
		} else if g.TabID != tabID && opts.Strategy != SyncAddOnly {
			g.TabID = tabID
			w.Groups[tabID] = g
			report.GroupsUpdated++
		}

		for _, card := range doc.Cards {
			if _, exists := onDisk[card.File]; !exists {
				report.SlidesSkipped++
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("index %q references %q which does not exist; skipped", a.File, card.File))
				continue
			}
			assigned[card.File] = struct{}{}
			i := w.FindSlide(card.File)
			if i < 0 {
				w.Slides = append(w.Slides, Slide{
					File:        card.File,
					Title:       card.Title,
					Description: card.Description,
					Group:       tabID,
				})
				report.SlidesAssigned++
				continue
			}
			if opts.Strategy == SyncAddOnly {
				continue
			}
			s := &w.Slides[i]
			if opts.Strategy == SyncReplace {
				s.Title = card.Title
				s.Description = card.Description
				s.Group = tabID
			} else {
				if s.Title == "" {
					s.Title = card.Title
				}
				if s.Description == "" {
					s.Description = card.Description
				}
				s.Group = tabID
			}
			report.SlidesAssigned++
		}
	}

	// Slide files appearing in no index are orphaned.
	for _, a := range slideAssets(assets) {
		if _, ok := assigned[a.File]; !ok {
			report.SlidesOrphaned++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	*m = *w
	return report, nil
}

// inferGroupID derives a group id from the filename token before the
// first separator. "intro-overview.html" -> "intro"; a token that is
// not a valid id yields "".
func inferGroupID(file string) string {
	stem := strings.TrimSuffix(file, ".html")
	token := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	if len(token) < 2 {
		return "" // no separator means no prefix to infer from
	}
	id := strings.ToLower(token[0])
	if !idRe.MatchString(id) {
		return ""
	}
	return id
}

// slideAssets filters discovery output down to actual slide files:
// index.html and tab-pattern index files are navigational, not slides.
func slideAssets(assets []models.Asset) []models.Asset {
	out := make([]models.Asset, 0, len(assets))
	for _, a := range assets {
		if a.IsIndex || tabIndexRe.MatchString(a.File) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func checkStrategy(s string) error {
	switch s {
	case SyncMerge, SyncReplace, SyncAddOnly:
		return nil
	case "":
		return apperr.NewValidation("strategy", "strategy is required")
	default:
		return apperr.NewValidation("strategy", "unknown strategy %q", s)
	}
}
