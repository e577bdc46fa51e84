package manifest

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/models"
)

var (
	idRe   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	fileRe = regexp.MustCompile(`^[^/\\]+\.html$`)
)

// Result is the outcome of a validation pass. Errors make the manifest
// unpersistable; warnings are advisory.
type Result struct {
	Valid    bool           `json:"valid"`
	Errors   []apperr.Issue `json:"errors"`
	Warnings []apperr.Issue `json:"warnings"`
}

func (r *Result) errorf(path, format string, args ...any) {
	r.Errors = append(r.Errors, apperr.Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) warnf(path, format string, args ...any) {
	r.Warnings = append(r.Warnings, apperr.Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Err converts a failed result into a ValidationError carrying every
// finding, or nil when the result is valid.
func (r *Result) Err() error {
	if r.Valid {
		return nil
	}
	return (&apperr.ValidationError{Issues: r.Errors}).OrNil()
}

// Validate performs the structural and referential checks that do not
// need filesystem state. It never mutates the manifest.
func Validate(m *Manifest) Result {
	var res Result

	validateTabs(m, &res)
	validateGroups(m, &res)
	validateSlides(m, &res)
	validateMeta(m, &res)

	res.Valid = len(res.Errors) == 0
	if res.Errors == nil {
		res.Errors = []apperr.Issue{}
	}
	if res.Warnings == nil {
		res.Warnings = []apperr.Issue{}
	}
	return res
}

// CheckFiles runs the optional filesystem pass on top of Validate:
// every slide's target must exist on disk, and every on-disk slide
// file not referenced by the manifest is reported as an orphan.
func CheckFiles(m *Manifest, assets []models.Asset) Result {
	res := Validate(m)

	onDisk := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		if !a.IsIndex {
			onDisk[a.File] = struct{}{}
		}
	}

	referenced := make(map[string]struct{}, len(m.Slides))
	for i, s := range m.Slides {
		referenced[s.File] = struct{}{}
		if _, ok := onDisk[s.File]; !ok {
			res.errorf(fmt.Sprintf("slides[%d].file", i), "file %q does not exist on disk", s.File)
		}
	}
	for _, a := range assets {
		if a.IsIndex || strings.HasPrefix(a.File, "index-") {
			continue
		}
		if _, ok := referenced[a.File]; !ok {
			res.warnf("slides", "file %q on disk is not referenced by any slide", a.File)
		}
	}
	for i, t := range m.Tabs {
		found := false
		for _, a := range assets {
			if a.File == t.File {
				found = true
				break
			}
		}
		if !found {
			res.warnf(fmt.Sprintf("tabs[%d].file", i), "tab file %q does not exist on disk", t.File)
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func validateTabs(m *Manifest, res *Result) {
	seen := map[string]int{}
	for i, t := range m.Tabs {
		path := fmt.Sprintf("tabs[%d]", i)
		if err := validation.Validate(t.ID, validation.Required, validation.Match(idRe)); err != nil {
			res.errorf(path+".id", "invalid id %q: %v", t.ID, err)
		}
		if err := validation.Validate(t.Label, validation.Required); err != nil {
			res.errorf(path+".label", "label is required")
		}
		if err := validation.Validate(t.File, validation.Required, validation.Match(fileRe)); err != nil {
			res.errorf(path+".file", "invalid file %q: %v", t.File, err)
		}
		if prev, dup := seen[t.ID]; dup {
			res.errorf(path+".id", "duplicate tab id %q (first declared at tabs[%d])", t.ID, prev)
		} else {
			seen[t.ID] = i
		}
	}
}

func validateGroups(m *Manifest, res *Result) {
	for _, id := range m.GroupIDsSorted() {
		g := m.Groups[id]
		path := "groups." + id
		if err := validation.Validate(id, validation.Required, validation.Match(idRe)); err != nil {
			res.errorf(path, "invalid group id %q: %v", id, err)
		}
		if g.Label == "" {
			res.warnf(path+".label", "group has no label")
		}
		if g.Parent != "" {
			if g.Parent == id {
				res.errorf(path+".parent", "group cannot be its own parent")
			} else if _, ok := m.Groups[g.Parent]; !ok {
				res.errorf(path+".parent", "parent %q does not exist", g.Parent)
			}
		}
		if g.TabID != "" && m.TabIndex(g.TabID) < 0 {
			res.warnf(path+".tabId", "tab %q does not exist", g.TabID)
		}
	}
	for _, id := range findParentCycles(m) {
		res.errorf("groups."+id+".parent", "parent chain forms a cycle")
	}
}

func validateSlides(m *Manifest, res *Result) {
	seen := map[string]int{}
	for i, s := range m.Slides {
		path := fmt.Sprintf("slides[%d]", i)
		if err := validation.Validate(s.File, validation.Required, validation.Match(fileRe)); err != nil {
			res.errorf(path+".file", "invalid file %q: %v", s.File, err)
		}
		if prev, dup := seen[s.File]; dup {
			res.errorf(path+".file", "duplicate slide file %q (first declared at slides[%d])", s.File, prev)
		} else {
			seen[s.File] = i
		}
		if s.Group != "" {
			if _, ok := m.Groups[s.Group]; !ok {
				res.warnf(path+".group", "group %q is not declared", s.Group)
			}
		}
	}
}

func validateMeta(m *Manifest, res *Result) {
	switch m.Meta.DisplayMode {
	case "", DisplayFlat, DisplayGrouped:
	case legacyTabbed:
		res.warnf("meta.displayMode", "%q is retired and is treated as %q", legacyTabbed, DisplayGrouped)
	default:
		res.errorf("meta.displayMode", "unknown display mode %q", m.Meta.DisplayMode)
	}
}

// findParentCycles returns the ids of groups whose parent chain loops
// back on itself, in deterministic order.
func findParentCycles(m *Manifest) []string {
	var cyclic []string
	for _, start := range m.GroupIDsSorted() {
		seen := map[string]struct{}{}
		id := start
		for {
			if _, dup := seen[id]; dup {
				if id == start {
					cyclic = append(cyclic, start)
				}
				break
			}
			seen[id] = struct{}{}
			g, ok := m.Groups[id]
			if !ok || g.Parent == "" {
				break
			}
			id = g.Parent
		}
	}
	return cyclic
}
