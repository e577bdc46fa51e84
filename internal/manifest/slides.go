package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/lectern/internal/apperr"
)

// AddSlide appends a single slide entry. The file must carry the slide
// artifact extension and must not already be present in the manifest.
func AddSlide(m *Manifest, s Slide) error {
	if err := checkSlideFile(s.File); err != nil {
		return err
	}
	if m.FindSlide(s.File) >= 0 {
		return apperr.Conflict("slide %q already exists", s.File)
	}
	m.Slides = append(m.Slides, s)
	return nil
}

// SlidePatch contains the updatable slide fields; nil means unchanged.
type SlidePatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Group       *string   `json:"group"`
	Recommended *bool     `json:"recommended"`
	Tags        *[]string `json:"tags"`
	Notes       *string   `json:"notes"`
}

// UpdateSlide applies a partial update to the slide referencing file.
func UpdateSlide(m *Manifest, file string, patch SlidePatch) error {
	i := m.FindSlide(file)
	if i < 0 {
		return apperr.NotFound("slide %q", file)
	}
	s := &m.Slides[i]
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.Group != nil {
		s.Group = *patch.Group
	}
	if patch.Recommended != nil {
		s.Recommended = *patch.Recommended
	}
	if patch.Tags != nil {
		s.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.Notes != nil {
		s.Notes = *patch.Notes
	}
	return nil
}

// RemoveSlide drops the manifest entry for file. The underlying file
// is never deleted.
func RemoveSlide(m *Manifest, file string) error {
	i := m.FindSlide(file)
	if i < 0 {
		return apperr.NotFound("slide %q", file)
	}
	m.Slides = append(m.Slides[:i], m.Slides[i+1:]...)
	return nil
}

// Bulk insertion positions.
const (
	PositionStart = "start"
	PositionEnd   = "end"
	PositionAfter = "after"
)

// Duplicate-file conflict policies.
const (
	ConflictSkip    = "skip"
	ConflictReplace = "replace"
	ConflictRename  = "rename"
)

// Group-mismatch conflict policies (when CreateGroups is off).
const (
	MismatchSkip   = "skip"
	MismatchClear  = "clear"
	MismatchCreate = "create"
)

// Position selects where a bulk-added block of slides is spliced in.
type Position struct {
	Kind  string `json:"kind"`  // start, end, after
	After string `json:"after"` // reference file for Kind == after
}

// BulkConflict selects per-item conflict resolution policies.
type BulkConflict struct {
	DuplicateFile string `json:"duplicateFile"` // skip (default), replace, rename
	GroupMismatch string `json:"groupMismatch"` // skip (default), clear, create
}

// BulkOptions configures BulkAddSlides.
type BulkOptions struct {
	CreateGroups bool         `json:"createGroups"`
	Position     Position     `json:"position"`
	OnConflict   BulkConflict `json:"onConflict"`
	DryRun       bool         `json:"dryRun"`
}

// BulkItem is the per-item outcome of a bulk operation.
type BulkItem struct {
	File   string `json:"file"`
	Action string `json:"action"` // added, updated, skipped
	Reason string `json:"reason,omitempty"`
}

// BulkResult is the structured report of a bulk operation. Per-item
// conflicts are reported here, never raised as errors.
type BulkResult struct {
	Added   int        `json:"added"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Items   []BulkItem `json:"items"`
	DryRun  bool       `json:"dryRun,omitempty"`
}

func (r *BulkResult) record(file, action, reason string) {
	switch action {
	case "added":
		r.Added++
	case "updated":
		r.Updated++
	case "skipped":
		r.Skipped++
	}
	r.Items = append(r.Items, BulkItem{File: file, Action: action, Reason: reason})
}

// BulkAddSlides adds a batch of slides with positional insertion and
// per-item conflict resolution. Only malformed requests (an unknown
// position or a dangling After reference) return an error; individual
// item conflicts are resolved per options and reported in the result.
//
// With DryRun set the manifest passed in is left untouched and the
// result describes what a real run would have done.
func BulkAddSlides(m *Manifest, items []Slide, opts BulkOptions) (*BulkResult, error) {
	target := m
	if opts.DryRun {
		target = m.Clone()
	}

	insertAt, err := resolveInsertIndex(target, opts.Position)
	if err != nil {
		return nil, err
	}
	dupPolicy := opts.OnConflict.DuplicateFile
	if dupPolicy == "" {
		dupPolicy = ConflictSkip
	}
	mismatch := opts.OnConflict.GroupMismatch
	if mismatch == "" {
		mismatch = MismatchSkip
	}
	switch dupPolicy {
	case ConflictSkip, ConflictReplace, ConflictRename:
	default:
		return nil, apperr.NewValidation("onConflict.duplicateFile", "unknown policy %q", dupPolicy)
	}
	switch mismatch {
	case MismatchSkip, MismatchClear, MismatchCreate:
	default:
		return nil, apperr.NewValidation("onConflict.groupMismatch", "unknown policy %q", mismatch)
	}

	res := &BulkResult{Items: []BulkItem{}, DryRun: opts.DryRun}
	var block []Slide

	taken := make(map[string]struct{}, len(target.Slides))
	for _, s := range target.Slides {
		taken[s.File] = struct{}{}
	}

	for _, item := range items {
		if err := checkSlideFile(item.File); err != nil {
			res.record(item.File, "skipped", err.Error())
			continue
		}

		// Group resolution before the duplicate check so skips carry
		// the most specific reason.
		if item.Group != "" {
			if _, known := target.Groups[item.Group]; !known {
				create := opts.CreateGroups || mismatch == MismatchCreate
				switch {
				case create:
					target.Groups[item.Group] = Group{Label: Labelize(item.Group), Order: nextGroupOrder(target)}
				case mismatch == MismatchClear:
					item.Group = ""
				default:
					res.record(item.File, "skipped", fmt.Sprintf("group %q is not declared", item.Group))
					continue
				}
			}
		}

		if _, dup := taken[item.File]; dup {
			switch dupPolicy {
			case ConflictReplace:
				i := target.FindSlide(item.File)
				if i >= 0 {
					target.Slides[i] = item
					res.record(item.File, "updated", "")
				} else {
					// Duplicate within this batch: replace the pending entry.
					for bi := range block {
						if block[bi].File == item.File {
							block[bi] = item
						}
					}
					res.record(item.File, "updated", "duplicate within batch")
				}
				continue
			case ConflictRename:
				renamed := uniqueFile(item.File, taken)
				res.record(item.File, "added", fmt.Sprintf("renamed to %q", renamed))
				item.File = renamed
			default:
				res.record(item.File, "skipped", "file already present")
				continue
			}
		} else {
			res.record(item.File, "added", "")
		}

		taken[item.File] = struct{}{}
		block = append(block, item)
	}

	if len(block) > 0 {
		target.Slides = append(target.Slides[:insertAt], append(block, target.Slides[insertAt:]...)...)
	}
	return res, nil
}

// BulkAddGroups adds a batch of groups, skipping duplicates and
// reporting per-item outcomes.
func BulkAddGroups(m *Manifest, groups map[string]Group, dryRun bool) (*BulkResult, error) {
	target := m
	if dryRun {
		target = m.Clone()
	}
	res := &BulkResult{Items: []BulkItem{}, DryRun: dryRun}
	for _, id := range sortedKeys(groups) {
		if !idRe.MatchString(id) {
			res.record(id, "skipped", fmt.Sprintf("invalid group id %q", id))
			continue
		}
		g := groups[id]
		if g.Label == "" {
			g.Label = Labelize(id)
		}
		if _, exists := target.Groups[id]; exists {
			res.record(id, "skipped", "group already exists")
			continue
		}
		g.Order = nextGroupOrder(target)
		target.Groups[id] = g
		res.record(id, "added", "")
	}
	return res, nil
}

func resolveInsertIndex(m *Manifest, pos Position) (int, error) {
	switch pos.Kind {
	case "", PositionEnd:
		return len(m.Slides), nil
	case PositionStart:
		return 0, nil
	case PositionAfter:
		i := m.FindSlide(pos.After)
		if i < 0 {
			return 0, apperr.NewValidation("position.after", "slide %q does not exist", pos.After)
		}
		return i + 1, nil
	default:
		return 0, apperr.NewValidation("position.kind", "unknown position %q", pos.Kind)
	}
}

// uniqueFile appends -1, -2, ... to the file stem until the name does
// not collide with taken.
func uniqueFile(file string, taken map[string]struct{}) string {
	ext := ".html"
	stem := strings.TrimSuffix(file, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, n, ext)
		if _, dup := taken[candidate]; !dup {
			return candidate
		}
	}
}

func checkSlideFile(file string) error {
	if file == "" {
		return apperr.NewValidation("file", "file is required")
	}
	if !fileRe.MatchString(file) {
		return apperr.NewValidation("file", "%q is not a valid .html slide file", file)
	}
	return nil
}

func sortedKeys(m map[string]Group) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
