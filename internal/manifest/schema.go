// Package manifest implements the presentation manifest model and the
// resolution engine built on top of it: validation, canonical ordering,
// display-mode detection, tab/group graph mutations, slide mutations,
// and filesystem reconciliation.
package manifest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DisplayMode selects the sidebar rendering strategy.
type DisplayMode string

const (
	// DisplayFlat renders slides as one flat list.
	DisplayFlat DisplayMode = "flat"
	// DisplayGrouped renders slides under group headers.
	DisplayGrouped DisplayMode = "grouped"

	// legacyTabbed is the retired third mode. It is coerced to grouped
	// at the load boundary and must never be produced by detection.
	legacyTabbed DisplayMode = "tabbed"
)

// Tab is a top-level navigational container bound to its own index file.
type Tab struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Subtitle string `json:"subtitle,omitempty"`
	File     string `json:"file"`
	Order    int    `json:"order"`
}

// TabFile returns the index filename conventionally bound to a tab id.
func TabFile(id string) string {
	return "index-" + id + ".html"
}

// Group is a named section of slides. Tab affiliation is either direct
// (TabID) or inherited from Parent.
type Group struct {
	Label  string `json:"label"`
	Order  int    `json:"order"`
	Tab    bool   `json:"tab,omitempty"`
	Parent string `json:"parent,omitempty"`
	TabID  string `json:"tabId,omitempty"`
}

// UnmarshalJSON accepts both the rich object shape and the legacy
// plain-string shape, where the value was just the group label.
func (g *Group) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		*g = Group{Label: label}
		return nil
	}
	type rich Group
	var r rich
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*g = Group(r)
	return nil
}

// Slide is a manifest entry referencing an asset by filename.
type Slide struct {
	File        string   `json:"file"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Group       string   `json:"group,omitempty"`
	Recommended bool     `json:"recommended,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Meta holds presentation-level metadata.
type Meta struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Author      string      `json:"author,omitempty"`
	DisplayMode DisplayMode `json:"displayMode,omitempty"`
}

// Stats is derived bookkeeping refreshed on every save.
type Stats struct {
	SlideCount int       `json:"slideCount"`
	GroupCount int       `json:"groupCount"`
	TabCount   int       `json:"tabCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Manifest is the JSON document describing one presentation.
//
// Legacy documents may lack tabs entirely and may carry groups as a
// plain id->label object; both load into the canonical shape here and
// nothing downstream of the load boundary branches on the old shape.
type Manifest struct {
	Tabs   []Tab            `json:"tabs"`
	Groups map[string]Group `json:"groups"`
	Slides []Slide          `json:"slides"`
	Meta   Meta             `json:"meta"`
	Stats  Stats            `json:"stats"`
}

// New returns an empty manifest with all collections initialised.
func New() *Manifest {
	return &Manifest{
		Tabs:   []Tab{},
		Groups: map[string]Group{},
		Slides: []Slide{},
	}
}

// Parse decodes raw JSON into a normalised manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}
	m.Normalize()
	return &m, nil
}

// Encode renders the manifest as indented JSON with refreshed stats.
func (m *Manifest) Encode() ([]byte, error) {
	m.Touch()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// Normalize brings a freshly decoded manifest into canonical form:
// nil collections become empty and the retired display mode is coerced
// to grouped. Idempotent.
func (m *Manifest) Normalize() {
	if m.Tabs == nil {
		m.Tabs = []Tab{}
	}
	if m.Groups == nil {
		m.Groups = map[string]Group{}
	}
	if m.Slides == nil {
		m.Slides = []Slide{}
	}
	if m.Meta.DisplayMode == legacyTabbed {
		m.Meta.DisplayMode = DisplayGrouped
	}
}

// Touch refreshes derived stats.
func (m *Manifest) Touch() {
	m.Stats = Stats{
		SlideCount: len(m.Slides),
		GroupCount: len(m.Groups),
		TabCount:   len(m.Tabs),
		UpdatedAt:  time.Now().UTC(),
	}
}

// Clone returns a deep copy, used for dry runs and consistent snapshots.
func (m *Manifest) Clone() *Manifest {
	out := &Manifest{
		Tabs:   make([]Tab, len(m.Tabs)),
		Groups: make(map[string]Group, len(m.Groups)),
		Slides: make([]Slide, len(m.Slides)),
		Meta:   m.Meta,
		Stats:  m.Stats,
	}
	copy(out.Tabs, m.Tabs)
	for id, g := range m.Groups {
		out.Groups[id] = g
	}
	for i, s := range m.Slides {
		cp := s
		if s.Tags != nil {
			cp.Tags = append([]string(nil), s.Tags...)
		}
		out.Slides[i] = cp
	}
	return out
}

// FindSlide returns the index of the slide referencing file, or -1.
func (m *Manifest) FindSlide(file string) int {
	for i, s := range m.Slides {
		if s.File == file {
			return i
		}
	}
	return -1
}

// TabIndex returns the position of the tab with the given id, or -1.
func (m *Manifest) TabIndex(id string) int {
	for i, t := range m.Tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// HasContainerTabs reports whether the presentation carries its own tab
// navigation: declared tabs, or groups marked as tab containers.
func (m *Manifest) HasContainerTabs() bool {
	if len(m.Tabs) > 0 {
		return true
	}
	for _, g := range m.Groups {
		if g.Tab {
			return true
		}
	}
	return false
}

// EffectiveTabID resolves a group's tab affiliation: its direct TabID
// if set, else the affiliation inherited through Parent. Chains are
// followed defensively to any depth; a cycle or a dangling parent
// resolves to "" (universal).
func (m *Manifest) EffectiveTabID(groupID string) string {
	seen := map[string]struct{}{}
	id := groupID
	for {
		if _, dup := seen[id]; dup {
			return ""
		}
		seen[id] = struct{}{}
		g, ok := m.Groups[id]
		if !ok {
			return ""
		}
		if g.TabID != "" {
			return g.TabID
		}
		if g.Parent == "" {
			return ""
		}
		id = g.Parent
	}
}

// GroupIDsSorted returns group ids ordered by ascending Order, ties
// broken by id so the result is deterministic.
func (m *Manifest) GroupIDsSorted() []string {
	ids := make([]string, 0, len(m.Groups))
	for id := range m.Groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		gi, gj := m.Groups[ids[i]], m.Groups[ids[j]]
		if gi.Order != gj.Order {
			return gi.Order < gj.Order
		}
		return ids[i] < ids[j]
	})
	return ids
}

// SortTabs orders tabs by ascending Order, preserving declaration
// order on ties (stable).
func (m *Manifest) SortTabs() {
	sort.SliceStable(m.Tabs, func(i, j int) bool {
		return m.Tabs[i].Order < m.Tabs[j].Order
	})
}

// Labelize derives a human-readable label from a kebab-case id.
func Labelize(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
