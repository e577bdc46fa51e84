package manifest

import (
	"sort"
	"strings"

	"github.com/starford/lectern/internal/apperr"
)

// Delete-tab strategies.
const (
	DeleteOrphan   = "orphan"
	DeleteCascade  = "cascade"
	DeleteReparent = "reparent"
)

// DeleteTabStrategy describes what happens to groups affiliated with a
// deleted tab.
type DeleteTabStrategy struct {
	Kind   string // orphan, cascade, reparent
	Target string // reparent target tab id
}

// ParseDeleteTabStrategy parses "orphan", "cascade", or
// "reparent:<tabId>". An empty string defaults to orphan.
func ParseDeleteTabStrategy(s string) (DeleteTabStrategy, error) {
	switch {
	case s == "" || s == DeleteOrphan:
		return DeleteTabStrategy{Kind: DeleteOrphan}, nil
	case s == DeleteCascade:
		return DeleteTabStrategy{Kind: DeleteCascade}, nil
	case strings.HasPrefix(s, DeleteReparent+":"):
		target := strings.TrimPrefix(s, DeleteReparent+":")
		if target == "" {
			return DeleteTabStrategy{}, apperr.NewValidation("strategy", "reparent strategy needs a target tab id")
		}
		return DeleteTabStrategy{Kind: DeleteReparent, Target: target}, nil
	default:
		return DeleteTabStrategy{}, apperr.NewValidation("strategy", "unknown strategy %q", s)
	}
}

// CreateTab appends a new tab with the next free order position.
func CreateTab(m *Manifest, id, label string) error {
	if !idRe.MatchString(id) {
		return apperr.NewValidation("id", "invalid tab id %q", id)
	}
	if label == "" {
		return apperr.NewValidation("label", "label is required")
	}
	if m.TabIndex(id) >= 0 {
		return apperr.Conflict("tab %q already exists", id)
	}
	order := 0
	for _, t := range m.Tabs {
		if t.Order >= order {
			order = t.Order + 1
		}
	}
	m.Tabs = append(m.Tabs, Tab{ID: id, Label: label, File: TabFile(id), Order: order})
	return nil
}

// TabPatch contains the updatable tab fields; nil means unchanged.
type TabPatch struct {
	Label    *string `json:"label"`
	Subtitle *string `json:"subtitle"`
}

// UpdateTab applies a partial update to an existing tab.
func UpdateTab(m *Manifest, id string, patch TabPatch) error {
	i := m.TabIndex(id)
	if i < 0 {
		return apperr.NotFound("tab %q", id)
	}
	if patch.Label != nil {
		if *patch.Label == "" {
			return apperr.NewValidation("label", "label cannot be empty")
		}
		m.Tabs[i].Label = *patch.Label
	}
	if patch.Subtitle != nil {
		m.Tabs[i].Subtitle = *patch.Subtitle
	}
	return nil
}

// ReorderTabs reassigns tab order following orderedIDs, which must be
// a full permutation of the existing tab ids.
func ReorderTabs(m *Manifest, orderedIDs []string) error {
	existing := make([]string, len(m.Tabs))
	for i, t := range m.Tabs {
		existing[i] = t.ID
	}
	if err := checkPermutation("tabs", orderedIDs, existing); err != nil {
		return err
	}
	pos := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		pos[id] = i
	}
	for i := range m.Tabs {
		m.Tabs[i].Order = pos[m.Tabs[i].ID]
	}
	m.SortTabs()
	return nil
}

// DeleteTab removes a tab and resolves the groups whose effective tab
// affiliation pointed at it, per strategy:
//
//   - orphan: the groups lose their tab linkage (tabId and parent
//     cleared) and become universal;
//   - cascade: the groups are deleted; their slides revert to
//     ungrouped (slides are never deleted as a side effect);
//   - reparent: the groups get a direct tabId pointing at the target,
//     which must exist and differ from the deleted tab.
func DeleteTab(m *Manifest, id string, strat DeleteTabStrategy) error {
	idx := m.TabIndex(id)
	if idx < 0 {
		return apperr.NotFound("tab %q", id)
	}
	if strat.Kind == DeleteReparent {
		if strat.Target == id {
			return apperr.NewValidation("strategy", "cannot reparent onto the deleted tab %q", id)
		}
		if m.TabIndex(strat.Target) < 0 {
			return apperr.NotFound("reparent target tab %q", strat.Target)
		}
	}

	// Resolve affected groups before touching anything.
	var affected []string
	for gid := range m.Groups {
		if m.EffectiveTabID(gid) == id {
			affected = append(affected, gid)
		}
	}
	sort.Strings(affected)

	switch strat.Kind {
	case DeleteOrphan, "":
		for _, gid := range affected {
			g := m.Groups[gid]
			g.TabID = ""
			g.Parent = ""
			m.Groups[gid] = g
		}
	case DeleteCascade:
		deleted := make(map[string]struct{}, len(affected))
		for _, gid := range affected {
			deleted[gid] = struct{}{}
			delete(m.Groups, gid)
		}
		for i := range m.Slides {
			if _, gone := deleted[m.Slides[i].Group]; gone {
				m.Slides[i].Group = ""
			}
		}
		// Surviving groups keep their own tab but lose deleted parents.
		for gid, g := range m.Groups {
			if _, gone := deleted[g.Parent]; gone {
				g.Parent = ""
				m.Groups[gid] = g
			}
		}
	case DeleteReparent:
		for _, gid := range affected {
			g := m.Groups[gid]
			g.TabID = strat.Target
			g.Parent = ""
			m.Groups[gid] = g
		}
	default:
		return apperr.NewValidation("strategy", "unknown strategy %q", strat.Kind)
	}

	m.Tabs = append(m.Tabs[:idx], m.Tabs[idx+1:]...)
	return nil
}

// CreateGroup adds a new group with a trailing order position.
func CreateGroup(m *Manifest, id, label string) error {
	if !idRe.MatchString(id) {
		return apperr.NewValidation("id", "invalid group id %q", id)
	}
	if _, exists := m.Groups[id]; exists {
		return apperr.Conflict("group %q already exists", id)
	}
	if label == "" {
		label = Labelize(id)
	}
	m.Groups[id] = Group{Label: label, Order: nextGroupOrder(m)}
	return nil
}

// GroupPatch contains the updatable group fields; nil means unchanged.
type GroupPatch struct {
	Label *string `json:"label"`
	Order *int    `json:"order"`
	Tab   *bool   `json:"tab"`
	TabID *string `json:"tabId"`
}

// UpdateGroup applies a partial update to an existing group.
func UpdateGroup(m *Manifest, id string, patch GroupPatch) error {
	g, ok := m.Groups[id]
	if !ok {
		return apperr.NotFound("group %q", id)
	}
	if patch.Label != nil {
		if *patch.Label == "" {
			return apperr.NewValidation("label", "label cannot be empty")
		}
		g.Label = *patch.Label
	}
	if patch.Order != nil {
		g.Order = *patch.Order
	}
	if patch.Tab != nil {
		g.Tab = *patch.Tab
	}
	if patch.TabID != nil {
		if *patch.TabID != "" && m.TabIndex(*patch.TabID) < 0 {
			return apperr.NotFound("tab %q", *patch.TabID)
		}
		g.TabID = *patch.TabID
	}
	m.Groups[id] = g
	return nil
}

// DeleteGroup removes a group. Its slides move to ungrouped and any
// child groups lose their parent link; nothing else is touched.
func DeleteGroup(m *Manifest, id string) error {
	if _, ok := m.Groups[id]; !ok {
		return apperr.NotFound("group %q", id)
	}
	delete(m.Groups, id)
	for i := range m.Slides {
		if m.Slides[i].Group == id {
			m.Slides[i].Group = ""
		}
	}
	for gid, g := range m.Groups {
		if g.Parent == id {
			g.Parent = ""
			m.Groups[gid] = g
		}
	}
	return nil
}

// ReorderGroups reassigns group order following orderedIDs, which must
// be a full permutation of the existing group ids.
func ReorderGroups(m *Manifest, orderedIDs []string) error {
	existing := make([]string, 0, len(m.Groups))
	for id := range m.Groups {
		existing = append(existing, id)
	}
	if err := checkPermutation("groups", orderedIDs, existing); err != nil {
		return err
	}
	for i, id := range orderedIDs {
		g := m.Groups[id]
		g.Order = i
		m.Groups[id] = g
	}
	return nil
}

// SetGroupParent links a group to a parent whose tab affiliation it
// inherits. Assignments that would create a cycle are rejected.
func SetGroupParent(m *Manifest, id, parentID string) error {
	g, ok := m.Groups[id]
	if !ok {
		return apperr.NotFound("group %q", id)
	}
	if _, ok := m.Groups[parentID]; !ok {
		return apperr.NotFound("parent group %q", parentID)
	}
	if parentID == id {
		return apperr.NewValidation("parent", "group %q cannot be its own parent", id)
	}
	// Walk up from the proposed parent; reaching id again means a cycle.
	seen := map[string]struct{}{id: {}}
	cur := parentID
	for cur != "" {
		if _, dup := seen[cur]; dup {
			return apperr.Cycle("setting parent of %q to %q", id, parentID)
		}
		seen[cur] = struct{}{}
		next, ok := m.Groups[cur]
		if !ok {
			break
		}
		cur = next.Parent
	}
	g.Parent = parentID
	m.Groups[id] = g
	return nil
}

// RemoveGroupParent clears a group's parent link.
func RemoveGroupParent(m *Manifest, id string) error {
	g, ok := m.Groups[id]
	if !ok {
		return apperr.NotFound("group %q", id)
	}
	g.Parent = ""
	m.Groups[id] = g
	return nil
}

func nextGroupOrder(m *Manifest) int {
	order := 0
	for _, g := range m.Groups {
		if g.Order >= order {
			order = g.Order + 1
		}
	}
	return order
}

// checkPermutation verifies got is exactly a reordering of want.
// Partial permutations are an error, never a silent partial reorder.
func checkPermutation(what string, got, want []string) error {
	if len(got) != len(want) {
		return apperr.NewValidation(what, "reorder needs all %d ids, got %d", len(want), len(got))
	}
	wantSet := make(map[string]struct{}, len(want))
	for _, id := range want {
		wantSet[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(got))
	ve := &apperr.ValidationError{}
	for _, id := range got {
		if _, dup := seen[id]; dup {
			ve.Add(what, "duplicate id %q", id)
			continue
		}
		seen[id] = struct{}{}
		if _, ok := wantSet[id]; !ok {
			ve.Add(what, "unknown id %q", id)
		}
	}
	for _, id := range want {
		if _, ok := seen[id]; !ok {
			ve.Add(what, "missing id %q", id)
		}
	}
	return ve.OrNil()
}
