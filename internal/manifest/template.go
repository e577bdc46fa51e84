package manifest

// ApplyTemplate applies a manifest-shaped template document. Template
// slides are ignored: existing slides are always preserved, regardless
// of mode.
//
// With merge=false the template's tabs, groups, and meta replace the
// manifest's wholesale. With merge=true they are merged underneath the
// existing values: existing tabs, groups, and non-empty meta fields
// win on collision.
func ApplyTemplate(m *Manifest, tpl *Manifest, merge bool) {
	if !merge {
		m.Tabs = append([]Tab(nil), tpl.Tabs...)
		m.Groups = make(map[string]Group, len(tpl.Groups))
		for id, g := range tpl.Groups {
			m.Groups[id] = g
		}
		m.Meta = tpl.Meta
		m.Normalize()
		return
	}

	for _, t := range tpl.Tabs {
		if m.TabIndex(t.ID) < 0 {
			m.Tabs = append(m.Tabs, t)
		}
	}
	for id, g := range tpl.Groups {
		if _, exists := m.Groups[id]; !exists {
			m.Groups[id] = g
		}
	}
	if m.Meta.Title == "" {
		m.Meta.Title = tpl.Meta.Title
	}
	if m.Meta.Description == "" {
		m.Meta.Description = tpl.Meta.Description
	}
	if m.Meta.Author == "" {
		m.Meta.Author = tpl.Meta.Author
	}
	if m.Meta.DisplayMode == "" {
		m.Meta.DisplayMode = tpl.Meta.DisplayMode
	}
	m.Normalize()
}
