package manifest

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLegacyStringGroups(t *testing.T) {
	raw := []byte(`{
		"groups": {"intro": "Introduction", "advanced": {"label": "Advanced", "order": 2}},
		"slides": [{"file": "intro-a.html", "group": "intro"}]
	}`)
	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g := m.Groups["intro"]; g.Label != "Introduction" || g.Order != 0 {
		t.Errorf("legacy group = %+v", g)
	}
	if g := m.Groups["advanced"]; g.Label != "Advanced" || g.Order != 2 {
		t.Errorf("rich group = %+v", g)
	}
}

func TestParseNormalizesNilCollections(t *testing.T) {
	m, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Tabs == nil || m.Groups == nil || m.Slides == nil {
		t.Errorf("collections not initialised: %+v", m)
	}
}

func TestNormalizeCoercesRetiredDisplayMode(t *testing.T) {
	m, err := Parse([]byte(`{"meta": {"displayMode": "tabbed"}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Meta.DisplayMode != DisplayGrouped {
		t.Errorf("displayMode = %q, want %q", m.Meta.DisplayMode, DisplayGrouped)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	m := New()
	m.Slides = append(m.Slides, Slide{File: "a.html", Title: "A"})
	m.Groups["g"] = Group{Label: "G", Order: 1}

	data, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("encoded manifest lacks trailing newline")
	}
	if m.Stats.SlideCount != 1 || m.Stats.GroupCount != 1 {
		t.Errorf("stats not refreshed: %+v", m.Stats)
	}

	back, err := Parse(data)
	if err != nil {
		t.Fatalf("re-Parse: %v", err)
	}
	if len(back.Slides) != 1 || back.Slides[0].Title != "A" {
		t.Errorf("round trip lost slides: %+v", back.Slides)
	}
}

func TestEncodeRewritesLegacyGroupShape(t *testing.T) {
	m, err := Parse([]byte(`{"groups": {"intro": "Introduction"}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	data, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var probe struct {
		Groups map[string]json.RawMessage `json:"groups"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if raw := probe.Groups["intro"]; len(raw) == 0 || raw[0] != '{' {
		t.Errorf("legacy group not rewritten as object: %s", raw)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := New()
	m.Tabs = append(m.Tabs, Tab{ID: "t", Label: "T", File: "index-t.html"})
	m.Groups["g"] = Group{Label: "G"}
	m.Slides = append(m.Slides, Slide{File: "a.html", Tags: []string{"x"}})

	c := m.Clone()
	c.Tabs[0].Label = "changed"
	c.Groups["g"] = Group{Label: "changed"}
	c.Slides[0].File = "changed.html"
	c.Slides[0].Tags[0] = "changed"

	if m.Tabs[0].Label != "T" || m.Groups["g"].Label != "G" || m.Slides[0].File != "a.html" {
		t.Errorf("clone shares state with original: %+v", m)
	}
	if m.Slides[0].Tags[0] != "x" {
		t.Error("clone shares tag slice with original")
	}
}

func TestEffectiveTabID(t *testing.T) {
	m := New()
	m.Tabs = append(m.Tabs, Tab{ID: "ws", Label: "Workshop", File: "index-ws.html"})
	m.Groups["root"] = Group{Label: "Root", TabID: "ws"}
	m.Groups["child"] = Group{Label: "Child", Parent: "root"}
	m.Groups["grandchild"] = Group{Label: "Grandchild", Parent: "child"}
	m.Groups["free"] = Group{Label: "Free"}
	m.Groups["dangling"] = Group{Label: "Dangling", Parent: "missing"}

	cases := map[string]string{
		"root":       "ws",
		"child":      "ws",
		"grandchild": "ws",
		"free":       "",
		"dangling":   "",
		"missing":    "",
	}
	for gid, want := range cases {
		if got := m.EffectiveTabID(gid); got != want {
			t.Errorf("EffectiveTabID(%q) = %q, want %q", gid, got, want)
		}
	}
}

func TestEffectiveTabIDTerminatesOnCycle(t *testing.T) {
	m := New()
	m.Groups["a"] = Group{Parent: "b"}
	m.Groups["b"] = Group{Parent: "a"}
	if got := m.EffectiveTabID("a"); got != "" {
		t.Errorf("cyclic chain resolved to %q, want empty", got)
	}
}

func TestGroupIDsSortedTieBreaksByID(t *testing.T) {
	m := New()
	m.Groups["bravo"] = Group{Order: 1}
	m.Groups["alpha"] = Group{Order: 1}
	m.Groups["zulu"] = Group{Order: 0}

	got := m.GroupIDsSorted()
	want := []string{"zulu", "alpha", "bravo"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestLabelize(t *testing.T) {
	cases := map[string]string{
		"getting-started": "Getting Started",
		"intro":           "Intro",
		"a_b":             "A B",
	}
	for in, want := range cases {
		if got := Labelize(in); got != want {
			t.Errorf("Labelize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTabFile(t *testing.T) {
	if got := TabFile("workshop"); got != "index-workshop.html" {
		t.Errorf("TabFile = %q", got)
	}
}
