package manifest

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/models"
)

func mapReader(files map[string]string) ReadFileFunc {
	return func(file string) ([]byte, error) {
		data, ok := files[file]
		if !ok {
			return nil, errors.New("no such file")
		}
		return []byte(data), nil
	}
}

func TestSyncManifestRequiresStrategy(t *testing.T) {
	m := New()
	if _, err := SyncManifest(context.Background(), m, nil, SyncOptions{}, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty strategy: err = %v", err)
	}
	if _, err := SyncManifest(context.Background(), m, nil, SyncOptions{Strategy: "upsert"}, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown strategy: err = %v", err)
	}
}

func TestSyncManifestMerge(t *testing.T) {
	m := New()
	m.Groups["intro"] = Group{Label: "Introduction"}
	m.Slides = append(m.Slides,
		Slide{File: "intro-a.html", Title: "Kept Title", Group: "intro"},
		Slide{File: "intro-b.html"}, // title and group to be filled in
	)
	assets := []models.Asset{
		asset("index.html"),
		asset("intro-a.html"),
		asset("intro-b.html"),
		asset("intro-c.html"), // new
	}
	reader := mapReader(map[string]string{
		"intro-b.html": "<html><head><title>B Title</title></head></html>",
		"intro-c.html": "<html><head><title>C Title</title></head></html>",
	})

	report, err := SyncManifest(context.Background(), m, assets, SyncOptions{
		Strategy:    SyncMerge,
		InferGroups: true,
		InferTitles: true,
	}, reader)
	if err != nil {
		t.Fatalf("SyncManifest: %v", err)
	}
	if report.Added != 1 || report.Updated != 1 || report.Removed != 0 {
		t.Errorf("report = %+v", report)
	}
	if m.Slides[0].Title != "Kept Title" {
		t.Errorf("existing title overwritten: %+v", m.Slides[0])
	}
	if m.Slides[1].Title != "B Title" || m.Slides[1].Group != "intro" {
		t.Errorf("empty fields not filled: %+v", m.Slides[1])
	}
	i := m.FindSlide("intro-c.html")
	if i < 0 {
		t.Fatalf("new file not added: %+v", m.Slides)
	}
	if m.Slides[i].Title != "C Title" || m.Slides[i].Group != "intro" {
		t.Errorf("new entry = %+v", m.Slides[i])
	}
}

func TestSyncManifestReplace(t *testing.T) {
	m := New()
	m.Slides = append(m.Slides,
		Slide{File: "stays.html", Title: "Metadata Kept", Group: "g"},
		Slide{File: "gone.html", Title: "Stale"},
	)
	assets := []models.Asset{asset("index.html"), asset("stays.html"), asset("fresh.html")}

	report, err := SyncManifest(context.Background(), m, assets, SyncOptions{Strategy: SyncReplace}, nil)
	if err != nil {
		t.Fatalf("SyncManifest: %v", err)
	}
	if report.Added != 1 || report.Removed != 1 {
		t.Errorf("report = %+v", report)
	}
	if m.FindSlide("gone.html") >= 0 {
		t.Error("stale entry survived replace")
	}
	if i := m.FindSlide("stays.html"); i < 0 || m.Slides[i].Title != "Metadata Kept" {
		t.Errorf("metadata lost for surviving file: %+v", m.Slides)
	}
}

func TestSyncManifestAddOnly(t *testing.T) {
	m := New()
	m.Slides = append(m.Slides, Slide{File: "a.html"})
	assets := []models.Asset{asset("a.html"), asset("b.html")}
	reader := mapReader(map[string]string{
		"a.html": "<html><head><title>Should Not Apply</title></head></html>",
	})

	report, err := SyncManifest(context.Background(), m, assets, SyncOptions{
		Strategy:    SyncAddOnly,
		InferTitles: true,
	}, reader)
	if err != nil {
		t.Fatalf("SyncManifest: %v", err)
	}
	if report.Added != 1 || report.Updated != 0 {
		t.Errorf("report = %+v", report)
	}
	if m.Slides[0].Title != "" {
		t.Errorf("addOnly touched an existing entry: %+v", m.Slides[0])
	}
}

func TestSyncManifestIgnoresNavigationFiles(t *testing.T) {
	m := New()
	assets := []models.Asset{asset("index.html"), asset("index-tab.html"), asset("real.html")}

	report, err := SyncManifest(context.Background(), m, assets, SyncOptions{Strategy: SyncMerge}, nil)
	if err != nil {
		t.Fatalf("SyncManifest: %v", err)
	}
	if report.Added != 1 {
		t.Errorf("report = %+v", report)
	}
	if m.FindSlide("index-tab.html") >= 0 || m.FindSlide("index.html") >= 0 {
		t.Errorf("navigation file listed as slide: %+v", m.Slides)
	}
}

func TestSyncManifestCancelledContextLeavesManifestUntouched(t *testing.T) {
	m := New()
	assets := []models.Asset{asset("a.html")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SyncManifest(ctx, m, assets, SyncOptions{Strategy: SyncMerge}, nil)
	if err == nil {
		t.Fatal("cancelled context not reported")
	}
	if len(m.Slides) != 0 {
		t.Errorf("manifest mutated after cancellation: %+v", m.Slides)
	}
}

func TestInferGroupID(t *testing.T) {
	cases := map[string]string{
		"intro-overview.html": "intro",
		"intro_overview.html": "intro",
		"deep.dive.html":      "deep",
		"single.html":         "",
		"UPPER-case.html":     "upper",
	}
	for in, want := range cases {
		if got := inferGroupID(in); got != want {
			t.Errorf("inferGroupID(%q) = %q, want %q", in, got, want)
		}
	}
}

func indexDoc(title string, cardFiles ...string) string {
	body := ""
	for _, f := range cardFiles {
		body += `<div class="card"><a href="` + f + `"><h3>` + f + ` title</h3><p>desc</p></a></div>`
	}
	return "<html><head><title>" + title + "</title></head><body>" + body + "</body></html>"
}

func TestSyncFromIndexInfersTabsAndCards(t *testing.T) {
	m := New()
	assets := []models.Asset{
		asset("index.html"),
		asset("index-basics.html"),
		asset("basics-one.html"),
		asset("basics-two.html"),
		asset("loose.html"),
	}
	reader := mapReader(map[string]string{
		"index-basics.html": indexDoc("The Basics", "basics-one.html", "basics-two.html", "missing.html"),
	})

	report, err := SyncFromIndex(context.Background(), m, assets, IndexSyncOptions{
		Strategy:   SyncMerge,
		InferTabs:  true,
		ParseCards: true,
	}, reader)
	if err != nil {
		t.Fatalf("SyncFromIndex: %v", err)
	}

	if report.TabsCreated != 1 || report.GroupsCreated != 1 {
		t.Errorf("report = %+v", report)
	}
	if i := m.TabIndex("basics"); i < 0 || m.Tabs[i].Label != "The Basics" || m.Tabs[i].File != "index-basics.html" {
		t.Errorf("tab = %+v", m.Tabs)
	}
	if g := m.Groups["basics"]; g.TabID != "basics" {
		t.Errorf("group = %+v", g)
	}
	if report.SlidesAssigned != 2 {
		t.Errorf("assigned = %d", report.SlidesAssigned)
	}
	if i := m.FindSlide("basics-one.html"); i < 0 || m.Slides[i].Group != "basics" {
		t.Errorf("slides = %+v", m.Slides)
	}
	// Card pointing at a nonexistent file is skipped with a warning.
	if report.SlidesSkipped != 1 || len(report.Warnings) == 0 {
		t.Errorf("report = %+v", report)
	}
	if m.FindSlide("missing.html") >= 0 {
		t.Error("phantom card entry created")
	}
	// loose.html appears in no index.
	if report.SlidesOrphaned != 1 {
		t.Errorf("orphaned = %d", report.SlidesOrphaned)
	}
}

func TestSyncFromIndexTabLabelFallsBackToID(t *testing.T) {
	m := New()
	assets := []models.Asset{asset("index-deep-dive.html")}
	reader := mapReader(map[string]string{"index-deep-dive.html": "<html></html>"})

	_, err := SyncFromIndex(context.Background(), m, assets, IndexSyncOptions{
		Strategy:  SyncMerge,
		InferTabs: true,
	}, reader)
	if err != nil {
		t.Fatalf("SyncFromIndex: %v", err)
	}
	if i := m.TabIndex("deep-dive"); i < 0 || m.Tabs[i].Label != "Deep Dive" {
		t.Errorf("tabs = %+v", m.Tabs)
	}
}

func TestSyncFromIndexMergeKeepsExistingTitles(t *testing.T) {
	m := New()
	m.Slides = append(m.Slides, Slide{File: "basics-one.html", Title: "Hand Written"})
	assets := []models.Asset{asset("index-basics.html"), asset("basics-one.html")}
	reader := mapReader(map[string]string{
		"index-basics.html": indexDoc("Basics", "basics-one.html"),
	})

	_, err := SyncFromIndex(context.Background(), m, assets, IndexSyncOptions{
		Strategy:   SyncMerge,
		ParseCards: true,
	}, reader)
	if err != nil {
		t.Fatalf("SyncFromIndex: %v", err)
	}
	i := m.FindSlide("basics-one.html")
	if m.Slides[i].Title != "Hand Written" {
		t.Errorf("merge overwrote title: %+v", m.Slides[i])
	}
	if m.Slides[i].Group != "basics" {
		t.Errorf("group not assigned: %+v", m.Slides[i])
	}
}

func TestSyncFromIndexReplaceOverwritesTitles(t *testing.T) {
	m := New()
	m.Slides = append(m.Slides, Slide{File: "basics-one.html", Title: "Old"})
	assets := []models.Asset{asset("index-basics.html"), asset("basics-one.html")}
	reader := mapReader(map[string]string{
		"index-basics.html": indexDoc("Basics", "basics-one.html"),
	})

	_, err := SyncFromIndex(context.Background(), m, assets, IndexSyncOptions{
		Strategy:   SyncReplace,
		ParseCards: true,
	}, reader)
	if err != nil {
		t.Fatalf("SyncFromIndex: %v", err)
	}
	i := m.FindSlide("basics-one.html")
	if m.Slides[i].Title != "basics-one.html title" {
		t.Errorf("replace kept old title: %+v", m.Slides[i])
	}
}

func TestIsTabIndex(t *testing.T) {
	cases := map[string]bool{
		"index-basics.html":    true,
		"index-deep-dive.html": true,
		"index.html":           false,
		"index-.html":          false,
		"basics.html":          false,
		"index-Basics.html":    false,
	}
	for in, want := range cases {
		if got := IsTabIndex(in); got != want {
			t.Errorf("IsTabIndex(%q) = %v, want %v", in, got, want)
		}
	}
}
