package manifest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/models"
)

func validManifest() *Manifest {
	m := New()
	m.Tabs = append(m.Tabs, Tab{ID: "workshop", Label: "Workshop", File: "index-workshop.html", Order: 0})
	m.Groups["intro"] = Group{Label: "Introduction", Order: 0, TabID: "workshop"}
	m.Slides = append(m.Slides,
		Slide{File: "intro-a.html", Title: "A", Group: "intro"},
		Slide{File: "notes.html", Title: "Notes"},
	)
	return m
}

func findIssue(issues []apperr.Issue, substr string) bool {
	for _, i := range issues {
		if strings.Contains(i.String(), substr) {
			return true
		}
	}
	return false
}

func TestValidateAcceptsValidManifest(t *testing.T) {
	res := Validate(validManifest())
	if !res.Valid {
		t.Fatalf("valid manifest rejected: %+v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", res.Warnings)
	}
}

func TestValidateRejectsBadIDs(t *testing.T) {
	m := validManifest()
	m.Tabs = append(m.Tabs, Tab{ID: "Bad_ID", Label: "Bad", File: "index-bad.html"})
	res := Validate(m)
	if res.Valid {
		t.Fatal("manifest with invalid tab id accepted")
	}
	if !findIssue(res.Errors, "Bad_ID") {
		t.Errorf("no error for invalid id: %+v", res.Errors)
	}
}

func TestValidateRejectsDuplicateSlideFiles(t *testing.T) {
	m := validManifest()
	m.Slides = append(m.Slides, Slide{File: "intro-a.html"})
	res := Validate(m)
	if res.Valid {
		t.Fatal("duplicate slide file accepted")
	}
	if !findIssue(res.Errors, "duplicate slide file") {
		t.Errorf("errors = %+v", res.Errors)
	}
}

func TestValidateDanglingGroupIsWarning(t *testing.T) {
	m := validManifest()
	m.Slides = append(m.Slides, Slide{File: "x.html", Group: "ghost"})
	res := Validate(m)
	if !res.Valid {
		t.Fatalf("dangling group reference should not invalidate: %+v", res.Errors)
	}
	if !findIssue(res.Warnings, `"ghost"`) {
		t.Errorf("warnings = %+v", res.Warnings)
	}
}

func TestValidateDanglingTabIDIsWarning(t *testing.T) {
	m := validManifest()
	g := m.Groups["intro"]
	g.TabID = "gone"
	m.Groups["intro"] = g
	res := Validate(m)
	if !res.Valid {
		t.Fatalf("dangling tabId should not invalidate: %+v", res.Errors)
	}
	if !findIssue(res.Warnings, `"gone"`) {
		t.Errorf("warnings = %+v", res.Warnings)
	}
}

func TestValidateParentCycleIsError(t *testing.T) {
	m := validManifest()
	m.Groups["a"] = Group{Label: "A", Parent: "b"}
	m.Groups["b"] = Group{Label: "B", Parent: "a"}
	res := Validate(m)
	if res.Valid {
		t.Fatal("parent cycle accepted")
	}
	if !findIssue(res.Errors, "cycle") {
		t.Errorf("errors = %+v", res.Errors)
	}
}

func TestValidateSelfParentIsError(t *testing.T) {
	m := validManifest()
	m.Groups["selfie"] = Group{Label: "S", Parent: "selfie"}
	res := Validate(m)
	if res.Valid {
		t.Fatal("self parent accepted")
	}
}

func TestValidateDisplayModes(t *testing.T) {
	m := validManifest()

	m.Meta.DisplayMode = "grouped"
	if res := Validate(m); !res.Valid {
		t.Errorf("grouped rejected: %+v", res.Errors)
	}

	m.Meta.DisplayMode = "tabbed"
	res := Validate(m)
	if !res.Valid {
		t.Errorf("retired mode must validate with a warning, got errors: %+v", res.Errors)
	}
	if !findIssue(res.Warnings, "retired") {
		t.Errorf("warnings = %+v", res.Warnings)
	}

	m.Meta.DisplayMode = "carousel"
	if res := Validate(m); res.Valid {
		t.Error("unknown display mode accepted")
	}
}

func TestResultErr(t *testing.T) {
	res := Validate(validManifest())
	if err := res.Err(); err != nil {
		t.Errorf("valid result produced error: %v", err)
	}

	m := validManifest()
	m.Slides[0].File = "no-extension"
	res = Validate(m)
	err := res.Err()
	if err == nil {
		t.Fatal("invalid result produced nil error")
	}
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func asset(file string) models.Asset {
	return models.Asset{
		ID:        strings.TrimSuffix(file, ".html"),
		File:      file,
		IsIndex:   file == models.IndexFile,
		UpdatedAt: time.Now(),
	}
}

func TestCheckFiles(t *testing.T) {
	m := validManifest()
	assets := []models.Asset{
		asset("index.html"),
		asset("index-workshop.html"),
		asset("intro-a.html"),
		asset("unlisted.html"),
	}

	res := CheckFiles(m, assets)
	// notes.html listed but missing on disk.
	if res.Valid {
		t.Fatal("missing slide file should be an error")
	}
	if !findIssue(res.Errors, `"notes.html"`) {
		t.Errorf("errors = %+v", res.Errors)
	}
	// unlisted.html on disk but unreferenced.
	if !findIssue(res.Warnings, `"unlisted.html"`) {
		t.Errorf("warnings = %+v", res.Warnings)
	}
}

func TestCheckFilesMissingTabFileIsWarning(t *testing.T) {
	m := validManifest()
	assets := []models.Asset{
		asset("index.html"),
		asset("intro-a.html"),
		asset("notes.html"),
	}
	res := CheckFiles(m, assets)
	if !res.Valid {
		t.Fatalf("missing tab file should not invalidate: %+v", res.Errors)
	}
	if !findIssue(res.Warnings, `"index-workshop.html"`) {
		t.Errorf("warnings = %+v", res.Warnings)
	}
}
