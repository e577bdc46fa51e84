package htmldoc

import "testing"

func TestParseTitle(t *testing.T) {
	doc := Parse([]byte(`<html><head><title>  My Deck  </title></head><body></body></html>`))
	if doc.Title != "My Deck" {
		t.Errorf("title = %q", doc.Title)
	}
}

func TestParseNoTitle(t *testing.T) {
	doc := Parse([]byte(`<html><body><p>hi</p></body></html>`))
	if doc.Title != "" {
		t.Errorf("title = %q", doc.Title)
	}
}

func TestParseMalformedNeverPanics(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte(""),
		[]byte("<<<>>>"),
		[]byte("<div><a href="),
		[]byte(`<title>`),
	}
	for _, in := range inputs {
		if doc := Parse(in); doc == nil {
			t.Errorf("Parse(%q) returned nil", in)
		}
	}
}

func TestParseCardContainers(t *testing.T) {
	doc := Parse([]byte(`
		<html><body>
			<div class="slide-card">
				<a href="one.html"><h3>One</h3><p>First slide</p></a>
			</div>
			<div class="card">
				<a href="two.html?v=2#frag"></a>
				<h2>Two</h2>
			</div>
			<div class="plain"><span>not a card</span></div>
		</body></html>`))

	if len(doc.Cards) != 2 {
		t.Fatalf("cards = %+v", doc.Cards)
	}
	if doc.Cards[0].File != "one.html" || doc.Cards[0].Title != "One" || doc.Cards[0].Description != "First slide" {
		t.Errorf("card 0 = %+v", doc.Cards[0])
	}
	// Query and fragment are stripped.
	if doc.Cards[1].File != "two.html" || doc.Cards[1].Title != "Two" {
		t.Errorf("card 1 = %+v", doc.Cards[1])
	}
}

func TestParseBareAnchors(t *testing.T) {
	doc := Parse([]byte(`
		<html><body>
			<a href="slide.html">A fine slide</a>
			<a href="https://example.com/out.html">external</a>
			<a href="sub/dir.html">nested</a>
			<a href="style.css">asset</a>
		</body></html>`))

	if len(doc.Cards) != 1 {
		t.Fatalf("cards = %+v", doc.Cards)
	}
	if doc.Cards[0].File != "slide.html" || doc.Cards[0].Title != "A fine slide" {
		t.Errorf("card = %+v", doc.Cards[0])
	}
}

func TestParseCardWithoutLinkIsDropped(t *testing.T) {
	doc := Parse([]byte(`<div class="card"><h3>No link here</h3></div>`))
	if len(doc.Cards) != 0 {
		t.Errorf("cards = %+v", doc.Cards)
	}
}

func TestParsePreservesDocumentOrder(t *testing.T) {
	doc := Parse([]byte(`
		<div class="card"><a href="b.html"></a></div>
		<a href="a.html">middle</a>
		<div class="card"><a href="c.html"></a></div>`))

	want := []string{"b.html", "a.html", "c.html"}
	if len(doc.Cards) != len(want) {
		t.Fatalf("cards = %+v", doc.Cards)
	}
	for i, f := range want {
		if doc.Cards[i].File != f {
			t.Errorf("cards[%d] = %q, want %q", i, doc.Cards[i].File, f)
		}
	}
}
