// Package htmldoc extracts titles and card markup from slide and index
// documents. It is a best-effort heuristic layer: malformed HTML never
// produces an error, only degraded output.
package htmldoc

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Card is a card-like fragment inside an index document that points at
// a slide file.
type Card struct {
	File        string `json:"file"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Document is the parsed view of an HTML file.
type Document struct {
	Title string `json:"title,omitempty"`
	Cards []Card `json:"cards,omitempty"`
}

// Parse extracts the document title and any slide cards from raw HTML.
// x/net/html tolerates arbitrary malformed input, so the only failure
// mode is an empty Document.
func Parse(data []byte) *Document {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return &Document{}
	}
	doc := &Document{Title: findTitle(root)}
	collectCards(root, doc)
	return doc
}

// findTitle returns the text of the first <title> element.
func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// collectCards walks the tree looking for card containers: elements
// whose class mentions "card", or, failing that, bare anchors pointing
// at .html slide files. Document order is preserved.
func collectCards(n *html.Node, doc *Document) {
	if n.Type == html.ElementNode {
		if hasCardClass(n) {
			if card, ok := cardFromNode(n); ok {
				doc.Cards = append(doc.Cards, card)
			}
			return // don't descend into a matched card
		}
		if n.Data == "a" {
			if file := slideHref(n); file != "" {
				doc.Cards = append(doc.Cards, Card{File: file, Title: textContent(n)})
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectCards(c, doc)
	}
}

// cardFromNode builds a Card from a card container element.
func cardFromNode(n *html.Node) (Card, bool) {
	card := Card{}
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "a":
				if card.File == "" {
					card.File = slideHref(node)
				}
			case "h1", "h2", "h3", "h4":
				if card.Title == "" {
					card.Title = textContent(node)
				}
			case "p":
				if card.Description == "" {
					card.Description = textContent(node)
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	// The card element itself may be the anchor.
	if n.Data == "a" {
		card.File = slideHref(n)
	}
	walk(n)
	if card.Title == "" {
		card.Title = textContent(n)
		if len(card.Title) > 80 {
			card.Title = ""
		}
	}
	return card, card.File != ""
}

func hasCardClass(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, cls := range strings.Fields(attr.Val) {
			if strings.Contains(strings.ToLower(cls), "card") {
				return true
			}
		}
	}
	return false
}

// slideHref returns the anchor target when it is a plain local .html
// reference, with any query or fragment stripped.
func slideHref(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		href := strings.TrimSpace(attr.Val)
		if i := strings.IndexAny(href, "?#"); i >= 0 {
			href = href[:i]
		}
		if href == "" || strings.Contains(href, "://") || strings.ContainsAny(href, "/\\") {
			return ""
		}
		if strings.HasSuffix(href, ".html") {
			return href
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
