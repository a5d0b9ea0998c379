package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/corpusfetch/internal/model"
)

// minHTMLLineRunes drops menu fragments and stray punctuation.
const minHTMLLineRunes = 3

// chromeSelector matches page furniture that is not part of the text.
const chromeSelector = ".navbox, .toc, .mw-editsection, script, style, noscript"

// contentSelectors are tried in order to find the article body.
var contentSelectors = []string{"#mw-content-text", ".mw-parser-output", "body"}

// blockElements start a new line when their text is extracted.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.Ul: true, atom.Ol: true, atom.Dl: true, atom.Dd: true, atom.Dt: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Table: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Center: true, atom.Section: true,
}

// HTML normalizes a rendered wiki page.
type HTML struct{}

// Normalize implements Normalizer.
func (HTML) Normalize(payload model.Payload) model.CanonicalText {
	s, ok := payload.Text.(string)
	if !ok {
		return model.PlaceholderText(model.NoContent)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return model.PlaceholderText(model.NoContent)
	}

	content := articleBody(doc)
	content.Find(chromeSelector).Remove()

	var b strings.Builder
	for _, n := range content.Nodes {
		writeText(&b, n)
	}

	var lines []string
	for _, line := range splitLines(b.String()) {
		if utf8.RuneCountInString(line) >= minHTMLLineRunes {
			lines = append(lines, line)
		}
	}
	return fromLines(lines)
}

func articleBody(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return doc.Selection
}

// writeText appends the text of n, breaking lines around block elements.
func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
}
