package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/corpusfetch/internal/model"
)

// LinkScanner extracts the titles a page links to.
type LinkScanner interface {
	Links(payload model.Payload) []string
}

// wikiLinkRegex matches [[target]] and [[target|label]].
var wikiLinkRegex = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// WikiLinks scans raw wikitext.
type WikiLinks struct{}

// Links implements LinkScanner.
func (WikiLinks) Links(payload model.Payload) []string {
	s, ok := payload.Text.(string)
	if !ok {
		return nil
	}
	matches := wikiLinkRegex.FindAllStringSubmatch(s, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		target, _, _ := strings.Cut(m[1], "|")
		if target = strings.TrimSpace(target); target != "" {
			links = append(links, target)
		}
	}
	return links
}

// HTMLLinks scans a rendered page for links to other wiki pages.
// Only links inside the article body are considered.
type HTMLLinks struct{}

const wikiPathPrefix = "/wiki/"

// Links implements LinkScanner.
func (HTMLLinks) Links(payload model.Payload) []string {
	s, ok := payload.Text.(string)
	if !ok {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil
	}

	body := doc.Find("#mw-content-text").First()
	if body.Length() == 0 {
		body = doc.Find(".mw-parser-output").First()
	}
	if body.Length() == 0 {
		body = doc.Selection
	}

	var links []string
	body.Find(`a[href^="` + wikiPathPrefix + `"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if title := titleFromPath(href); title != "" {
			links = append(links, title)
		}
	})
	return links
}

// titleFromPath turns "/wiki/Some_Title#x" into "Some_Title".
func titleFromPath(href string) string {
	path := strings.TrimPrefix(href, wikiPathPrefix)
	path, _, _ = strings.Cut(path, "#")
	path, _, _ = strings.Cut(path, "?")
	title, err := url.PathUnescape(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(title)
}
