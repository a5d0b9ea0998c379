package normalize

import (
	"regexp"
	"strings"

	"github.com/nao1215/corpusfetch/internal/model"
)

var (
	refPairRegex   = regexp.MustCompile(`(?s)<ref[^>]*>.*?</ref>`)
	refSelfRegex   = regexp.MustCompile(`<ref[^>]*/>`)
	templateRegex  = regexp.MustCompile(`\{\{[^}]+\}\}`)
	pipedLinkRegex = regexp.MustCompile(`\[\[([^|\]]+)\|([^\]]+)\]\]`)
	linkRegex      = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	tagRegex       = regexp.MustCompile(`<[^>]+>`)
	blankRunRegex  = regexp.MustCompile(`\n{3,}`)
)

// Wikitext normalizes raw MediaWiki markup returned by the query API.
type Wikitext struct{}

// Normalize implements Normalizer.
func (Wikitext) Normalize(payload model.Payload) model.CanonicalText {
	s, ok := payload.Text.(string)
	if !ok {
		return model.PlaceholderText(model.NoContent)
	}
	return fromLines(splitLines(CleanWikitext(s)))
}

// CleanWikitext strips footnotes, templates and tags, and replaces wiki
// links with their visible text.
// Footnotes go first so their bodies do not survive the tag pass, and
// self-closing footnotes go before paired ones.
func CleanWikitext(s string) string {
	s = refSelfRegex.ReplaceAllString(s, "")
	s = refPairRegex.ReplaceAllString(s, "")
	s = templateRegex.ReplaceAllString(s, "")
	s = pipedLinkRegex.ReplaceAllString(s, "$2")
	s = linkRegex.ReplaceAllString(s, "$1")
	s = tagRegex.ReplaceAllString(s, "")
	s = blankRunRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
