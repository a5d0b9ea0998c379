package assemble

import (
	"fmt"
	"strings"

	"github.com/nao1215/corpusfetch/internal/model"
)

// bannerWidth is the number of '=' characters in a banner rule.
const bannerWidth = 60

// bannerSeparator joins banner blocks.
const bannerSeparator = "\n\n\n"

// Style selects how blocks are rendered.
type Style int

const (
	// StyleDashed renders "--- {label} ---" headers. Each block ends with a blank line.
	StyleDashed Style = iota

	// StyleBanner renders the label between two rules of '=' characters.
	StyleBanner
)

// Block renders one labeled block.
func (s Style) Block(label string, text model.CanonicalText) string {
	switch s {
	case StyleBanner:
		rule := strings.Repeat("=", bannerWidth)
		return fmt.Sprintf("%s\n%s\n%s\n\n%s", rule, label, rule, text.String())
	default:
		return fmt.Sprintf("--- %s ---\n%s\n\n", label, text.String())
	}
}

// Body renders blocks in order.
func (s Style) Body(blocks []model.Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if s == StyleBanner && i > 0 {
			b.WriteString(bannerSeparator)
		}
		b.WriteString(s.Block(block.Label, block.Text))
	}
	return b.String()
}
