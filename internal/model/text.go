package model

import "strings"

// NoContent is the sentinel line emitted when a payload yields no text.
const NoContent = "[no content available]"

// CanonicalText is the ordered, non-empty lines of one fetched unit.
type CanonicalText struct {
	// Lines holds the text. It is never empty.
	Lines []string

	// Placeholder is true when Lines carries a marker line such as
	// NoContent or a fetch failure instead of real text.
	Placeholder bool
}

// PlaceholderText returns a CanonicalText holding a single marker line.
func PlaceholderText(line string) CanonicalText {
	return CanonicalText{Lines: []string{line}, Placeholder: true}
}

// String joins the lines with a newline.
func (t CanonicalText) String() string {
	return strings.Join(t.Lines, "\n")
}
