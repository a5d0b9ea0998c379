package model

import (
	"fmt"
	"strings"
)

// Variant names a text layer over a locator, such as a commentary.
// The zero value is the base text.
type Variant string

// BaseVariant is the primary text of a locator.
const BaseVariant Variant = ""

// IsBase reports whether v is the base text layer.
func (v Variant) IsBase() bool {
	return v == BaseVariant
}

// String returns the display name of the variant.
func (v Variant) String() string {
	if v.IsBase() {
		return "base"
	}
	return string(v)
}

// Slug returns the lower-case form used in output file names.
// "Steinsaltz" becomes "steinsaltz", "Rabbeinu Chananel" becomes "rabbeinu_chananel".
func (v Variant) Slug() string {
	return strings.ToLower(strings.Join(strings.Fields(string(v)), "_"))
}

// WorkUnit identifies one fetchable piece of a corpus.
// For dimensional collections it is a page side of one variant; for a crawl
// it is a single wiki page. WorkUnits are immutable once enumerated.
type WorkUnit struct {
	// Collection is the collection or crawl root the unit belongs to.
	Collection string

	// Ref is the remote reference of the unit without any variant prefix,
	// e.g. "Berakhot.2a" or a wiki page title.
	Ref string

	// Locator is the human-readable position of the unit, e.g. "2a".
	// For crawl units it is the page title.
	Locator string

	// Page is the numeric page of a dimensional unit. It is zero for crawl units.
	Page int

	// Side is the page side ("a" or "b"). Collections without sides leave it empty.
	Side string

	// Variant is the text layer of the unit.
	Variant Variant
}

// String returns a compact identifier used in logs and failure reports.
func (u WorkUnit) String() string {
	if u.Variant.IsBase() {
		return fmt.Sprintf("%s %s", u.Collection, u.Locator)
	}
	return fmt.Sprintf("%s %s (%s)", u.Collection, u.Locator, u.Variant)
}
