package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/nao1215/corpusfetch/internal/model"
)

// Layout selects how the pages of a collection are grouped into documents.
type Layout int

const (
	// LayoutPerPage writes one document per page and variant.
	LayoutPerPage Layout = iota

	// LayoutWholeBook writes one document per variant covering every page.
	LayoutWholeBook
)

// Talmud commentary layers offered by default for every tractate.
const (
	Steinsaltz model.Variant = "Steinsaltz"
	Rashi      model.Variant = "Rashi"
	Tosafot    model.Variant = "Tosafot"
	Malbim     model.Variant = "Malbim"
)

// Collection describes one dimensional collection.
type Collection struct {
	// Name is the English name. It is also the stem of output file names.
	Name string

	// Hebrew is the Hebrew name, accepted by Lookup.
	Hebrew string

	// Ref is the reference name used by the remote API. It equals Name
	// unless the API spells the collection differently.
	Ref string

	// FirstPage and LastPage bound the valid page numbers.
	FirstPage int
	LastPage  int

	// Sides lists the sides of each page in fetch order. Collections
	// addressed by whole chapters have a single empty side.
	Sides []string

	// Layout selects per-page or whole-book documents.
	Layout Layout

	// LabelPrefix is prepended to the locator in block headers, e.g. "פרק".
	LabelPrefix string

	// Variants are the commentary layers fetched when none are requested.
	Variants []model.Variant
}

// Pages returns the number of valid pages.
func (c Collection) Pages() int {
	return c.LastPage - c.FirstPage + 1
}

// Contains reports whether page is within bounds.
func (c Collection) Contains(page int) bool {
	return page >= c.FirstPage && page <= c.LastPage
}

// RefName returns the API reference name.
func (c Collection) RefName() string {
	if c.Ref != "" {
		return c.Ref
	}
	return c.Name
}

var talmudSides = []string{"a", "b"}

var talmudVariants = []model.Variant{Steinsaltz, Rashi, Tosafot}

// tractate builds a per-page Talmud collection. Daf numbering starts at 2.
func tractate(name, hebrew string, lastDaf int) Collection {
	return Collection{
		Name:      name,
		Hebrew:    hebrew,
		FirstPage: 2,
		LastPage:  lastDaf,
		Sides:     talmudSides,
		Layout:    LayoutPerPage,
		Variants:  talmudVariants,
	}
}

var collections = []Collection{
	tractate("Berakhot", "ברכות", 64),
	tractate("Shabbat", "שבת", 157),
	tractate("Eruvin", "עירובין", 105),
	tractate("Pesachim", "פסחים", 121),
	tractate("Shekalim", "שקלים", 22),
	tractate("Yoma", "יומא", 88),
	tractate("Sukkah", "סוכה", 56),
	tractate("Beitzah", "ביצה", 40),
	tractate("Rosh Hashanah", "ראש השנה", 35),
	tractate("Taanit", "תענית", 31),
	tractate("Megillah", "מגילה", 32),
	tractate("Moed Katan", "מועד קטן", 29),
	tractate("Chagigah", "חגיגה", 27),
	tractate("Yevamot", "יבמות", 122),
	tractate("Ketubot", "כתובות", 112),
	tractate("Nedarim", "נדרים", 91),
	tractate("Nazir", "נזיר", 66),
	tractate("Sotah", "סוטה", 49),
	tractate("Gittin", "גיטין", 90),
	tractate("Kiddushin", "קידושין", 82),
	tractate("Bava Kamma", "בבא קמא", 119),
	tractate("Bava Metzia", "בבא מציעא", 119),
	tractate("Bava Batra", "בבא בתרא", 175),
	tractate("Sanhedrin", "סנהדרין", 113),
	tractate("Makkot", "מכות", 24),
	tractate("Shevuot", "שבועות", 49),
	tractate("Avodah Zarah", "עבודה זרה", 76),
	tractate("Horayot", "הוריות", 14),
	tractate("Zevachim", "זבחים", 120),
	tractate("Menachot", "מנחות", 110),
	tractate("Chullin", "חולין", 142),
	tractate("Bechorot", "בכורות", 61),
	tractate("Arachin", "ערכין", 34),
	tractate("Temurah", "תמורה", 34),
	tractate("Keritot", "כריתות", 28),
	tractate("Meilah", "מעילה", 22),
	tractate("Kinnim", "קינים", 4),
	tractate("Tamid", "תמיד", 10),
	tractate("Middot", "מידות", 4),
	tractate("Niddah", "נדה", 73),
	{
		Name:        "Psalms",
		Hebrew:      "תהילים",
		FirstPage:   1,
		LastPage:    150,
		Sides:       []string{""},
		Layout:      LayoutWholeBook,
		LabelPrefix: "פרק",
		Variants:    []model.Variant{Malbim},
	},
	{
		Name:        "Shemonah Kevatzim",
		Hebrew:      "שמונה קבצים",
		Ref:         "Shemonah_Kevatzim",
		FirstPage:   1,
		LastPage:    8,
		Sides:       []string{""},
		Layout:      LayoutWholeBook,
		LabelPrefix: "קובץ",
	},
}

// All returns every collection in catalog order.
func All() []Collection {
	out := make([]Collection, len(collections))
	copy(out, collections)
	return out
}

// Lookup finds a collection by English or Hebrew name.
// Matching ignores case, surrounding space and the difference between
// underscores and spaces, so "bava_kamma" finds "Bava Kamma".
func Lookup(name string) (Collection, error) {
	key := foldName(name)
	if key == "" {
		return Collection{}, fmt.Errorf("%w: empty collection name", model.ErrNotFound)
	}
	for _, c := range collections {
		if foldName(c.Name) == key || foldName(c.Hebrew) == key || (c.Ref != "" && foldName(c.Ref) == key) {
			return c, nil
		}
	}
	return Collection{}, fmt.Errorf("%w: unknown collection %q", model.ErrNotFound, name)
}

// foldName returns the comparison key of a collection name.
func foldName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.Join(strings.Fields(name), " ")
	return cases.Fold().String(name)
}
