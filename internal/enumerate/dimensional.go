package enumerate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/corpusfetch/internal/catalog"
	"github.com/nao1215/corpusfetch/internal/model"
)

// Range is a closed page range inside a collection.
type Range struct {
	Start int
	End   int
}

// Len returns the number of pages in the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Clamp fits [start, end] into the bounds of c. A zero start or end means
// the corresponding collection bound. Endpoints outside the collection are
// clamped silently; only a range that is empty after clamping is an error.
func Clamp(c catalog.Collection, start, end int) (Range, error) {
	if start <= 0 || start < c.FirstPage {
		start = c.FirstPage
	}
	if end <= 0 || end > c.LastPage {
		end = c.LastPage
	}
	if start > end {
		return Range{}, fmt.Errorf("%w: %s has pages %d-%d, requested %d-%d",
			model.ErrOutOfRange, c.Name, c.FirstPage, c.LastPage, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// Request describes a dimensional download.
type Request struct {
	// Collection is the collection name as given by the user.
	Collection string

	// Start and End bound the page range. Zero means the collection bound.
	Start int
	End   int

	// Variants are the commentary layers to fetch besides the base text.
	Variants []model.Variant
}

// Page groups the units of one page in fetch order.
type Page struct {
	Number int
	Units  []model.WorkUnit
}

// Plan is the enumerated form of a Request.
type Plan struct {
	// Collection is the resolved catalog entry.
	Collection catalog.Collection

	// Range is the clamped page range.
	Range Range

	// Variants lists the text layers with the base text first.
	Variants []model.Variant

	// Pages are the pages in ascending order.
	Pages []Page
}

// Dimensional resolves req against the catalog and enumerates its units.
// Pages ascend; within a page side "a" comes before side "b"; within a side
// the base text comes first, then each variant in request order.
func Dimensional(req Request) (*Plan, error) {
	c, err := catalog.Lookup(req.Collection)
	if err != nil {
		return nil, err
	}
	r, err := Clamp(c, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	variants := Variants(req.Variants)
	plan := &Plan{
		Collection: c,
		Range:      r,
		Variants:   variants,
		Pages:      make([]Page, 0, r.Len()),
	}
	for number := r.Start; number <= r.End; number++ {
		page := Page{Number: number, Units: make([]model.WorkUnit, 0, len(c.Sides)*len(variants))}
		for _, side := range c.Sides {
			locator := strconv.Itoa(number) + side
			for _, v := range variants {
				page.Units = append(page.Units, model.WorkUnit{
					Collection: c.Name,
					Ref:        c.RefName() + "." + locator,
					Locator:    locator,
					Page:       number,
					Side:       side,
					Variant:    v,
				})
			}
		}
		plan.Pages = append(plan.Pages, page)
	}
	return plan, nil
}

// Units flattens the plan in fetch order.
func (p *Plan) Units() []model.WorkUnit {
	out := make([]model.WorkUnit, 0, p.UnitCount())
	for _, page := range p.Pages {
		out = append(out, page.Units...)
	}
	return out
}

// UnitCount returns the number of units in the plan.
func (p *Plan) UnitCount() int {
	n := 0
	for _, page := range p.Pages {
		n += len(page.Units)
	}
	return n
}

// Variants returns the base text followed by the requested layers, with
// blanks and case-insensitive duplicates removed. Request order is kept.
func Variants(requested []model.Variant) []model.Variant {
	out := []model.Variant{model.BaseVariant}
	seen := make(map[string]struct{}, len(requested))
	for _, v := range requested {
		name := strings.TrimSpace(string(v))
		key := strings.ToLower(name)
		if name == "" || key == "base" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, model.Variant(name))
	}
	return out
}
