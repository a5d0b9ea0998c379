package assemble

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/corpusfetch/internal/model"
)

// Accumulator collects blocks per variant and renders one document per variant.
// Blocks keep the order in which they were added.
type Accumulator struct {
	style    Style
	variants []model.Variant
	blocks   map[model.Variant][]model.Block
}

// NewAccumulator returns an Accumulator for the given variants. The base
// variant is always present and always first.
func NewAccumulator(style Style, variants []model.Variant) *Accumulator {
	ordered := []model.Variant{model.BaseVariant}
	for _, v := range variants {
		if !slices.Contains(ordered, v) {
			ordered = append(ordered, v)
		}
	}
	return &Accumulator{
		style:    style,
		variants: ordered,
		blocks:   make(map[model.Variant][]model.Block, len(ordered)),
	}
}

// Add appends a block to the body of variant. Unknown variants are
// appended to the document list in first-seen order.
func (a *Accumulator) Add(variant model.Variant, block model.Block) {
	if !slices.Contains(a.variants, variant) {
		a.variants = append(a.variants, variant)
	}
	a.blocks[variant] = append(a.blocks[variant], block)
}

// Len returns the number of blocks added so far.
func (a *Accumulator) Len() int {
	n := 0
	for _, blocks := range a.blocks {
		n += len(blocks)
	}
	return n
}

// Documents returns one document per variant, base first. The base
// document is the anchor of the set.
func (a *Accumulator) Documents(kind model.DocumentKind, collection string, page int) []model.Document {
	docs := make([]model.Document, 0, len(a.variants))
	for _, v := range a.variants {
		blocks := slices.Clone(a.blocks[v])
		docs = append(docs, model.Document{
			Kind:       kind,
			Collection: collection,
			Page:       page,
			Variant:    v,
			Anchor:     v.IsBase(),
			Blocks:     blocks,
			Body:       a.style.Body(blocks),
		})
	}
	return docs
}

// JoinSorted returns a copy of blocks ordered by locator. Blocks with the
// same locator keep their relative order.
func JoinSorted(blocks []model.Block) []model.Block {
	sorted := slices.Clone(blocks)
	slices.SortStableFunc(sorted, func(a, b model.Block) int {
		return strings.Compare(a.Locator, b.Locator)
	})
	return sorted
}

// PageLabel is the banner title of the i-th page (1-based) of a crawled book.
func PageLabel(i int, title string) string {
	return fmt.Sprintf("דף %d: %s", i, title)
}

// Book renders crawled pages into a single document. Pages are sorted by
// title and numbered from one.
func Book(root, fileName string, pages []model.Block) model.Document {
	blocks := JoinSorted(pages)
	for i := range blocks {
		blocks[i].Label = PageLabel(i+1, blocks[i].Locator)
	}
	return model.Document{
		Kind:       model.KindCrawl,
		Collection: root,
		FileName:   fileName,
		Blocks:     blocks,
		Body:       StyleBanner.Body(blocks),
	}
}
