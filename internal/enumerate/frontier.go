package enumerate

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/corpusfetch/internal/model"
)

// NormalizeTitle returns the identity key of a wiki title.
// The "#section" suffix is dropped, the title is NFC-normalized,
// underscores become spaces and runs of whitespace collapse to one space.
func NormalizeTitle(title string) string {
	if i := strings.IndexByte(title, '#'); i >= 0 {
		title = title[:i]
	}
	title = norm.NFC.String(title)
	title = strings.ReplaceAll(title, "_", " ")
	return strings.Join(strings.Fields(title), " ")
}

// Predicate decides whether a discovered title belongs to the crawl.
type Predicate func(title string) bool

// Contains returns a Predicate that accepts titles containing root,
// compared after NormalizeTitle.
func Contains(root string) Predicate {
	key := NormalizeTitle(root)
	return func(title string) bool {
		return key != "" && strings.Contains(NormalizeTitle(title), key)
	}
}

// VisitedSet records every title enumerated during one crawl.
// It only grows; there is no removal.
type VisitedSet struct {
	titles map[string]struct{}
}

// NewVisitedSet creates an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{titles: make(map[string]struct{})}
}

// Add inserts title and reports whether it was new.
func (v *VisitedSet) Add(title string) bool {
	key := NormalizeTitle(title)
	if _, ok := v.titles[key]; ok {
		return false
	}
	v.titles[key] = struct{}{}
	return true
}

// Has reports whether title was already added.
func (v *VisitedSet) Has(title string) bool {
	_, ok := v.titles[NormalizeTitle(title)]
	return ok
}

// Len returns the number of titles in the set.
func (v *VisitedSet) Len() int {
	return len(v.titles)
}

// Frontier is the FIFO queue of titles waiting to be crawled.
// A title enters the VisitedSet when it is queued, so it can be neither
// queued twice nor queued again after it was fetched.
type Frontier struct {
	root    string
	belongs Predicate
	queue   []model.WorkUnit
	visited *VisitedSet
}

// NewFrontier creates a frontier for the book named root.
// Discovered links are accepted when belongs returns true; a nil belongs
// accepts titles containing root.
func NewFrontier(root string, belongs Predicate) *Frontier {
	if belongs == nil {
		belongs = Contains(root)
	}
	return &Frontier{
		root:    NormalizeTitle(root),
		belongs: belongs,
		queue:   make([]model.WorkUnit, 0),
		visited: NewVisitedSet(),
	}
}

// Seed queues a starting title. Seeds skip the belongs predicate but are
// still deduplicated.
func (f *Frontier) Seed(title string) bool {
	return f.enqueue(title)
}

// Push queues a discovered title if it belongs to the book and has not
// been enumerated before.
func (f *Frontier) Push(title string) bool {
	if !f.belongs(title) {
		return false
	}
	return f.enqueue(title)
}

func (f *Frontier) enqueue(title string) bool {
	key := NormalizeTitle(title)
	if key == "" || !f.visited.Add(key) {
		return false
	}
	f.queue = append(f.queue, model.WorkUnit{
		Collection: f.root,
		Ref:        key,
		Locator:    key,
	})
	return true
}

// Root returns the normalized book title the frontier was created for.
func (f *Frontier) Root() string {
	return f.root
}

// Pop removes the oldest queued unit.
func (f *Frontier) Pop() (model.WorkUnit, bool) {
	if len(f.queue) == 0 {
		return model.WorkUnit{}, false
	}
	unit := f.queue[0]
	f.queue = f.queue[1:]
	return unit, true
}

// Len returns the number of queued units.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// Enumerated returns the number of distinct titles ever queued.
func (f *Frontier) Enumerated() int {
	return f.visited.Len()
}

// Visited exposes the set of enumerated titles.
func (f *Frontier) Visited() *VisitedSet {
	return f.visited
}
