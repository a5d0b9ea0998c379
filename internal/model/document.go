package model

import "strings"

// DocumentKind tells the persistence layer how to name a Document.
type DocumentKind int

const (
	// KindPage is one page of a per-page collection, e.g. one daf of a tractate.
	KindPage DocumentKind = iota

	// KindBook is a whole book assembled from every requested page.
	KindBook

	// KindCrawl is a book assembled from crawled wiki pages.
	KindCrawl
)

// String returns the kind name.
func (k DocumentKind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindBook:
		return "book"
	case KindCrawl:
		return "crawl"
	default:
		return "unknown"
	}
}

// Block is one labeled unit of text inside a Document.
type Block struct {
	// Locator is the sort key of the block.
	Locator string

	// Label is the header printed above the block, e.g. "2a".
	Label string

	// Text is the canonical text of the block.
	Text CanonicalText
}

// Document is a named output artifact.
type Document struct {
	// Kind selects the naming scheme.
	Kind DocumentKind

	// Collection is the collection name or crawl root.
	Collection string

	// Page is the page number for KindPage documents.
	Page int

	// Span is the page range of a whole-book document that covers only
	// part of its collection, e.g. "3-4". It is empty for the full book.
	Span string

	// Variant is the text layer the document holds.
	Variant Variant

	// FileName overrides the derived file name. Only crawl documents use it.
	FileName string

	// Anchor marks a document that is written even without content.
	Anchor bool

	// Blocks are the labeled blocks in output order.
	Blocks []Block

	// Body is the rendered text of Blocks.
	Body string
}

// HasContent reports whether any block carries real text.
// Documents made only of placeholder blocks have no content.
func (d Document) HasContent() bool {
	if strings.TrimSpace(d.Body) == "" {
		return false
	}
	for _, b := range d.Blocks {
		if !b.Text.Placeholder && len(b.Text.Lines) > 0 {
			return true
		}
	}
	return false
}

// WriteResult is the outcome of persisting one Document.
type WriteResult struct {
	// Path is the destination file path.
	Path string

	// Variant is the text layer of the document.
	Variant Variant

	// Written is true when the file was created or replaced.
	Written bool

	// Skipped is true when the document had no content and was not written.
	Skipped bool

	// Bytes is the size of the written body.
	Bytes int

	// Digest is the hex SHA3-256 digest of the written body.
	Digest string

	// Err is the I/O error that prevented the write, wrapped in ErrPersistence.
	Err error
}
