package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/corpusfetch/internal/assemble"
	"github.com/nao1215/corpusfetch/internal/enumerate"
	"github.com/nao1215/corpusfetch/internal/model"
	"github.com/nao1215/corpusfetch/internal/normalize"
)

// Fetcher retrieves one page.
type Fetcher interface {
	Fetch(ctx context.Context, unit model.WorkUnit) model.FetchResult
}

// Writer persists the assembled book.
type Writer interface {
	Write(doc model.Document) model.WriteResult
}

// Request describes one crawl.
type Request struct {
	// Root is the book title. Discovered links are followed only when
	// their title contains Root.
	Root string

	// Seeds are the starting titles. Root is used when empty.
	Seeds []string

	// AuthorPage is fetched when no seed yielded any text. Its links that
	// belong to the book become new seeds.
	AuthorPage string

	// MaxPages bounds the number of pages fetched. Zero means no limit.
	MaxPages int

	// FileName is the output file name. store.DefaultCrawlFile is used when empty.
	FileName string
}

// Spider crawls one book at a time. It is not safe for concurrent use.
type Spider struct {
	fetcher    Fetcher
	normalizer normalize.Normalizer
	links      LinkScanner
	writer     Writer
	logger     *slog.Logger
	progress   io.Writer
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// WithProgress sets the writer that receives one line per fetched page.
func WithProgress(w io.Writer) SpiderOption {
	return func(s *Spider) {
		s.progress = w
	}
}

// NewSpider creates a Spider. The normalizer and link scanner must match
// the payloads the fetcher returns: wikitext for the query API, HTML for
// rendered pages.
func NewSpider(fetcher Fetcher, normalizer normalize.Normalizer, links LinkScanner, writer Writer, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:    fetcher,
		normalizer: normalizer,
		links:      links,
		writer:     writer,
		logger:     slog.Default(),
		progress:   io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// crawlState is the mutable state of one Crawl call.
type crawlState struct {
	req      Request
	frontier *enumerate.Frontier
	pages    []model.Block
	pagesOK  int
	content  bool
	report   *model.RunReport
}

// Crawl fetches every page reachable from the seeds and writes the book.
//
// The returned report is never nil. The error is non-nil when the request
// has no root or ctx was cancelled; in the latter case nothing is written.
func (s *Spider) Crawl(ctx context.Context, req Request) (*model.RunReport, error) {
	report := model.NewRunReport(model.ModeCrawl, req.Root)
	defer report.Finish()

	root := enumerate.NormalizeTitle(req.Root)
	if root == "" {
		err := fmt.Errorf("%w: empty crawl root", model.ErrNotFound)
		report.Error = err.Error()
		return report, err
	}

	st := &crawlState{
		req:      req,
		frontier: enumerate.NewFrontier(root, nil),
		pages:    make([]model.Block, 0),
		report:   report,
	}
	seeds := req.Seeds
	if len(seeds) == 0 {
		seeds = []string{root}
	}
	for _, seed := range seeds {
		st.frontier.Seed(seed)
	}

	s.logger.Info("crawl started", "root", root, "seeds", len(seeds), "max_pages", req.MaxPages)
	if err := s.drain(ctx, st); err != nil {
		return report, err
	}

	if !st.content && req.AuthorPage != "" && !st.limitReached() {
		if err := s.authorFallback(ctx, st); err != nil {
			return report, err
		}
	}

	doc := assemble.Book(root, req.FileName, st.pages)
	res := s.writer.Write(doc)
	report.RecordWrite(res)
	switch {
	case res.Err != nil:
		fmt.Fprintf(s.progress, "Error saving %s: %v\n", res.Path, res.Err)
	case res.Written:
		report.PagesOK = st.pagesOK
		fmt.Fprintf(s.progress, "Saved: %s (%d pages)\n", res.Path, len(st.pages))
	default:
		fmt.Fprintln(s.progress, "No pages with text were found.")
	}

	s.logger.Info("crawl finished",
		"root", root,
		"pages", report.PagesTotal,
		"enumerated", st.frontier.Enumerated(),
	)
	return report, nil
}

// drain pops the frontier until it is empty or the page limit is reached.
func (s *Spider) drain(ctx context.Context, st *crawlState) error {
	for !st.limitReached() {
		if err := ctx.Err(); err != nil {
			return err
		}
		unit, ok := st.frontier.Pop()
		if !ok {
			return nil
		}

		st.report.PagesTotal++
		fmt.Fprintf(s.progress, "Fetching: %s\n", unit.Ref)
		res := s.fetcher.Fetch(ctx, unit)
		st.report.RecordFetch(res)
		if err := ctx.Err(); err != nil {
			return err
		}

		var text model.CanonicalText
		if res.OK {
			st.pagesOK++
			text = s.normalizer.Normalize(res.Payload)
			for _, link := range s.links.Links(res.Payload) {
				if st.frontier.Push(link) {
					s.logger.Debug("link queued", "from", unit.Ref, "title", link)
				}
			}
		} else {
			text = normalize.Failure(res.Err)
			s.logger.Warn("page failed", "title", unit.Ref, "error", res.Err)
		}
		if !text.Placeholder {
			st.content = true
		}
		st.pages = append(st.pages, model.Block{Locator: unit.Locator, Text: text})
	}
	s.logger.Info("page limit reached", "max_pages", st.req.MaxPages, "queued", st.frontier.Len())
	return nil
}

// authorFallback reads the author page and crawls the book pages it links to.
func (s *Spider) authorFallback(ctx context.Context, st *crawlState) error {
	author := enumerate.NormalizeTitle(st.req.AuthorPage)
	fmt.Fprintf(s.progress, "No text found from the seeds, trying author page %s\n", author)

	res := s.fetcher.Fetch(ctx, model.WorkUnit{Collection: st.frontier.Root(), Ref: author, Locator: author})
	st.report.RecordFetch(res)
	if err := ctx.Err(); err != nil {
		return err
	}
	if !res.OK {
		s.logger.Warn("author page failed", "title", author, "error", res.Err)
		return nil
	}

	queued := 0
	for _, link := range s.links.Links(res.Payload) {
		if st.frontier.Push(link) {
			queued++
		}
	}
	s.logger.Info("author page scanned", "title", author, "queued", queued)
	return s.drain(ctx, st)
}

func (st *crawlState) limitReached() bool {
	return st.req.MaxPages > 0 && st.report.PagesTotal >= st.req.MaxPages
}
