package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/nao1215/corpusfetch/internal/assemble"
	"github.com/nao1215/corpusfetch/internal/catalog"
	"github.com/nao1215/corpusfetch/internal/enumerate"
	"github.com/nao1215/corpusfetch/internal/model"
	"github.com/nao1215/corpusfetch/internal/normalize"
)

// Phase is a stage of a run.
type Phase string

// Run phases, in order.
const (
	PhaseEnumerating Phase = "enumerating"
	PhaseFetching    Phase = "fetching"
	PhaseAssembling  Phase = "assembling"
	PhasePersisting  Phase = "persisting"
	PhaseDone        Phase = "done"
)

// Fetcher retrieves one work unit. Implementations report failures in
// the result instead of returning an error.
type Fetcher interface {
	Fetch(ctx context.Context, unit model.WorkUnit) model.FetchResult
}

// Writer persists one document.
type Writer interface {
	Write(doc model.Document) model.WriteResult
}

// Downloader runs dimensional downloads.
type Downloader struct {
	fetcher    Fetcher
	normalizer normalize.Normalizer
	writer     Writer
	logger     *slog.Logger
	progress   io.Writer
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// WithProgress sets the writer that receives one line per page and per saved file.
func WithProgress(w io.Writer) Option {
	return func(d *Downloader) {
		d.progress = w
	}
}

// NewDownloader creates a Downloader.
func NewDownloader(fetcher Fetcher, normalizer normalize.Normalizer, writer Writer, opts ...Option) *Downloader {
	d := &Downloader{
		fetcher:    fetcher,
		normalizer: normalizer,
		writer:     writer,
		logger:     slog.Default(),
		progress:   io.Discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download enumerates req and downloads every page.
//
// The returned report is never nil. The error is non-nil only when the
// request was rejected (unknown collection, empty range) or ctx was
// cancelled; fetch and write failures are tallied in the report.
func (d *Downloader) Download(ctx context.Context, req enumerate.Request) (*model.RunReport, error) {
	report := model.NewRunReport(model.ModeDownload, req.Collection)
	defer report.Finish()

	d.phase(PhaseEnumerating, req.Collection)
	plan, err := enumerate.Dimensional(req)
	if err != nil {
		report.Error = err.Error()
		d.logger.Error("download rejected", "collection", req.Collection, "error", err)
		return report, err
	}
	report.Collection = plan.Collection.Name
	report.PagesTotal = len(plan.Pages)

	d.logger.Info("download started",
		"collection", plan.Collection.Name,
		"start", plan.Range.Start,
		"end", plan.Range.End,
		"units", plan.UnitCount(),
	)

	if plan.Collection.Layout == catalog.LayoutWholeBook {
		err = d.downloadBook(ctx, plan, report)
	} else {
		err = d.downloadPages(ctx, plan, report)
	}
	if err != nil {
		d.logger.Warn("download interrupted", "collection", plan.Collection.Name, "error", err)
		return report, err
	}

	d.phase(PhaseDone, plan.Collection.Name)
	return report, nil
}

// DownloadPage downloads a single page. A page outside the collection is
// rejected with model.ErrOutOfRange.
func (d *Downloader) DownloadPage(ctx context.Context, collection string, page int, variants []model.Variant) (*model.RunReport, error) {
	if page <= 0 {
		report := model.NewRunReport(model.ModeDownload, collection)
		err := fmt.Errorf("%w: page %d", model.ErrOutOfRange, page)
		report.Error = err.Error()
		report.Finish()
		return report, err
	}
	return d.Download(ctx, enumerate.Request{
		Collection: collection,
		Start:      page,
		End:        page,
		Variants:   variants,
	})
}

// downloadPages fetches, assembles and persists one page at a time.
func (d *Downloader) downloadPages(ctx context.Context, plan *enumerate.Plan, report *model.RunReport) error {
	for i, page := range plan.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		acc := assemble.NewAccumulator(assemble.StyleDashed, plan.Variants)
		fetched := d.fetchPage(ctx, plan.Collection, page, acc, report)
		if err := ctx.Err(); err != nil {
			return err
		}

		d.phase(PhasePersisting, plan.Collection.Name)
		docs := acc.Documents(model.KindPage, plan.Collection.Name, page.Number)
		if d.persist(docs, report) && fetched {
			report.PagesOK++
		}
		fmt.Fprintf(d.progress, "Progress: %d/%d pages completed\n", i+1, len(plan.Pages))
	}
	return nil
}

// downloadBook assembles every page into one document per variant.
func (d *Downloader) downloadBook(ctx context.Context, plan *enumerate.Plan, report *model.RunReport) error {
	acc := assemble.NewAccumulator(assemble.StyleDashed, plan.Variants)
	pagesOK := 0
	for _, page := range plan.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.fetchPage(ctx, plan.Collection, page, acc, report) {
			pagesOK++
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.phase(PhasePersisting, plan.Collection.Name)
	docs := acc.Documents(model.KindBook, plan.Collection.Name, 0)
	if span := bookSpan(plan); span != "" {
		for i := range docs {
			docs[i].Span = span
		}
	}
	if d.persist(docs, report) {
		report.PagesOK = pagesOK
	}
	return nil
}

// bookSpan names the requested range when it does not cover the whole
// collection, so a partial run never replaces the complete book file.
func bookSpan(plan *enumerate.Plan) string {
	c := plan.Collection
	r := plan.Range
	switch {
	case r.Start == c.FirstPage && r.End == c.LastPage:
		return ""
	case r.Start == r.End:
		return strconv.Itoa(r.Start)
	default:
		return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
	}
}

// fetchPage fetches every unit of page into acc and reports whether all
// of them succeeded. Failed units become placeholder blocks.
func (d *Downloader) fetchPage(ctx context.Context, c catalog.Collection, page enumerate.Page, acc *assemble.Accumulator, report *model.RunReport) bool {
	fmt.Fprintf(d.progress, "Downloading %s %s...\n", c.Name, pageLabel(c, page.Number))

	ok := true
	for _, unit := range page.Units {
		d.phase(PhaseFetching, unit.String())
		res := d.fetcher.Fetch(ctx, unit)
		report.RecordFetch(res)

		d.phase(PhaseAssembling, unit.String())
		var text model.CanonicalText
		if res.OK {
			text = d.normalizer.Normalize(res.Payload)
		} else {
			ok = false
			text = normalize.Failure(res.Err)
			d.logger.Warn("unit failed", "unit", unit.String(), "error", res.Err)
		}
		acc.Add(unit.Variant, model.Block{
			Locator: unit.Locator,
			Label:   blockLabel(c, unit),
			Text:    text,
		})
	}
	return ok
}

// persist writes docs and reports whether the anchor document was written.
func (d *Downloader) persist(docs []model.Document, report *model.RunReport) bool {
	anchorOK := false
	for _, doc := range docs {
		res := d.writer.Write(doc)
		report.RecordWrite(res)
		switch {
		case res.Err != nil:
			fmt.Fprintf(d.progress, "  Error saving %s: %v\n", res.Path, res.Err)
		case res.Written:
			fmt.Fprintf(d.progress, "  Saved: %s\n", res.Path)
			if doc.Anchor {
				anchorOK = true
			}
		}
	}
	return anchorOK
}

func (d *Downloader) phase(p Phase, subject string) {
	d.logger.Debug("run phase", "phase", string(p), "subject", subject)
}

// blockLabel is the header of a unit's block, e.g. "2a" or "פרק 3".
func blockLabel(c catalog.Collection, unit model.WorkUnit) string {
	if c.LabelPrefix == "" {
		return unit.Locator
	}
	return c.LabelPrefix + " " + unit.Locator
}

func pageLabel(c catalog.Collection, page int) string {
	if c.LabelPrefix == "" {
		return fmt.Sprintf("daf %d", page)
	}
	return fmt.Sprintf("%s %d", c.LabelPrefix, page)
}
