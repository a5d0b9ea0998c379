package model

import "time"

// Mode is the kind of run that produced a report.
type Mode string

const (
	// ModeDownload is a dimensional run over a page range.
	ModeDownload Mode = "download"

	// ModeCrawl is a wiki crawl from seed titles.
	ModeCrawl Mode = "crawl"
)

// UnitFailure records a unit whose fetch did not succeed.
type UnitFailure struct {
	Unit     WorkUnit
	Reason   string
	Status   int
	Attempts int
}

// RunReport is the tally of one run.
// Pages are the tallying unit: a dimensional page succeeds when all of its
// units were fetched and its anchor document was written. In crawl mode
// every visited wiki page counts as one page.
type RunReport struct {
	// Mode is the kind of run.
	Mode Mode

	// Collection is the collection name or crawl root.
	Collection string

	// Started and Finished bound the run.
	Started  time.Time
	Finished time.Time

	// PagesTotal is the number of pages the run attempted.
	PagesTotal int

	// PagesOK is the number of pages that fully succeeded.
	PagesOK int

	// UnitsTotal is the number of work units fetched.
	UnitsTotal int

	// UnitsOK is the number of work units fetched successfully.
	UnitsOK int

	// Failures lists every unit whose fetch failed, in fetch order.
	Failures []UnitFailure

	// Writes lists every persistence outcome, in write order.
	Writes []WriteResult

	// Error is set when the request itself was rejected, e.g. an unknown
	// collection. No page is attempted in that case.
	Error string
}

// NewRunReport creates a report for a run that starts now.
func NewRunReport(mode Mode, collection string) *RunReport {
	return &RunReport{
		Mode:       mode,
		Collection: collection,
		Started:    time.Now(),
		Failures:   make([]UnitFailure, 0),
		Writes:     make([]WriteResult, 0),
	}
}

// RecordFetch tallies a fetch result.
func (r *RunReport) RecordFetch(res FetchResult) {
	r.UnitsTotal++
	if res.OK {
		r.UnitsOK++
		return
	}
	r.Failures = append(r.Failures, UnitFailure{
		Unit:     res.Unit,
		Reason:   res.Detail(),
		Status:   res.Status,
		Attempts: res.Attempts,
	})
}

// RecordWrite appends a persistence outcome.
func (r *RunReport) RecordWrite(res WriteResult) {
	r.Writes = append(r.Writes, res)
}

// Finish stamps the end time.
func (r *RunReport) Finish() {
	r.Finished = time.Now()
}

// Duration returns how long the run took.
func (r *RunReport) Duration() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}

// Outcome classifies the run.
func (r *RunReport) Outcome() Outcome {
	switch {
	case r.Error != "" || r.PagesTotal == 0:
		return OutcomeFailure
	case r.PagesOK == r.PagesTotal:
		return OutcomeSuccess
	case r.PagesOK > 0:
		return OutcomePartial
	default:
		return OutcomeFailure
	}
}

// Written returns the write results that produced a file.
func (r *RunReport) Written() []WriteResult {
	out := make([]WriteResult, 0, len(r.Writes))
	for _, w := range r.Writes {
		if w.Written {
			out = append(out, w)
		}
	}
	return out
}

// WriteErrors returns the write results that failed.
func (r *RunReport) WriteErrors() []WriteResult {
	out := make([]WriteResult, 0)
	for _, w := range r.Writes {
		if w.Err != nil {
			out = append(out, w)
		}
	}
	return out
}
