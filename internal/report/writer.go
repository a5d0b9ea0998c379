package report

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/corpusfetch/internal/model"
)

// Writer renders a run report.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.RunReport) (int, error)
}

// MultiWriter writes the same report to several Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every Writer, stopping at the first error.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ForFile picks a Writer by file extension: ".md" for Markdown, ".json"
// for JSON, plain text otherwise.
func ForFile(path string, output io.Writer) Writer {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return NewMarkdownWriter(output)
	case ".json":
		return NewJSONWriter(output, WithPrettyPrint())
	default:
		return NewSimpleWriter(output, WithVerbose(true))
	}
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Summary is the format-independent view of a run report.
type Summary struct {
	Mode       string        `json:"mode"`
	Collection string        `json:"collection"`
	Started    time.Time     `json:"started"`
	Finished   time.Time     `json:"finished"`
	Duration   string        `json:"duration"`
	Outcome    string        `json:"outcome"`
	ExitCode   int           `json:"exit_code"`
	PagesTotal int           `json:"pages_total"`
	PagesOK    int           `json:"pages_ok"`
	UnitsTotal int           `json:"units_total"`
	UnitsOK    int           `json:"units_ok"`
	Error      string        `json:"error,omitempty"`
	Failures   []FailedUnit  `json:"failures"`
	Files      []FileOutcome `json:"files"`
	Skipped    int           `json:"skipped"`
}

// FailedUnit is one unit whose fetch failed.
type FailedUnit struct {
	Unit     string `json:"unit"`
	Reason   string `json:"reason"`
	Status   int    `json:"status,omitempty"`
	Attempts int    `json:"attempts"`
}

// FileOutcome is one written or failed document.
type FileOutcome struct {
	Path    string `json:"path"`
	Variant string `json:"variant"`
	Bytes   int    `json:"bytes"`
	Digest  string `json:"digest,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSummary builds the summary of report. Skipped documents are only counted.
func NewSummary(report *model.RunReport) *Summary {
	outcome := report.Outcome()
	s := &Summary{
		Mode:       string(report.Mode),
		Collection: report.Collection,
		Started:    report.Started,
		Finished:   report.Finished,
		Duration:   report.Duration().Round(time.Millisecond).String(),
		Outcome:    outcome.String(),
		ExitCode:   outcome.ExitCode(),
		PagesTotal: report.PagesTotal,
		PagesOK:    report.PagesOK,
		UnitsTotal: report.UnitsTotal,
		UnitsOK:    report.UnitsOK,
		Error:      report.Error,
		Failures:   make([]FailedUnit, 0, len(report.Failures)),
		Files:      make([]FileOutcome, 0, len(report.Writes)),
	}
	for _, f := range report.Failures {
		s.Failures = append(s.Failures, FailedUnit{
			Unit:     f.Unit.String(),
			Reason:   f.Reason,
			Status:   f.Status,
			Attempts: f.Attempts,
		})
	}
	for _, w := range report.Writes {
		if w.Skipped {
			s.Skipped++
			continue
		}
		file := FileOutcome{
			Path:    w.Path,
			Variant: w.Variant.String(),
			Bytes:   w.Bytes,
			Digest:  w.Digest,
		}
		if w.Err != nil {
			file.Error = w.Err.Error()
		}
		s.Files = append(s.Files, file)
	}
	return s
}

// Written returns the number of files that were written.
func (s *Summary) Written() int {
	n := 0
	for _, f := range s.Files {
		if f.Error == "" {
			n++
		}
	}
	return n
}

// WriteErrors returns the number of files that could not be written.
func (s *Summary) WriteErrors() int {
	return len(s.Files) - s.Written()
}

// truncateString shortens s to at most maxLen runes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
