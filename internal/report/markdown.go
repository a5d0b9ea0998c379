package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/corpusfetch/internal/model"
)

// MarkdownWriter outputs the summary as GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	s := NewSummary(report)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeAlert(md, s)
	w.writeFailures(md, s)
	w.writeFiles(md, s)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by corpusfetch*")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1("corpusfetch " + s.Mode + " report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Collection", s.Collection},
			{"Started", s.Started.Format("2006-01-02 15:04:05 MST")},
			{"Duration", s.Duration},
			{"Outcome", s.Outcome},
			{"Pages", strconv.Itoa(s.PagesOK) + "/" + strconv.Itoa(s.PagesTotal)},
			{"Units", strconv.Itoa(s.UnitsOK) + "/" + strconv.Itoa(s.UnitsTotal)},
			{"Files", strconv.Itoa(s.Written()) + " written, " + strconv.Itoa(s.Skipped) + " skipped"},
		},
	})
	md.PlainText("")

	if s.UnitsTotal > 0 {
		w.writePieChart(md, s)
	}
}

// writePieChart shows how many units were fetched and how many failed.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetched units"),
		piechart.WithShowData(true),
	)
	if s.UnitsOK > 0 {
		chart.LabelAndIntValue("OK", uint64(s.UnitsOK))
	}
	if failed := s.UnitsTotal - s.UnitsOK; failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(failed))
	}
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *Summary) {
	switch {
	case s.Error != "":
		md.Cautionf("The request was rejected: %s", s.Error)
	case s.ExitCode == model.OutcomeFailure.ExitCode():
		md.Cautionf("No page was downloaded completely. %d of %d unit(s) failed.", s.UnitsTotal-s.UnitsOK, s.UnitsTotal)
	case s.ExitCode == model.OutcomePartial.ExitCode():
		md.Warningf("%d of %d page(s) are incomplete.", s.PagesTotal-s.PagesOK, s.PagesTotal)
	case s.WriteErrors() > 0:
		md.Importantf("%d file(s) could not be written.", s.WriteErrors())
	default:
		md.Tip("Every page was downloaded and saved.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, s *Summary) {
	md.H2("Failed Units")
	md.PlainText("")
	if len(s.Failures) == 0 {
		md.PlainText("No failed units.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(s.Failures))
	for _, f := range s.Failures {
		status := "-"
		if f.Status != 0 {
			status = strconv.Itoa(f.Status)
		}
		rows = append(rows, []string{f.Unit, status, strconv.Itoa(f.Attempts), truncateString(f.Reason, 80)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Unit", "Status", "Attempts", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFiles(md *markdown.Markdown, s *Summary) {
	md.H2("Files")
	md.PlainText("")
	if len(s.Files) == 0 {
		md.PlainText("No files were written.")
		md.PlainText("")
		return
	}

	written := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		if f.Error != "" {
			md.Details(f.Path, f.Error)
			continue
		}
		written = append(written, "`"+f.Path+"` ("+strconv.Itoa(f.Bytes)+" bytes)")
	}
	if len(written) > 0 {
		md.BulletList(written...)
	}
	md.PlainText("")
}
