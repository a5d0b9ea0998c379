package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/corpusfetch/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs a plain text summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose lists every written file instead of only counting them.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every written file.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	s := NewSummary(report)
	var sb strings.Builder

	w.writeHeader(&sb, s)
	w.writeFailures(&sb, s)
	w.writeFiles(&sb, s)
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%s: %s\n", strings.ToUpper(s.Mode), s.Collection)
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	if s.Error != "" {
		fmt.Fprintf(sb, "Error:    %s\n", s.Error)
	}
	fmt.Fprintf(sb, "Outcome:  %s\n", s.Outcome)
	fmt.Fprintf(sb, "Pages:    %d/%d\n", s.PagesOK, s.PagesTotal)
	fmt.Fprintf(sb, "Units:    %d/%d\n", s.UnitsOK, s.UnitsTotal)
	fmt.Fprintf(sb, "Files:    %d written, %d skipped, %d failed\n", s.Written(), s.Skipped, s.WriteErrors())
	fmt.Fprintf(sb, "Duration: %s\n", s.Duration)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, s *Summary) {
	if len(s.Failures) == 0 {
		return
	}
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\nFAILED UNITS\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
	for _, f := range s.Failures {
		fmt.Fprintf(sb, "  [!] %s\n", f.Unit)
		if f.Reason != "" {
			fmt.Fprintf(sb, "      %s\n", f.Reason)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFiles(sb *strings.Builder, s *Summary) {
	if len(s.Files) == 0 || (!w.verbose && s.WriteErrors() == 0) {
		return
	}
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\nFILES\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
	for _, f := range s.Files {
		switch {
		case f.Error != "":
			fmt.Fprintf(sb, "  [x] %s: %s\n", f.Path, f.Error)
		case w.verbose:
			fmt.Fprintf(sb, "  [+] %s (%d bytes)\n", f.Path, f.Bytes)
		}
	}
	sb.WriteString("\n")
}
