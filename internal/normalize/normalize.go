package normalize

import (
	"strconv"
	"strings"

	"github.com/nao1215/corpusfetch/internal/model"
)

// Normalizer converts a payload into canonical text.
type Normalizer interface {
	Normalize(payload model.Payload) model.CanonicalText
}

// Func adapts an ordinary function to the Normalizer interface.
type Func func(payload model.Payload) model.CanonicalText

// Normalize implements Normalizer.
func (f Func) Normalize(payload model.Payload) model.CanonicalText {
	return f(payload)
}

// Segments normalizes the JSON text field of the Sefaria API.
//
// Strings are split on line breaks. Arrays are flattened in order, however
// deeply nested. Numbers and booleans keep their string form. Objects and
// nulls are dropped.
type Segments struct{}

// Normalize implements Normalizer.
func (Segments) Normalize(payload model.Payload) model.CanonicalText {
	var lines []string
	flatten(payload.Text, &lines)
	return fromLines(lines)
}

func flatten(v any, lines *[]string) {
	switch t := v.(type) {
	case string:
		*lines = append(*lines, splitLines(t)...)
	case []any:
		for _, item := range t {
			flatten(item, lines)
		}
	case []string:
		for _, item := range t {
			*lines = append(*lines, splitLines(item)...)
		}
	case float64:
		*lines = append(*lines, strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		*lines = append(*lines, strconv.Itoa(t))
	case int64:
		*lines = append(*lines, strconv.FormatInt(t, 10))
	case bool:
		*lines = append(*lines, strconv.FormatBool(t))
	}
}

// Failure returns the placeholder text recorded for a unit whose fetch failed.
func Failure(err error) model.CanonicalText {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return model.PlaceholderText("[fetch failed: " + reason + "]")
}

// splitLines splits s on line breaks, trims every line and drops blank ones.
func splitLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// fromLines wraps lines, substituting the sentinel when there are none.
func fromLines(lines []string) model.CanonicalText {
	if len(lines) == 0 {
		return model.PlaceholderText(model.NoContent)
	}
	return model.CanonicalText{Lines: lines}
}
