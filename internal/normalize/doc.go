// Package normalize turns decoded response payloads into canonical text.
//
// Every normalizer returns at least one line. A payload that yields no text
// becomes the single line model.NoContent, marked as a placeholder.
package normalize
