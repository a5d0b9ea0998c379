// Package report renders the end-of-run summary.
//
// Three formats are available: plain text for the terminal, Markdown for
// sharing, and JSON for tooling. All of them render a Summary built from a
// model.RunReport.
package report
