// Package model defines the data structures shared by the corpus engine.
//
// This package contains the following main types:
//   - WorkUnit: one fetchable piece of a corpus (page side, variant or wiki page)
//   - FetchResult: the single outcome of fetching a WorkUnit
//   - CanonicalText: normalized, line-oriented text of a payload
//   - Document: a named output artifact built from labeled blocks
//   - RunReport: per-run tally of units, pages and written files
//
// Every value here lives for the duration of one run. Nothing in this
// package is shared across runs.
package model
