// Package history keeps a SQLite log of completed runs.
//
// Every download or crawl appends one row to the runs table and one row per
// persistence outcome to the documents table. The log is an audit trail for
// the history command; runs never read it to skip or resume work.
package history
