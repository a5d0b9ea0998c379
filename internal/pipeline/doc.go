// Package pipeline runs dimensional downloads.
//
// A run moves through the phases Enumerating, Fetching, Assembling,
// Persisting and Done. Per-page collections fetch, assemble and persist one
// page before moving to the next, so an interrupted run leaves every
// finished page complete on disk. Whole-book collections assemble every page
// and persist once at the end.
//
// Units are fetched strictly one at a time. The fetcher's delay is the
// only throttle against the remote service.
package pipeline
