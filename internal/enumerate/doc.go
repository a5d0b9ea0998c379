// Package enumerate produces the ordered work units of a run.
//
// Dimensional collections are expanded into pages, sides and variants by
// Dimensional. Crawls grow a Frontier as links are discovered; its
// VisitedSet guarantees that every title is enumerated at most once, so a
// crawl over a cyclic link graph terminates.
package enumerate
