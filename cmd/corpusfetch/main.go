// Package main provides the entry point for the corpusfetch CLI.
//
// corpusfetch downloads Hebrew text corpora for offline study. It fetches
// Talmud tractates with their commentaries and whole books from Sefaria,
// and crawls multi-page books from Hebrew Wikisource.
//
// Usage:
//
//	corpusfetch download Berakhot --start 2 --end 10
//	corpusfetch crawl --root "שמונה קבצים"
//
// See --help for all available options.
package main

// main is the entry point for corpusfetch.
func main() {
	Execute()
}
