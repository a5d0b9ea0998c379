// Package crawler assembles a book from a wiki by following its links.
//
// The Spider starts from one or more seed titles and keeps a FIFO frontier
// of titles to fetch. After each fetch it scans the page for links and
// queues those whose title contains the book's root title. Every title is
// queued at most once, so cyclic links cannot make the crawl loop.
//
// Pages are fetched one at a time through the same rate-limited fetcher the
// dimensional downloader uses. When the frontier is empty the pages are
// sorted by title and written as a single document.
//
// # Usage
//
//	spider := crawler.NewSpider(fetcher, normalize.Wikitext{}, crawler.WikiLinks{}, writer)
//	report, err := spider.Crawl(ctx, crawler.Request{Root: "השם רועי"})
package crawler
