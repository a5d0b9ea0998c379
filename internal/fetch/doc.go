// Package fetch performs rate-limited network fetches of work units.
//
// A Fetcher owns its client configuration and makes exactly one
// model.FetchResult per unit. Every network call is preceded by a fixed
// politeness delay. Rate-limit signals (HTTP 403 and 429, API rate-limit
// codes), server errors and transport failures are retried in a bounded
// loop with a growing backoff. Failures never escape as Go errors; they
// come back as results with OK set to false.
//
// The remote service is abstracted by Endpoint, with implementations for
// the Sefaria text API, the MediaWiki API and rendered wiki pages.
package fetch
