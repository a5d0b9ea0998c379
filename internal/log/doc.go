// Package log builds the slog loggers used by corpusfetch.
//
// Every logger wraps its output handler in a ClipHandler, which keeps
// log lines readable while a run streams page bodies around:
//   - Long string values (page text, raw response bodies) are clipped
//     to MaxValueRunes runes.
//   - Proxy URLs carrying a user:password pair have the password masked.
//   - Header-like keys such as authorization and cookie are masked.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("fetched", "url", u, "body", body) // body is clipped
//	slog.SetDefault(logger)
package log
