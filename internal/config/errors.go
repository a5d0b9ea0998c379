package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidMode is returned when the run mode is neither download nor crawl.
	ErrInvalidMode = errors.New("invalid mode: must be download or crawl")

	// ErrNoCollection is returned when a download names no collection.
	ErrNoCollection = errors.New("no collection specified")

	// ErrInvalidRange is returned when a page number is negative.
	ErrInvalidRange = errors.New("invalid page range: page numbers must be positive")

	// ErrConflictingRange is returned when --page is combined with --start or --end.
	ErrConflictingRange = errors.New("conflicting range: --page cannot be used with --start or --end")

	// ErrNoRoot is returned when a crawl has no root book name.
	ErrNoRoot = errors.New("no crawl root specified: use --root")

	// ErrNoSeed is returned when a crawl has neither seeds nor an author page.
	ErrNoSeed = errors.New("no seed titles specified: provide titles or use --author")

	// ErrInvalidSource is returned for an unknown crawl source.
	ErrInvalidSource = errors.New("invalid source: must be api or html")

	// ErrInvalidMaxPages is returned when the crawl page bound is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidOutputFile is returned when the crawl file name is empty or contains a path separator.
	ErrInvalidOutputFile = errors.New("invalid output file: must be a plain file name")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the request delay is not positive.
	ErrInvalidDelay = errors.New("invalid delay: must be positive")

	// ErrInvalidBackoff is returned when the retry backoff is negative.
	ErrInvalidBackoff = errors.New("invalid backoff: must be non-negative")

	// ErrInvalidMaxAttempts is returned when fewer than one attempt is allowed.
	ErrInvalidMaxAttempts = errors.New("invalid retries: at least one attempt is required")

	// ErrInvalidProxyAddress is returned when the proxy is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidLogFormat is returned for an unknown log format.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")
)
