package config

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/corpusfetch/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "corpusfetch"

	// DefaultSefariaURL is the base URL of the Sefaria text API.
	DefaultSefariaURL = "https://www.sefaria.org"

	// DefaultWikisourceURL is the base URL of Hebrew Wikisource.
	DefaultWikisourceURL = "https://he.wikisource.org"

	// DefaultDownloadDelay is the pause before every request of a download run.
	DefaultDownloadDelay = 1 * time.Second

	// DefaultCrawlDelay is the pause before every request of a crawl.
	// Wikisource throttles anonymous clients much harder than Sefaria.
	DefaultCrawlDelay = 5 * time.Second

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the number of network calls made for one unit
	// before it is recorded as failed.
	DefaultMaxAttempts = 3

	// DefaultBackoff is the wait added per retry after a rate-limit or
	// server error. The n-th retry waits n times this value.
	DefaultBackoff = 30 * time.Second

	// DefaultUserAgent identifies corpusfetch in HTTP requests.
	DefaultUserAgent = "corpusfetch (respectful automated access; +https://github.com/nao1215/corpusfetch)"

	// DefaultOutputDir is the directory documents are written to.
	DefaultOutputDir = "downloads"

	// DefaultCrawlFile is the file name of a crawled book.
	DefaultCrawlFile = "book.txt"

	// Crawl sources.
	SourceAPI  = "api"
	SourceHTML = "html"

	// Log formats.
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all options of one run.
// It is populated from CLI flags, optionally overlaid with a profile from
// the configuration file, and passed explicitly to the components.
type Config struct {
	// Mode is the kind of run.
	Mode model.Mode

	// BaseURL is the remote service root.
	BaseURL string

	// OutputDir is the directory documents are written to.
	OutputDir string

	// Delay is the mandatory pause before every network request.
	Delay time.Duration

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// MaxAttempts is the number of network calls made for one unit.
	MaxAttempts int

	// Backoff is the per-retry wait after a rate-limit or server error.
	Backoff time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra request headers.
	Headers map[string]string

	// Proxy is an optional SOCKS5 proxy address in "host:port" format.
	Proxy string

	// ConfigFilePath is the configuration file given with --config.
	ConfigFilePath string

	// ReportFile receives a Markdown run summary when set.
	ReportFile string

	// SaveHistory records the run in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string

	// Collection is the dimensional collection to download.
	Collection string

	// Page selects a single page. It is mutually exclusive with Start and End.
	Page int

	// Start and End bound the requested page range. Zero means the
	// collection bound. Values outside the collection are clamped.
	Start int
	End   int

	// Variants are the commentary layers to download in addition to the base text.
	Variants []model.Variant

	// Root is the book name every crawled title must contain.
	Root string

	// Seeds are the titles a crawl starts from.
	Seeds []string

	// AuthorPage is fetched for additional seeds when no seed yields content.
	AuthorPage string

	// Source selects the crawl endpoint: "api" or "html".
	Source string

	// OutputFile is the file name of a crawled book.
	OutputFile string

	// MaxPages bounds the number of crawled pages. Zero means unbounded.
	MaxPages int
}

// NewConfig creates a Config with the defaults of the given mode.
func NewConfig(mode model.Mode) *Config {
	cfg := &Config{
		Mode:        mode,
		BaseURL:     DefaultSefariaURL,
		OutputDir:   DefaultOutputDir,
		Delay:       DefaultDownloadDelay,
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     DefaultBackoff,
		UserAgent:   DefaultUserAgent,
		Headers:     make(map[string]string),
		SaveHistory: true,
		DBDir:       XDGDataDir(),
		LogFormat:   LogFormatText,
		Source:      SourceAPI,
		OutputFile:  DefaultCrawlFile,
	}
	if mode == model.ModeCrawl {
		cfg.BaseURL = DefaultWikisourceURL
		cfg.Delay = DefaultCrawlDelay
	}
	return cfg
}

// SourceName returns the profile name used for this configuration.
func (c *Config) SourceName() string {
	if c.Mode == model.ModeCrawl {
		return SourceWikisource
	}
	return SourceSefaria
}

// XDGDataDir returns the XDG data directory for corpusfetch.
// On Linux: ~/.local/share/corpusfetch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for corpusfetch.
// On Linux: ~/.config/corpusfetch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	switch c.Mode {
	case model.ModeDownload:
		if strings.TrimSpace(c.Collection) == "" {
			return ErrNoCollection
		}
		if c.Page < 0 || c.Start < 0 || c.End < 0 {
			return ErrInvalidRange
		}
		if c.Page > 0 && (c.Start > 0 || c.End > 0) {
			return ErrConflictingRange
		}
	case model.ModeCrawl:
		if strings.TrimSpace(c.Root) == "" {
			return ErrNoRoot
		}
		if len(c.Seeds) == 0 && c.AuthorPage == "" {
			return ErrNoSeed
		}
		if c.Source != SourceAPI && c.Source != SourceHTML {
			return ErrInvalidSource
		}
		if c.MaxPages < 0 {
			return ErrInvalidMaxPages
		}
		if strings.ContainsAny(c.OutputFile, `/\`) || strings.TrimSpace(c.OutputFile) == "" {
			return ErrInvalidOutputFile
		}
	default:
		return ErrInvalidMode
	}

	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Delay <= 0 {
		return ErrInvalidDelay
	}
	if c.Backoff < 0 {
		return ErrInvalidBackoff
	}
	if c.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.Proxy != "" && !IsValidProxyAddress(c.Proxy) {
		return ErrInvalidProxyAddress
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}
	return nil
}

// IsValidProxyAddress checks that address is "host:port" with a port in 1..65535.
func IsValidProxyAddress(address string) bool {
	host, port, ok := strings.Cut(address, ":")
	if !ok || host == "" || strings.Contains(port, ":") {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
