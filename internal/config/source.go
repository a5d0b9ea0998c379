package config

import (
	"maps"
	"time"
)

// Profile names in the configuration file.
const (
	SourceSefaria    = "sefaria"
	SourceWikisource = "wikisource"
)

// SourceConfig holds the client settings of one remote source.
// Zero values mean "not set" and leave the built-in default in place.
type SourceConfig struct {
	// BaseURL is the service root, e.g. "https://www.sefaria.org".
	BaseURL string `yaml:"baseURL,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Delay is the pause before every request.
	Delay time.Duration `yaml:"delay,omitempty"`

	// Timeout bounds a single request.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Backoff is the per-retry wait after a rate-limit or server error.
	Backoff time.Duration `yaml:"backoff,omitempty"`

	// MaxAttempts is the number of network calls per unit.
	MaxAttempts int `yaml:"maxAttempts,omitempty"`

	// Proxy is a SOCKS5 proxy address.
	Proxy string `yaml:"proxy,omitempty"`

	// OutputDir is the directory documents are written to.
	OutputDir string `yaml:"outputDir,omitempty"`
}

// File represents the structure of the .corpusfetch configuration file.
type File struct {
	// Defaults applies to every source unless overridden.
	Defaults SourceConfig `yaml:"defaults,omitempty"`

	// Sources maps a source name ("sefaria", "wikisource") to its settings.
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`
}

// Profile returns the settings of a source merged over the defaults.
func (f *File) Profile(name string) SourceConfig {
	result := f.Defaults
	result.Headers = maps.Clone(f.Defaults.Headers)

	override, ok := f.Sources[name]
	if !ok {
		return result
	}
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	if len(override.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		maps.Copy(result.Headers, override.Headers)
	}
	if override.Delay > 0 {
		result.Delay = override.Delay
	}
	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	if override.Backoff > 0 {
		result.Backoff = override.Backoff
	}
	if override.MaxAttempts > 0 {
		result.MaxAttempts = override.MaxAttempts
	}
	if override.Proxy != "" {
		result.Proxy = override.Proxy
	}
	if override.OutputDir != "" {
		result.OutputDir = override.OutputDir
	}
	return result
}

// Flag names that a profile value can be overridden by.
const (
	FlagDelay   = "delay"
	FlagTimeout = "timeout"
	FlagBackoff = "backoff"
	FlagRetries = "retries"
	FlagProxy   = "proxy"
	FlagOutput  = "output"
)

// ApplyProfile copies the set values of p into c. A value is skipped when
// changed reports that its flag was given on the command line.
func (c *Config) ApplyProfile(p SourceConfig, changed func(flag string) bool) {
	if changed == nil {
		changed = func(string) bool { return false }
	}
	if p.BaseURL != "" {
		c.BaseURL = p.BaseURL
	}
	if p.UserAgent != "" {
		c.UserAgent = p.UserAgent
	}
	if len(p.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		maps.Copy(c.Headers, p.Headers)
	}
	if p.Delay > 0 && !changed(FlagDelay) {
		c.Delay = p.Delay
	}
	if p.Timeout > 0 && !changed(FlagTimeout) {
		c.Timeout = p.Timeout
	}
	if p.Backoff > 0 && !changed(FlagBackoff) {
		c.Backoff = p.Backoff
	}
	if p.MaxAttempts > 0 && !changed(FlagRetries) {
		c.MaxAttempts = p.MaxAttempts
	}
	if p.Proxy != "" && !changed(FlagProxy) {
		c.Proxy = p.Proxy
	}
	if p.OutputDir != "" && !changed(FlagOutput) {
		c.OutputDir = p.OutputDir
	}
}
