package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/proxy"
)

// ClientConfig is the complete client configuration of a Fetcher.
// It is copied into the Fetcher on construction.
type ClientConfig struct {
	// BaseURL is the service root, e.g. "https://www.sefaria.org".
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra request headers.
	Headers map[string]string

	// Timeout bounds a single request.
	Timeout time.Duration

	// Delay is the pause before every request.
	Delay time.Duration

	// Backoff is the extra wait per retry. Retry n waits
	// max(Delay, n*Backoff).
	Backoff time.Duration

	// MaxAttempts is the number of network calls per unit. Values below
	// one are treated as one.
	MaxAttempts int

	// Proxy is an optional SOCKS5 proxy in "host:port" format.
	Proxy string
}

// wait returns the pause before the given 1-based attempt.
func (c ClientConfig) wait(attempt int) time.Duration {
	if attempt <= 1 {
		return c.Delay
	}
	return max(c.Delay, time.Duration(attempt-1)*c.Backoff)
}

// newRestyClient builds the HTTP transport for cfg.
func newRestyClient(cfg ClientConfig, logger *slog.Logger) (*resty.Client, error) {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetLogger(restyLogger{logger: logger})

	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	if len(cfg.Headers) > 0 {
		client.SetHeaders(maps.Clone(cfg.Headers))
	}

	if cfg.Proxy != "" {
		transport, err := socksTransport(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		client.SetTransport(transport)
	}
	return client, nil
}

// socksTransport returns an HTTP transport dialing through a SOCKS5 proxy.
func socksTransport(address string) (*http.Transport, error) {
	dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	transport.Proxy = nil
	if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = contextDialer.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// restyLogger routes resty's internal messages to slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error("http client", "message", fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn("http client", "message", fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug("http client", "message", fmt.Sprintf(format, v...))
}
