package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nao1215/corpusfetch/internal/model"
)

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Fetcher fetches work units from one Endpoint.
// Calls are sequential; a Fetcher is not meant to be shared across goroutines.
type Fetcher struct {
	cfg      ClientConfig
	endpoint Endpoint
	client   *resty.Client
	sleep    Sleeper
	logger   *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithSleeper replaces the wall-clock sleep, mainly for tests.
func WithSleeper(sleep Sleeper) Option {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// New creates a Fetcher. cfg is copied; later changes to the caller's
// value or its Headers map do not affect the Fetcher.
func New(cfg ClientConfig, endpoint Endpoint, opts ...Option) (*Fetcher, error) {
	cfg.Headers = maps.Clone(cfg.Headers)
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	f := &Fetcher{
		cfg:      cfg,
		endpoint: endpoint,
		sleep:    SleepContext,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	client, err := newRestyClient(cfg, f.logger)
	if err != nil {
		return nil, err
	}
	f.client = client
	return f, nil
}

// Config returns a copy of the client configuration.
func (f *Fetcher) Config() ClientConfig {
	cfg := f.cfg
	cfg.Headers = maps.Clone(f.cfg.Headers)
	return cfg
}

// Fetch retrieves one unit. It never returns an error: failures are
// reported through FetchResult.OK and FetchResult.Err.
func (f *Fetcher) Fetch(ctx context.Context, unit model.WorkUnit) model.FetchResult {
	result := model.FetchResult{Unit: unit}
	req := f.endpoint.Request(unit)

	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		if err := f.sleep(ctx, f.cfg.wait(attempt)); err != nil {
			lastErr = err
			break
		}

		result.Attempts = attempt
		payload, status, err := f.do(ctx, req)
		result.Status = status
		if err == nil {
			result.OK = true
			result.Payload = payload
			return result
		}

		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
		if attempt < f.cfg.MaxAttempts {
			f.logger.Warn("fetch failed, retrying",
				"unit", unit.String(),
				"attempt", attempt,
				"status", status,
				"wait", f.cfg.wait(attempt+1),
				"error", err,
			)
		}
	}

	result.Err = fmt.Errorf("%w: %s after %d attempt(s): %w",
		model.ErrTransientFetch, unit, result.Attempts, lastErr)
	f.logger.Debug("fetch gave up", "unit", unit.String(), "error", result.Err)
	return result
}

// do performs a single network call.
func (f *Fetcher) do(ctx context.Context, req Request) (model.Payload, int, error) {
	res, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(req.Query).
		Get(req.Path)
	if err != nil {
		return model.Payload{}, 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	status := res.StatusCode()
	if status < 200 || status > 299 {
		return model.Payload{}, status, &StatusError{Code: status}
	}

	payload, err := f.endpoint.Decode(res.Body())
	if err != nil {
		return model.Payload{}, status, err
	}
	return payload, status, nil
}

// SleepContext waits for d, returning early with ctx.Err() when ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
