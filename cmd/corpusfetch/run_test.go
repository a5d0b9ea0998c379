package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/corpusfetch/internal/config"
	"github.com/nao1215/corpusfetch/internal/fetch"
	"github.com/nao1215/corpusfetch/internal/model"
)

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		format    string
		verbose   bool
		wantDebug bool
	}{
		{name: "text quiet", format: config.LogFormatText, verbose: false, wantDebug: false},
		{name: "text verbose", format: config.LogFormatText, verbose: true, wantDebug: true},
		{name: "json verbose", format: config.LogFormatJSON, verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig(model.ModeDownload)
			cfg.LogFormat = tt.format
			cfg.Verbose = tt.verbose

			logger := setupLogger(cfg)
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
			if got := logger.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("expected debug enabled=%v, got %v", tt.wantDebug, got)
			}
		})
	}
}

func TestGetVerboseAndLogFormatFlags(t *testing.T) {
	t.Parallel()

	t.Run("inherited from root", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		if err := root.PersistentFlags().Set("log-format", "json"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		download, _, err := root.Find([]string{"download"})
		if err != nil {
			t.Fatalf("failed to find download command: %v", err)
		}
		if !getVerboseFlag(download) {
			t.Error("expected verbose to be true")
		}
		if got := getLogFormatFlag(download); got != config.LogFormatJSON {
			t.Errorf("expected log format json, got %q", got)
		}
	})

	t.Run("standalone command falls back to defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewListCmd()
		if getVerboseFlag(cmd) {
			t.Error("expected verbose to be false")
		}
		if got := getLogFormatFlag(cmd); got != config.LogFormatText {
			t.Errorf("expected log format text, got %q", got)
		}
	})
}

func TestClientConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig(model.ModeCrawl)
	cfg.Headers["Accept-Language"] = "he"
	cfg.Proxy = "127.0.0.1:9050"
	cfg.MaxAttempts = 5

	want := fetch.ClientConfig{
		BaseURL:     config.DefaultWikisourceURL,
		UserAgent:   config.DefaultUserAgent,
		Headers:     map[string]string{"Accept-Language": "he"},
		Timeout:     config.DefaultTimeout,
		Delay:       config.DefaultCrawlDelay,
		Backoff:     config.DefaultBackoff,
		MaxAttempts: 5,
		Proxy:       "127.0.0.1:9050",
	}
	if diff := cmp.Diff(want, clientConfig(cfg)); diff != "" {
		t.Errorf("client config mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReportFile(t *testing.T) {
	t.Parallel()

	rep := model.NewRunReport(model.ModeDownload, "Kinnim")
	rep.PagesTotal = 3
	rep.PagesOK = 2
	rep.Finish()

	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "markdown", file: "run.md", want: "# corpusfetch download report"},
		{name: "json", file: "run.json", want: `"collection": "Kinnim"`},
		{name: "text", file: "run.txt", want: "PARTIAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "nested", tt.file)
			if err := writeReportFile(path, rep); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read report: %v", err)
			}
			if !strings.Contains(string(content), tt.want) {
				t.Errorf("expected report to contain %q, got %q", tt.want, content)
			}
		})
	}
}

func TestFinishRun(t *testing.T) {
	t.Parallel()

	t.Run("success returns nil and records the run", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig(model.ModeDownload)
		cfg.DBDir = t.TempDir()

		rep := model.NewRunReport(model.ModeDownload, "Kinnim")
		rep.PagesTotal, rep.PagesOK = 1, 1
		rep.Finish()

		var out strings.Builder
		if err := finishRun(context.Background(), &out, cfg, rep, nil, quietLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(cfg.DBDir, "corpusfetch.db")); err != nil {
			t.Errorf("expected history database: %v", err)
		}
	})

	t.Run("cancelled run is still recorded", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig(model.ModeDownload)
		cfg.DBDir = t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rep := model.NewRunReport(model.ModeDownload, "Kinnim")
		rep.Finish()

		var out strings.Builder
		err := finishRun(ctx, &out, cfg, rep, context.Canceled, quietLogger())
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(cfg.DBDir, "corpusfetch.db")); statErr != nil {
			t.Errorf("expected history database: %v", statErr)
		}
	})

	t.Run("failure maps to exit code 1", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig(model.ModeDownload)
		cfg.SaveHistory = false

		rep := model.NewRunReport(model.ModeDownload, "Kinnim")
		rep.PagesTotal = 3
		rep.Finish()

		var out strings.Builder
		err := finishRun(context.Background(), &out, cfg, rep, nil, quietLogger())
		if code := exitCode(err); code != 1 {
			t.Errorf("expected exit code 1, got %d", code)
		}
	})
}

func TestTrimmed(t *testing.T) {
	t.Parallel()

	got := trimmed([]string{" Rashi ", "", "  ", "Tosafot"})
	if diff := cmp.Diff([]string{"Rashi", "Tosafot"}, got); diff != "" {
		t.Errorf("trimmed mismatch (-want +got):\n%s", diff)
	}
}

func TestSignalContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := signalContext(quietLogger())
	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected context to be cancelled")
	}
}
