package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/corpusfetch/internal/catalog"
	"github.com/nao1215/corpusfetch/internal/config"
	"github.com/nao1215/corpusfetch/internal/history"
	"github.com/nao1215/corpusfetch/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSefariaServer serves every text request with one Hebrew line named
// after the requested reference. References in missing answer 404.
func newSefariaServer(t *testing.T, missing ...string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimPrefix(r.URL.Path, "/api/texts/")
		for _, m := range missing {
			if ref == m {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"he": ["שורה ` + ref + `"]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

// testDownloadConfig returns a config that talks to baseURL without delays.
func testDownloadConfig(t *testing.T, baseURL, collection string) *config.Config {
	t.Helper()

	cfg := config.NewConfig(model.ModeDownload)
	cfg.BaseURL = baseURL
	cfg.Collection = collection
	cfg.OutputDir = filepath.Join(t.TempDir(), "downloads")
	cfg.DBDir = t.TempDir()
	cfg.Delay = time.Millisecond
	cfg.Backoff = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}

// TestNewDownloadCmd tests the download command creation.
func TestNewDownloadCmd(t *testing.T) {
	t.Parallel()

	cmd := NewDownloadCmd()

	flags := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "page", shorthand: "d", defValue: "0"},
		{name: "start", shorthand: "s", defValue: "0"},
		{name: "end", shorthand: "e", defValue: "0"},
		{name: "commentary", shorthand: "c", defValue: "[]"},
		{name: "no-commentary", defValue: "false"},
		{name: "no-steinsaltz", defValue: "false"},
		{name: "no-rashi", defValue: "false"},
		{name: "no-tosafot", defValue: "false"},
		{name: "output", shorthand: "o", defValue: config.DefaultOutputDir},
		{name: "delay", defValue: config.DefaultDownloadDelay.String()},
		{name: "timeout", shorthand: "t", defValue: config.DefaultTimeout.String()},
		{name: "retries", defValue: "3"},
		{name: "backoff", defValue: config.DefaultBackoff.String()},
		{name: "proxy", defValue: ""},
		{name: "report", defValue: ""},
		{name: "no-history", defValue: "false"},
		{name: "config", defValue: ""},
	}

	for _, f := range flags {
		t.Run("has "+f.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(f.name)
			if flag == nil {
				t.Fatalf("expected %s flag", f.name)
			}
			if flag.Shorthand != f.shorthand {
				t.Errorf("expected shorthand %q, got %q", f.shorthand, flag.Shorthand)
			}
			if flag.DefValue != f.defValue {
				t.Errorf("expected default %q, got %q", f.defValue, flag.DefValue)
			}
		})
	}

	t.Run("requires exactly one collection", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, nil); err == nil {
			t.Error("expected error without a collection")
		}
		if err := cmd.Args(cmd, []string{"Berakhot"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestBuildDownloadConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewDownloadCmd()
		cfg, err := buildDownloadConfig(cmd, []string{"Berakhot"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Mode != model.ModeDownload {
			t.Errorf("expected mode download, got %q", cfg.Mode)
		}
		if cfg.Collection != "Berakhot" {
			t.Errorf("expected collection Berakhot, got %q", cfg.Collection)
		}
		if cfg.Delay != config.DefaultDownloadDelay {
			t.Errorf("expected delay %s, got %s", config.DefaultDownloadDelay, cfg.Delay)
		}
		if !cfg.SaveHistory {
			t.Error("expected SaveHistory to be true")
		}
		want := []model.Variant{catalog.Steinsaltz, catalog.Rashi, catalog.Tosafot}
		if diff := cmp.Diff(want, cfg.Variants); diff != "" {
			t.Errorf("variants mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("builds config with range and fetch flags", func(t *testing.T) {
		cmd := NewDownloadCmd()
		args := []string{
			"--start", "3", "--end", "7",
			"--output", "out", "--delay", "2s", "--retries", "5",
			"--backoff", "10s", "--proxy", "127.0.0.1:9050",
			"--report", "run.md", "--no-history",
		}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildDownloadConfig(cmd, []string{"Shabbat"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Start != 3 || cfg.End != 7 {
			t.Errorf("expected range 3-7, got %d-%d", cfg.Start, cfg.End)
		}
		if cfg.OutputDir != "out" || cfg.Delay != 2*time.Second || cfg.MaxAttempts != 5 || cfg.Backoff != 10*time.Second {
			t.Errorf("unexpected fetch settings %+v", cfg)
		}
		if cfg.Proxy != "127.0.0.1:9050" {
			t.Errorf("expected proxy, got %q", cfg.Proxy)
		}
		if cfg.ReportFile != "run.md" {
			t.Errorf("expected report file run.md, got %q", cfg.ReportFile)
		}
		if cfg.SaveHistory {
			t.Error("expected SaveHistory to be false")
		}
	})

	t.Run("conflicting page and range fail validation", func(t *testing.T) {
		cmd := NewDownloadCmd()
		if err := cmd.ParseFlags([]string{"--page", "5", "--start", "3"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildDownloadConfig(cmd, []string{"Berakhot"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Validate(); !errors.Is(err, config.ErrConflictingRange) {
			t.Errorf("expected ErrConflictingRange, got %v", err)
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		cmd := NewDownloadCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		if _, err := buildDownloadConfig(cmd, []string{"Berakhot"}); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("config file profile applies unless a flag overrides it", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), ".corpusfetch")
		content := `defaults:
  maxAttempts: 4
  outputDir: from-file
sources:
  sefaria:
    baseURL: http://sefaria.test
    delay: 3s
    backoff: 45s
`
		if err := os.WriteFile(configFile, []byte(content), 0600); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		cmd := NewDownloadCmd()
		if err := cmd.ParseFlags([]string{"--config", configFile, "--delay", "10ms"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildDownloadConfig(cmd, []string{"Berakhot"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BaseURL != "http://sefaria.test" {
			t.Errorf("expected base URL from file, got %q", cfg.BaseURL)
		}
		if cfg.MaxAttempts != 4 || cfg.OutputDir != "from-file" || cfg.Backoff != 45*time.Second {
			t.Errorf("expected profile values, got attempts=%d output=%q backoff=%s", cfg.MaxAttempts, cfg.OutputDir, cfg.Backoff)
		}
		if cfg.Delay != 10*time.Millisecond {
			t.Errorf("expected --delay to win over the file, got %s", cfg.Delay)
		}
	})

	t.Run("invalid config file is an error", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), ".corpusfetch")
		if err := os.WriteFile(configFile, []byte("invalid: yaml: content: ["), 0600); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}
		cmd := NewDownloadCmd()
		if err := cmd.ParseFlags([]string{"--config", configFile}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		if _, err := buildDownloadConfig(cmd, []string{"Berakhot"}); err == nil {
			t.Error("expected error for invalid config file")
		}
	})
}

func TestSelectVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		collection string
		args       []string
		want       []model.Variant
	}{
		{
			name:       "tractate defaults",
			collection: "Berakhot",
			want:       []model.Variant{catalog.Steinsaltz, catalog.Rashi, catalog.Tosafot},
		},
		{
			name:       "skip flags remove layers",
			collection: "Berakhot",
			args:       []string{"--no-rashi", "--no-tosafot"},
			want:       []model.Variant{catalog.Steinsaltz},
		},
		{
			name:       "explicit commentary replaces defaults",
			collection: "Berakhot",
			args:       []string{"-c", "Rashi", "-c", " Maharsha "},
			want:       []model.Variant{catalog.Rashi, "Maharsha"},
		},
		{
			name:       "skip flags apply to explicit commentary",
			collection: "Berakhot",
			args:       []string{"--commentary", "Rashi,Steinsaltz", "--no-steinsaltz"},
			want:       []model.Variant{catalog.Rashi},
		},
		{
			name:       "no commentary",
			collection: "Berakhot",
			args:       []string{"--no-commentary", "-c", "Rashi"},
			want:       nil,
		},
		{
			name:       "whole book defaults",
			collection: "תהילים",
			want:       []model.Variant{catalog.Malbim},
		},
		{
			name:       "unknown collection",
			collection: "Nowhere",
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewDownloadCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("failed to parse flags: %v", err)
			}
			got, err := selectVariants(cmd, tt.collection)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("variants mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunDownload(t *testing.T) {
	t.Parallel()

	t.Run("downloads every page and records the run", func(t *testing.T) {
		t.Parallel()

		server := newSefariaServer(t)
		cfg := testDownloadConfig(t, server.URL, "Kinnim")
		cfg.Variants = []model.Variant{catalog.Rashi}
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "kinnim.md")

		var out bytes.Buffer
		if err := runDownload(context.Background(), &out, cfg, quietLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, name := range []string{"Kinnim_2.txt", "Kinnim_2_rashi.txt", "Kinnim_4.txt", "Kinnim_4_rashi.txt"} {
			if _, err := os.Stat(filepath.Join(cfg.OutputDir, name)); err != nil {
				t.Errorf("expected %s to be written: %v", name, err)
			}
		}
		content, err := os.ReadFile(filepath.Join(cfg.OutputDir, "Kinnim_3.txt"))
		if err != nil {
			t.Fatalf("failed to read page: %v", err)
		}
		for _, want := range []string{"--- 3a ---", "שורה Kinnim.3a", "--- 3b ---", "שורה Kinnim.3b"} {
			if !strings.Contains(string(content), want) {
				t.Errorf("expected page to contain %q, got %q", want, content)
			}
		}

		if !strings.Contains(out.String(), "Progress: 3/3 pages completed") {
			t.Errorf("expected progress lines, got %q", out.String())
		}
		if !strings.Contains(out.String(), "SUCCESS") {
			t.Errorf("expected summary with outcome, got %q", out.String())
		}

		report, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if !strings.Contains(string(report), "# corpusfetch download report") {
			t.Errorf("expected Markdown report, got %q", report)
		}

		runLog, err := history.Open(cfg.DBDir, history.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open history: %v", err)
		}
		defer runLog.Close()
		runs, err := runLog.ListRuns(context.Background(), "Kinnim", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 recorded run, got %d", len(runs))
		}
		if runs[0].PagesOK != 3 || runs[0].Outcome != model.OutcomeSuccess.String() {
			t.Errorf("unexpected recorded run %+v", runs[0])
		}
	})

	t.Run("single page", func(t *testing.T) {
		t.Parallel()

		server := newSefariaServer(t)
		cfg := testDownloadConfig(t, server.URL, "Berakhot")
		cfg.Page = 5
		cfg.SaveHistory = false

		var out bytes.Buffer
		if err := runDownload(context.Background(), &out, cfg, quietLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entries, err := os.ReadDir(cfg.OutputDir)
		if err != nil {
			t.Fatalf("failed to read output dir: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "Berakhot_5.txt" {
			t.Errorf("expected only Berakhot_5.txt, got %v", entries)
		}
	})

	t.Run("partial failure exits with status 2", func(t *testing.T) {
		t.Parallel()

		server := newSefariaServer(t, "Kinnim.3b")
		cfg := testDownloadConfig(t, server.URL, "Kinnim")
		cfg.SaveHistory = false

		var out bytes.Buffer
		err := runDownload(context.Background(), &out, cfg, quietLogger())
		if err == nil {
			t.Fatal("expected an outcome error")
		}
		if code := exitCode(err); code != 2 {
			t.Errorf("expected exit code 2, got %d (%v)", code, err)
		}
		content, readErr := os.ReadFile(filepath.Join(cfg.OutputDir, "Kinnim_3.txt"))
		if readErr != nil {
			t.Fatalf("expected page with placeholder: %v", readErr)
		}
		if !strings.Contains(string(content), "[fetch failed:") {
			t.Errorf("expected failure placeholder, got %q", content)
		}
	})

	t.Run("unknown collection is rejected", func(t *testing.T) {
		t.Parallel()

		server := newSefariaServer(t)
		cfg := testDownloadConfig(t, server.URL, "Nowhere")

		var out bytes.Buffer
		err := runDownload(context.Background(), &out, cfg, quietLogger())
		if !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if !strings.Contains(err.Error(), "corpusfetch list") {
			t.Errorf("expected a hint to the list command, got %v", err)
		}
		if code := exitCode(err); code != 1 {
			t.Errorf("expected exit code 1, got %d", code)
		}
		if _, statErr := os.Stat(filepath.Join(cfg.DBDir, history.FileName)); statErr != nil {
			t.Errorf("expected rejected run to be recorded: %v", statErr)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		server := newSefariaServer(t)
		cfg := testDownloadConfig(t, server.URL, "Berakhot")
		cfg.SaveHistory = false

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out bytes.Buffer
		err := runDownload(ctx, &out, cfg, quietLogger())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
