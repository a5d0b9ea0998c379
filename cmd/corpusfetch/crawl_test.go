package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/corpusfetch/internal/config"
	"github.com/nao1215/corpusfetch/internal/crawler"
	"github.com/nao1215/corpusfetch/internal/fetch"
	"github.com/nao1215/corpusfetch/internal/model"
	"github.com/nao1215/corpusfetch/internal/normalize"
)

// wikiPages is a small book: a main page linking to one section and to an
// unrelated page.
var wikiPages = map[string]string{
	"Book":   "פתיחה לספר\n[[Book/A|חלק א]] [[Other]]",
	"Book/A": "תוכן החלק הראשון",
	"Other":  "לא שייך",
}

// newWikisourceServer serves wikiPages through the MediaWiki query API and
// as rendered /wiki/ pages.
func newWikisourceServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/w/api.php" {
			title := r.URL.Query().Get("titles")
			page := map[string]any{"title": title}
			if content, ok := wikiPages[title]; ok {
				page["revisions"] = []any{
					map[string]any{"slots": map[string]any{"main": map[string]any{"content": content}}},
				}
			} else {
				page["missing"] = true
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"query": map[string]any{"pages": []any{page}}})
			return
		}

		title := strings.ReplaceAll(strings.TrimPrefix(r.URL.Path, "/wiki/"), "_", " ")
		content, ok := wikiPages[title]
		if !ok {
			http.NotFound(w, r)
			return
		}
		var body strings.Builder
		body.WriteString(`<html><body><div id="mw-content-text">`)
		for _, line := range strings.Split(content, "\n") {
			if !strings.Contains(line, "[[") {
				body.WriteString("<p>" + line + "</p>")
			}
		}
		if title == "Book" {
			body.WriteString(`<p><a href="/wiki/Book/A">חלק א</a> <a href="/wiki/Other">Other</a></p>`)
		}
		body.WriteString(`</div></body></html>`)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body.String()))
	}))
	t.Cleanup(server.Close)
	return server
}

func testCrawlConfig(t *testing.T, baseURL, root string) *config.Config {
	t.Helper()

	cfg := config.NewConfig(model.ModeCrawl)
	cfg.BaseURL = baseURL
	cfg.Root = root
	cfg.Seeds = []string{root}
	cfg.OutputDir = t.TempDir()
	cfg.DBDir = t.TempDir()
	cfg.Delay = time.Millisecond
	cfg.Backoff = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	flags := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "root", shorthand: "r", defValue: ""},
		{name: "source", defValue: config.SourceAPI},
		{name: "author", shorthand: "a", defValue: ""},
		{name: "file", shorthand: "f", defValue: config.DefaultCrawlFile},
		{name: "max-pages", shorthand: "m", defValue: "0"},
		{name: "delay", defValue: config.DefaultCrawlDelay.String()},
		{name: "output", shorthand: "o", defValue: config.DefaultOutputDir},
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
}

func TestBuildCrawlConfig(t *testing.T) {
	t.Run("root defaults to the first seed", func(t *testing.T) {
		cmd := NewCrawlCmd()
		cfg, err := buildCrawlConfig(cmd, []string{" שמונה קבצים ", "שמונה קבצים/א"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Root != "שמונה קבצים" {
			t.Errorf("expected root from first seed, got %q", cfg.Root)
		}
		if diff := cmp.Diff([]string{"שמונה קבצים", "שמונה קבצים/א"}, cfg.Seeds); diff != "" {
			t.Errorf("seeds mismatch (-want +got):\n%s", diff)
		}
		if cfg.BaseURL != config.DefaultWikisourceURL {
			t.Errorf("expected Wikisource base URL, got %q", cfg.BaseURL)
		}
		if cfg.Delay != config.DefaultCrawlDelay {
			t.Errorf("expected crawl delay %s, got %s", config.DefaultCrawlDelay, cfg.Delay)
		}
	})

	t.Run("seeds default to the root", func(t *testing.T) {
		cmd := NewCrawlCmd()
		args := []string{"--root", "ה' רועי", "--source", "html", "--author", "מחבר:פלוני", "--file", "roei.txt", "--max-pages", "12"}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"ה' רועי"}, cfg.Seeds); diff != "" {
			t.Errorf("seeds mismatch (-want +got):\n%s", diff)
		}
		if cfg.Source != config.SourceHTML || cfg.AuthorPage != "מחבר:פלוני" || cfg.OutputFile != "roei.txt" || cfg.MaxPages != 12 {
			t.Errorf("unexpected crawl settings %+v", cfg)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
	})

	t.Run("nothing to crawl fails validation", func(t *testing.T) {
		cmd := NewCrawlCmd()
		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Validate(); err != config.ErrNoRoot {
			t.Errorf("expected ErrNoRoot, got %v", err)
		}
	})
}

func TestCrawlSource(t *testing.T) {
	t.Parallel()

	endpoint, normalizer, links := crawlSource(config.SourceAPI)
	if _, ok := endpoint.(fetch.WikisourceAPI); !ok {
		t.Errorf("expected WikisourceAPI endpoint, got %T", endpoint)
	}
	if _, ok := normalizer.(normalize.Wikitext); !ok {
		t.Errorf("expected Wikitext normalizer, got %T", normalizer)
	}
	if _, ok := links.(crawler.WikiLinks); !ok {
		t.Errorf("expected WikiLinks scanner, got %T", links)
	}

	endpoint, normalizer, links = crawlSource(config.SourceHTML)
	if _, ok := endpoint.(fetch.WikisourceHTML); !ok {
		t.Errorf("expected WikisourceHTML endpoint, got %T", endpoint)
	}
	if _, ok := normalizer.(normalize.HTML); !ok {
		t.Errorf("expected HTML normalizer, got %T", normalizer)
	}
	if _, ok := links.(crawler.HTMLLinks); !ok {
		t.Errorf("expected HTMLLinks scanner, got %T", links)
	}
}

func TestRunCrawl(t *testing.T) {
	t.Parallel()

	for _, source := range []string{config.SourceAPI, config.SourceHTML} {
		t.Run(source, func(t *testing.T) {
			t.Parallel()

			server := newWikisourceServer(t)
			cfg := testCrawlConfig(t, server.URL, "Book")
			cfg.Source = source

			var out bytes.Buffer
			if err := runCrawl(context.Background(), &out, cfg, quietLogger()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			content, err := os.ReadFile(filepath.Join(cfg.OutputDir, config.DefaultCrawlFile))
			if err != nil {
				t.Fatalf("expected book file: %v", err)
			}
			for _, want := range []string{"פתיחה לספר", "תוכן החלק הראשון"} {
				if !strings.Contains(string(content), want) {
					t.Errorf("expected book to contain %q, got %q", want, content)
				}
			}
			if strings.Contains(string(content), "לא שייך") {
				t.Errorf("expected unrelated page to be skipped, got %q", content)
			}
			if !strings.Contains(out.String(), "Fetching: Book/A") {
				t.Errorf("expected progress for the linked section, got %q", out.String())
			}
		})
	}

	t.Run("max pages bounds the crawl", func(t *testing.T) {
		t.Parallel()

		server := newWikisourceServer(t)
		cfg := testCrawlConfig(t, server.URL, "Book")
		cfg.MaxPages = 1
		cfg.OutputFile = "first.txt"
		cfg.SaveHistory = false

		var out bytes.Buffer
		if err := runCrawl(context.Background(), &out, cfg, quietLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, err := os.ReadFile(filepath.Join(cfg.OutputDir, "first.txt"))
		if err != nil {
			t.Fatalf("expected book file: %v", err)
		}
		if strings.Contains(string(content), "תוכן החלק הראשון") {
			t.Errorf("expected only the first page, got %q", content)
		}
	})

	t.Run("root without text fails", func(t *testing.T) {
		t.Parallel()

		server := newWikisourceServer(t)
		cfg := testCrawlConfig(t, server.URL, "Missing")
		cfg.SaveHistory = false

		var out bytes.Buffer
		err := runCrawl(context.Background(), &out, cfg, quietLogger())
		if code := exitCode(err); code != 1 {
			t.Errorf("expected exit code 1, got %d (%v)", code, err)
		}
		if !strings.Contains(out.String(), "No pages with text were found.") {
			t.Errorf("expected notice about missing text, got %q", out.String())
		}
	})
}
