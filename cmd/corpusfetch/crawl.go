package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpusfetch/internal/config"
	"github.com/nao1215/corpusfetch/internal/crawler"
	"github.com/nao1215/corpusfetch/internal/fetch"
	"github.com/nao1215/corpusfetch/internal/model"
	"github.com/nao1215/corpusfetch/internal/normalize"
	"github.com/nao1215/corpusfetch/internal/store"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-title...]",
		Short: "Crawl a multi-page book from Hebrew Wikisource",
		Long: `Crawl fetches a book from Hebrew Wikisource by following its internal links.

Starting from the seed titles (the root title when none are given), every
linked page whose title contains the root is fetched once. All pages are
written to a single file, sorted by title.

If none of the seeds has any text, the author page given with --author is
fetched and its links to the book become new seeds.

Examples:
  # Crawl a book starting from its main page
  corpusfetch crawl --root "שמונה קבצים"

  # Start from specific sections and stop after 50 pages
  corpusfetch crawl --root "שמונה קבצים" "שמונה קבצים/א" --max-pages 50

  # Use rendered HTML instead of wikitext
  corpusfetch crawl --root "ה' רועי" --source html --file hashem_roei.txt

  # Fall back to the author page when the seeds are empty
  corpusfetch crawl --root "ה' רועי" --author "מחבר:אברהם יצחק הכהן קוק"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("root", "r", "",
		"Book title that every crawled page title must contain (default: first seed)")
	cmd.Flags().String("source", config.SourceAPI,
		"Page source: api (wikitext) or html (rendered page)")
	cmd.Flags().StringP("author", "a", "",
		"Author page to search for seeds when the seeds have no text")
	cmd.Flags().StringP("file", "f", config.DefaultCrawlFile,
		"File name of the assembled book inside the output directory")
	cmd.Flags().IntP("max-pages", "m", 0,
		"Maximum number of pages to fetch (0 means no limit)")

	addFetchFlags(cmd, config.DefaultCrawlDelay)

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runCrawl(ctx, cmd.OutOrStdout(), cfg, logger)
}

// buildCrawlConfig creates a crawl Config from cobra command flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig(model.ModeCrawl)

	var err error
	if cfg.Root, err = cmd.Flags().GetString("root"); err != nil {
		return nil, err
	}
	if cfg.Source, err = cmd.Flags().GetString("source"); err != nil {
		return nil, err
	}
	if cfg.AuthorPage, err = cmd.Flags().GetString("author"); err != nil {
		return nil, err
	}
	if cfg.OutputFile, err = cmd.Flags().GetString("file"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return nil, err
	}

	cfg.Seeds = trimmed(args)
	if cfg.Root == "" && len(cfg.Seeds) > 0 {
		cfg.Root = cfg.Seeds[0]
	}
	if len(cfg.Seeds) == 0 && cfg.Root != "" {
		cfg.Seeds = []string{cfg.Root}
	}

	if err := readFetchFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// crawlSource returns the endpoint, normalizer and link scanner of a
// crawl source.
func crawlSource(source string) (fetch.Endpoint, normalize.Normalizer, crawler.LinkScanner) {
	if source == config.SourceHTML {
		return fetch.WikisourceHTML{}, normalize.HTML{}, crawler.HTMLLinks{}
	}
	return fetch.WikisourceAPI{}, normalize.Wikitext{}, crawler.WikiLinks{}
}

// runCrawl wires the crawler for cfg and crawls the book.
func runCrawl(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	endpoint, normalizer, links := crawlSource(cfg.Source)

	fetcher, err := fetch.New(clientConfig(cfg), endpoint, fetch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	writer := store.NewWriter(cfg.OutputDir, store.WithLogger(logger))
	spider := crawler.NewSpider(fetcher, normalizer, links, writer,
		crawler.WithLogger(logger),
		crawler.WithProgress(out),
	)

	logger.Info("starting crawl",
		"root", cfg.Root,
		"seeds", cfg.Seeds,
		"source", cfg.Source,
		"output", cfg.OutputDir,
	)

	rep, runErr := spider.Crawl(ctx, crawler.Request{
		Root:       cfg.Root,
		Seeds:      cfg.Seeds,
		AuthorPage: cfg.AuthorPage,
		MaxPages:   cfg.MaxPages,
		FileName:   cfg.OutputFile,
	})
	return finishRun(ctx, out, cfg, rep, runErr, logger)
}
