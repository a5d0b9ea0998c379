package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpusfetch/internal/catalog"
	"github.com/nao1215/corpusfetch/internal/config"
	"github.com/nao1215/corpusfetch/internal/enumerate"
	"github.com/nao1215/corpusfetch/internal/fetch"
	"github.com/nao1215/corpusfetch/internal/model"
	"github.com/nao1215/corpusfetch/internal/normalize"
	"github.com/nao1215/corpusfetch/internal/pipeline"
	"github.com/nao1215/corpusfetch/internal/store"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <collection>",
		Short: "Download a collection from Sefaria",
		Long: `Download fetches a collection from Sefaria and writes it as plain text.

Talmud tractates are written page by page: one file per daf with both
sides, plus one file per commentary (Steinsaltz, Rashi and Tosafot by
default). Whole books such as Psalms are written as one file per text layer.

The collection may be given in English or Hebrew. Page numbers outside the
collection are clamped to its bounds. Run 'corpusfetch list' to see the
available collections.

Examples:
  # Download all of Berakhot with the default commentaries
  corpusfetch download Berakhot

  # Download dapim 2 to 10 without Tosafot
  corpusfetch download Berakhot --start 2 --end 10 --no-tosafot

  # Download a single daf of the base text only
  corpusfetch download "Bava Kamma" --page 5 --no-commentary

  # Download Psalms with the Malbim commentary
  corpusfetch download תהילים

  # Also write a Markdown report
  corpusfetch download Kinnim --report kinnim.md`,
		Args: cobra.ExactArgs(1),
		RunE: runDownloadCmd,
	}

	cmd.Flags().IntP("page", "d", 0,
		"Download a single page (daf) only")
	cmd.Flags().IntP("start", "s", 0,
		"First page to download (default: first page of the collection)")
	cmd.Flags().IntP("end", "e", 0,
		"Last page to download (default: last page of the collection)")
	cmd.Flags().StringSliceP("commentary", "c", nil,
		"Commentary layers to download instead of the collection defaults (repeatable)")
	cmd.Flags().Bool("no-commentary", false,
		"Download the base text only")
	cmd.Flags().Bool("no-steinsaltz", false,
		"Skip the Steinsaltz commentary")
	cmd.Flags().Bool("no-rashi", false,
		"Skip the Rashi commentary")
	cmd.Flags().Bool("no-tosafot", false,
		"Skip the Tosafot commentary")

	addFetchFlags(cmd, config.DefaultDownloadDelay)

	return cmd
}

// runDownloadCmd executes the download command.
func runDownloadCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildDownloadConfig(cmd, args)
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

	return runDownload(ctx, cmd.OutOrStdout(), cfg, logger)
}

// buildDownloadConfig creates a download Config from cobra command flags.
func buildDownloadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig(model.ModeDownload)
	if len(args) > 0 {
		cfg.Collection = args[0]
	}

	var err error
	if cfg.Page, err = cmd.Flags().GetInt("page"); err != nil {
		return nil, err
	}
	if cfg.Start, err = cmd.Flags().GetInt("start"); err != nil {
		return nil, err
	}
	if cfg.End, err = cmd.Flags().GetInt("end"); err != nil {
		return nil, err
	}
	if cfg.Variants, err = selectVariants(cmd, cfg.Collection); err != nil {
		return nil, err
	}
	if err := readFetchFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// selectVariants resolves the commentary flags against the defaults of
// the named collection. An unknown collection yields no variants; the run
// itself reports the lookup failure.
func selectVariants(cmd *cobra.Command, collection string) ([]model.Variant, error) {
	noCommentary, err := cmd.Flags().GetBool("no-commentary")
	if err != nil {
		return nil, err
	}
	if noCommentary {
		return nil, nil
	}

	requested, err := cmd.Flags().GetStringSlice("commentary")
	if err != nil {
		return nil, err
	}

	var variants []model.Variant
	if names := trimmed(requested); len(names) > 0 {
		for _, name := range names {
			variants = append(variants, model.Variant(name))
		}
	} else if c, err := catalog.Lookup(collection); err == nil {
		variants = slices.Clone(c.Variants)
	}

	skip := map[string]model.Variant{
		"no-steinsaltz": catalog.Steinsaltz,
		"no-rashi":      catalog.Rashi,
		"no-tosafot":    catalog.Tosafot,
	}
	for flag, variant := range skip {
		off, err := cmd.Flags().GetBool(flag)
		if err != nil {
			return nil, err
		}
		if off {
			variants = slices.DeleteFunc(variants, func(v model.Variant) bool {
				return strings.EqualFold(string(v), string(variant))
			})
		}
	}
	return variants, nil
}

// runDownload wires the engine for cfg and downloads the requested range.
func runDownload(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	fetcher, err := fetch.New(clientConfig(cfg), fetch.Sefaria{}, fetch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	writer := store.NewWriter(cfg.OutputDir, store.WithLogger(logger))
	downloader := pipeline.NewDownloader(fetcher, normalize.Segments{}, writer,
		pipeline.WithLogger(logger),
		pipeline.WithProgress(out),
	)

	logger.Info("starting download",
		"collection", cfg.Collection,
		"variants", cfg.Variants,
		"output", cfg.OutputDir,
	)

	var (
		rep    *model.RunReport
		runErr error
	)
	if cfg.Page > 0 {
		rep, runErr = downloader.DownloadPage(ctx, cfg.Collection, cfg.Page, cfg.Variants)
	} else {
		rep, runErr = downloader.Download(ctx, enumerate.Request{
			Collection: cfg.Collection,
			Start:      cfg.Start,
			End:        cfg.End,
			Variants:   cfg.Variants,
		})
	}
	if isUsageError(runErr) {
		runErr = fmt.Errorf("%w (run 'corpusfetch list' for collections and page ranges)", runErr)
	}
	return finishRun(ctx, out, cfg, rep, runErr, logger)
}
