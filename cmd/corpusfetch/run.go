package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpusfetch/internal/config"
	"github.com/nao1215/corpusfetch/internal/fetch"
	"github.com/nao1215/corpusfetch/internal/history"
	corpuslog "github.com/nao1215/corpusfetch/internal/log"
	"github.com/nao1215/corpusfetch/internal/model"
	"github.com/nao1215/corpusfetch/internal/report"
)

// outcomeError is returned by a run that did not fully succeed.
// Its outcome selects the exit status.
type outcomeError struct {
	outcome model.Outcome
	pagesOK int
	total   int
}

func (e *outcomeError) Error() string {
	return fmt.Sprintf("run finished with outcome %s: %d/%d pages succeeded", e.outcome, e.pagesOK, e.total)
}

// addFetchFlags registers the flags shared by download and crawl.
func addFetchFlags(cmd *cobra.Command, defaultDelay time.Duration) {
	cmd.Flags().StringP(config.FlagOutput, "o", config.DefaultOutputDir,
		"Directory the text files are written to")
	cmd.Flags().Duration(config.FlagDelay, defaultDelay,
		"Pause before every request")
	cmd.Flags().DurationP(config.FlagTimeout, "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Int(config.FlagRetries, config.DefaultMaxAttempts,
		"Number of attempts per unit before it is recorded as failed")
	cmd.Flags().Duration(config.FlagBackoff, config.DefaultBackoff,
		"Additional wait per retry after a rate limit or server error")
	cmd.Flags().String(config.FlagProxy, "",
		"Route requests through a SOCKS5 proxy (e.g., 127.0.0.1:9050)")
	cmd.Flags().String("report", "",
		"Also write the run summary to a file (.md for Markdown, .json for JSON)")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("config", "",
		"Configuration file path (default: .corpusfetch in current directory, XDG config dir or home directory)")
}

// readFetchFlags copies the shared flags into cfg and overlays the
// configuration file profile of cfg's source.
func readFetchFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	if cfg.OutputDir, err = cmd.Flags().GetString(config.FlagOutput); err != nil {
		return err
	}
	if cfg.Delay, err = cmd.Flags().GetDuration(config.FlagDelay); err != nil {
		return err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration(config.FlagTimeout); err != nil {
		return err
	}
	if cfg.MaxAttempts, err = cmd.Flags().GetInt(config.FlagRetries); err != nil {
		return err
	}
	if cfg.Backoff, err = cmd.Flags().GetDuration(config.FlagBackoff); err != nil {
		return err
	}
	if cfg.Proxy, err = cmd.Flags().GetString(config.FlagProxy); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("report"); err != nil {
		return err
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	cfg.SaveHistory = !noHistory
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFormat = getLogFormatFlag(cmd)

	return applyConfigFile(cmd, cfg)
}

// applyConfigFile loads the configuration file and applies the profile
// of cfg's source. Flags given on the command line win over the file.
// An explicitly named file must exist; otherwise a missing file is fine.
func applyConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.ApplyProfile(file.Profile(cfg.SourceName()), cmd.Flags().Changed)
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFormatFlag retrieves the log format from the command or its parent.
func getLogFormatFlag(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			return config.LogFormatText
		}
	}
	return format
}

// setupLogger creates the structured logger for cfg. Logs go to stderr so
// they never mix with the progress lines on stdout.
func setupLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == config.LogFormatJSON {
		return corpuslog.NewJSONLogger(os.Stderr, cfg.Verbose)
	}
	return corpuslog.NewLogger(os.Stderr, cfg.Verbose)
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// clientConfig returns the fetch settings of cfg.
func clientConfig(cfg *config.Config) fetch.ClientConfig {
	return fetch.ClientConfig{
		BaseURL:     cfg.BaseURL,
		UserAgent:   cfg.UserAgent,
		Headers:     cfg.Headers,
		Timeout:     cfg.Timeout,
		Delay:       cfg.Delay,
		Backoff:     cfg.Backoff,
		MaxAttempts: cfg.MaxAttempts,
		Proxy:       cfg.Proxy,
	}
}

// finishRun prints the summary, writes the optional report file, records
// the run in the history database and converts the outcome into the
// command's error.
func finishRun(ctx context.Context, out io.Writer, cfg *config.Config, rep *model.RunReport, runErr error, logger *slog.Logger) error {
	fmt.Fprintln(out)
	if _, err := report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose)).Write(rep); err != nil {
		logger.Error("failed to print summary", "error", err)
	}

	if cfg.ReportFile != "" {
		if err := writeReportFile(cfg.ReportFile, rep); err != nil {
			logger.Error("report failed", "file", cfg.ReportFile, "error", err)
		} else {
			fmt.Fprintf(out, "Report written to %s\n", cfg.ReportFile)
		}
	}

	if cfg.SaveHistory {
		// The run is recorded even when it was interrupted.
		if err := saveRun(context.WithoutCancel(ctx), cfg.DBDir, rep); err != nil {
			logger.Error("failed to record run", "dir", cfg.DBDir, "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if outcome := rep.Outcome(); outcome != model.OutcomeSuccess {
		return &outcomeError{outcome: outcome, pagesOK: rep.PagesOK, total: rep.PagesTotal}
	}
	return nil
}

// writeReportFile writes rep to path in the format its extension selects.
func writeReportFile(path string, rep *model.RunReport) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	_, werr := report.ForFile(path, f).Write(rep)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}

// saveRun appends rep to the run log in dir.
func saveRun(ctx context.Context, dir string, rep *model.RunReport) error {
	runLog, err := history.Open(dir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer runLog.Close()

	if _, err := runLog.SaveRun(ctx, rep); err != nil {
		return err
	}
	return nil
}

// isUsageError reports whether err was caused by invalid input rather
// than by the run itself.
func isUsageError(err error) bool {
	return errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrOutOfRange)
}

// trimmed returns values without surrounding space, dropping blanks.
func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
