package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/corpusfetch/internal/config"
	"github.com/nao1215/corpusfetch/internal/history"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [collection]",
		Short: "Show recent download and crawl runs",
		Long: `History prints the most recent runs recorded in the history database,
newest first. Give a collection name or crawl root to show only its runs.

Examples:
  # Show the last 20 runs
  corpusfetch history

  # Show the last 5 runs of Berakhot
  corpusfetch history Berakhot -n 5

  # Show the files written by run 12
  corpusfetch history --run 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", history.DefaultLimit,
		"Maximum number of runs to show")
	cmd.Flags().Int64("run", 0,
		"Show the files of one run instead of the run list")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetInt64("run")
	if err != nil {
		return err
	}
	if runID > 0 {
		return showRunDocuments(cmd.Context(), cmd.OutOrStdout(), dir, runID)
	}
	var collection string
	if len(args) > 0 {
		collection = args[0]
	}
	return showHistory(cmd.Context(), cmd.OutOrStdout(), dir, collection, limit)
}

// openExisting opens the run log in dir. It returns nil without an error
// when no run has been recorded yet.
func openExisting(dir string) (*history.RunLog, error) {
	if _, err := os.Stat(filepath.Join(dir, history.FileName)); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	opts := history.DefaultOptions()
	opts.CreateIfNotExists = false
	runLog, err := history.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return runLog, nil
}

// showHistory prints the runs stored in dir.
func showHistory(ctx context.Context, out io.Writer, dir, collection string, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runLog, err := openExisting(dir)
	if err != nil {
		return err
	}
	if runLog == nil {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}
	defer runLog.Close()

	runs, err := runLog.ListRuns(ctx, collection, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Started.Local().Format("2006-01-02 15:04:05"),
			string(r.Mode),
			r.Collection,
			strconv.Itoa(r.PagesOK) + "/" + strconv.Itoa(r.PagesTotal),
			strconv.Itoa(r.UnitsOK) + "/" + strconv.Itoa(r.UnitsTotal),
			r.Outcome,
		})
	}

	md := markdown.NewMarkdown(out)
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Mode", "Collection", "Pages", "Units", "Outcome"},
		Rows:   rows,
	})
	return md.Build()
}

// showRunDocuments prints the persistence outcomes of one run.
func showRunDocuments(ctx context.Context, out io.Writer, dir string, runID int64) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runLog, err := openExisting(dir)
	if err != nil {
		return err
	}
	if runLog == nil {
		return fmt.Errorf("run %d not found: no runs recorded yet", runID)
	}
	defer runLog.Close()

	docs, err := runLog.Documents(ctx, runID)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintf(out, "Run %d wrote no files.\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		digest := d.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		detail := d.Error
		if detail == "" {
			detail = digest
		}
		rows = append(rows, []string{d.Path, d.Variant, d.Status, strconv.Itoa(d.Bytes), detail})
	}

	md := markdown.NewMarkdown(out)
	md.Table(markdown.TableSet{
		Header: []string{"File", "Layer", "Status", "Bytes", "SHA3-256 / Error"},
		Rows:   rows,
	})
	return md.Build()
}
