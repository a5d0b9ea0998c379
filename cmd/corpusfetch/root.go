package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/corpusfetch/internal/config"
)

// NewRootCmd creates the root command for corpusfetch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpusfetch",
		Short: "Download Hebrew text corpora for offline study",
		Long: `corpusfetch downloads Hebrew text corpora and assembles them into
plain text files for offline study.

It fetches Talmud tractates page by page together with their commentaries
(Steinsaltz, Rashi, Tosafot), whole books such as Psalms from Sefaria, and
crawls multi-page books from Hebrew Wikisource.

Requests are paced and retried politely. Every run is summarized on stdout
and recorded in a local history database.

Exit status is 0 when every page succeeded, 2 when only some did and 1
otherwise.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", config.LogFormatText, "Log format: text or json")

	cmd.AddCommand(NewDownloadCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with the run's status.
func Execute() {
	err := NewRootCmd().Execute()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitCode(err))
}

// exitCode returns the process status for an error returned by a command.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var oe *outcomeError
	if errors.As(err, &oe) {
		return oe.outcome.ExitCode()
	}
	return 1
}
