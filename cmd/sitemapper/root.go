package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitemapper/internal/config"
	"github.com/nao1215/sitemapper/internal/log"
)

// NewRootCmd creates the root command for sitemapper.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemapper",
		Short: "Crawl a website and generate its XML sitemap",
		Long: `sitemapper crawls a single web domain starting from a seed URL, follows
same-domain links breadth-first and writes a sitemap.xml describing every
page it visited.

Visited URLs are recorded in a SQLite database under the XDG data directory
so they can be inspected after the crawl with "sitemapper urls".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(),
		"Directory holding the visited URL database")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewURLsCmd())
	cmd.AddCommand(NewResetCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}

// getDBDir retrieves the database directory flag.
func getDBDir(cmd *cobra.Command) (string, error) {
	return cmd.Flags().GetString("db-dir")
}

// setupLogger creates the secure logger selected by the global flags and
// installs it as the slog default.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs = false
	}

	var logger *slog.Logger
	if jsonLogs {
		logger = log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	} else {
		logger = log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
	}
	slog.SetDefault(logger)
	return logger
}
