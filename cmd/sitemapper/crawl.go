package main

import (
	"bufio"
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

	"github.com/spf13/cobra"

	"github.com/nao1215/sitemapper/internal/config"
	"github.com/nao1215/sitemapper/internal/crawler"
	"github.com/nao1215/sitemapper/internal/database"
	"github.com/nao1215/sitemapper/internal/fetch"
	"github.com/nao1215/sitemapper/internal/model"
	"github.com/nao1215/sitemapper/internal/report"
	"github.com/nao1215/sitemapper/internal/sitemap"
)

// seedPrompt is shown when no URL argument is given.
const seedPrompt = "Enter the URL to crawl: "

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a website and write its sitemap",
		Long: `Crawl visits every page reachable from the seed URL on the same host and
writes a sitemap of the visited pages.

Links are followed only when they share the seed's host and port, carry no
query string or fragment, and do not point to an image, audio or video file.
Pages that fail to load are recorded as visited and contribute no links.

The visited URL database is cleared before each crawl unless --keep is set.
If no URL is given, it is read from standard input.

Examples:
  # Crawl a site and write ./sitemap.xml
  sitemapper crawl https://example.com/

  # Fetch four pages at a time, at most two requests per second
  sitemapper crawl -w 4 -r 2 https://example.com/

  # Crawl through Tor and write the sitemap elsewhere
  sitemapper crawl --proxy 127.0.0.1:9050 -o public/sitemap.xml https://example.com/

  # Print the summary as Markdown and save it
  sitemapper crawl -m --report-file crawl.md https://example.com/

Configuration file (.sitemapper) example:
  defaults:
    userAgent: "Mozilla/5.0 (compatible; sitemapper)"
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Request flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")

	// Crawl behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of pages fetched in parallel")
	cmd.Flags().Float64P("rate", "r", config.DefaultRequestsPerSecond,
		"Maximum requests per second (0 = unlimited)")
	cmd.Flags().BoolP("keep", "k", false,
		"Keep previously visited URLs instead of clearing the database")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Sitemap output path")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitemapper in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Print the crawl summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the crawl summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Also write the crawl summary to this file")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if cfg.StartURL == "" {
		cfg.StartURL, err = promptStartURL(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond, err = flags.GetFloat64("rate"); err != nil {
		return nil, err
	}
	if cfg.Keep, err = flags.GetBool("keep"); err != nil {
		return nil, err
	}
	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = getDBDir(cmd); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	// An explicitly given config file must exist; the default locations
	// are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	if len(args) > 0 {
		cfg.StartURL = strings.TrimSpace(args[0])
	}

	return cfg, nil
}

// promptStartURL asks for the seed URL on in.
func promptStartURL(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, seedPrompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read start URL: %w", err)
	}

	startURL := strings.TrimSpace(line)
	if startURL == "" {
		return "", config.ErrNoStartURL
	}
	return startURL, nil
}

// runCrawl executes the crawl, writes the sitemap and prints the summary.
// Progress lines go to out for the text format and to progressOut otherwise,
// so machine-readable summaries stay clean.
func runCrawl(ctx context.Context, cfg *config.Config, out, progressOut io.Writer, logger *slog.Logger) error {
	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	logger.Debug("database opened", "path", store.Path())

	if !cfg.Keep {
		if err := store.ClearAll(ctx); err != nil {
			return err
		}
	}

	client, err := newFetchClient(cfg, logger)
	if err != nil {
		return err
	}

	progress := out
	if cfg.JSONReport || cfg.MarkdownReport {
		progress = progressOut
	}

	fmt.Fprintf(progress, "Starting URL: %s\n", cfg.StartURL)
	fmt.Fprintln(progress, strings.Repeat("-", 50))

	spider := crawler.NewSpider(client, store,
		crawler.WithWorkers(cfg.Workers),
		crawler.WithLogger(logger),
		crawler.WithVisitHook(func(ev crawler.VisitEvent) {
			printVisit(progress, ev)
		}),
	)

	summary, err := spider.Crawl(ctx, cfg.StartURL)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("crawl interrupted: no sitemap written")
		}
		return fmt.Errorf("crawl failed: %w", err)
	}

	summary.VisitedURLs, err = store.AllVisitedURLs(ctx)
	if err != nil {
		return err
	}

	if err := sitemap.NewGenerator().WriteFile(cfg.OutputFile, summary.VisitedURLs); err != nil {
		return err
	}
	summary.SitemapPath = cfg.OutputFile

	return outputReport(cfg, summary, out)
}

// newFetchClient builds the HTTP fetcher from the config and the site settings.
func newFetchClient(cfg *config.Config, logger *slog.Logger) (*fetch.Client, error) {
	site := cfg.Site()

	userAgent := cfg.UserAgent
	if site.UserAgent != "" {
		userAgent = site.UserAgent
	}

	opts := []fetch.Option{
		fetch.WithUserAgent(userAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithRateLimit(cfg.RequestsPerSecond),
		fetch.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetch.WithProxy(cfg.ProxyAddress))
	}
	if site.Cookie != "" {
		opts = append(opts, fetch.WithCookie(site.Cookie))
	}
	if len(site.Headers) > 0 {
		opts = append(opts, fetch.WithHeaders(site.Headers))
	}

	client, err := fetch.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil
}

// printVisit prints the progress lines for one processed URL.
func printVisit(w io.Writer, ev crawler.VisitEvent) {
	fmt.Fprintf(w, "Visiting: %s\n", ev.URL)
	switch {
	case ev.Result.Failed():
		fmt.Fprintf(w, "Error fetching %s: %s\n", ev.URL, ev.Result.Reason())
	case !ev.Result.OK():
		fmt.Fprintf(w, "Response code: %d for %s\n", ev.Result.StatusCode, ev.URL)
		fmt.Fprintf(w, "Failed to fetch %s\n", ev.URL)
	default:
		fmt.Fprintf(w, "Response code: %d for %s\n", ev.Result.StatusCode, ev.URL)
		fmt.Fprintf(w, "Found %d valid links on %s\n", ev.LinksFound, ev.URL)
	}
	fmt.Fprintf(w, "Added %d new links to visit\n", ev.LinksAdded)
	fmt.Fprintf(w, "Remaining links to visit: %d\n", ev.Remaining)
	fmt.Fprintln(w, strings.Repeat("-", 30))
}

// outputReport prints the summary in the selected format and, if requested,
// saves a copy to the report file.
func outputReport(cfg *config.Config, summary *model.CrawlSummary, out io.Writer) error {
	writers := []report.Writer{report.New(cfg.ReportFormat(), out, getVersion())}

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		writers = append(writers, report.New(cfg.ReportFormat(), f, getVersion()))
	}

	_, err := report.NewMultiWriter(writers...).Write(summary)
	return err
}
