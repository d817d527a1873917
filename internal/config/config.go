package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/sitemapper/internal/fetch"
)

// Default configuration values.
const (
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = fetch.DefaultTimeout

	// DefaultWorkers of 1 keeps the crawl sequential.
	DefaultWorkers = 1

	// DefaultRequestsPerSecond of 0 disables rate limiting.
	DefaultRequestsPerSecond = 0

	// DefaultMaxBodySize limits the maximum response body size to read.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// DefaultUserAgent is the browser-like User-Agent of the fetcher.
	DefaultUserAgent = fetch.DefaultUserAgent

	// DefaultOutputFile is the sitemap location, relative to the working directory.
	DefaultOutputFile = "sitemap.xml"

	// AppName is the application name used for XDG directory paths.
	AppName = "sitemapper"
)

// Config holds all configuration options for a crawl.
// It is populated from CLI flags and the optional config file, then passed
// down explicitly; there is no global configuration state.
type Config struct {
	// StartURL is the seed URL. Its authority bounds the crawl.
	StartURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Workers is the number of pages fetched in parallel.
	Workers int

	// RequestsPerSecond limits the request rate. Zero means unlimited.
	RequestsPerSecond float64

	// MaxBodySize is the maximum decoded response body size in bytes.
	// Zero uses the default.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// OutputFile is where the sitemap is written.
	OutputFile string

	// DBDir is the directory holding the visited store.
	// Defaults to the XDG data directory (~/.local/share/sitemapper on Linux).
	DBDir string

	// Keep skips clearing the visited store before the crawl.
	Keep bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport prints the crawl summary as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the crawl summary as Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is an optional path the summary is also written to.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .sitemapper is searched in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site settings loaded from the config file.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		Workers:           DefaultWorkers,
		RequestsPerSecond: DefaultRequestsPerSecond,
		MaxBodySize:       DefaultMaxBodySize,
		UserAgent:         DefaultUserAgent,
		OutputFile:        DefaultOutputFile,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for sitemapper.
// On Linux: ~/.local/share/sitemapper
// On macOS: ~/Library/Application Support/sitemapper
// On Windows: %LOCALAPPDATA%\sitemapper
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitemapper.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ReportFormat returns the name of the selected summary format.
func (c *Config) ReportFormat() string {
	switch {
	case c.JSONReport:
		return "json"
	case c.MarkdownReport:
		return "markdown"
	default:
		return "text"
	}
}

// Site returns the merged site configuration for the start URL's host.
func (c *Config) Site() SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	u, err := url.Parse(c.StartURL)
	if err != nil {
		return c.SiteConfigs.Defaults
	}
	return c.SiteConfigs.GetSiteConfig(u.Host)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}

	u, err := url.Parse(c.StartURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidStartURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if strings.TrimSpace(c.OutputFile) == "" {
		return ErrNoOutputFile
	}

	return nil
}
