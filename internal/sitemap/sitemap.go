package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Sitemap protocol constants.
const (
	// Namespace is the sitemap protocol namespace.
	Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

	// ChangeFreq is the change frequency written for every entry.
	ChangeFreq = "monthly"

	// Priority is the priority written for every entry.
	Priority = "0.5"

	// DateLayout is the lastmod date format (YYYY-MM-DD).
	DateLayout = "2006-01-02"
)

// URLSet is the root element of a sitemap document.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is a single sitemap entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Generator builds sitemap documents.
type Generator struct {
	// now returns the generation time. Only the date is used.
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the function used to read the generation date.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Build returns the sitemap for urls, one entry per input URL in input order.
func (g *Generator) Build(urls []string) *URLSet {
	lastMod := g.now().Format(DateLayout)

	set := &URLSet{
		Xmlns: Namespace,
		URLs:  make([]URL, 0, len(urls)),
	}
	for _, u := range urls {
		set.URLs = append(set.URLs, URL{
			Loc:        u,
			LastMod:    lastMod,
			ChangeFreq: ChangeFreq,
			Priority:   Priority,
		})
	}
	return set
}

// Write encodes the sitemap for urls to w, with an XML declaration.
func (g *Generator) Write(w io.Writer, urls []string) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(g.Build(urls)); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush sitemap: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile writes the sitemap for urls to path, replacing any existing file.
// Missing parent directories are created.
func (g *Generator) WriteFile(path string, urls []string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create sitemap directory: %w", err)
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create sitemap file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close sitemap file: %w", closeErr)
		}
	}()

	return g.Write(f, urls)
}
