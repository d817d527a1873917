package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/nao1215/sitemapper/internal/model"
)

// createTestSummary creates a summary with sample data for testing.
func createTestSummary() *model.CrawlSummary {
	summary := model.NewCrawlSummary("https://example.com/")
	summary.StartedAt = time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)
	summary.FinishedAt = summary.StartedAt.Add(1500 * time.Millisecond)
	summary.PagesProcessed = 3
	summary.LinksQueued = 2
	summary.Failed = []model.FailedFetch{
		{URL: "https://example.com/broken", Reason: "HTTP 500 Internal Server Error"},
	}
	summary.VisitedURLs = []string{
		"https://example.com/",
		"https://example.com/about",
		"https://example.com/broken",
	}
	summary.SitemapPath = "sitemap.xml"
	return summary
}

// TestSimpleWriter tests the human-readable summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes totals and lists", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"SITEMAPPER SUMMARY",
			"Start URL:       https://example.com/",
			"Pages Processed: 3",
			"Elapsed:         1.5s",
			"VISITED URLS",
			"  https://example.com/about",
			"FAILED FETCHES",
			"HTTP 500 Internal Server Error",
			"Total URLs visited: 3",
			"Sitemap written to: sitemap.xml",
			"Crawl completed at: 2025-01-02 03:04:06 UTC",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("non-verbose omits the URL list", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(false)).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "VISITED URLS") {
			t.Error("expected no URL list")
		}
	})

	t.Run("omits failures section when clean", func(t *testing.T) {
		t.Parallel()

		summary := createTestSummary()
		summary.Failed = nil
		summary.SitemapPath = ""

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if strings.Contains(output, "FAILED FETCHES") {
			t.Error("expected no failures section")
		}
		if strings.Contains(output, "Sitemap written to") {
			t.Error("expected no sitemap line")
		}
	})

	t.Run("groups digits by language", func(t *testing.T) {
		t.Parallel()

		summary := createTestSummary()
		summary.PagesProcessed = 12345

		var en, de bytes.Buffer
		if _, err := NewSimpleWriter(&en).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewSimpleWriter(&de, WithLanguage(language.German)).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(en.String(), "12,345") {
			t.Errorf("expected English grouping, got:\n%s", en.String())
		}
		if !strings.Contains(de.String(), "12.345") {
			t.Errorf("expected German grouping, got:\n%s", de.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown summary writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables lists and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Sitemapper Crawl Summary",
			"`https://example.com/`",
			"## Fetch Outcome",
			"```mermaid",
			"## Visited URLs",
			"- https://example.com/about",
			"## Failed Fetches",
			"https://example.com/broken",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("empty crawl", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.NewCrawlSummary("https://example.com/")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "```mermaid") {
			t.Error("expected no chart for an empty crawl")
		}
		if !strings.Contains(output, "No URLs visited.") {
			t.Error("expected empty list notice")
		}
		if strings.Contains(output, "## Failed Fetches") {
			t.Error("expected no failures section")
		}
	})
}

// TestJSONWriter tests the JSON writers.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected single-line output, got %q", buf.String())
		}

		var decoded model.CrawlSummary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.StartURL != "https://example.com/" || len(decoded.VisitedURLs) != 3 {
			t.Errorf("unexpected decoded summary %+v", decoded)
		}
	})

	t.Run("full report with metadata", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3", WithPrettyPrint()).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"version\": \"v1.2.3\"") {
			t.Errorf("expected indented version field, got:\n%s", buf.String())
		}

		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.TotalVisited != 3 || decoded.ElapsedSeconds != 1.5 {
			t.Errorf("unexpected metadata %+v", decoded)
		}
		if len(decoded.Summary.Failed) != 1 {
			t.Errorf("expected one failure, got %+v", decoded.Summary.Failed)
		}
	})
}

// failingWriter is a Writer that always fails.
type failingWriter struct{ err error }

func (f failingWriter) Write(*model.CrawlSummary) (int, error) { return 0, f.err }

// TestMultiWriter tests fan-out and error handling.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
		n, err := m.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		var after bytes.Buffer
		m := NewMultiWriter(failingWriter{err: boom}, NewSimpleWriter(&after))
		if _, err := m.Write(createTestSummary()); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if after.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}

// TestNew tests format selection.
func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tests := []struct {
		format string
		check  func(Writer) bool
	}{
		{FormatText, func(w Writer) bool { _, ok := w.(*SimpleWriter); return ok }},
		{FormatJSON, func(w Writer) bool { _, ok := w.(*FullJSONWriter); return ok }},
		{FormatMarkdown, func(w Writer) bool { _, ok := w.(*MarkdownWriter); return ok }},
		{"unknown", func(w Writer) bool { _, ok := w.(*SimpleWriter); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			if !tt.check(New(tt.format, &buf, "dev")) {
				t.Errorf("unexpected writer type for %q", tt.format)
			}
		})
	}
}

// TestTruncateString tests string truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.in, tt.max); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
