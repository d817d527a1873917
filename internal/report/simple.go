package report

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/sitemapper/internal/model"
)

// dateTimeLayout is used for timestamps in text and Markdown output.
const dateTimeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter outputs human-readable text summaries.
// Numbers are formatted with locale-aware digit grouping.
type SimpleWriter struct {
	baseWriter

	// printer formats numbers for the configured language.
	printer *message.Printer

	// verbose lists every visited URL instead of only the totals.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every visited URL in the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithLanguage sets the language used for number formatting.
func WithLanguage(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
// Verbose output is enabled by default, matching the end-of-crawl listing.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
		verbose:    true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.CrawlSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeVisited(&sb, summary)
	w.writeFailures(&sb, summary)
	w.writeFooter(&sb, summary)

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the crawl totals.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        SITEMAPPER SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(w.printer.Sprintf("Start URL:       %s\n", summary.StartURL))
	sb.WriteString(w.printer.Sprintf("Started:         %s\n", summary.StartedAt.Format(dateTimeLayout)))
	sb.WriteString(w.printer.Sprintf("Pages Processed: %d\n", summary.PagesProcessed))
	sb.WriteString(w.printer.Sprintf("Links Queued:    %d\n", summary.LinksQueued))
	sb.WriteString(w.printer.Sprintf("Failed Fetches:  %d\n", len(summary.Failed)))
	sb.WriteString(w.printer.Sprintf("Elapsed:         %s\n", summary.Elapsed().Round(time.Millisecond)))
	sb.WriteString("\n")
}

// writeVisited writes the visited URL list.
func (w *SimpleWriter) writeVisited(sb *strings.Builder, summary *model.CrawlSummary) {
	if !w.verbose {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("VISITED URLS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.VisitedURLs) == 0 {
		sb.WriteString("  No URLs visited\n")
	}
	for _, u := range summary.VisitedURLs {
		sb.WriteString("  " + u + "\n")
	}
	sb.WriteString("\n")
}

// writeFailures writes the URLs that yielded no links because of an error.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, summary *model.CrawlSummary) {
	if !summary.HasFailures() {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILED FETCHES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, f := range summary.Failed {
		sb.WriteString(w.printer.Sprintf("  [!] %s\n      %s\n", f.URL, f.Reason))
	}
	sb.WriteString("\n")
}

// writeFooter writes the total and the sitemap location.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(w.printer.Sprintf("Total URLs visited: %d\n", summary.TotalVisited()))
	if summary.SitemapPath != "" {
		sb.WriteString(w.printer.Sprintf("Sitemap written to: %s\n", summary.SitemapPath))
	}
	if !summary.FinishedAt.IsZero() {
		sb.WriteString(w.printer.Sprintf("Crawl completed at: %s\n", summary.FinishedAt.Format(dateTimeLayout)))
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
