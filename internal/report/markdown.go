package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitemapper/internal/model"
)

// MarkdownWriter outputs crawl summaries in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeOutcome(md, summary)
	w.writeVisited(md, summary)
	w.writeFailures(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H1("Sitemapper Crawl Summary")
	md.PlainText("")

	sitemap := "-"
	if summary.SitemapPath != "" {
		sitemap = "`" + summary.SitemapPath + "`"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + summary.StartURL + "`"},
			{"Started", summary.StartedAt.Format(dateTimeLayout)},
			{"Elapsed", summary.Elapsed().Round(time.Millisecond).String()},
			{"Pages Processed", strconv.Itoa(summary.PagesProcessed)},
			{"Links Queued", strconv.Itoa(summary.LinksQueued)},
			{"URLs Visited", strconv.Itoa(summary.TotalVisited())},
			{"Sitemap", sitemap},
		},
	})
	md.PlainText("")
}

// writeOutcome writes the fetch outcome chart and an alert.
func (w *MarkdownWriter) writeOutcome(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Fetch Outcome")
	md.PlainText("")

	failed := len(summary.Failed)
	succeeded := max(summary.PagesProcessed-failed, 0)

	if summary.PagesProcessed > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Fetched Pages"),
			piechart.WithShowData(true),
		)
		if succeeded > 0 {
			chart.LabelAndIntValue("Succeeded", uint64(succeeded))
		}
		if failed > 0 {
			chart.LabelAndIntValue("Failed", uint64(failed))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case summary.PagesProcessed == 0:
		md.Note("No pages were processed.")
	case failed == summary.PagesProcessed:
		md.Warningf("Every fetch failed (%d page(s)). Check the start URL and network access.", failed)
	case failed > 0:
		md.Importantf("%d of %d page(s) could not be fetched and contributed no links.", failed, summary.PagesProcessed)
	default:
		md.Tip("Every page was fetched successfully.")
	}
	md.PlainText("")
}

// writeVisited writes the visited URL list.
func (w *MarkdownWriter) writeVisited(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Visited URLs")
	md.PlainText("")

	if len(summary.VisitedURLs) == 0 {
		md.PlainText("No URLs visited.")
		md.PlainText("")
		return
	}

	md.BulletList(summary.VisitedURLs...)
	md.PlainText("")
}

// writeFailures writes a table of failed fetches.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, summary *model.CrawlSummary) {
	if !summary.HasFailures() {
		return
	}

	md.H2("Failed Fetches")
	md.PlainText("")

	rows := make([][]string, len(summary.Failed))
	for i, f := range summary.Failed {
		rows[i] = []string{f.URL, truncateString(f.Reason, 80)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitemapper](https://github.com/nao1215/sitemapper)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
