package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitemapper/internal/model"
)

// JSONWriter outputs crawl summaries in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in JSON format.
func (w *JSONWriter) Write(summary *model.CrawlSummary) (int, error) {
	return w.writeJSON(summary)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a summary with output metadata.
type JSONReport struct {
	// Version is the sitemapper version that produced the summary.
	Version string `json:"version"`

	// ElapsedSeconds is the crawl duration in seconds.
	ElapsedSeconds float64 `json:"elapsed_seconds"`

	// TotalVisited is the number of stored URLs.
	TotalVisited int `json:"total_visited"`

	// Summary is the crawl summary.
	Summary *model.CrawlSummary `json:"summary"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(summary *model.CrawlSummary, version string) *JSONReport {
	return &JSONReport{
		Version:        version,
		ElapsedSeconds: summary.Elapsed().Seconds(),
		TotalVisited:   summary.TotalVisited(),
		Summary:        summary,
	}
}

// FullJSONWriter outputs summaries wrapped with metadata.
type FullJSONWriter struct {
	*JSONWriter

	// version is the sitemapper version string.
	version string
}

// NewFullJSONWriter creates a writer for summaries with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the summary wrapped with metadata.
func (w *FullJSONWriter) Write(summary *model.CrawlSummary) (int, error) {
	return w.writeJSON(NewJSONReport(summary, w.version))
}
