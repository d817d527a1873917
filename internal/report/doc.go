// Package report renders crawl summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for the terminal
//   - MarkdownWriter: Markdown for sharing and documentation
//   - JSONWriter: structured JSON for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
