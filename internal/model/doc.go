// Package model defines the core data structures used throughout sitemapper.
//
// This package contains the following main types:
//   - VisitedURL: A persisted record of a URL the crawler has processed
//   - FetchResult: The outcome of fetching one URL (success or failure)
//   - CrawlSummary: The result of a complete crawl run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, database, and report packages all need these
// types, so centralizing them prevents import cycles.
package model
