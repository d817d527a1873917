// Package main provides the entry point for the sitemapper CLI.
//
// sitemapper crawls a single web domain from a seed URL, records every
// visited page in a local SQLite store and writes an XML sitemap of the
// discovered pages.
//
// Usage:
//
//	sitemapper crawl https://example.com/
//	sitemapper urls
//	sitemapper reset
//
// See --help for all available options.
package main

func main() {
	Execute()
}
