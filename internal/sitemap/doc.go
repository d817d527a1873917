// Package sitemap serializes crawled URLs into a sitemap document
// following the sitemaps.org 0.9 protocol.
//
// Every entry gets the generation date as lastmod, a monthly change
// frequency and a priority of 0.5. The input is trusted as-is: URLs are
// neither filtered nor deduplicated.
package sitemap
