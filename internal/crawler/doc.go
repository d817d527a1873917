// Package crawler discovers the pages of a single web domain.
//
// # Components
//
//   - Parser: extracts anchor links from an HTML page and keeps only the
//     crawlable ones (same authority as the seed, no query, no fragment,
//     not an image, audio or video resource)
//   - Spider: drives the crawl from a seed URL until no undiscovered
//     same-domain page remains
//
// # Crawl loop
//
// The Spider keeps a FIFO frontier of URLs waiting to be processed. For each
// URL it records a visit in the VisitStore, fetches the page, extracts links
// and queues every link the store has not seen. The store write happens
// before the fetch, so a URL is visited at most once per run even when its
// fetch fails. The seed URL is always processed.
//
// Fetch failures and non-2xx responses produce no links and never stop the
// crawl. Store errors abort it.
//
// # Usage
//
//	spider := crawler.NewSpider(client, store, crawler.WithWorkers(4))
//	summary, err := spider.Crawl(ctx, "https://example.com/")
package crawler
