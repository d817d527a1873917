package model

import "time"

// FailedFetch records a URL whose fetch produced no links.
type FailedFetch struct {
	// URL is the URL that was recorded as visited but not crawled.
	URL string `json:"url"`

	// Reason is the transport error or HTTP status text.
	Reason string `json:"reason"`
}

// CrawlSummary is the result of one crawl run.
// It is produced by the crawler and completed by the caller with the
// store contents and the sitemap location.
type CrawlSummary struct {
	// StartURL is the seed URL, which also anchors the same-domain test.
	StartURL string `json:"start_url"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the frontier emptied.
	FinishedAt time.Time `json:"finished_at"`

	// PagesProcessed is the number of URLs recorded and fetched in this run.
	PagesProcessed int `json:"pages_processed"`

	// LinksQueued is the number of URLs added to the frontier.
	LinksQueued int `json:"links_queued"`

	// Failed lists the URLs whose fetch failed or returned a non-2xx status.
	Failed []FailedFetch `json:"failed,omitempty"`

	// VisitedURLs is the store contents after the crawl, in storage order.
	VisitedURLs []string `json:"visited_urls"`

	// SitemapPath is where the sitemap was written. Empty if none was written.
	SitemapPath string `json:"sitemap_path,omitempty"`
}

// NewCrawlSummary creates a summary for a crawl starting at startURL.
func NewCrawlSummary(startURL string) *CrawlSummary {
	return &CrawlSummary{
		StartURL:    startURL,
		StartedAt:   time.Now(),
		Failed:      make([]FailedFetch, 0),
		VisitedURLs: make([]string, 0),
	}
}

// Elapsed returns the crawl duration, or zero if the crawl has not finished.
func (s *CrawlSummary) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// TotalVisited returns the number of URLs in the visited store.
func (s *CrawlSummary) TotalVisited() int {
	return len(s.VisitedURLs)
}

// HasFailures reports whether any fetch failed during the crawl.
func (s *CrawlSummary) HasFailures() bool {
	return len(s.Failed) > 0
}
