package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitemapper/internal/fetch"
	"github.com/nao1215/sitemapper/internal/model"
)

// Fetcher retrieves a page. Failures are reported in the result, never as errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) model.FetchResult
}

// VisitStore is the part of the visited store the Spider depends on.
type VisitStore interface {
	// RecordVisitOnce records url as visited unless a record already exists,
	// and reports whether it wrote a new record.
	RecordVisitOnce(ctx context.Context, url string) (bool, error)

	// HasRecord reports whether url has been recorded.
	HasRecord(ctx context.Context, url string) (bool, error)
}

// VisitEvent describes one processed URL. It is passed to the visit hook.
type VisitEvent struct {
	// URL is the processed URL.
	URL string

	// Result is the fetch outcome.
	Result model.FetchResult

	// LinksFound is the number of crawlable links extracted from the page.
	LinksFound int

	// LinksAdded is the number of those links that entered the frontier.
	LinksAdded int

	// Remaining is the frontier size after the links were merged.
	Remaining int
}

// Spider crawls a single domain breadth-first from a seed URL.
//
// Design decision: the frontier is a FIFO queue so the crawl order is
// deterministic for a given site. The dedup commit point is the store's
// atomic RecordVisitOnce, which keeps every URL to one record even when
// several workers discover it at the same time.
type Spider struct {
	// fetcher retrieves pages.
	fetcher Fetcher

	// store records visited URLs.
	store VisitStore

	// workers is the number of pages fetched in parallel.
	workers int

	// onVisit is called after each processed URL. May be nil.
	onVisit func(VisitEvent)

	// logger is used for crawl diagnostics.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithWorkers sets the number of pages fetched in parallel.
// Values below 1 are treated as 1.
func WithWorkers(n int) SpiderOption {
	return func(s *Spider) {
		s.workers = max(n, 1)
	}
}

// WithVisitHook sets a function called after each processed URL.
// Calls are made from the crawl goroutine, one at a time.
func WithVisitHook(fn func(VisitEvent)) SpiderOption {
	return func(s *Spider) {
		s.onVisit = fn
	}
}

// WithLogger sets the logger for crawl diagnostics.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider that fetches through fetcher and records
// visits in store.
func NewSpider(fetcher Fetcher, store VisitStore, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher: fetcher,
		store:   store,
		workers: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// visit is the outcome of processing one URL.
type visit struct {
	url    string
	result model.FetchResult
	links  []string
}

// Crawl runs the crawl from startURL until the frontier is empty.
// The seed is always processed; every other URL is processed at most once.
// A store error aborts the crawl. A cancelled context stops the crawl and
// returns the context error along with the partial summary.
func (s *Spider) Crawl(ctx context.Context, startURL string) (*model.CrawlSummary, error) {
	if err := validateStartURL(startURL); err != nil {
		return nil, err
	}

	summary := model.NewCrawlSummary(startURL)
	front := newFrontier()
	front.push(startURL)

	for front.len() > 0 {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		visits, err := s.processBatch(ctx, front.popN(s.workers), startURL)
		if err != nil {
			return summary, err
		}

		for _, v := range visits {
			if v == nil {
				continue
			}
			added, err := s.merge(ctx, front, v.links)
			if err != nil {
				return summary, err
			}

			summary.PagesProcessed++
			summary.LinksQueued += added
			if !v.result.OK() {
				summary.Failed = append(summary.Failed, model.FailedFetch{
					URL:    v.url,
					Reason: v.result.Reason(),
				})
			}

			if s.onVisit != nil {
				s.onVisit(VisitEvent{
					URL:        v.url,
					Result:     v.result,
					LinksFound: len(v.links),
					LinksAdded: added,
					Remaining:  front.len(),
				})
			}
		}
	}

	summary.FinishedAt = time.Now()
	s.logger.Debug("crawl finished",
		"start_url", startURL,
		"pages", summary.PagesProcessed,
		"failed", len(summary.Failed),
		"elapsed", summary.Elapsed(),
	)
	return summary, nil
}

// processBatch records urls in pop order, then fetches and parses the
// claimed ones concurrently, bounded by the worker count. Recording before
// the fan-out keeps the store order independent of goroutine scheduling.
// The returned slice is in the same order as urls; skipped URLs are nil.
func (s *Spider) processBatch(ctx context.Context, urls []string, startURL string) ([]*visit, error) {
	claimed := make([]bool, len(urls))
	for i, u := range urls {
		ok, err := s.claim(ctx, u, startURL)
		if err != nil {
			return nil, err
		}
		claimed[i] = ok
	}

	visits := make([]*visit, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, u := range urls {
		if !claimed[i] {
			continue
		}
		g.Go(func() error {
			visits[i] = s.process(gctx, u, startURL)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return visits, nil
}

// claim records pageURL as visited and reports whether it should be
// processed. It is false when the URL was already recorded and is not the seed.
func (s *Spider) claim(ctx context.Context, pageURL, startURL string) (bool, error) {
	recorded, err := s.store.RecordVisitOnce(ctx, pageURL)
	if err != nil {
		return false, fmt.Errorf("failed to record visit for %s: %w", pageURL, err)
	}
	if !recorded && pageURL != startURL {
		s.logger.Debug("skipping recorded url", "url", pageURL)
		return false, nil
	}
	return true, nil
}

// process fetches and parses a single claimed URL.
func (s *Spider) process(ctx context.Context, pageURL, startURL string) *visit {
	result := s.fetcher.Fetch(ctx, pageURL)
	v := &visit{url: pageURL, result: result}

	switch {
	case result.Failed():
		s.logger.Debug("fetch failed", "url", pageURL, "reason", result.Reason())
	case !result.OK():
		s.logger.Debug("non-success status", "url", pageURL, "status", result.StatusCode)
	case !fetch.IsHTML(result.ContentType):
		s.logger.Debug("skipping non-HTML body", "url", pageURL, "content_type", result.ContentType)
	default:
		v.links = ExtractLinks(result.Body, pageURL, startURL)
	}

	return v
}

// merge adds the links that are neither queued nor recorded to the frontier.
func (s *Spider) merge(ctx context.Context, front *frontier, links []string) (int, error) {
	added := 0
	for _, link := range links {
		if front.contains(link) {
			continue
		}
		seen, err := s.store.HasRecord(ctx, link)
		if err != nil {
			return added, fmt.Errorf("failed to check %s: %w", link, err)
		}
		if seen {
			continue
		}
		if front.push(link) {
			added++
		}
	}
	return added, nil
}

// validateStartURL checks that raw is an absolute http(s) URL with a host.
func validateStartURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStartURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidStartURL, raw)
	}
	return nil
}
