package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/sitemapper/internal/model"
)

// Default request settings.
const (
	// DefaultUserAgent is a desktop Safari User-Agent. Some sites serve
	// reduced pages or block requests without a browser-like agent.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.3 Safari/605.1.15"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize caps the decoded body size read per page.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// maxRedirects bounds redirect chains.
	maxRedirects = 10
)

// defaultHeaders are sent with every request. User-Agent is set separately.
var defaultHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "en-GB,en;q=0.9",
	"Accept-Encoding":           "gzip, deflate",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// Client fetches pages over HTTP.
type Client struct {
	// httpClient performs the requests.
	httpClient *http.Client

	// userAgent is the User-Agent header value.
	userAgent string

	// headers are extra headers applied after the defaults.
	headers map[string]string

	// cookie is an optional Cookie header value.
	cookie string

	// maxBodySize limits the decoded body size.
	maxBodySize int64

	// timeout is the per-request timeout.
	timeout time.Duration

	// proxyAddress is an optional SOCKS5 proxy in host:port format.
	proxyAddress string

	// requestsPerSecond limits the request rate. Zero means unlimited.
	requestsPerSecond float64

	// limiter enforces requestsPerSecond. Nil when unlimited.
	limiter *rate.Limiter

	// logger is used for request-level diagnostics.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeaders adds headers to every request. They override the defaults.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithCookie sets the Cookie header sent with every request.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithMaxBodySize sets the maximum decoded body size. Non-positive values keep the default.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit limits the client to rps requests per second. Zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.requestsPerSecond = rps
	}
}

// WithProxy routes every request through the SOCKS5 proxy at address.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithHTTPClient replaces the underlying http.Client.
// Timeout and proxy options are ignored when this is set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client. It fails only on invalid proxy or rate settings.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		userAgent:   DefaultUserAgent,
		headers:     make(map[string]string),
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.requestsPerSecond < 0 {
		return nil, ErrInvalidRate
	}
	if c.requestsPerSecond > 0 {
		burst := max(int(c.requestsPerSecond), 1)
		c.limiter = rate.NewLimiter(rate.Limit(c.requestsPerSecond), burst)
	}

	if c.httpClient == nil {
		transport, err := newTransport(c.proxyAddress)
		if err != nil {
			return nil, err
		}
		c.httpClient = &http.Client{
			Transport: transport,
			Timeout:   c.timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	return c, nil
}

// Fetch performs a GET request for pageURL.
// A completed exchange returns a success result whatever its status code;
// anything that prevents a response (bad URL, DNS, connection, timeout,
// unreadable body, cancelled context) returns a failure result.
func (c *Client) Fetch(ctx context.Context, pageURL string) model.FetchResult {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return model.FetchFailure(pageURL, fmt.Errorf("rate limiter: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return model.FetchFailure(pageURL, fmt.Errorf("build request: %w", err))
	}
	c.applyHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("fetch failed", "url", pageURL, "error", err)
		return model.FetchFailure(pageURL, fmt.Errorf("GET request: %w", err))
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	body, err := readBody(resp, c.maxBodySize)
	if err != nil {
		return model.FetchFailure(pageURL, fmt.Errorf("read body: %w", err))
	}

	if isHTML(contentType) {
		body = toUTF8(body, contentType)
	}

	c.logger.Debug("fetched page",
		"url", pageURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	return model.FetchSuccess(pageURL, resp.StatusCode, contentType, body)
}

// applyHeaders sets the fixed request headers, then the configured extras.
func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.cookie != "" {
		if existing := req.Header.Get("Cookie"); existing != "" {
			req.Header.Set("Cookie", existing+"; "+c.cookie)
		} else {
			req.Header.Set("Cookie", c.cookie)
		}
	}
}
