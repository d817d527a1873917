package crawler

import (
	"bytes"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// mediaExtensions are path extensions of image, audio and video resources.
// URLs ending in one of them are never crawled.
var mediaExtensions = map[string]struct{}{
	// images
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".webp": {},
	".svg": {}, ".ico": {}, ".tif": {}, ".tiff": {}, ".avif": {}, ".heic": {},
	// audio
	".mp3": {}, ".wav": {}, ".ogg": {}, ".oga": {}, ".flac": {}, ".aac": {},
	".m4a": {}, ".wma": {}, ".opus": {},
	// video
	".mp4": {}, ".m4v": {}, ".webm": {}, ".avi": {}, ".mov": {}, ".mkv": {},
	".wmv": {}, ".flv": {}, ".mpeg": {}, ".mpg": {}, ".3gp": {}, ".ogv": {},
}

// Parser extracts crawlable links from an HTML page.
//
// Links are resolved against the page URL but filtered against the crawl's
// anchor URL, so the crawl never leaves the anchor's authority.
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL

	// anchorURL is the seed URL whose authority bounds the crawl.
	anchorURL *url.URL
}

// ParseResult contains the links extracted from an HTML page.
type ParseResult struct {
	// CrawlLinks contains the unique links that pass every crawl filter,
	// in order of first appearance.
	CrawlLinks []string
}

// NewParser creates a parser for a page fetched from baseURL during a crawl
// anchored at anchorURL.
func NewParser(baseURL, anchorURL string) (*Parser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	anchor, err := url.Parse(anchorURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: base, anchorURL: anchor}, nil
}

// Parse parses HTML content and extracts its links.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		CrawlLinks: make([]string, 0),
	}
	seen := make(map[string]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			p.processAnchor(n, result, seen)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// processAnchor resolves an anchor's href and keeps it if it is crawlable.
func (p *Parser) processAnchor(n *html.Node, result *ParseResult, seen map[string]struct{}) {
	href, ok := getAttr(n, "href")
	if !ok {
		return
	}
	href = strings.TrimSpace(href)

	resolved := p.resolveURL(href)
	if resolved == nil {
		return
	}
	if !p.shouldCrawl(href, resolved) {
		return
	}

	link := resolved.String()
	if _, dup := seen[link]; dup {
		return
	}
	seen[link] = struct{}{}
	result.CrawlLinks = append(result.CrawlLinks, link)
}

// resolveURL resolves href against the base URL.
// An empty href refers to the page itself.
func (p *Parser) resolveURL(href string) *url.URL {
	u, err := url.Parse(href)
	if err != nil {
		return nil
	}
	return p.baseURL.ResolveReference(u)
}

// shouldCrawl applies the crawl filters to a link.
// Both the raw href and the resolved URL are checked for query and
// fragment markers because an empty fragment ("/a#") disappears on resolution.
func (p *Parser) shouldCrawl(href string, u *url.URL) bool {
	if strings.ContainsAny(href, "?#") || strings.ContainsAny(u.String(), "?#") {
		return false
	}
	if !p.isSameDomain(u) {
		return false
	}
	return !IsMediaURL(u)
}

// isSameDomain reports whether u has exactly the anchor's authority and is
// a web URL. Hosts differing only in case are rejected because the visited
// store compares URLs as raw strings.
func (p *Parser) isSameDomain(u *url.URL) bool {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	return u.Host != "" && u.Host == p.anchorURL.Host
}

// IsMediaURL reports whether the URL path ends in an image, audio or video
// extension. The comparison is case-insensitive.
func IsMediaURL(u *url.URL) bool {
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" {
		return false
	}
	_, ok := mediaExtensions[ext]
	return ok
}

// ExtractLinks returns the crawlable links in body, resolved against baseURL
// and bounded to anchorURL's authority. Unparsable input yields no links.
func ExtractLinks(body []byte, baseURL, anchorURL string) []string {
	parser, err := NewParser(baseURL, anchorURL)
	if err != nil {
		return nil
	}
	result, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	return result.CrawlLinks
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
