// Package fetch provides the HTTP fetcher used by the crawler.
//
// A Client sends every request with a fixed set of browser-like headers
// (User-Agent, Accept, Accept-Language, Accept-Encoding, Connection), decodes
// gzip and deflate bodies, converts non-UTF-8 HTML to UTF-8 and caps the body
// size. The result of every request is a model.FetchResult value: transport
// failures are reported as data, never as Go errors, so the crawler can treat
// them as "no links" without special error handling.
//
// Optional behavior:
//   - Requests per second limit (golang.org/x/time/rate)
//   - SOCKS5 proxy (golang.org/x/net/proxy), for example a local Tor daemon
//   - Per-site cookie and extra headers
package fetch
