package fetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient creates a Client or fails the test.
func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	c, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// TestFetch_SendsBrowserHeaders tests that the fixed header set is sent.
func TestFetch_SendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t)
	result := c.Fetch(context.Background(), srv.URL+"/")
	if !result.OK() {
		t.Fatalf("expected OK result, got %+v", result)
	}

	want := map[string]string{
		"User-Agent":      DefaultUserAgent,
		"Accept":          defaultHeaders["Accept"],
		"Accept-Language": "en-GB,en;q=0.9",
		"Accept-Encoding": "gzip, deflate",
	}
	for k, v := range want {
		if got.Get(k) != v {
			t.Errorf("header %s: expected %q, got %q", k, v, got.Get(k))
		}
	}
}

// TestFetch_CustomHeadersAndCookie tests per-site header overrides.
func TestFetch_CustomHeadersAndCookie(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t,
		WithUserAgent("sitemapper-test/1.0"),
		WithHeaders(map[string]string{"X-Test": "yes", "Accept-Language": "ja"}),
		WithCookie("session=abc"),
	)
	c.Fetch(context.Background(), srv.URL)

	if got.Get("User-Agent") != "sitemapper-test/1.0" {
		t.Errorf("unexpected User-Agent %q", got.Get("User-Agent"))
	}
	if got.Get("X-Test") != "yes" {
		t.Errorf("expected custom header, got %q", got.Get("X-Test"))
	}
	if got.Get("Accept-Language") != "ja" {
		t.Errorf("expected override of default header, got %q", got.Get("Accept-Language"))
	}
	if got.Get("Cookie") != "session=abc" {
		t.Errorf("expected cookie, got %q", got.Get("Cookie"))
	}
}

// TestFetch_StatusCodes tests that completed exchanges are successes.
func TestFetch_StatusCodes(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<a href="/x">x</a>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t)

	tests := []struct {
		path       string
		wantStatus int
		wantOK     bool
	}{
		{"/ok", http.StatusOK, true},
		{"/missing", http.StatusNotFound, false},
		{"/broken", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			result := c.Fetch(context.Background(), srv.URL+tt.path)
			if result.Failed() {
				t.Fatalf("expected completed exchange, got failure %v", result.Err)
			}
			if result.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, result.StatusCode)
			}
			if result.OK() != tt.wantOK {
				t.Errorf("expected OK()=%v", tt.wantOK)
			}
		})
	}
}

// TestFetch_TransportFailures tests that network problems become failure results.
func TestFetch_TransportFailures(t *testing.T) {
	t.Parallel()

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		addr := ln.Addr().String()
		_ = ln.Close()

		c := newTestClient(t, WithTimeout(time.Second))
		result := c.Fetch(context.Background(), "http://"+addr+"/")
		if !result.Failed() {
			t.Fatalf("expected failure, got %+v", result)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(300 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := newTestClient(t, WithTimeout(50*time.Millisecond))
		result := c.Fetch(context.Background(), srv.URL)
		if !result.Failed() {
			t.Fatalf("expected timeout failure, got %+v", result)
		}
	})

	t.Run("malformed URL", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t)
		result := c.Fetch(context.Background(), "http://[::1")
		if !result.Failed() {
			t.Fatalf("expected failure, got %+v", result)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := newTestClient(t)
		result := c.Fetch(ctx, srv.URL)
		if !result.Failed() {
			t.Fatalf("expected failure for cancelled context, got %+v", result)
		}
		if !errors.Is(result.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", result.Err)
		}
	})
}

// TestFetch_ContentEncoding tests gzip and deflate decoding.
func TestFetch_ContentEncoding(t *testing.T) {
	t.Parallel()

	const page = `<html><body><a href="/compressed">c</a></body></html>`

	gz := func() []byte {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write([]byte(page))
		_ = zw.Close()
		return buf.Bytes()
	}
	zl := func() []byte {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		_, _ = zw.Write([]byte(page))
		_ = zw.Close()
		return buf.Bytes()
	}
	rawDeflate := func() []byte {
		var buf bytes.Buffer
		fw, _ := flate.NewWriter(&buf, flate.DefaultCompression)
		_, _ = fw.Write([]byte(page))
		_ = fw.Close()
		return buf.Bytes()
	}

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{"identity", "", []byte(page)},
		{"gzip", "gzip", gz()},
		{"zlib deflate", "deflate", zl()},
		{"raw deflate", "deflate", rawDeflate()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				if tt.encoding != "" {
					w.Header().Set("Content-Encoding", tt.encoding)
				}
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t)
			result := c.Fetch(context.Background(), srv.URL)
			if !result.OK() {
				t.Fatalf("expected OK, got %+v", result)
			}
			if string(result.Body) != page {
				t.Errorf("expected decoded body %q, got %q", page, result.Body)
			}
		})
	}
}

// TestFetch_CharsetConversion tests that legacy encodings are converted to UTF-8.
func TestFetch_CharsetConversion(t *testing.T) {
	t.Parallel()

	// "café" in ISO-8859-1.
	latin1 := []byte("<html><body><p>caf\xe9</p></body></html>")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write(latin1)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t)
	result := c.Fetch(context.Background(), srv.URL)
	if !result.OK() {
		t.Fatalf("expected OK, got %+v", result)
	}
	if !strings.Contains(string(result.Body), "café") {
		t.Errorf("expected UTF-8 body, got %q", result.Body)
	}
}

// TestFetch_MaxBodySize tests that bodies are truncated at the limit.
func TestFetch_MaxBodySize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(bytes.Repeat([]byte("a"), 4096))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, WithMaxBodySize(100))
	result := c.Fetch(context.Background(), srv.URL)
	if !result.OK() {
		t.Fatalf("expected OK, got %+v", result)
	}
	if len(result.Body) != 100 {
		t.Errorf("expected 100 bytes, got %d", len(result.Body))
	}
}

// TestFetch_RateLimit tests that the limiter spaces out requests.
func TestFetch_RateLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, WithRateLimit(10))

	start := time.Now()
	// Burst is 10, so 15 requests need at least ~0.5s of refill.
	for range 15 {
		c.Fetch(context.Background(), srv.URL)
	}
	if elapsed := time.Since(start); elapsed < 400*time.Millisecond {
		t.Errorf("expected rate limiting to slow requests, took %v", elapsed)
	}
}

// TestNewClient_Validation tests option validation.
func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"negative rate", []Option{WithRateLimit(-1)}, ErrInvalidRate},
		{"proxy without port", []Option{WithProxy("127.0.0.1")}, ErrInvalidProxyAddress},
		{"proxy with bad port", []Option{WithProxy("127.0.0.1:99999")}, ErrInvalidProxyAddress},
		{"proxy with empty host", []Option{WithProxy(":9050")}, ErrInvalidProxyAddress},
		{"valid proxy", []Option{WithProxy("127.0.0.1:9050")}, nil},
		{"defaults", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewClient(tt.opts...)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestIsHTML tests content type classification.
func TestIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"", true},
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"TEXT/HTML", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"image/png", false},
		{"text/plain", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()

			if got := IsHTML(tt.contentType); got != tt.want {
				t.Errorf("IsHTML(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}
