package fetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"
)

// readBody reads the response body, undoing any Content-Encoding the server
// applied, and stops after maxBodySize decoded bytes.
func readBody(resp *http.Response, maxBodySize int64) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		return readLimited(zr, maxBodySize)
	case "deflate":
		// "deflate" is specified as zlib-wrapped, but some servers send raw DEFLATE.
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer zr.Close()
			return readLimited(zr, maxBodySize)
		}
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		return readLimited(fr, maxBodySize)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

// readLimited reads at most limit bytes from r. A truncated stream is not an error.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil && len(body) == 0 {
		return nil, err
	}
	return body, nil
}

// isHTML reports whether contentType names an HTML document.
// A missing Content-Type is treated as HTML.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// IsHTML reports whether a response with this Content-Type should be parsed for links.
func IsHTML(contentType string) bool {
	return isHTML(contentType)
}

// toUTF8 converts an HTML body to UTF-8 using the Content-Type charset,
// a BOM or a <meta charset> declaration. The body is returned unchanged
// when it is already UTF-8 or the conversion fails.
func toUTF8(body []byte, contentType string) []byte {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	converted, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return converted
}
