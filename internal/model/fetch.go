package model

import (
	"errors"
	"fmt"
	"net/http"
)

// FetchResult is the outcome of fetching one URL.
// It is either a success carrying the HTTP status and body, or a failure
// carrying the reason the request could not complete.
//
// Design decision: Fetch failures are values rather than errors because the
// crawler never aborts on them. A failed fetch and a non-2xx response are both
// mapped to "no links" by the caller; keeping them as data makes that policy
// visible at the call site and easy to test.
type FetchResult struct {
	// URL is the requested URL.
	URL string `json:"url"`

	// StatusCode is the HTTP status code. Zero for failures.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the response Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// Body is the decoded response body (decompressed, UTF-8).
	Body []byte `json:"-"`

	// Err is the transport-level failure. Nil for successes.
	Err error `json:"-"`
}

// FetchSuccess returns a FetchResult for a completed HTTP exchange.
// A completed exchange is a success even when the status is not 2xx.
func FetchSuccess(url string, statusCode int, contentType string, body []byte) FetchResult {
	return FetchResult{
		URL:         url,
		StatusCode:  statusCode,
		ContentType: contentType,
		Body:        body,
	}
}

// FetchFailure returns a FetchResult for a request that did not complete.
// A nil reason is replaced with a generic error so Failed always holds.
func FetchFailure(url string, reason error) FetchResult {
	if reason == nil {
		reason = errors.New("unknown fetch failure")
	}
	return FetchResult{URL: url, Err: reason}
}

// Failed reports whether the request failed at the transport level.
func (r FetchResult) Failed() bool {
	return r.Err != nil
}

// OK reports whether the request completed with a 2xx status.
// Only OK results are handed to the link extractor.
func (r FetchResult) OK() bool {
	return r.Err == nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Reason describes why the result yields no links, or "" when it is OK.
func (r FetchResult) Reason() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case !r.OK():
		return fmt.Sprintf("HTTP %d %s", r.StatusCode, http.StatusText(r.StatusCode))
	default:
		return ""
	}
}
