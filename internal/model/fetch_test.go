package model

import (
	"errors"
	"strings"
	"testing"
)

// TestFetchResult tests the success/failure classification of fetch results.
func TestFetchResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		result     FetchResult
		wantOK     bool
		wantFailed bool
		wantReason string
	}{
		{
			name:       "200 is OK",
			result:     FetchSuccess("https://example.com/", 200, "text/html", []byte("<html></html>")),
			wantOK:     true,
			wantFailed: false,
			wantReason: "",
		},
		{
			name:       "204 is OK",
			result:     FetchSuccess("https://example.com/", 204, "", nil),
			wantOK:     true,
			wantFailed: false,
			wantReason: "",
		},
		{
			name:       "301 is not OK",
			result:     FetchSuccess("https://example.com/", 301, "", nil),
			wantOK:     false,
			wantFailed: false,
			wantReason: "HTTP 301 Moved Permanently",
		},
		{
			name:       "500 is not OK",
			result:     FetchSuccess("https://example.com/page2", 500, "text/html", nil),
			wantOK:     false,
			wantFailed: false,
			wantReason: "HTTP 500 Internal Server Error",
		},
		{
			name:       "transport failure",
			result:     FetchFailure("https://example.com/", errors.New("connection refused")),
			wantOK:     false,
			wantFailed: true,
			wantReason: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.result.OK(); got != tt.wantOK {
				t.Errorf("OK() = %v, want %v", got, tt.wantOK)
			}
			if got := tt.result.Failed(); got != tt.wantFailed {
				t.Errorf("Failed() = %v, want %v", got, tt.wantFailed)
			}
			if got := tt.result.Reason(); got != tt.wantReason {
				t.Errorf("Reason() = %q, want %q", got, tt.wantReason)
			}
		})
	}
}

// TestFetchFailure_NilReason tests that a nil reason still yields a failure.
func TestFetchFailure_NilReason(t *testing.T) {
	t.Parallel()

	result := FetchFailure("https://example.com/", nil)
	if !result.Failed() {
		t.Fatal("expected Failed() to be true")
	}
	if !strings.Contains(result.Reason(), "unknown") {
		t.Errorf("expected generic reason, got %q", result.Reason())
	}
}
