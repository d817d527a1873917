package model

import (
	"testing"
	"time"
)

// TestCrawlSummary tests summary bookkeeping helpers.
func TestCrawlSummary(t *testing.T) {
	t.Parallel()

	t.Run("new summary is empty", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlSummary("https://example.com/")
		if s.StartURL != "https://example.com/" {
			t.Errorf("unexpected start URL %q", s.StartURL)
		}
		if s.StartedAt.IsZero() {
			t.Error("expected StartedAt to be set")
		}
		if s.TotalVisited() != 0 {
			t.Errorf("expected 0 visited, got %d", s.TotalVisited())
		}
		if s.HasFailures() {
			t.Error("expected no failures")
		}
		if s.Elapsed() != 0 {
			t.Errorf("expected zero elapsed before finish, got %v", s.Elapsed())
		}
	})

	t.Run("elapsed and counts", func(t *testing.T) {
		t.Parallel()

		s := NewCrawlSummary("https://example.com/")
		s.StartedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		s.FinishedAt = s.StartedAt.Add(1500 * time.Millisecond)
		s.VisitedURLs = []string{"https://example.com/", "https://example.com/a"}
		s.Failed = append(s.Failed, FailedFetch{URL: "https://example.com/a", Reason: "HTTP 500 Internal Server Error"})

		if s.Elapsed() != 1500*time.Millisecond {
			t.Errorf("expected 1.5s elapsed, got %v", s.Elapsed())
		}
		if s.TotalVisited() != 2 {
			t.Errorf("expected 2 visited, got %d", s.TotalVisited())
		}
		if !s.HasFailures() {
			t.Error("expected failures")
		}
	})
}
