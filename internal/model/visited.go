package model

import "time"

// VisitedURL is a single row of the visited store.
//
// Records are created once, when the crawler decides to process a URL and
// before the URL is fetched. Only Visited may change after creation.
type VisitedURL struct {
	// ID is assigned by the store and increases monotonically.
	ID int64 `json:"id"`

	// URL is the absolute URL, resolved against the page it was found on.
	// It is stored verbatim; no normalization is applied.
	URL string `json:"url"`

	// Visited is true once the URL has been processed. The crawler fuses
	// discovery and visiting, so every record it writes is created with true.
	Visited bool `json:"visited"`

	// RecordedAt is the insertion time assigned by the store.
	RecordedAt time.Time `json:"recorded_at"`
}
