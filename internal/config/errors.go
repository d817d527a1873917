package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrNoStartURL is returned when no seed URL was given or entered.
	ErrNoStartURL = errors.New("no start URL specified")

	// ErrInvalidStartURL is returned when the seed is not an absolute http(s) URL.
	ErrInvalidStartURL = errors.New("invalid start URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be at least 1")

	// ErrInvalidRate is returned when the request rate is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoOutputFile is returned when the sitemap output path is empty.
	ErrNoOutputFile = errors.New("no sitemap output path specified")
)
