package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate, Config.ValidateTargets and
// ValidateURL so that callers can use errors.Is() to tell them apart.
var (
	// ErrNoTarget is returned when no base URL is specified.
	ErrNoTarget = errors.New("no target specified: provide one or more base URLs")

	// ErrInvalidURL is returned when a base URL is missing or does not start with http.
	ErrInvalidURL = errors.New("invalid URL: must start with http:// or https://")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidSummaryFormat is returned for an unknown --summary value.
	ErrInvalidSummaryFormat = errors.New("invalid summary format: must be text, markdown or json")
)
