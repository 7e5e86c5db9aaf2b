package source

import "errors"

var (
	// ErrUpstreamStatus indicates the origin answered with a non-2xx
	// status.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
	// ErrMissingAPIKey indicates the adapter has no credential and
	// cannot call its origin.
	ErrMissingAPIKey = errors.New("api key not configured")
)
