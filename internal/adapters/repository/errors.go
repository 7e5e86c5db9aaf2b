package repository

import "errors"

// Sentinel kinds for document-store errors.
var (
	ErrNoURI         = errors.New("document store uri not configured")
	ErrConnect       = errors.New("document store connection failed")
	ErrEmptySnapshot = errors.New("refusing to publish an empty snapshot")
)
