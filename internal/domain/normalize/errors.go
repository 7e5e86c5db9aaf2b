package normalize

import "errors"

// Sentinel kinds for normalization failures. Records failing these are
// skipped, never fatal.
var (
	ErrNoDate  = errors.New("record has no start date")
	ErrBadDate = errors.New("unparseable start date")
)
