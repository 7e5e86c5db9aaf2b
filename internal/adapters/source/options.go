package source

import (
	"net/http"
	"time"
)

// options is the shared adapter configuration. Each adapter reads the
// subset it cares about; the rest stays at defaults.
type options struct {
	baseURL   string
	client    *http.Client
	apiKey    string
	maxPages  int
	pageDelay time.Duration
	batchSize int
	now       func() time.Time
}

func defaultOptions() options {
	return options{
		maxPages:  0,  // unset; adapters apply their own caps
		pageDelay: -1, // unset; adapters apply their own courtesy delay
		batchSize: 0,  // unset; adapters apply their own batch width
		now:       time.Now,
	}
}

// Option applies a configuration option to a source adapter.
type Option func(*options)

// WithBaseURL overrides the upstream endpoint. Tests point this at an
// httptest server.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithHTTPClient overrides the HTTP client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithAPIKey sets the upstream API key for adapters that need one.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithMaxPages caps how many result pages the adapter walks.
func WithMaxPages(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPages = n
		}
	}
}

// WithPageDelay sets the pause between page requests.
func WithPageDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.pageDelay = d
		}
	}
}

// WithBatchSize sets how many pages are fetched per batch during deep
// crawls.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithNow injects the clock used for window computation.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
