package pose

import (
	"net/http"
	"time"

	"github.com/okian/formcheck/pkg/logger"
)

// Option applies a configuration option to the HTTPExtractor.
type Option func(*HTTPExtractor)

// WithTimeout bounds a single call to the pose service.
func WithTimeout(d time.Duration) Option {
	return func(e *HTTPExtractor) {
		if d > 0 {
			e.client.Timeout = d
		}
	}
}

// WithAttempts sets how many times a transient failure is tried.
func WithAttempts(n int) Option {
	return func(e *HTTPExtractor) {
		if n > 0 {
			e.attempts = uint(n)
		}
	}
}

// WithRetryDelay sets the initial backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(e *HTTPExtractor) {
		if d > 0 {
			e.delay = d
		}
	}
}

// WithHTTPClient replaces the HTTP client. Its timeout is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(e *HTTPExtractor) {
		if c != nil {
			e.client = c
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *HTTPExtractor) {
		if l != nil {
			e.logger = l
		}
	}
}
