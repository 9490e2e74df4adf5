package coach

import (
	"time"

	"github.com/okian/formcheck/pkg/logger"
)

// Option applies a configuration option to the Coach.
type Option func(*Coach)

// WithTimeout bounds one elaboration, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *Coach) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAttempts sets how many times a transient failure is tried.
func WithAttempts(n int) Option {
	return func(c *Coach) {
		if n > 0 {
			c.attempts = uint(n)
		}
	}
}

// WithRetryDelay sets the initial backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Coach) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coach) {
		if l != nil {
			c.logger = l
		}
	}
}
