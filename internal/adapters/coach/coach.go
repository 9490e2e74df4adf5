// Package coach turns the short scoring summary into coaching prose using a
// text-generation model.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/okian/formcheck/pkg/logger"
	"github.com/okian/formcheck/pkg/metrics"
)

// Default elaboration configuration constants.
const (
	defaultTimeout    = 30 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 5 * time.Second

	summaryHeading  = "**SHORT SUMMARY:**\n"
	analysisHeading = "**IN-DEPTH ANALYSIS:**\n"
)

// SystemInstruction frames the model as a bodyweight-skills coach.
const SystemInstruction = "You are a helpful and expert fitness coach specializing in bodyweight skills like planche, and levers. "

// Sentinel kinds for elaboration errors.
var (
	ErrElaboration = errors.New("elaboration failed")
	ErrNoContent   = errors.New("no content generated")
)

// Elaborator expands a scoring summary into feedback for the athlete.
type Elaborator interface {
	Elaborate(ctx context.Context, summary string) (string, error)
}

// generator produces text for a prompt.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// Coach implements Elaborator on top of a text-generation model.
type Coach struct {
	gen      generator
	timeout  time.Duration
	attempts uint
	delay    time.Duration
	logger   logger.Logger
	closer   func() error
}

func newCoach(gen generator, opts ...Option) *Coach {
	c := &Coach{
		gen:      gen,
		timeout:  defaultTimeout,
		attempts: defaultAttempts,
		delay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("coach")
	}
	return c
}

// Elaborate returns the summary followed by the model's in-depth analysis.
func (c *Coach) Elaborate(ctx context.Context, summary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var text string
	err := retry.Do(
		func() error {
			var err error
			text, err = c.gen.generate(ctx, summary)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryableError),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn(ctx, "retrying elaboration",
				logger.Int("attempt", int(n)+1),
				logger.Error(err),
			)
		}),
	)
	metrics.RecordUpstreamLatency("coach", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamError("coach", "unavailable")
		return "", fmt.Errorf("%w: %w", ErrElaboration, err)
	}
	return summaryHeading + summary + "\n\n" + analysisHeading + strings.TrimSpace(text), nil
}

// Close releases the underlying model client.
func (c *Coach) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// SummaryElaborator returns the summary unchanged under its heading. It is
// used when no text-generation model is configured.
type SummaryElaborator struct{}

// Elaborate implements Elaborator.
func (SummaryElaborator) Elaborate(_ context.Context, summary string) (string, error) {
	return summaryHeading + summary, nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNoContent) {
		return true
	}

	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"internal error",
		"quota exceeded",
		"rate limit",
		"too many requests",
		"resource exhausted",
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
