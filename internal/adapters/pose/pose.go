// Package pose talks to the pose-detection sidecar that turns a photograph
// into body landmarks.
package pose

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/okian/formcheck/internal/domain/body"
	"github.com/okian/formcheck/internal/domain/skills"
	"github.com/okian/formcheck/pkg/logger"
	"github.com/okian/formcheck/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout      = 10 * time.Second
	defaultAttempts     = 3
	defaultRetryDelay   = 200 * time.Millisecond
	maxRetryDelay       = 2 * time.Second
	maxResponseBytes    = 32 << 20
	fileField           = "file"
	uploadFileName      = "upload.jpg"
	statusUnprocessable = http.StatusUnprocessableEntity
)

// Extraction is what the sidecar found in one photograph.
type Extraction struct {
	Landmarks body.Frame
	// AnnotatedImage is the photograph with the detected skeleton drawn on
	// it. Empty when the sidecar does not render one.
	AnnotatedImage []byte
}

// Extractor finds body landmarks in an image.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (Extraction, error)
}

// HTTPExtractor calls a pose-detection service over HTTP. The service
// receives the image as multipart field "file" and answers with
// {"landmarks": {"LEFT_ELBOW": [x, y], ...}, "annotated_image": "<base64>"}.
// A 422 answer means no body was found.
type HTTPExtractor struct {
	url      string
	client   *http.Client
	attempts uint
	delay    time.Duration
	logger   logger.Logger
}

type extractResponse struct {
	Landmarks      map[string]body.Point `json:"landmarks"`
	AnnotatedImage []byte                `json:"annotated_image"`
}

// NewHTTPExtractor creates an extractor that posts to url.
func NewHTTPExtractor(url string, opts ...Option) *HTTPExtractor {
	e := &HTTPExtractor{
		url:      url,
		client:   &http.Client{Timeout: defaultTimeout},
		attempts: defaultAttempts,
		delay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("pose")
	}
	return e
}

// Extract sends image to the sidecar and returns the detected landmarks.
func (e *HTTPExtractor) Extract(ctx context.Context, image []byte) (Extraction, error) {
	if len(image) == 0 {
		return Extraction{}, ErrEmptyImage
	}

	start := time.Now()
	var out extractResponse
	err := retry.Do(
		func() error {
			var err error
			out, err = e.post(ctx, image)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(e.attempts),
		retry.Delay(e.delay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Warn(ctx, "retrying pose extraction",
				logger.Int("attempt", int(n)+1),
				logger.Error(err),
			)
		}),
	)
	metrics.RecordUpstreamLatency("pose", float64(time.Since(start).Milliseconds()))
	if err != nil {
		switch {
		case errors.Is(err, ErrNoPoseDetected):
			metrics.RecordUpstreamError("pose", "no_pose")
		default:
			metrics.RecordUpstreamError("pose", "unavailable")
		}
		return Extraction{}, err
	}

	frame := make(body.Frame, len(out.Landmarks))
	for name, p := range out.Landmarks {
		frame[skills.Landmark(strings.ToUpper(name))] = p
	}
	if len(frame) == 0 {
		metrics.RecordUpstreamError("pose", "no_pose")
		return Extraction{}, ErrNoPoseDetected
	}
	return Extraction{Landmarks: frame, AnnotatedImage: out.AnnotatedImage}, nil
}

func (e *HTTPExtractor) post(ctx context.Context, image []byte) (extractResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(fileField, uploadFileName)
	if err != nil {
		return extractResponse{}, retry.Unrecoverable(err)
	}
	if _, err := fw.Write(image); err != nil {
		return extractResponse{}, retry.Unrecoverable(err)
	}
	if err := mw.Close(); err != nil {
		return extractResponse{}, retry.Unrecoverable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, &buf)
	if err != nil {
		return extractResponse{}, retry.Unrecoverable(fmt.Errorf("%w: %w", ErrUpstream, err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return extractResponse{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == statusUnprocessable:
		return extractResponse{}, retry.Unrecoverable(ErrNoPoseDetected)
	case resp.StatusCode >= http.StatusInternalServerError:
		return extractResponse{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return extractResponse{}, retry.Unrecoverable(fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode))
	}

	var out extractResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return extractResponse{}, retry.Unrecoverable(fmt.Errorf("%w: decode response: %w", ErrUpstream, err))
	}
	return out, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return retry.IsRecoverable(err)
}
