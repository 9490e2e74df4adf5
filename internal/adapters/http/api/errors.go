package api

import (
	"errors"
	"net/http"

	"github.com/okian/formcheck/internal/adapters/pose"
	service "github.com/okian/formcheck/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrMissingFile     = errors.New("missing file field")
	ErrMissingSkill    = errors.New("missing skill_id field")
	ErrPayloadTooLarge = errors.New("upload too large")
)

// classify maps an error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, pose.ErrEmptyImage):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, pose.ErrNoPoseDetected):
		return http.StatusUnprocessableEntity, "no_pose_detected"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, pose.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeClassified(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
