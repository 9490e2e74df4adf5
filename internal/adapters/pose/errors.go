package pose

import "errors"

// Sentinel kinds for pose extraction errors.
var (
	ErrEmptyImage     = errors.New("empty image")
	ErrNoPoseDetected = errors.New("no human pose detected in the image")
	ErrUpstream       = errors.New("pose service failed")
)
