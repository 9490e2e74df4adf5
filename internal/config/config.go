// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults.
//   - Load layers a YAML file and environment variables over the defaults.
//   - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log output: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// CatalogPath optionally points at a YAML skill catalog replacing the
	// embedded one.
	CatalogPath string `koanf:"catalog_path"`

	// DecayTolerance is the deviation in degrees at which an angle's score
	// decays to about 37.
	DecayTolerance float64 `koanf:"decay_tolerance"`

	// PoseURL is the landmark-detection endpoint receiving the photo.
	PoseURL string `koanf:"pose_url"`

	// PoseTimeoutMS bounds one call to the pose endpoint.
	PoseTimeoutMS int `koanf:"pose_timeout_ms"`

	// PoseRetryAttempts is how many times a transient pose failure is tried.
	PoseRetryAttempts int `koanf:"pose_retry_attempts"`

	// GeminiAPIKey enables coaching elaboration. Falls back to GOOGLE_API_KEY.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// GeminiModel names the Gemini model used for elaboration.
	GeminiModel string `koanf:"gemini_model"`

	// ElaborationTimeoutMS bounds one elaboration, retries included.
	ElaborationTimeoutMS int `koanf:"elaboration_timeout_ms"`

	// MaxUploadBytes caps the multipart request body.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the idempotency key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxStoredJobs bounds how many finished jobs stay queryable.
	MaxStoredJobs int `koanf:"max_stored_jobs"`

	// AllowedOrigins lists the CORS origins allowed to call the API.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8000",
		DecayTolerance:       15,
		PoseURL:              "http://localhost:8001/landmarks",
		PoseTimeoutMS:        10_000,
		PoseRetryAttempts:    3,
		GeminiModel:          "gemini-2.5-flash",
		ElaborationTimeoutMS: 30_000,
		MaxUploadBytes:       10 << 20,
		WorkerCount:          runtime.NumCPU(),
		QueueSize:            1_000,
		DedupeSize:           10_000,
		MaxStoredJobs:        10_000,
		AllowedOrigins:       []string{"http://localhost:3000", "http://localhost"},
	}
}

// Validate reports the first invalid setting as a *FieldError.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr", "must not be empty")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return invalid("log_format", "must be text or json, got %q", c.LogFormat)
	case c.DecayTolerance <= 0:
		return invalid("decay_tolerance", "must be positive")
	case strings.TrimSpace(c.PoseURL) == "":
		return invalid("pose_url", "must not be empty")
	case c.PoseTimeoutMS <= 0:
		return invalid("pose_timeout_ms", "must be positive")
	case c.PoseRetryAttempts < 1:
		return invalid("pose_retry_attempts", "must be at least 1")
	case c.ElaborationTimeoutMS <= 0:
		return invalid("elaboration_timeout_ms", "must be positive")
	case c.MaxUploadBytes <= 0:
		return invalid("max_upload_bytes", "must be positive")
	case c.WorkerCount < 1:
		return invalid("worker_count", "must be at least 1")
	case c.QueueSize < 1:
		return invalid("queue_size", "must be at least 1")
	case c.DedupeSize < 1:
		return invalid("dedupe_size", "must be at least 1")
	case c.MaxStoredJobs < 1:
		return invalid("max_stored_jobs", "must be at least 1")
	}
	return nil
}
