package service

import (
	"time"

	"github.com/okian/formcheck/internal/adapters/coach"
	"github.com/okian/formcheck/internal/adapters/pose"
	"github.com/okian/formcheck/internal/domain/skills"
	"github.com/okian/formcheck/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of background analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxStoredJobs sets how many jobs stay queryable.
func WithMaxStoredJobs(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxStoredJobs = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalog replaces the embedded skill catalog.
func WithCatalog(c *skills.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithTolerance sets the score decay tolerance in degrees.
func WithTolerance(deg float64) Option {
	return func(s *Service) {
		if deg > 0 {
			s.tolerance = deg
		}
	}
}

// WithExtractor sets the landmark extractor.
func WithExtractor(e pose.Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithElaborator sets the feedback elaborator.
func WithElaborator(e coach.Elaborator) Option {
	return func(s *Service) {
		if e != nil {
			s.elaborator = e
		}
	}
}

// WithElaborationTimeout bounds one elaboration call.
func WithElaborationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.elaborationTimeout = d
		}
	}
}
