package repository

// JobOption applies a configuration option to the MemoryJobStore.
type JobOption func(*MemoryJobStore)

// WithMaxJobs bounds how many jobs are retained. When full, the oldest job
// is evicted. Values <= 0 keep every job.
func WithMaxJobs(n int) JobOption {
	return func(s *MemoryJobStore) {
		s.maxJobs = n
	}
}
