package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/okian/formcheck/internal/domain/model"
	"github.com/okian/formcheck/pkg/metrics"
)

const defaultMaxJobs = 10_000

// MemoryJobStore is a bounded in-memory JobStore. Jobs are evicted in
// creation order once maxJobs is reached.
type MemoryJobStore struct {
	mu      sync.RWMutex
	jobs    map[string]*list.Element
	order   *list.List // of *model.Job, oldest at the front
	maxJobs int
}

// NewMemoryJobStore creates an empty job store.
func NewMemoryJobStore(opts ...JobOption) *MemoryJobStore {
	s := &MemoryJobStore{
		jobs:    make(map[string]*list.Element),
		order:   list.New(),
		maxJobs: defaultMaxJobs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create implements JobStore.
func (s *MemoryJobStore) Create(_ context.Context, job model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.ID)
	}
	if s.maxJobs > 0 {
		for s.order.Len() >= s.maxJobs {
			oldest := s.order.Front()
			delete(s.jobs, oldest.Value.(*model.Job).ID)
			s.order.Remove(oldest)
		}
	}
	stored := job
	s.jobs[job.ID] = s.order.PushBack(&stored)
	metrics.UpdateJobsStored(s.order.Len())
	return nil
}

// Get implements JobStore.
func (s *MemoryJobStore) Get(_ context.Context, id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return *el.Value.(*model.Job), nil
}

// Update implements JobStore.
func (s *MemoryJobStore) Update(_ context.Context, id string, fn func(*model.Job)) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	job := el.Value.(*model.Job)
	fn(job)
	job.ID = id
	return *job, nil
}

// Delete implements JobStore.
func (s *MemoryJobStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.jobs[id]; ok {
		s.order.Remove(el)
		delete(s.jobs, id)
		metrics.UpdateJobsStored(s.order.Len())
	}
}

// Count implements JobStore.
func (s *MemoryJobStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}
