// Package worker runs queued analysis jobs in the background.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/formcheck/internal/domain/model"
	"github.com/okian/formcheck/pkg/logger"
	"github.com/okian/formcheck/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultJobTimeout     = 2 * time.Minute
	metricsUpdateInterval = 5 * time.Second
	workerShutdownTimeout = 5 * time.Second
)

// Job is what workers read off the queue.
type Job = model.Job

// Processor analyzes the request carried by a job.
type Processor interface {
	Process(ctx context.Context, req model.Request) (*model.Analysis, error)
}

// Recorder persists job state transitions.
type Recorder interface {
	Update(ctx context.Context, id string, fn func(*model.Job)) (model.Job, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs and records their outcome.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called,
	// or the queue is closed and drained.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue      Queue
	processor  Processor
	recorder   Recorder
	name       string
	jobTimeout time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, processor Processor, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      queue,
		processor:  processor,
		recorder:   recorder,
		name:       "worker",
		jobTimeout: defaultJobTimeout,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// processJob runs one job and records its outcome. Errors returned here
// concern bookkeeping; analysis failures are stored on the job.
func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	ctx = logger.WithFields(ctx, logger.String("jobID", job.ID), logger.String("worker", w.name))
	metrics.AddWorkerActive(1)
	defer func() {
		metrics.AddWorkerActive(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if _, err := w.recorder.Update(ctx, job.ID, func(j *model.Job) {
		j.Status = model.JobRunning
		j.UpdatedAt = time.Now()
	}); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "job_lost")
		return fmt.Errorf("mark job %s running: %w", job.ID, err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	analysis, procErr := w.processor.Process(jobCtx, job.Request)
	cancel()

	if procErr != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "analysis_error")
		w.logger.Warn(ctx, "job failed",
			logger.String("skill", job.Request.SkillID),
			logger.Error(procErr),
		)
	}

	_, err := w.recorder.Update(ctx, job.ID, func(j *model.Job) {
		j.UpdatedAt = time.Now()
		j.Request.Image = nil
		if procErr != nil {
			j.Status = model.JobFailed
			j.Error = procErr.Error()
			return
		}
		j.Status = model.JobDone
		j.Analysis = analysis
	})
	if err != nil {
		metrics.RecordErrorByComponent("worker", "job_lost")
		return fmt.Errorf("record job %s outcome: %w", job.ID, err)
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown     chan struct{}
	shutdownOnce sync.Once

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount uses one
// worker per CPU.
func NewPool(workerCount int, queue Queue, processor Processor, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(queue, processor, recorder, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater periodically publishes runtime metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

func (p *Pool) updateMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	metrics.UpdateSystemMemoryUsage(ms.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// Stop stops every worker after its current job, abandoning queued jobs.
func (p *Pool) Stop() {
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()
	for _, worker := range p.workers {
		_ = worker.Shutdown(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	for i, worker := range p.workers {
		select {
		case <-worker.Done():
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("drain workers: %w", ctx.Err())
		}
	}
	return nil
}
