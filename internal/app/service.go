// Package service provides the analysis service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/formcheck/internal/adapters/coach"
	jobqueue "github.com/okian/formcheck/internal/adapters/mq/queue"
	workerpool "github.com/okian/formcheck/internal/adapters/mq/worker"
	"github.com/okian/formcheck/internal/adapters/pose"
	"github.com/okian/formcheck/internal/adapters/repository"
	"github.com/okian/formcheck/internal/domain/dedupe"
	"github.com/okian/formcheck/internal/domain/model"
	"github.com/okian/formcheck/internal/domain/scoring"
	"github.com/okian/formcheck/internal/domain/skills"
	"github.com/okian/formcheck/internal/domain/types"
	"github.com/okian/formcheck/pkg/logger"
	"github.com/okian/formcheck/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize          = 1_000
	defaultDedupeSize         = 10_000
	defaultMaxStoredJobs      = 10_000
	defaultElaborationTimeout = 30 * time.Second
)

// Analysis outcome labels.
const (
	outcomePassed         = "passed"
	outcomeFailed         = "failed"
	outcomeNotImplemented = "not_implemented"
	outcomeNoPose         = "no_pose"
	outcomeError          = "error"
)

// jobProcessor adapts the Service to workerpool.Processor.
type jobProcessor struct {
	svc *Service
}

func (p *jobProcessor) Process(ctx context.Context, req model.Request) (*model.Analysis, error) {
	return p.svc.Analyze(ctx, req)
}

// Service implements the API dependencies for skill analysis.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog    *skills.Catalog
	engine     *scoring.Engine
	extractor  pose.Extractor
	elaborator coach.Elaborator
	jobs       repository.JobStore
	progress   repository.ProgressStore
	deduper    dedupe.Deduper
	jobQueue   *jobqueue.InMemoryQueue
	workerPool *workerpool.Pool

	// Configuration
	workerCount        int
	queueSize          int
	dedupeSize         int
	maxStoredJobs      int
	tolerance          float64
	elaborationTimeout time.Duration

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Synchronous analysis works right away;
// Start is needed for background jobs.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU(),
		queueSize:          defaultQueueSize,
		dedupeSize:         defaultDedupeSize,
		maxStoredJobs:      defaultMaxStoredJobs,
		tolerance:          scoring.DefaultTolerance,
		elaborationTimeout: defaultElaborationTimeout,
		elaborator:         coach.SummaryElaborator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.catalog == nil {
		s.catalog = skills.Default()
	}
	if s.extractor == nil {
		s.extractor = pose.NewHTTPExtractor("http://localhost:8001/landmarks")
	}
	s.engine = scoring.NewEngine(s.catalog, scoring.WithTolerance(s.tolerance))
	s.jobs = repository.NewMemoryJobStore(repository.WithMaxJobs(s.maxStoredJobs))
	s.progress = repository.NewMemoryProgressStore()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start starts the job queue and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting analysis service...")

	s.jobQueue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, &jobProcessor{svc: s}, s.jobs)

	// Workers outlive the start context; Stop cancels them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("skills", s.engine.Catalog().Len()),
	)
	return nil
}

// Stop drains queued jobs, waiting at most until ctx is done, then stops
// the workers.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping analysis service...")
	err := s.workerPool.Shutdown(ctx)
	s.cancel()
	if err != nil {
		s.logger.Warn(ctx, "queued jobs abandoned", logger.Error(err))
		s.workerPool.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// Analyze scores one photograph synchronously.
func (s *Service) Analyze(ctx context.Context, req model.Request) (*model.Analysis, error) {
	start := time.Now()
	if err := validate(req); err != nil {
		return nil, err
	}

	a := &model.Analysis{
		ID:        uuid.NewString(),
		SkillID:   req.SkillID,
		AthleteID: req.AthleteID,
		CreatedAt: time.Now().UTC(),
	}
	ctx = logger.WithFields(ctx, logger.String("analysisID", a.ID), logger.String("skill", req.SkillID))

	// Unknown skills are answered before calling the extractor.
	if _, ok := s.engine.Catalog().Lookup(req.SkillID); !ok {
		nie := &scoring.NotImplementedError{SkillID: req.SkillID}
		a.Summary = nie.Summary()
		a.Feedback = a.Summary
		metrics.RecordAnalysis(req.SkillID, outcomeNotImplemented)
		s.logger.Info(ctx, "skill not implemented")
		return a, nil
	}

	extraction, err := s.extractor.Extract(ctx, req.Image)
	if err != nil {
		outcome := outcomeError
		if errors.Is(err, pose.ErrNoPoseDetected) {
			outcome = outcomeNoPose
		}
		metrics.RecordAnalysis(req.SkillID, outcome)
		return nil, fmt.Errorf("extract landmarks: %w", err)
	}
	a.AnnotatedImage = extraction.AnnotatedImage

	rep, err := s.engine.Evaluate(req.SkillID, extraction.Landmarks.WithMidHip())
	if err != nil {
		metrics.RecordAnalysis(req.SkillID, outcomeError)
		return nil, fmt.Errorf("evaluate %s: %w", req.SkillID, err)
	}
	a.Report = &rep
	a.Summary = rep.Summary
	s.observe(rep)

	a.Feedback, a.Elaborated = s.elaborate(ctx, rep.Summary)

	if req.AthleteID != "" {
		a.Unlocked = s.recordProgress(ctx, req, rep, a.CreatedAt)
	}

	outcome := outcomeFailed
	if rep.IsPassing {
		outcome = outcomePassed
	}
	metrics.RecordAnalysis(req.SkillID, outcome)
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))

	s.logger.Info(ctx, "analysis complete",
		logger.Float64("score", rep.OverallScore),
		logger.Bool("passing", rep.IsPassing),
		logger.Int("missingLandmarks", len(rep.MissingLandmarks)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return a, nil
}

// elaborate expands the summary into coaching feedback, falling back to the
// plain summary when the elaborator fails.
func (s *Service) elaborate(ctx context.Context, summary string) (string, bool) {
	fallback, _ := coach.SummaryElaborator{}.Elaborate(ctx, summary)
	if _, plain := s.elaborator.(coach.SummaryElaborator); plain {
		return fallback, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.elaborationTimeout)
	defer cancel()

	text, err := s.elaborator.Elaborate(ctx, summary)
	if err != nil {
		metrics.RecordElaborationFallback()
		metrics.RecordErrorByComponent("service", "elaboration")
		s.logger.Warn(ctx, "elaboration failed, returning summary", logger.Error(err))
		return fallback, false
	}
	return text, true
}

func (s *Service) observe(rep scoring.Report) {
	metrics.RecordOverallScore(rep.SkillID, rep.OverallScore)
	for _, res := range rep.Results {
		metrics.RecordAngleCheck(rep.SkillID, string(res.Status))
	}
	for _, l := range rep.MissingLandmarks {
		metrics.RecordMissingLandmark(l.String())
	}
}

// recordProgress counts the attempt and returns the skill it unlocked, if any.
func (s *Service) recordProgress(ctx context.Context, req model.Request, rep scoring.Report, at time.Time) string {
	attempt := repository.Attempt{
		AthleteID: req.AthleteID,
		SkillID:   req.SkillID,
		Score:     rep.OverallScore,
		Passing:   rep.IsPassing,
		At:        at,
	}
	if next, ok := s.engine.Catalog().Next(req.SkillID); ok {
		attempt.Next = next.ID
	}

	out, err := s.progress.Record(ctx, attempt)
	if err != nil {
		s.logger.Error(ctx, "failed to record progress",
			logger.String("athleteID", req.AthleteID),
			logger.Error(err),
		)
		return ""
	}
	if out.Unlocked != "" {
		metrics.RecordProgressionUnlock()
		s.logger.Info(ctx, "skill unlocked",
			logger.String("athleteID", req.AthleteID),
			logger.String("skill", out.Unlocked),
		)
	}
	return out.Unlocked
}

// Submit queues an analysis for background processing. Repeating an
// idempotency key returns the job it first created with duplicate set.
func (s *Service) Submit(ctx context.Context, req model.Request, idempotencyKey string) (model.Job, bool, error) {
	if err := validate(req); err != nil {
		return model.Job{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Job{}, false, ErrNotStarted
	}

	jobID := uuid.NewString()
	if idempotencyKey != "" {
		if owner, held := s.deduper.Claim(ctx, idempotencyKey, jobID); held {
			if existing, err := s.jobs.Get(ctx, owner); err == nil {
				metrics.RecordDuplicateSubmission()
				return existing, true, nil
			}
			// The original job was evicted; the key is free again.
			s.deduper.Release(ctx, idempotencyKey)
			s.deduper.Claim(ctx, idempotencyKey, jobID)
		}
	}

	now := time.Now().UTC()
	job := model.Job{
		ID:        jobID,
		Status:    model.JobPending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		s.release(ctx, idempotencyKey)
		return model.Job{}, false, fmt.Errorf("store job: %w", err)
	}

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		s.jobs.Delete(ctx, jobID)
		s.release(ctx, idempotencyKey)
		if errors.Is(err, jobqueue.ErrFull) {
			return model.Job{}, false, ErrQueueFull
		}
		return model.Job{}, false, fmt.Errorf("enqueue job: %w", err)
	}

	s.logger.Debug(ctx, "job queued",
		logger.String("jobID", jobID),
		logger.String("skill", req.SkillID),
	)
	job.Request.Image = nil
	return job, false, nil
}

func (s *Service) release(ctx context.Context, key string) {
	if key != "" {
		s.deduper.Release(ctx, key)
	}
}

// Job returns the current state of a submitted job.
func (s *Service) Job(ctx context.Context, id string) (model.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return model.Job{}, err
	}
	job.Request.Image = nil
	return job, nil
}

// Progress returns the athlete's standing on every skill that is attempted
// or available, in catalog order. Skills that open a progression are always
// available.
func (s *Service) Progress(ctx context.Context, athleteID string) (types.Progress, error) {
	if strings.TrimSpace(athleteID) == "" {
		return types.Progress{}, fmt.Errorf("%w: athlete id is required", ErrInvalidRequest)
	}

	entries, err := s.progress.Progress(ctx, athleteID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return types.Progress{}, err
	}
	bySkill := make(map[string]types.ProgressEntry, len(entries))
	for _, e := range entries {
		bySkill[e.SkillID] = e
	}

	out := types.Progress{AthleteID: athleteID, Skills: []types.ProgressEntry{}}
	for _, sk := range s.engine.Catalog().Skills() {
		e, tracked := bySkill[sk.ID]
		if !tracked && !s.engine.Catalog().Entry(sk.ID) {
			continue
		}
		if !tracked {
			e = types.ProgressEntry{SkillID: sk.ID}
		}
		e.Unlocked = e.Unlocked || s.engine.Catalog().Entry(sk.ID)
		out.Skills = append(out.Skills, e)
	}
	return out, nil
}

// Skills returns the catalog in order.
func (s *Service) Skills() []skills.Skill {
	return s.engine.Catalog().Skills()
}

// Skill returns one catalog entry.
func (s *Service) Skill(id string) (skills.Skill, bool) {
	return s.engine.Catalog().Lookup(id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"skills":      s.engine.Catalog().Len(),
		"tolerance":   s.engine.Tolerance(),
		"storedJobs":  s.jobs.Count(ctx),
		"athletes":    s.progress.Count(ctx),
		"dedupeKeys":  s.deduper.Size(),
	}
	if s.started {
		stats["workerCount"] = s.workerPool.Size()
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}

func validate(req model.Request) error {
	if strings.TrimSpace(req.SkillID) == "" {
		return fmt.Errorf("%w: skill id is required", ErrInvalidRequest)
	}
	if len(req.Image) == 0 {
		return fmt.Errorf("%w: image is required", ErrInvalidRequest)
	}
	return nil
}
