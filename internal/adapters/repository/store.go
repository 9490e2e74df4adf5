// Package repository holds the in-memory job and progress stores.
package repository

import (
	"context"
	"time"

	"github.com/okian/formcheck/internal/domain/model"
	"github.com/okian/formcheck/internal/domain/types"
)

// JobStore tracks asynchronous analysis jobs.
type JobStore interface {
	// Create stores a new job. Returns ErrDuplicateJob if the id exists.
	Create(ctx context.Context, job model.Job) error

	// Get returns a copy of the job. Returns ErrNotFound if the job is
	// unknown or was evicted.
	Get(ctx context.Context, id string) (model.Job, error)

	// Update applies fn to the stored job under the store lock and returns
	// the result.
	Update(ctx context.Context, id string, fn func(*model.Job)) (model.Job, error)

	// Delete forgets a job. Unknown ids are ignored.
	Delete(ctx context.Context, id string)

	// Count returns the number of retained jobs.
	Count(ctx context.Context) int
}

// Attempt is one scored photo counted toward an athlete's progress.
type Attempt struct {
	AthleteID string
	SkillID   string
	Score     float64
	Passing   bool
	At        time.Time

	// Next is the skill unlocked by a passing attempt; empty at the end of
	// a progression.
	Next string
}

// Outcome reports what an attempt changed.
type Outcome struct {
	Improved bool   // the best score went up
	Unlocked string // set when Next became available by this attempt
}

// ProgressStore tracks per-athlete skill progress.
type ProgressStore interface {
	// Record counts an attempt.
	Record(ctx context.Context, a Attempt) (Outcome, error)

	// Progress returns every skill the athlete attempted or unlocked,
	// ordered by skill id. Returns ErrNotFound for unknown athletes.
	Progress(ctx context.Context, athleteID string) ([]types.ProgressEntry, error)

	// Count returns the number of tracked athletes.
	Count(ctx context.Context) int
}
