package model

import "time"

// JobStatus is the lifecycle state of an asynchronous analysis.
type JobStatus string

// Job states. A job moves pending -> running -> done | failed.
const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Terminal reports whether the job will not change state again.
func (s JobStatus) Terminal() bool { return s == JobDone || s == JobFailed }

// Job tracks an analysis submitted for background processing.
type Job struct {
	ID       string
	Status   JobStatus
	Request  Request
	Analysis *Analysis
	Error    string

	CreatedAt time.Time
	UpdatedAt time.Time
}
