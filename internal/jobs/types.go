// Package jobs defines the background work the API server hands off: sync
// runs against the remote file, tracked in a job store so clients can poll
// for the outcome.
package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

// JobTypeSync is a remote synchronization run.
const JobTypeSync JobType = "sync"

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// SyncJob is one requested sync of the local document against the remote
// file. Sync runs are not retried automatically: a failed upload may have
// already replaced the local copy with the merge result, and the next sync
// reconciles from there.
type SyncJob struct {
	JobID  string `json:"job_id"`
	FileID string `json:"file_id"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error carries the failure message for JobStatusFailed.
	Error string `json:"error,omitempty"`

	// MergedDays is the size of the merged ledger on success.
	MergedDays int `json:"merged_days,omitempty"`
}

// GetID implements the Job interface.
func (j *SyncJob) GetID() string { return j.JobID }

// GetType implements the Job interface.
func (j *SyncJob) GetType() JobType { return JobTypeSync }

// GetStatus implements the Job interface.
func (j *SyncJob) GetStatus() JobStatus { return j.Status }

// Job is a generic interface over job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// Publisher enqueues jobs for asynchronous processing.
type Publisher interface {
	// PublishSync publishes a sync job.
	PublishSync(ctx context.Context, job *SyncJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer pulls jobs off a queue and runs them through a handler.
type Consumer interface {
	// Start begins consuming jobs; handler is called for each one.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job, returning an error when it failed.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so the API can report on past runs.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *SyncJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*SyncJob, error)

	// ListJobs retrieves jobs matching the filter.
	ListJobs(ctx context.Context, filter JobFilter) ([]*SyncJob, error)
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	Status JobStatus
	Limit  int
}
