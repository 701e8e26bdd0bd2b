package domain

import "errors"

// ErrHistoryNotFound is returned when a history lookup has no match
var ErrHistoryNotFound = errors.New("job not found in history")

// JobRepository defines the interface for the job history journal
type JobRepository interface {
	// Save inserts or updates a job snapshot
	Save(job *Job) error

	// FindByID finds a job by ID
	FindByID(id string) (*Job, error)

	// FindByVideoID finds jobs for a video identifier, newest first
	FindByVideoID(videoID string) ([]*Job, error)

	// FindAll finds jobs with optional filters, newest first. limit <= 0 means no limit.
	FindAll(filters map[string]interface{}, limit int) ([]*Job, error)

	// GetStats returns job statistics
	GetStats() (*JobStats, error)

	// Close releases the underlying database
	Close() error
}

// JobStats represents job statistics
type JobStats struct {
	Total      int64 `json:"total"`
	Queued     int64 `json:"queued"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Cancelled  int64 `json:"cancelled"`
}
