package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current status of a job
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// Job represents one audio extraction for a single video identifier
type Job struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	VideoID      string     `json:"video_id" gorm:"not null;index"`
	URL          string     `json:"url" gorm:"not null"`
	Status       JobStatus  `json:"status" gorm:"not null;index"`
	Title        string     `json:"title,omitempty"`
	FilePath     string     `json:"file_path,omitempty"`
	ErrorKind    ErrorKind  `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewJob creates a queued job for videoID. urlTemplate must contain a single %s.
func NewJob(videoID, urlTemplate string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.New().String(),
		VideoID:   videoID,
		URL:       ResolveURL(videoID, urlTemplate),
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ResolveURL turns a video identifier into a source URL. Identifiers that
// already are http(s) URLs are returned unchanged.
func ResolveURL(videoID, urlTemplate string) string {
	if strings.HasPrefix(videoID, "https://") || strings.HasPrefix(videoID, "http://") {
		return videoID
	}
	return fmt.Sprintf(urlTemplate, videoID)
}

// MarkProcessing marks the job as processing
func (j *Job) MarkProcessing() {
	j.Status = StatusProcessing
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkCompleted marks the job as completed
func (j *Job) MarkCompleted(title, filePath string) {
	j.Status = StatusCompleted
	j.Title = title
	j.FilePath = filePath
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkFailed marks the job as failed, or cancelled when err is a cancellation
func (j *Job) MarkFailed(err error) {
	j.Status = StatusFailed
	j.ErrorKind = KindOf(err)
	if j.ErrorKind == KindCancelled {
		j.Status = StatusCancelled
	}
	j.ErrorMessage = err.Error()
	var jobErr *JobError
	if errors.As(err, &jobErr) {
		j.ErrorMessage = jobErr.Message
	}
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// IsTerminal checks if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed || j.Status == StatusCancelled
}

// Succeeded reports whether the job produced its output file
func (j *Job) Succeeded() bool {
	return j.Status == StatusCompleted
}
