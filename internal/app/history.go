package app

import (
	"github.com/yourusername/audio-extract-go/internal/domain"
	"go.uber.org/zap"
)

// HistoryRecorder journals every job update into a repository
type HistoryRecorder struct {
	repo   domain.JobRepository
	logger *zap.Logger
}

// NewHistoryRecorder creates a recorder backed by repo
func NewHistoryRecorder(repo domain.JobRepository, logger *zap.Logger) *HistoryRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryRecorder{repo: repo, logger: logger}
}

// JobUpdated saves the job snapshot. Journal failures never fail the job.
func (h *HistoryRecorder) JobUpdated(job domain.Job) {
	if err := h.repo.Save(&job); err != nil {
		h.logger.Warn("Failed to record job history",
			zap.String("id", job.ID),
			zap.String("status", string(job.Status)),
			zap.Error(err))
	}
}
