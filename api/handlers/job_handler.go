package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/audio-extract-go/internal/app"
	"github.com/yourusername/audio-extract-go/internal/domain"
	"go.uber.org/zap"
)

// JobHandler handles extraction job requests
type JobHandler struct {
	manager *app.JobManager
	logger  *zap.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(manager *app.JobManager, logger *zap.Logger) *JobHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobHandler{
		manager: manager,
		logger:  logger,
	}
}

// SubmitJobRequest represents a request to extract audio from a video
type SubmitJobRequest struct {
	VideoID string `json:"video_id" binding:"required"`
}

// SubmitJob handles POST /api/v1/jobs
func (h *JobHandler) SubmitJob(c *gin.Context) {
	var req SubmitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.MessageVideoIDRequired})
		return
	}

	job, err := h.manager.Submit(req.VideoID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("Job submitted",
		zap.String("id", job.ID),
		zap.String("video_id", job.VideoID))

	c.JSON(http.StatusCreated, job)
}

// ListJobs handles GET /api/v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs := h.manager.List()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.manager.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// StreamEvents handles GET /api/v1/jobs/:id/events. Every event of the job
// is replayed from the start, then new ones follow until the terminal event.
func (h *JobHandler) StreamEvents(c *gin.Context) {
	stream, err := h.manager.Events(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	cursor := 0
	c.Stream(func(w io.Writer) bool {
		events, done, err := stream.Next(ctx, cursor)
		if err != nil {
			return false
		}
		for _, event := range events {
			c.SSEvent(string(event.EventType()), event)
		}
		cursor += len(events)
		return !done
	})
}

// DownloadFile handles GET /api/v1/jobs/:id/file
func (h *JobHandler) DownloadFile(c *gin.Context) {
	job, err := h.manager.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if job.Status != domain.StatusCompleted || job.FilePath == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "job has not completed", "status": job.Status})
		return
	}
	if _, err := os.Stat(job.FilePath); err != nil {
		c.JSON(http.StatusGone, gin.H{"error": "output file no longer exists"})
		return
	}

	c.FileAttachment(job.FilePath, filepath.Base(job.FilePath))
}

// CancelJob handles POST /api/v1/jobs/:id/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	id := c.Param("id")
	if err := h.manager.Cancel(id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "message": "cancellation requested"})
}

// respondError maps manager errors to HTTP status codes
func (h *JobHandler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrJobTerminal):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArguments):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrManagerStopped):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("Job request failed", zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
