package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/audio-extract-go/internal/app"
	"github.com/yourusername/audio-extract-go/internal/domain"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	manager *app.JobManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(manager *app.JobManager) *HealthHandler {
	return &HealthHandler{
		manager: manager,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Jobs    struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	} `json:"jobs"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	for _, job := range h.manager.List() {
		response.Jobs.Total++
		if job.Status == domain.StatusQueued || job.Status == domain.StatusProcessing {
			response.Jobs.Active++
		}
	}

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.manager.Stopped() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "job manager stopped",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
