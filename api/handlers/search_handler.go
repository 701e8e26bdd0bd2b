package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/audio-extract-go/internal/domain"
	"go.uber.org/zap"
)

// SearchHandler finds videos to submit as jobs
type SearchHandler struct {
	searcher domain.Searcher
	logger   *zap.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher domain.Searcher, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, logger: logger}
}

// Search handles GET /api/v1/search?q=<query or playlist URL>&limit=N
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	results, err := domain.Lookup(c.Request.Context(), h.searcher, query, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQueryRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case domain.KindOf(err) == domain.KindCancelled:
			c.Status(http.StatusRequestTimeout)
		default:
			h.logger.Warn("Search failed", zap.String("query", query), zap.Error(err))
			_ = c.Error(err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	_, playlist := domain.PlaylistID(query)
	c.JSON(http.StatusOK, gin.H{
		"results":  results,
		"count":    len(results),
		"playlist": playlist,
	})
}
