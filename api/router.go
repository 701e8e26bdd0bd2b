package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/audio-extract-go/api/handlers"
	"github.com/yourusername/audio-extract-go/api/middleware"
	"github.com/yourusername/audio-extract-go/internal/app"
	"github.com/yourusername/audio-extract-go/internal/domain"
	"github.com/yourusername/audio-extract-go/pkg/logger"
	"go.uber.org/zap"
)

// RouterOptions carries the optional parts of the HTTP API
type RouterOptions struct {
	// History enables /api/v1/history when not nil
	History domain.JobRepository

	// LogsDir enables /api/v1/logs when not empty
	LogsDir string

	// Searcher enables /api/v1/search when not nil
	Searcher domain.Searcher

	// Events receives HTTP error responses in its error category
	Events *logger.MultiLogger
}

// SetupRouter sets up the HTTP router
func SetupRouter(manager *app.JobManager, log *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log, opts.Events))
	router.Use(middleware.Recovery(log, opts.Events))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(manager)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		jobHandler := handlers.NewJobHandler(manager, log)
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.SubmitJob)
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/:id", jobHandler.GetJob)
			jobs.GET("/:id/events", jobHandler.StreamEvents)
			jobs.GET("/:id/file", jobHandler.DownloadFile)
			jobs.POST("/:id/cancel", jobHandler.CancelJob)
		}

		if opts.Searcher != nil {
			searchHandler := handlers.NewSearchHandler(opts.Searcher, log)
			v1.GET("/search", searchHandler.Search)
		}

		if opts.History != nil {
			historyHandler := handlers.NewHistoryHandler(opts.History)
			history := v1.Group("/history")
			{
				history.GET("", historyHandler.ListHistory)
				history.GET("/stats", historyHandler.GetStats)
				history.GET("/:id", historyHandler.GetHistoryJob)
			}
		}

		if opts.LogsDir != "" {
			logHandler := handlers.NewLogHandler(opts.LogsDir)
			logs := v1.Group("/logs")
			{
				logs.GET("/categories", logHandler.GetCategories)
				logs.GET("/:category", logHandler.GetLogs)
				logs.GET("/:category/search", logHandler.SearchLogs)
				logs.GET("/:category/export", logHandler.ExportLogs)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
