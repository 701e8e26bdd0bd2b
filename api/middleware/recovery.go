package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/audio-extract-go/pkg/logger"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 and records it, with the
// stack and the job it concerned, in the error category of events.
// A response that already started (an event stream) is only aborted.
func Recovery(log *zap.Logger, events *logger.MultiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			err := fmt.Errorf("panic: %v", recovered)
			fields := []zap.Field{
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			}
			if jobID := c.Param("id"); jobID != "" {
				fields = append(fields, zap.String("job_id", jobID))
			}
			fields = append(fields, zap.Stack("stack"))

			log.Error("Panic recovered", fields...)
			if events != nil {
				events.LogAppError("Panic recovered", fields...)
			}
			_ = c.Error(err)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}()
		c.Next()
	}
}
