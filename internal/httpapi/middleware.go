package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studypath/internal/metrics"
)

// observe records request metrics and logs each request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.RecordAPIRequest(c.Request.Method, endpoint, status, elapsed)

		kv := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", elapsed.Milliseconds(),
		}
		if status >= 500 {
			s.log.Warn("request failed", append(kv, "errors", c.Errors.String())...)
		} else {
			s.log.Debug("request", kv...)
		}
	}
}
