package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder receives one observation per served request.
type HTTPRecorder interface {
	ObserveHTTPRequest(method, path string, status int, d time.Duration)
}

// Metrics records request duration and status by route template.
func Metrics(recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		recorder.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// RequestLogger logs every request at debug level and server errors at error
// level.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if status >= 500 {
			logger.Error("request failed", attrs...)
			return
		}
		logger.Debug("request served", attrs...)
	}
}
