package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker is one readiness dependency.
type Checker interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Handler  *Handler
	Metrics  http.Handler
	Recorder HTTPRecorder
	Checks   map[string]Checker
	Logger   *slog.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Logger))
	r.Use(Metrics(cfg.Recorder))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", readiness(cfg.Checks))
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/scholarships", cfg.Handler.List)
		v1.GET("/scholarships/:ref", cfg.Handler.Get)
		v1.GET("/scholarships/:ref/apply", cfg.Handler.Apply)
		v1.GET("/regions", cfg.Handler.Regions)
		v1.GET("/admin/analytics", cfg.Handler.Analytics)
	}

	return r
}

func readiness(checks map[string]Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"checks": results})
	}
}
