package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/spamsum/api/handler"
	"github.com/use-agent/spamsum/api/middleware"
	"github.com/use-agent/spamsum/config"
	"github.com/use-agent/spamsum/spamsum"
	"github.com/use-agent/spamsum/webhook"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(cfg *config.Config, h *handler.Hasher, cmp *spamsum.Comparator, batches *handler.BatchStore, notifier *webhook.Notifier, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health: no auth required.
	v1.GET("/health", handler.Health(h.Cache, startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/hash", handler.Hash(h))
	protected.POST("/compare", handler.Compare(cmp))
	protected.POST("/match", handler.Match(cmp))

	// Batch
	protected.POST("/batch/hash", handler.PostBatch(h, batches, notifier, cfg.Batch.MaxDocuments))
	protected.GET("/batch/:id", handler.GetBatch(batches))

	return r
}
