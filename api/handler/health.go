package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/spamsum/cache"
	"github.com/use-agent/spamsum/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// cc may be nil when the signature cache is disabled.
func Health(cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats models.CacheStats
		if cc != nil {
			st := cc.Stats()
			stats = models.CacheStats{
				Enabled:    true,
				Entries:    st.Entries,
				MaxEntries: st.MaxEntries,
				Hits:       st.Hits,
				Misses:     st.Misses,
			}
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:     "healthy",
			Uptime:     time.Since(startTime).Round(time.Second).String(),
			Version:    Version,
			CacheStats: stats,
		})
	}
}
