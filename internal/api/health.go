package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/tasklane/internal/middleware"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

type healthResponse struct {
	Success bool              `json:"success"`
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
}

// Health handles GET /api/health. It is public so load balancers can
// probe it, and answers 503 while the database is unreachable.
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := db.Health(ctx); err != nil {
			middleware.Logger(c).Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, healthResponse{
				Success: false,
				Status:  "error",
				Checks:  map[string]string{"database": "down"},
			})
			return
		}
		c.JSON(http.StatusOK, healthResponse{
			Success: true,
			Status:  "ok",
			Checks:  map[string]string{"database": "up"},
		})
	}
}
