package health

import (
	"net/http"
	"time"

	"sozblock/internal/config"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var startedAt = time.Now()

// MapHealth sets up the healthcheck endpoint unless disabled in config.
func MapHealth(e *echo.Echo, cfg config.ServerConfig) {
	if !cfg.HealthCheck {
		log.Info().Msg("Health check disabled")
		return
	}
	g := e.Group("/health")
	g.GET("/status", StatusCheck)
	log.Info().Msg("Health check enabled at /health/status")
}

// StatusCheck reports liveness only. A stale session cookie does not show
// up here; it surfaces on the first real forum request.
func StatusCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(startedAt).Round(time.Second).String(),
	})
}
