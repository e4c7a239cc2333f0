package collector

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the default registry in the Prometheus text
// exposition format, for callers running their own http.Server.
func (mc *MetricsCollector) MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ExposeWebMetrics mounts the scrape endpoint. Run and sort counters share
// the default registry with the echo middleware's request metrics, so one
// endpoint serves them all.
func (mc *MetricsCollector) ExposeWebMetrics(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(mc.MetricsHandler()))
}
