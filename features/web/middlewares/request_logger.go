package middlewares

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Scrape and liveness probes would drown out the real traffic.
var quietPaths = map[string]struct{}{
	"/metrics":       {},
	"/otel-metrics":  {},
	"/health/status": {},
}

// RequestLogger logs one line per request, leveled by outcome.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if _, quiet := quietPaths[req.URL.Path]; quiet {
				return next(c)
			}

			// Reuse the id minted by the RequestID middleware so logs and
			// response headers tell one story.
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = xid.New().String()
				c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			}
			c.Set("request_id", requestID)

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			msg := "Request completed"
			if err != nil {
				msg = "Request failed"
			}

			event := log.WithLevel(levelFor(status, err)).
				Str("request_id", requestID).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("query", req.URL.RawQuery).
				Str("remote_ip", c.RealIP()).
				Str("user_agent", req.UserAgent()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("bytes_out", formatByteCount(c.Response().Size))
			if err != nil {
				event = event.Err(err)
			}
			event.Msg(msg)

			return err
		}
	}
}

func levelFor(status int, err error) zerolog.Level {
	switch {
	case err != nil || status >= 500:
		return zerolog.ErrorLevel
	case status >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.DebugLevel
	}
}

func formatByteCount(bytes int64) string {
	if bytes == 0 {
		return "-"
	}
	return humanizeBytes(bytes)
}

func humanizeBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return strconv.FormatInt(bytes, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatInt(bytes/div, 10) + " " + string("KMGTPE"[exp]) + "B"
}
