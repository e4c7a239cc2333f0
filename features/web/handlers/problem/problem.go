package problem

import (
	"errors"
	"fmt"
	"net/http"

	"sozblock/features/web/handlers/response"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// customHTTPErrorHandler intercepts errors from Echo's pipeline so every
// failure leaves in the same envelope the handlers use.
func customHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := any(err.Error())

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = httpErr.Message
	}

	if code == http.StatusNotFound {
		if handleErr := handle404(c); handleErr != nil {
			log.Error().Err(handleErr).Msg("Failed to render 404 response")
		}
		return
	}

	log.Error().Err(err).Int("status", code).Str("path", c.Request().URL.Path).Msg("Request error")
	_ = response.Error(c, code, fmt.Sprintf("%v", message))
}

func MapRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = customHTTPErrorHandler

	e.GET("/404", handle404)
}

func handle404(c echo.Context) error {
	referer := c.QueryParam("referer")
	return response.NotFound(c, "The requested resource was not found", referer)
}
