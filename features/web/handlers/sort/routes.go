package sort

import (
	"sozblock/features/sorting"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

func MapSortRoutes(e *echo.Echo, svc *sorting.Service) error {
	handler := NewSortHandler(svc)

	g := e.Group("/sort")
	g.POST("", handler.Sort)
	g.POST("/undo", handler.Undo)
	g.GET("/strategies", handler.Strategies)

	log.Info().
		Str("sort page", "/sort").
		Str("undo sort", "/sort/undo").
		Str("list strategies", "/sort/strategies").
		Msg("Sort routes mapped successfully.")

	return nil
}
