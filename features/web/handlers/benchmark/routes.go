package benchmark

import (
	"sozblock/features/sorting"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

func MapBenchmarkRoutes(e *echo.Echo, svc *sorting.Service) error {
	handler := NewBenchmarkHandler(svc)

	g := e.Group("/benchmark")
	g.POST("/sort", handler.Compare)

	log.Info().
		Str("compare strategies", "/benchmark/sort").
		Msg("Benchmark routes mapped successfully.")

	return nil
}
