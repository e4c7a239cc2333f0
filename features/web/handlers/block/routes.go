package block

import (
	"sozblock/features/blocker"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

func MapBlockRoutes(e *echo.Echo, svc *blocker.Service) error {
	handler := NewBlockHandler(svc)

	g := e.Group("/block")
	g.POST("/start", handler.Start)
	g.POST("/cancel", handler.Cancel)
	g.GET("/active", handler.Active)
	g.GET("/status/:runID", handler.Status)
	g.GET("/runs", handler.Runs)
	g.GET("/mode", handler.Mode)
	g.POST("/mode", handler.SetMode)

	log.Info().
		Str("start run", "/block/start").
		Str("get run status", "/block/status/:runID").
		Str("list runs", "/block/runs").
		Msg("Block routes mapped successfully.")

	return nil
}
