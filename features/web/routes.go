package web

import (
	"sozblock/features/web/handlers/benchmark"
	"sozblock/features/web/handlers/block"
	"sozblock/features/web/handlers/health"
	"sozblock/features/web/handlers/problem"
	"sozblock/features/web/handlers/sort"

	"github.com/labstack/echo/v4"
)

func (app *Application) ConfigureRoutes() error {
	e := app.Echo

	app.MapHome()

	if err := block.MapBlockRoutes(e, app.services.Blocker); err != nil {
		return err
	}

	if err := sort.MapSortRoutes(e, app.services.Sorter); err != nil {
		return err
	}

	if err := benchmark.MapBenchmarkRoutes(e, app.services.Sorter); err != nil {
		return err
	}

	problem.MapRoutes(e)
	health.MapHealth(e, *app.config)

	return nil
}

func (app *Application) MapHome() {
	e := app.Echo

	e.GET("/", func(c echo.Context) error {
		return c.String(200, "Welcome to SOZBLOCK Service")
	})
}
