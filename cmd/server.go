package cmd

import (
	"sozblock/features/web"
	"sozblock/internal/config"
	"sozblock/internal/runner"
	"sozblock/internal/telemetry"

	"github.com/ory/graceful"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// WebServer is the CLI command that starts the web API server.
var WebServer = &cli.Command{
	Name:    "serve",
	Aliases: []string{"s"},
	Usage:   "Start web API server",
	Action:  serve,
}

func serve(c *cli.Context) (err error) {
	if err := config.InitConfig(); err != nil {
		log.Error().Err(err).Msg("Failed to load config")
		return err
	}
	cfg := config.GetConfig()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTelemetry(c.Context, cfg, "sozblock", Version)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize telemetry")
			return err
		}
		defer func() {
			if err := shutdown(c.Context); err != nil {
				log.Warn().Err(err).Msg("Telemetry shutdown reported errors")
			}
		}()
	}

	svcs, err := web.NewServices(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build services")
		return err
	}
	defer func() {
		if cerr := svcs.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Service shutdown reported errors")
		}
	}()

	app, err := web.NewApplication(cfg, svcs)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create web application")
		return err
	}

	maintenance, err := runner.NewMaintenance(cfg, svcs.Checkpoints, svcs.ProfileCache)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize maintenance runner")
		return err
	}
	maintenance.Start()
	defer func() {
		if serr := maintenance.Stop(c.Context); serr != nil {
			log.Warn().Err(serr).Msg("Maintenance runner shutdown reported errors")
		}
	}()

	if cfg.Maintenance.RunAtStartup {
		log.Info().Msg("Running maintenance jobs at startup")
		if err := maintenance.RunAllNow(c.Context); err != nil {
			log.Warn().Err(err).Msg("Startup maintenance reported errors")
		}
	}

	if cfg.Blocker.ResumeAtStartup {
		if runID, resumed, err := svcs.Blocker.ResumePending(c.Context); err != nil {
			log.Warn().Err(err).Msg("Failed to resume pending block run")
		} else if resumed {
			log.Info().Str("run_id", runID).Msg("Resumed pending block run")
		}
	}

	server := graceful.WithDefaults(app.Echo.Server)
	log.Info().Msgf("Starting server on %s", server.Addr)

	if err = graceful.Graceful(server.ListenAndServe, server.Shutdown); err != nil {
		log.Error().Err(err).Msg("Failed to start server")
		return err
	}

	log.Info().Msg("Server stopped gracefully.")
	return nil
}
