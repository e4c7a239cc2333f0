package main

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sozblock/cmd"
	"sozblock/internal/config"
	"sozblock/internal/logger"

	stdlog "log"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		stdlog.Fatalf("error running the app: %v", err)
	}
}

func app() *cli.App {
	helpName := color.YellowString(filepath.Base(os.Args[0]))
	year := strconv.Itoa(time.Now().UTC().Year())

	app := &cli.App{
		Usage:       "Forum moderation toolkit",
		HelpName:    helpName,
		Version:     cmd.Version,
		Compiled:    time.Now().UTC(),
		Copyright:   "© " + year + " SOZBLOCK",
		Description: "Batch-blocks the users who favorited an entry and re-sorts topic pages by configurable strategies.",
		Commands:    cmd.Commands,
		Before:      before,
	}

	app.Suggest = true
	return app
}

func before(c *cli.Context) error {
	stdlog.Print("Initializing application configuration")
	if err := config.InitConfig(); err != nil {
		stdlog.Fatalf("error loading config: %v", err)
		return err
	}

	logger.InitializeLogger()

	return nil
}
