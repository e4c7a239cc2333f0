package cmd

import (
	"github.com/urfave/cli/v2"
)

// Version is reported by the CLI and attached to telemetry resources.
const Version = "v0.1.0"

var Commands = []*cli.Command{
	WebServer,
	BlockCommand,
	SortCommand,
	RunsCommand,
}
