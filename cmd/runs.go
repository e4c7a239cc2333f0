package cmd

import (
	"encoding/json"
	"fmt"

	"sozblock/features/web"
	"sozblock/internal/config"

	"github.com/urfave/cli/v2"
)

// RunsCommand lists recent blocking runs from the run history, newest first.
var RunsCommand = &cli.Command{
	Name:  "runs",
	Usage: "List recent blocking runs",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Maximum number of runs to show.",
			Value:   20,
		},
		&cli.BoolFlag{
			Name:    "json",
			Aliases: []string{"j"},
			Usage:   "Output the history in JSON format.",
		},
	},
	Action: listRuns,
}

func listRuns(c *cli.Context) error {
	svcs, err := web.NewServices(config.GetConfig())
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}
	defer svcs.Close()

	limit := c.Int("limit")
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	runs, err := svcs.Blocker.History(c.Context, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if c.Bool("json") {
		jsonData, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(jsonData))
		return nil
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		finished := "running"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%s  entry=%s action=%-5s status=%-9s ok=%d fail=%d skip=%d finished=%s\n",
			run.ID, run.EntryID, run.Action, run.Status,
			run.Succeeded, run.Failed, run.Skipped, finished)
	}
	return nil
}
