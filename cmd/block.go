package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"sozblock/features/blocker"
	"sozblock/features/web"
	"sozblock/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// BlockCommand runs a blocking pass over an entry's favoriters and waits
// for it to finish. Interrupting the process keeps the checkpoint, so the
// same command with --resume picks up where it stopped.
var BlockCommand = &cli.Command{
	Name:  "block",
	Usage: "Block or mute every user who favorited an entry",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "entry-id",
			Aliases: []string{"e"},
			Usage:   "Entry whose favoriters get processed.",
		},
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "Action to apply: [mute, block]. Defaults to the configured mode.",
		},
		&cli.BoolFlag{
			Name:    "resume",
			Aliases: []string{"r"},
			Usage:   "Continue the interrupted run instead of starting a new one.",
		},
		&cli.BoolFlag{
			Name:    "json",
			Aliases: []string{"j"},
			Usage:   "Output the result in JSON format.",
		},
	},
	Action: runBlock,
}

func runBlock(c *cli.Context) error {
	svcs, err := web.NewServices(config.GetConfig())
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}
	defer svcs.Close()

	if mode := c.String("mode"); mode != "" {
		if err := svcs.Blocker.SetDefaultMode(mode); err != nil {
			return err
		}
	}

	entryID, err := resolveEntryID(c, svcs)
	if err != nil {
		return err
	}

	result, runErr := svcs.Blocker.Run(c.Context, entryID)
	if result == nil {
		return fmt.Errorf("run failed: %w", runErr)
	}

	if err := printRunResult(result, c.Bool("json")); err != nil {
		return err
	}
	return runErr
}

// resolveEntryID prefers the flag; with --resume it falls back to the entry
// recorded in the checkpoint.
func resolveEntryID(c *cli.Context, svcs *web.Services) (string, error) {
	entryID := c.String("entry-id")
	if entryID != "" {
		return entryID, nil
	}

	if !c.Bool("resume") {
		return "", errors.New("entry-id is required unless --resume is set")
	}

	state, found, err := svcs.Checkpoints.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if !found {
		return "", errors.New("no interrupted run to resume")
	}
	return state.EntryID, nil
}

func printRunResult(result *blocker.Result, asJSON bool) error {
	if asJSON {
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(jsonData))
		return nil
	}

	log.Info().
		Str("Run ID", result.RunID).
		Str("Entry", result.EntryID).
		Str("Action", string(result.Action)).
		Str("Status", string(result.Status)).
		Int("Succeeded", result.Succeeded).
		Int("Failed", result.Failed).
		Int("Skipped", result.Skipped).
		Dur("Duration", result.Duration).
		Msg("Block run result")

	return nil
}
