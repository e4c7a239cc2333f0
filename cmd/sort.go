package cmd

import (
	"encoding/json"
	"fmt"

	"sozblock/features/entries"
	"sozblock/features/sorting"
	"sozblock/features/web"
	"sozblock/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// SortCommand fetches one topic page, reorders it with the chosen strategy
// and prints the resulting order.
var SortCommand = &cli.Command{
	Name:  "sort",
	Usage: "Sort a topic page's entries by a strategy",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "Topic page to sort. Empty means the forum's front page.",
		},
		&cli.StringFlag{
			Name:     "strategy",
			Aliases:  []string{"s"},
			Usage:    "Strategy name, see 'sort --list' for the catalogue.",
			Required: false,
		},
		&cli.StringFlag{
			Name:    "direction",
			Aliases: []string{"d"},
			Usage:   "Sort direction: [desc, asc]. Defaults to the strategy's own.",
		},
		&cli.BoolFlag{
			Name:    "list",
			Aliases: []string{"l"},
			Usage:   "List the registered strategies and exit.",
		},
		&cli.BoolFlag{
			Name:    "json",
			Aliases: []string{"j"},
			Usage:   "Output the sorted page in JSON format.",
		},
	},
	Action: runSort,
}

func runSort(c *cli.Context) error {
	// Listing the catalogue needs no services at all.
	if c.Bool("list") {
		return printStrategies(sorting.DefaultRegistry().List(), c.Bool("json"))
	}

	strategy := c.String("strategy")
	if strategy == "" {
		return fmt.Errorf("strategy is required, see 'sort --list'")
	}

	svcs, err := web.NewServices(config.GetConfig())
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}
	defer svcs.Close()

	direction, err := sorting.ParseDirection(c.String("direction"))
	if err != nil {
		return err
	}

	page, err := svcs.Sorter.Sort(c.Context, sorting.SortRequest{
		URL:       c.String("url"),
		Strategy:  strategy,
		Direction: direction,
	})
	if err != nil {
		return fmt.Errorf("failed to sort page: %w", err)
	}

	return printSortedPage(page, c.Bool("json"))
}

func printStrategies(strategies []*sorting.Strategy, asJSON bool) error {
	if asJSON {
		jsonData, err := json.MarshalIndent(strategies, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(jsonData))
		return nil
	}

	for _, strategy := range strategies {
		fmt.Printf("%-18s %s\n", strategy.Name, strategy.Tooltip)
	}
	return nil
}

func printSortedPage(page *entries.Page, asJSON bool) error {
	if asJSON {
		jsonData, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(jsonData))
		return nil
	}

	for i, entry := range page.Entries {
		fmt.Printf("%3d. #%s %s (favorites: %d)\n", i+1, entry.ID, entry.Author, entry.FavoriteCount)
	}

	log.Info().
		Str("URL", page.URL).
		Str("Title", page.Title).
		Int("Entries", len(page.Entries)).
		Msg("Page sorted")

	return nil
}
