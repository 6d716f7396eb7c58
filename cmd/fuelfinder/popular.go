package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func popularCommand() *cli.Command {
	return &cli.Command{
		Name:  "popular",
		Usage: "Show the most searched areas",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of areas",
				Value: 10,
			},
			&cli.DurationFlag{
				Name:  "prune",
				Usage: "Delete searches older than this first (e.g. 720h)",
			},
		},
		Action: popularAction,
	}
}

func popularAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	storage, err := openStorage(c.Context, cfg, cliLogger(c))
	if err != nil {
		return err
	}
	defer storage.Close()

	if d := c.Duration("prune"); d > 0 {
		n, err := storage.PruneLocationLogs(c.Context, d)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d searches\n", n)
	}

	popular, err := storage.GetPopularLocationHeatmap(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(popular) == 0 {
		fmt.Println("No searches logged yet.")
		return nil
	}

	for i, p := range popular {
		fmt.Printf("%d. %.4f, %.4f  searches: %d  radius: %g km\n", i+1, p.Latitude, p.Longitude, p.SearchCount, p.Radius)
	}
	return nil
}
