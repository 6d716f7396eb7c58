package main

import (
	"fmt"
	"strings"

	"github.com/rubiojr/fuelfinder/pkg/api"
	"github.com/urfave/cli/v2"
)

func reviewsCommand() *cli.Command {
	stationFlag := &cli.StringFlag{
		Name:     "station",
		Aliases:  []string{"s"},
		Usage:    "Station id",
		Required: true,
	}

	return &cli.Command{
		Name:  "reviews",
		Usage: "Manage station reviews",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a review to a station",
				Flags: []cli.Flag{
					stationFlag,
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Reviewer name",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "rating",
						Usage:    "Rating from 1 to 5",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "comment",
						Usage: "Optional comment",
					},
				},
				Action: reviewsAddAction,
			},
			{
				Name:   "list",
				Usage:  "List the reviews of a station",
				Flags:  []cli.Flag{stationFlag},
				Action: reviewsListAction,
			},
		},
	}
}

func reviewsAddAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	storage, err := openStorage(c.Context, cfg, cliLogger(c))
	if err != nil {
		return err
	}
	defer storage.Close()

	review, err := storage.AddReview(c.Context, c.String("station"), api.NewReview{
		UserName: c.String("name"),
		Rating:   c.Int("rating"),
		Comment:  c.String("comment"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added review %d for station %s\n", review.ID, review.StationID)
	return nil
}

func reviewsListAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	storage, err := openStorage(c.Context, cfg, cliLogger(c))
	if err != nil {
		return err
	}
	defer storage.Close()

	id := c.String("station")
	if _, err := storage.Station(c.Context, id); err != nil {
		return err
	}
	reviews, err := storage.ListReviews(c.Context, id)
	if err != nil {
		return err
	}
	summary, err := storage.ReviewSummary(c.Context, id)
	if err != nil {
		return err
	}

	if summary.Average == nil {
		fmt.Println("No reviews yet.")
		return nil
	}
	fmt.Printf("%d reviews, average %.1f\n\n", summary.Count, *summary.Average)
	for _, r := range reviews {
		fmt.Printf("%s  %s  %s\n", r.CreatedAt.Format("2006-01-02 15:04"), strings.Repeat("★", r.Rating), r.UserName)
		if r.Comment != nil {
			fmt.Printf("  %s\n", *r.Comment)
		}
	}
	return nil
}
