package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rubiojr/fuelfinder/internal/config"
	"github.com/rubiojr/fuelfinder/internal/fueldb"
	"github.com/rubiojr/fuelfinder/internal/geocode"
	"github.com/rubiojr/fuelfinder/internal/i18n"
	"github.com/rubiojr/fuelfinder/internal/mapview"
	"github.com/rubiojr/fuelfinder/internal/ranking"
	"github.com/rubiojr/fuelfinder/pkg/api"
	"github.com/urfave/cli/v2"
)

const defaultRadiusKm = 5.0

// searchFlags select and order stations the way the list view does.
func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "location",
			Usage: "Place name to search around",
		},
		&cli.Float64Flag{
			Name:  "lat",
			Usage: "Latitude of the location",
		},
		&cli.Float64Flag{
			Name:    "lng",
			Aliases: []string{"long"},
			Usage:   "Longitude of the location",
		},
		&cli.Float64Flag{
			Name:    "radius",
			Aliases: []string{"r"},
			Usage:   "Search radius in kilometers (0 for no limit)",
			Value:   defaultRadiusKm,
		},
		&cli.StringFlag{
			Name:  "fuel",
			Usage: "Fuel type to filter by",
			Value: ranking.FilterAll,
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Sort order (distance, price or rating)",
			Value: string(ranking.SortDistance),
		},
		&cli.StringFlag{
			Name:  "lang",
			Usage: "Language (uz, en or ru)",
			Value: i18n.DefaultLanguage,
		},
	}
}

type searchResult struct {
	ranked   []api.RankedStation
	resolved *geocode.Result
}

// searchStations resolves the reference point from the flags and ranks
// the snapshot. Without location or coordinates, the snapshot center is
// used.
func searchStations(ctx context.Context, c *cli.Context, cfg *config.Config, storage *fueldb.Storage, logger *slog.Logger) (*searchResult, error) {
	sortKey, err := ranking.ParseSortKey(c.String("sort"))
	if err != nil {
		return nil, err
	}

	snap, err := storage.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	resolver := geocode.NewResolver(cfg.Geocode.Server, snap.Center, logger)
	res, err := resolver.Resolve(ctx, geocode.Query{
		Lat:       c.Float64("lat"),
		Lng:       c.Float64("lng"),
		HasCoords: c.IsSet("lat") && c.IsSet("lng"),
		Location:  c.String("location"),
	})
	if err != nil {
		return nil, err
	}

	radius := c.Float64("radius")
	if !res.Fallback {
		if err := storage.LogSearchLocation(ctx, res.Point.Lat, res.Point.Lng, radius); err != nil {
			logger.Warn("error logging search location", "error", err)
		}
	}

	ranked := ranking.Rank(snap.Stations, ranking.Options{
		FuelType:      c.String("fuel"),
		Sort:          sortKey,
		Reference:     &res.Point,
		MaxDistanceKm: radius,
	})
	return &searchResult{ranked: ranked, resolved: res}, nil
}

func listNearbyCommand() *cli.Command {
	return &cli.Command{
		Name:   "list-nearby",
		Usage:  "List nearby fuel stations",
		Flags:  searchFlags(),
		Action: listNearbyAction,
	}
}

func listNearbyAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := cliLogger(c)

	storage, err := openStorage(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	result, err := searchStations(c.Context, c, cfg, storage, logger)
	if err != nil {
		return err
	}

	lang := i18n.Normalize(c.String("lang"))
	tr := i18n.GetTranslations(lang)

	if result.resolved.Name != "" {
		fmt.Println("Location found:", result.resolved.Name)
	}
	if result.resolved.Fallback {
		fmt.Println(tr.LocationNotSupported)
	}
	if len(result.ranked) == 0 {
		fmt.Println(tr.NoStations)
		return nil
	}

	best, _ := ranking.Best(result.ranked)
	fmt.Printf("%s: %s\n\n", tr.BestStation, best.Name.Get(lang))

	for i, st := range result.ranked {
		fmt.Printf("%d. %s", i+1, st.Name.Get(lang))
		if addr := st.Address.Get(lang); addr != "" {
			fmt.Printf(" (%s)", addr)
		}
		fmt.Println()
		if st.DistanceKm != nil {
			fmt.Printf("   %s\n", i18n.FormatDistance(*st.DistanceKm, lang))
		}
		if st.Rating != nil {
			fmt.Printf("   %s: %.1f\n", tr.Rating, *st.Rating)
		}
		if lines := mapview.PriceLines(&st.Station, lang); len(lines) > 0 {
			fmt.Printf("   %s\n", strings.Join(lines, ", "))
		}
		fmt.Printf("   %s: %s\n\n", tr.Directions, mapview.DirectionsURL(&st.Station))
	}

	fmt.Printf("Found %d stations\n", len(result.ranked))
	return nil
}
