package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/fuelfinder/internal/i18n"
	"github.com/rubiojr/fuelfinder/internal/mapview"
	"github.com/urfave/cli/v2"
)

func exportGPXCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-gpx",
		Usage: "Export ranked nearby stations as GPX waypoints",
		Flags: append(searchFlags(), &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file (stdout when empty)",
		}),
		Action: exportGPXAction,
	}
}

func exportGPXAction(c *cli.Context) error {
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

	var w io.Writer = os.Stdout
	if out := c.String("output"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("error creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	return mapview.WriteGPX(w, result.ranked, i18n.Normalize(c.String("lang")))
}
