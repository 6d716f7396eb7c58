package main

import (
	"fmt"
	"strings"

	"github.com/rubiojr/fuelfinder/internal/fueldb"
	"github.com/urfave/cli/v2"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Replace the station snapshot with a dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dataset",
				Usage: "Embedded dataset (" + strings.Join(fueldb.DatasetNames(), ", ") + ")",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Dataset YAML file",
			},
		},
		Action: importAction,
	}
}

func importAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	name, file := cfg.Stations.Dataset, cfg.Stations.File
	if c.IsSet("dataset") {
		name, file = c.String("dataset"), ""
	}
	if c.IsSet("file") {
		file = c.String("file")
	}

	ds, err := loadDataset(name, file)
	if err != nil {
		return err
	}

	storage, err := openStorage(c.Context, cfg, cliLogger(c))
	if err != nil {
		return err
	}
	defer storage.Close()

	if err := storage.ImportStations(c.Context, ds); err != nil {
		return err
	}

	fmt.Printf("Imported %d stations from %s\n", len(ds.Stations), ds.Name)
	return nil
}
