package main

import (
	"errors"
	"fmt"

	"github.com/rubiojr/fuelfinder/internal/fueldb"
	"github.com/urfave/cli/v2"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate a dataset and report the stored snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dataset",
				Usage: "Embedded dataset to validate",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Dataset YAML file to validate",
			},
		},
		Action: checkAction,
	}
}

func checkAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if c.IsSet("dataset") || c.IsSet("file") {
		ds, err := loadDataset(c.String("dataset"), c.String("file"))
		if err != nil {
			return err
		}
		fmt.Printf("Dataset %s: %d valid stations\n", ds.Name, len(ds.Stations))
	}

	storage, err := openStorage(c.Context, cfg, cliLogger(c))
	if err != nil {
		return err
	}
	defer storage.Close()

	snap, err := storage.Snapshot(c.Context)
	if errors.Is(err, fueldb.ErrNoSnapshot) {
		fmt.Println("No station snapshot imported.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Snapshot %s: %d stations, imported %s\n", snap.Name, len(snap.Stations), snap.ImportedAt.Format("2006-01-02 15:04:05"))
	if err := fueldb.CheckStations(snap.Stations); err != nil {
		fmt.Println("Snapshot problems:")
		fmt.Println(err)
		return errors.New("snapshot is invalid")
	}
	fmt.Println("No problems found.")
	return nil
}
