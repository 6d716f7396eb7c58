package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or upgrade the database schema",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "vacuum",
				Usage: "Compact a SQLite database afterwards",
			},
		},
		Action: migrateAction,
	}
}

func migrateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	storage, err := openStorage(c.Context, cfg, cliLogger(c))
	if err != nil {
		return err
	}
	defer storage.Close()

	if c.Bool("vacuum") {
		if err := storage.Vacuum(c.Context); err != nil {
			return err
		}
	}

	fmt.Printf("Database %s (%s) is up to date\n", cfg.Database.DSN, storage.Driver())
	return nil
}
