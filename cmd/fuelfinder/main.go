package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rubiojr/fuelfinder/internal/config"
	"github.com/rubiojr/fuelfinder/internal/fueldb"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "fuelfinder",
		Usage: "Find the nearest fuel stations and manage the station database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file (YAML)",
				EnvVars: []string{"FUELFINDER_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "db-driver",
				Usage: "Database driver (sqlite or postgres)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Database file or Postgres DSN",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log debug output to stderr",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			importCommand(),
			migrateCommand(),
			checkCommand(),
			listNearbyCommand(),
			reviewsCommand(),
			exportGPXCommand(),
			popularCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db-driver") {
		cfg.Database.Driver = c.String("db-driver")
	}
	if c.IsSet("db") {
		cfg.Database.DSN = c.String("db")
	}
	return cfg, nil
}

func cliLogger(c *cli.Context) *slog.Logger {
	if c.Bool("debug") {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*fueldb.Storage, error) {
	storage, err := fueldb.Open(ctx, fueldb.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage: %w", err)
	}
	return storage, nil
}

// loadDataset loads file when given, the embedded dataset name
// otherwise.
func loadDataset(name, file string) (*fueldb.Dataset, error) {
	if file != "" {
		return fueldb.LoadDatasetFile(file)
	}
	return fueldb.LoadDataset(name)
}
