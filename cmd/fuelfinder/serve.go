package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/rubiojr/fuelfinder/internal/auth"
	"github.com/rubiojr/fuelfinder/internal/config"
	"github.com/rubiojr/fuelfinder/internal/fueldb"
	"github.com/rubiojr/fuelfinder/internal/geocode"
	"github.com/rubiojr/fuelfinder/internal/mapview"
	"github.com/rubiojr/fuelfinder/internal/selection"
	"github.com/rubiojr/fuelfinder/internal/server"
	"github.com/rubiojr/fuelfinder/internal/session"
	"github.com/rubiojr/fuelfinder/pkg/api"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address",
			},
			&cli.StringFlag{
				Name:  "maps-backend",
				Usage: "Map backend (leaflet or google)",
			},
			&cli.StringFlag{
				Name:  "dataset",
				Usage: "Dataset seeded into an empty database",
			},
			&cli.DurationFlag{
				Name:  "reload-interval",
				Usage: "Reload the station snapshot from its dataset on this interval",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("maps-backend") {
		cfg.Maps.Backend = c.String("maps-backend")
	}
	if c.IsSet("dataset") {
		cfg.Stations.Dataset, cfg.Stations.File = c.String("dataset"), ""
	}
	if c.IsSet("reload-interval") {
		cfg.Stations.ReloadInterval = c.Duration("reload-interval")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Server.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Server.LogLevel, err)
	}
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := httplog.NewLogger("fuelfinder", httplog.Options{
		JSON:            cfg.Server.LogJSON,
		LogLevel:        level,
		Concise:         true,
		QuietDownPeriod: 10 * time.Second,
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := openStorage(ctx, cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	if err := seedStations(ctx, storage, cfg.Stations, logger.Logger); err != nil {
		return err
	}
	snap, err := storage.Snapshot(ctx)
	if err != nil {
		return err
	}

	if cfg.Locations.Retention > 0 {
		if _, err := storage.PruneLocationLogs(ctx, cfg.Locations.Retention); err != nil {
			logger.Warn("error pruning location logs", "error", err)
		}
	}

	sessions, err := newSessionStore(ctx, cfg.Sessions)
	if err != nil {
		return err
	}

	renderer, err := mapview.New(cfg.Maps.Backend, cfg.Maps.APIKey)
	if err != nil {
		logger.Warn("map disabled", "error", err)
	}

	hub := selection.NewHub()
	resolver := geocode.NewResolver(cfg.Geocode.Server, snap.Center, logger.Logger)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	srv := server.New(server.Deps{
		Store:      storage,
		Auth:       auth.NewService(storage, sessions, hasher, tokens, logger.Logger),
		Sessions:   sessions,
		Sync:       selection.NewSynchronizer(sessions, storage, hub, cfg.Stations.MaxDistanceKm, logger.Logger),
		Hub:        hub,
		Resolver:   resolver,
		Maps:       renderer,
		MapsConfig: api.MapsConfig{Backend: cfg.Maps.Backend, APIKey: cfg.Maps.APIKey},
		RateLimit:  cfg.Server.RateLimit,
		Logger:     logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Addr)
	})
	if cfg.Stations.ReloadInterval > 0 {
		g.Go(func() error {
			reloadStations(gctx, storage, resolver, cfg.Stations, logger.Logger)
			return nil
		})
	}

	return g.Wait()
}

// seedStations imports the configured dataset into an empty database.
func seedStations(ctx context.Context, storage *fueldb.Storage, cfg config.Stations, logger *slog.Logger) error {
	ok, err := storage.HasSnapshot(ctx)
	if err != nil || ok {
		return err
	}

	ds, err := loadDataset(cfg.Dataset, cfg.File)
	if err != nil {
		return err
	}
	if err := storage.ImportStations(ctx, ds); err != nil {
		return err
	}
	logger.Info("seeded stations", "dataset", ds.Name, "count", len(ds.Stations))
	return nil
}

// reloadStations re-imports the dataset on every tick until ctx is
// done. A failed reload keeps the previous snapshot.
// Selections of stations missing from the new snapshot are dropped on the
// next read of each session view.
func reloadStations(ctx context.Context, storage *fueldb.Storage, resolver *geocode.Resolver, cfg config.Stations, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.ReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		ds, err := loadDataset(cfg.Dataset, cfg.File)
		if err == nil {
			err = storage.ImportStations(ctx, ds)
		}
		if err != nil {
			logger.Error("Error reloading stations", "error", err)
			continue
		}
		resolver.SetFallback(ds.Center)
		logger.Info("Station reload completed successfully", "dataset", ds.Name, "count", len(ds.Stations))
	}
}

func newSessionStore(ctx context.Context, cfg config.Sessions) (session.Store, error) {
	if cfg.Backend != "redis" {
		return session.NewMemoryStore(cfg.TTL), nil
	}

	client, err := session.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	return session.NewRedisStore(client, cfg.Redis.Prefix, cfg.TTL), nil
}
