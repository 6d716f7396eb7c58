package fueldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/patrickmn/go-cache"
	"github.com/rubiojr/fuelfinder/internal/geo"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

const snapshotCacheKey = "snapshot"

// Snapshot is the station set currently served, in import order.
type Snapshot struct {
	Name       string
	Center     geo.Point
	ImportedAt time.Time
	Stations   []api.Station
}

// ImportStations replaces the stored snapshot. The whole snapshot is
// rejected if any station is invalid.
func (s *Storage) ImportStations(ctx context.Context, ds *Dataset) error {
	if err := CheckStations(ds.Stations); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.log.Error("rollback error", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM stations"); err != nil {
		return fmt.Errorf("error deleting stations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot"); err != nil {
		return fmt.Errorf("error deleting snapshot: %w", err)
	}

	query, args, err := s.builder().Insert("snapshot").
		Columns("id", "name", "center_lat", "center_lng", "imported_at").
		Values(1, ds.Name, ds.Center.Lat, ds.Center.Lng, s.timestamp()).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error inserting snapshot: %w", err)
	}

	for i := range ds.Stations {
		st := &ds.Stations[i]
		data, err := sonic.Marshal(st)
		if err != nil {
			return fmt.Errorf("error marshaling station %s: %w", st.ID, err)
		}

		query, args, err := s.builder().Insert("stations").
			Columns("id", "position", "data").
			Values(st.ID, i, string(data)).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error inserting station %s: %w", st.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	s.cache.Delete(snapshotCacheKey)
	s.log.Debug("imported station snapshot", "dataset", ds.Name, "stations", len(ds.Stations))
	return nil
}

// HasSnapshot reports whether a snapshot was imported.
func (s *Storage) HasSnapshot(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshot").Scan(&count); err != nil {
		return false, fmt.Errorf("error checking snapshot: %w", err)
	}
	return count > 0, nil
}

// Snapshot returns the stored snapshot, cached until the next import.
func (s *Storage) Snapshot(ctx context.Context) (*Snapshot, error) {
	if cached, found := s.cache.Get(snapshotCacheKey); found {
		s.log.Debug("using cached data", "key", snapshotCacheKey)
		return cached.(*Snapshot), nil
	}

	var (
		snap       Snapshot
		importedAt string
	)
	query, args, err := s.builder().
		Select("name", "center_lat", "center_lng", "imported_at").
		From("snapshot").
		Where("id = ?", 1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&snap.Name, &snap.Center.Lat, &snap.Center.Lng, &importedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("error querying snapshot: %w", err)
	}
	if snap.ImportedAt, err = parseTimestamp(importedAt); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT data FROM stations ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("error querying stations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("error scanning station: %w", err)
		}
		var st api.Station
		if err := sonic.UnmarshalString(data, &st); err != nil {
			return nil, fmt.Errorf("error unmarshaling station: %w", err)
		}
		snap.Stations = append(snap.Stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	s.cache.Set(snapshotCacheKey, &snap, cache.DefaultExpiration)
	return &snap, nil
}

// Stations returns the stations of the current snapshot in import order.
func (s *Storage) Stations(ctx context.Context) ([]api.Station, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Stations, nil
}

// Station returns one station of the current snapshot.
func (s *Storage) Station(ctx context.Context, id string) (*api.Station, error) {
	stations, err := s.Stations(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stations {
		if stations[i].ID == id {
			st := stations[i]
			return &st, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStationNotFound, id)
}
