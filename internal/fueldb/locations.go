package fueldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rubiojr/fuelfinder/internal/geo"
)

const (
	decimalBase                        = 10
	defaultReducePrecisionDecimalPlace = 2
	clusterDistanceKm                  = 1.0
)

// LocationLog represents a row in the location_logs table
type LocationLog struct {
	ID          int64
	Latitude    float64
	Longitude   float64
	Distance    float64
	SearchCount int64
	SearchTime  time.Time
	LastSearch  time.Time
}

// PopularLocation represents a clustered area of searches with its popularity
type PopularLocation struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
	SearchCount int64   `json:"weight"` // Used as weight in heatmaps
	Radius      float64 `json:"radius"` // Estimated radius of the cluster in km
}

// LogSearchLocation records a station search around a reference point.
// Coordinates are rounded to two decimals, so repeated searches from the
// same neighbourhood bump one row.
func (s *Storage) LogSearchLocation(ctx context.Context, latitude, longitude, distance float64) error {
	lat, lng := reduceLocationPrecision(latitude, longitude, defaultReducePrecisionDecimalPlace)
	now := s.timestamp()

	query, args, err := s.builder().
		Select("id").
		From("location_logs").
		Where("latitude = ? AND longitude = ?", lat, lng).
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building query: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		query, args, err = s.builder().
			Insert("location_logs").
			Columns("latitude", "longitude", "distance", "search_time", "last_search").
			Values(lat, lng, distance, now, now).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building query: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error logging search location: %w", err)
		}
	case err != nil:
		return fmt.Errorf("error checking for existing location: %w", err)
	default:
		query, args, err = s.builder().
			Update("location_logs").
			Set("search_count", sq.Expr("search_count + 1")).
			Set("last_search", now).
			Set("distance", distance).
			Where("id = ?", id).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building query: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error updating search location: %w", err)
		}
	}

	return nil
}

// GetLocationLogs retrieves location logs, most searched first.
// limit: maximum number of rows to return (0 for all)
func (s *Storage) GetLocationLogs(ctx context.Context, limit int) ([]LocationLog, error) {
	b := s.builder().
		Select("id", "latitude", "longitude", "distance", "search_count", "search_time", "last_search").
		From("location_logs").
		OrderBy("search_count DESC", "id ASC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving location logs: %w", err)
	}
	defer rows.Close()

	var logs []LocationLog
	for rows.Next() {
		var (
			entry                  LocationLog
			searchTime, lastSearch string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.Latitude,
			&entry.Longitude,
			&entry.Distance,
			&entry.SearchCount,
			&searchTime,
			&lastSearch,
		); err != nil {
			return nil, fmt.Errorf("error scanning location log: %w", err)
		}
		if entry.SearchTime, err = parseTimestamp(searchTime); err != nil {
			return nil, err
		}
		if entry.LastSearch, err = parseTimestamp(lastSearch); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}

	return logs, nil
}

// GetPopularLocationHeatmap returns data suitable for generating a heatmap
// of popular search locations, with searches less than a kilometre apart
// clustered together.
func (s *Storage) GetPopularLocationHeatmap(ctx context.Context, limit int) ([]PopularLocation, error) {
	logs, err := s.GetLocationLogs(ctx, 0)
	if err != nil {
		return nil, err
	}

	processed := make(map[int64]bool)
	var popular []PopularLocation

	for i, entry := range logs {
		if processed[entry.ID] {
			continue
		}
		processed[entry.ID] = true

		cluster := PopularLocation{
			Latitude:    entry.Latitude,
			Longitude:   entry.Longitude,
			SearchCount: entry.SearchCount,
			Radius:      entry.Distance,
		}

		for j, other := range logs {
			if i == j || processed[other.ID] {
				continue
			}

			d := geo.Distance(entry.Latitude, entry.Longitude, other.Latitude, other.Longitude)
			if d > clusterDistanceKm {
				continue
			}
			processed[other.ID] = true

			// weighted average of the cluster center
			total := cluster.SearchCount + other.SearchCount
			cluster.Latitude = (cluster.Latitude*float64(cluster.SearchCount) +
				other.Latitude*float64(other.SearchCount)) / float64(total)
			cluster.Longitude = (cluster.Longitude*float64(cluster.SearchCount) +
				other.Longitude*float64(other.SearchCount)) / float64(total)

			cluster.SearchCount = total
			if other.Distance > cluster.Radius {
				cluster.Radius = other.Distance
			}
		}

		popular = append(popular, cluster)
	}

	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].SearchCount > popular[j].SearchCount
	})

	if limit > 0 && len(popular) > limit {
		popular = popular[:limit]
	}
	return popular, nil
}

// PruneLocationLogs deletes logs not searched for since olderThan ago.
func (s *Storage) PruneLocationLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan).UTC().Format(timeLayout)

	query, args, err := s.builder().Delete("location_logs").Where("last_search < ?", cutoff).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting location logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error counting deleted rows: %w", err)
	}

	s.log.Info("pruned location logs", "deleted_count", n)
	return n, nil
}

func reduceLocationPrecision(lat, lng float64, decimalPlaces int) (roundedLat, roundedLng float64) {
	factor := math.Pow(decimalBase, float64(decimalPlaces))
	roundedLat = math.Round(lat*factor) / factor
	roundedLng = math.Round(lng*factor) / factor
	return
}
