package fueldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rubiojr/fuelfinder/pkg/api"
)

var ErrInvalidReview = errors.New("invalid review")

// AddReview stores a review for a station of the current snapshot.
// User name and comment are trimmed; an empty comment is stored as NULL.
func (s *Storage) AddReview(ctx context.Context, stationID string, review api.NewReview) (*api.Review, error) {
	review.UserName = strings.TrimSpace(review.UserName)
	review.Comment = strings.TrimSpace(review.Comment)
	if err := validate.Struct(review); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReview, err)
	}

	if _, err := s.Station(ctx, stationID); err != nil {
		return nil, err
	}

	created := api.Review{
		StationID: stationID,
		UserName:  review.UserName,
		Rating:    review.Rating,
	}
	var comment sql.NullString
	if review.Comment != "" {
		comment = sql.NullString{String: review.Comment, Valid: true}
		created.Comment = &review.Comment
	}

	now := s.timestamp()
	var err error
	if created.CreatedAt, err = parseTimestamp(now); err != nil {
		return nil, err
	}

	query, args, err := s.builder().
		Insert("reviews").
		Columns("station_id", "user_name", "rating", "comment", "created_at").
		Values(stationID, review.UserName, review.Rating, comment, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&created.ID); err != nil {
		return nil, fmt.Errorf("error inserting review: %w", err)
	}

	return &created, nil
}

// ListReviews returns the reviews of a station, newest first.
func (s *Storage) ListReviews(ctx context.Context, stationID string) ([]api.Review, error) {
	query, args, err := s.builder().
		Select("id", "station_id", "user_name", "rating", "comment", "created_at").
		From("reviews").
		Where("station_id = ?", stationID).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying reviews: %w", err)
	}
	defer rows.Close()

	reviews := []api.Review{}
	for rows.Next() {
		var (
			r         api.Review
			comment   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.StationID, &r.UserName, &r.Rating, &comment, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning review: %w", err)
		}
		if comment.Valid {
			r.Comment = &comment.String
		}
		if r.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reviews, nil
}

// ReviewSummary counts the reviews of a station and averages their
// ratings. Average is nil when there are none.
func (s *Storage) ReviewSummary(ctx context.Context, stationID string) (*api.ReviewSummary, error) {
	query, args, err := s.builder().
		Select("COUNT(*)", "SUM(rating)").
		From("reviews").
		Where("station_id = ?", stationID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}

	var (
		count int
		sum   sql.NullInt64
	)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count, &sum); err != nil {
		return nil, fmt.Errorf("error summarizing reviews: %w", err)
	}

	summary := &api.ReviewSummary{StationID: stationID, Count: count}
	if count > 0 && sum.Valid {
		avg := float64(sum.Int64) / float64(count)
		summary.Average = &avg
	}
	return summary, nil
}
