package fueldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUser registers a user. Emails are compared case-insensitively.
func (s *Storage) CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	now := s.timestamp()
	u := &User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
	}
	var err error
	if u.CreatedAt, err = parseTimestamp(now); err != nil {
		return nil, err
	}

	query, args, err := s.builder().
		Insert("users").
		Columns("name", "email", "password_hash", "created_at").
		Values(u.Name, u.Email, u.PasswordHash, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID); err != nil {
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	return u, nil
}

// UserByEmail looks a user up by email.
func (s *Storage) UserByEmail(ctx context.Context, email string) (*User, error) {
	query, args, err := s.builder().
		Select("id", "name", "email", "password_hash", "created_at").
		From("users").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}

	var (
		u         User
		createdAt string
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	if u.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}

	return &u, nil
}
