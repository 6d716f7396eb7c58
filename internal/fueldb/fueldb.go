// Package fueldb stores the station snapshot, reviews, users and search
// location logs in SQLite or PostgreSQL.
package fueldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/patrickmn/go-cache"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultCacheExpirationMinutes = 10
	defaultCacheCleanupMinutes    = 30
	defaultCacheSize              = -1024 * 1024 // negative value for pages
	defaultPageSize               = 4096
	defaultPingRetries            = 5
	defaultPingInterval           = 2 * time.Second
	maxOpenConns                  = 10
	maxIdleConns                  = 5
	connMaxLifetime               = 30 * time.Minute
)

// timestamps are stored as fixed-width UTC text so they sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	ErrUnknownDriver   = errors.New("unknown database driver")
	ErrNoSnapshot      = errors.New("no station snapshot imported")
	ErrStationNotFound = errors.New("station not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailInUse      = errors.New("email already registered")
)

// Options selects the database backend. DSN is a file path for SQLite and
// a connection string for PostgreSQL.
type Options struct {
	Driver string
	DSN    string
}

type Storage struct {
	db     *sql.DB
	driver string
	cache  *cache.Cache
	log    *slog.Logger
	now    func() time.Time
}

// Open connects to the database and creates missing tables.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var (
		db  *sql.DB
		err error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		opts.Driver = DriverSQLite
		db, err = sql.Open("sqlite3", "file:"+opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		if err := configureSQLitePragmas(ctx, db, defaultCacheSize); err != nil {
			db.Close()
			return nil, err
		}
	case DriverPostgres:
		db, err = openPostgres(ctx, opts.DSN, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}

	s := &Storage{
		db:     db,
		driver: opts.Driver,
		cache:  cache.New(defaultCacheExpirationMinutes*time.Minute, defaultCacheCleanupMinutes*time.Minute),
		log:    logger,
		now:    time.Now,
	}

	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func openPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ping := func() error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("database not ready", "error", err)
			return err
		}
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(defaultPingInterval), defaultPingRetries),
		ctx,
	)
	if err := backoff.Retry(ping, policy); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	return db, nil
}

// Driver returns the backend in use.
func (s *Storage) Driver() string {
	return s.driver
}

func (s *Storage) builder() sq.StatementBuilderType {
	if s.driver == DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func (s *Storage) serial() string {
	if s.driver == DriverPostgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// Migrate creates the tables and indexes that do not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshot (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			center_lat DOUBLE PRECISION NOT NULL,
			center_lng DOUBLE PRECISION NOT NULL,
			imported_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS stations (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stations_position ON stations(position)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS reviews (
			id %s,
			station_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			rating INTEGER NOT NULL,
			comment TEXT,
			created_at TEXT NOT NULL
		)`, s.serial()),
		`CREATE INDEX IF NOT EXISTS idx_reviews_station ON reviews(station_id, created_at)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id %s,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`, s.serial()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS location_logs (
			id %s,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			distance DOUBLE PRECISION NOT NULL,
			search_count INTEGER NOT NULL DEFAULT 1,
			search_time TEXT NOT NULL,
			last_search TEXT NOT NULL
		)`, s.serial()),
		`CREATE INDEX IF NOT EXISTS idx_location_logs_coordinates ON location_logs (latitude, longitude)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error creating tables: %w", err)
		}
	}

	s.log.Debug("database schema created or verified", "driver", s.driver)
	return nil
}

func (s *Storage) Close() error {
	if s.cache != nil {
		s.cache.Flush()
	}
	return s.db.Close()
}

// Vacuum reclaims free pages. It is a no-op on PostgreSQL.
func (s *Storage) Vacuum(ctx context.Context) error {
	if s.driver != DriverSQLite {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA incremental_vacuum(1000)"); err != nil {
		return fmt.Errorf("error performing incremental vacuum: %w", err)
	}
	return nil
}

func (s *Storage) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTimestamp(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing timestamp %s: %w", v, err)
	}
	return t, nil
}

func configureSQLitePragmas(ctx context.Context, db *sql.DB, cacheSize int) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA auto_vacuum = INCREMENTAL",
		"PRAGMA temp_store = FILE",
		"PRAGMA mmap_size = 0",
		// 64MB
		"PRAGMA soft_heap_limit = 67108864",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA cache_size = %d", cacheSize),
		fmt.Sprintf("PRAGMA page_size = %d", defaultPageSize),
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("error setting %q: %w", p, err)
		}
	}
	return nil
}
