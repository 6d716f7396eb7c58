// Package config loads fuelfinder settings from defaults, an optional
// YAML file and FUELFINDER_ environment variables, in increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "FUELFINDER"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	Sessions  Sessions  `mapstructure:"sessions"`
	Auth      Auth      `mapstructure:"auth"`
	Maps      Maps      `mapstructure:"maps"`
	Stations  Stations  `mapstructure:"stations"`
	Geocode   Geocode   `mapstructure:"geocode"`
	Locations Locations `mapstructure:"locations"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
	// RateLimit is the number of requests per minute allowed per IP.
	RateLimit int    `mapstructure:"rate_limit"`
	LogLevel  string `mapstructure:"log_level"`
	LogJSON   bool   `mapstructure:"log_json"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type Sessions struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   Redis         `mapstructure:"redis"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type Auth struct {
	Secret     string        `mapstructure:"secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type Maps struct {
	Backend string `mapstructure:"backend"`
	APIKey  string `mapstructure:"api_key"`
}

type Stations struct {
	Dataset string `mapstructure:"dataset"`
	// File overrides Dataset with a YAML file on disk.
	File           string        `mapstructure:"file"`
	ReloadInterval time.Duration `mapstructure:"reload_interval"`
	MaxDistanceKm  float64       `mapstructure:"max_distance_km"`
}

type Geocode struct {
	Server string `mapstructure:"server"`
}

type Locations struct {
	// Retention prunes search logs older than this on startup. Zero keeps
	// them forever.
	Retention time.Duration `mapstructure:"retention"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_json", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "fuelfinder.db")

	v.SetDefault("sessions.backend", "memory")
	v.SetDefault("sessions.ttl", 24*time.Hour)
	v.SetDefault("sessions.redis.addr", "localhost:6379")
	v.SetDefault("sessions.redis.password", "")
	v.SetDefault("sessions.redis.db", 0)
	v.SetDefault("sessions.redis.prefix", "fuelfinder:session:")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 0)

	v.SetDefault("maps.backend", "leaflet")
	v.SetDefault("maps.api_key", "")

	v.SetDefault("stations.dataset", "tashkent")
	v.SetDefault("stations.file", "")
	v.SetDefault("stations.reload_interval", time.Duration(0))
	v.SetDefault("stations.max_distance_km", 0.0)

	v.SetDefault("geocode.server", "https://nominatim.openstreetmap.org/")

	v.SetDefault("locations.retention", time.Duration(0))
}

// Load reads the configuration. path may be empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings the server needs.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.Secret) == "" {
		errs = append(errs, errors.New("auth.secret is required"))
	}
	switch c.Sessions.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown sessions.backend %q", c.Sessions.Backend))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if c.Stations.MaxDistanceKm < 0 {
		errs = append(errs, errors.New("stations.max_distance_km must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
