// Package config loads server settings from DM_* environment variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendS3       Backend = "s3"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

type Config struct {
	HTTPAddr  string  `env:"DM_HTTP_ADDR" envDefault:":8080"`
	Backend   Backend `env:"DM_BACKEND" envDefault:"s3"`
	AuthToken string  `env:"DM_AUTH_TOKEN"` // empty disables the bearer gate
	NATSURL   string  `env:"DM_NATS_URL"`   // empty disables events

	S3Bucket   string `env:"DM_S3_BUCKET" envDefault:"dungeon-master-data"`
	S3Region   string `env:"DM_S3_REGION" envDefault:"us-west-2"`
	S3Endpoint string `env:"DM_S3_ENDPOINT"` // custom endpoint such as MinIO

	DatabaseURL string `env:"DM_DATABASE_URL"`

	ReferenceURL     string        `env:"DM_REFERENCE_URL" envDefault:"https://www.dnd5eapi.co/api/2014"`
	ReferenceTimeout time.Duration `env:"DM_REFERENCE_TIMEOUT" envDefault:"30s"`

	// Backup export; a zero interval disables it.
	SyncInterval   time.Duration `env:"DM_SYNC_INTERVAL" envDefault:"0s"`
	SyncS3Bucket   string        `env:"DM_SYNC_S3_BUCKET"`
	SyncS3Key      string        `env:"DM_SYNC_S3_KEY" envDefault:"backups/datastore.jsonl"`
	SyncS3Region   string        `env:"DM_SYNC_S3_REGION" envDefault:"us-west-2"`
	SyncS3Endpoint string        `env:"DM_SYNC_S3_ENDPOINT"`

	LogLevel  string `env:"DM_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"DM_LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("DM_S3_BUCKET is required for the s3 backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DM_DATABASE_URL is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("DM_BACKEND: unknown backend %q", c.Backend)
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("DM_SYNC_INTERVAL must not be negative")
	}
	if c.SyncInterval > 0 && c.SyncS3Bucket == "" {
		return fmt.Errorf("DM_SYNC_S3_BUCKET is required when DM_SYNC_INTERVAL is set")
	}
	if c.ReferenceTimeout <= 0 {
		return fmt.Errorf("DM_REFERENCE_TIMEOUT must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("DM_LOG_FORMAT: unknown format %q", c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("DM_LOG_LEVEL: %w", err)
	}
	return l, nil
}

// NewLogger builds the process logger described by the config.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
