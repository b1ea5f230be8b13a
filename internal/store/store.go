// Package store provides the key/value document store the pipeline reads raw
// text from and writes extraction and canonical records to. Every driver
// offers single-key overwrite semantics and nothing more.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Get when no value exists for a key
var ErrNotFound = errors.New("store: key not found")

// Store is a key/value document store
type Store interface {
	// Get returns the value stored at key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value at key, replacing any previous value
	Put(ctx context.Context, key string, value []byte) error
	// Close releases connections held by the store
	Close() error
}

// Driver names accepted by Open
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMinIO    = "minio"
)

// Config selects and configures a driver
type Config struct {
	Driver      string      `json:"driver" yaml:"driver" validate:"omitempty,oneof=memory postgres redis minio"`
	DatabaseURL string      `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	Table       string      `json:"table,omitempty" yaml:"table,omitempty"`
	Redis       RedisConfig `json:"redis" yaml:"redis"`
	MinIO       MinIOConfig `json:"minio" yaml:"minio"`
}

// RedisConfig configures the redis driver
type RedisConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// MinIOConfig configures the minio driver
type MinIOConfig struct {
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AccessKeyID     string `json:"access_key_id,omitempty" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty"`
	Bucket          string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Region          string `json:"region,omitempty" yaml:"region,omitempty"`
	UseSSL          bool   `json:"use_ssl,omitempty" yaml:"use_ssl,omitempty"`
}

// Open connects the driver named in cfg. An empty driver selects memory.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	log := logger.With().Str("component", "store").Str("driver", cfg.Driver).Logger()

	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", DriverMemory:
		s = NewMemory()
	case DriverPostgres:
		s, err = OpenPostgres(ctx, cfg.DatabaseURL, cfg.Table)
	case DriverRedis:
		s, err = OpenRedis(ctx, cfg.Redis)
	case DriverMinIO:
		s, err = OpenMinIO(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		log.Error().Err(err).Msg("store.open.error")
		return nil, err
	}

	log.Info().Msg("store.open.ok")
	return s, nil
}
