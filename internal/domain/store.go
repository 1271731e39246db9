package domain

import (
	"context"
	"time"
)

// Store is a namespaced key-value store: the service-side "local storage".
type Store interface {
	// Get returns nil, nil if the key is not present.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory", "redis" or "none"
	Type string `mapstructure:"type"`

	// Local LRU cache settings
	LocalMaxSize int           `mapstructure:"local_max_size"`
	LocalTTL     time.Duration `mapstructure:"local_ttl"`

	// Redis settings
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// If true, check local first, then Redis
	EnableTwoPhase bool `mapstructure:"enable_two_phase"`
}

// RepositoryConfig holds configuration for the settings repository.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite", "postgres" or "none"
	Driver string `mapstructure:"driver"`

	SQLitePath string `mapstructure:"sqlite_path"`

	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDB       string `mapstructure:"postgres_db"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`

	// Connection pool settings
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}
