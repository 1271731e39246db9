// Package config loads the defaultdesk configuration from defaults, an
// optional YAML file, a .env file and DEFAULTDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DEFAULTDESK_SERVER_PORT.
const EnvPrefix = "DEFAULTDESK"

// Options control where configuration is read from.
type Options struct {
	// ConfigFile is an explicit YAML file. When empty, defaultdesk.yaml is
	// looked up in the working directory and $HOME/.config/defaultdesk.
	ConfigFile string

	// EnvFile is loaded into the process environment if it exists.
	// Variables already set are not overridden.
	EnvFile string
}

// Load reads the configuration into v and decodes it. Precedence, highest
// first: flags bound to v, environment, config file, defaults.
func Load(v *viper.Viper, opts Options) (*domain.Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", opts.EnvFile, err)
		}
	}

	setDefaults(v, domain.DefaultConfig())

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("defaultdesk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "defaultdesk"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	cfg := &domain.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func Validate(cfg *domain.Config) error {
	var errs []error

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", cfg.Server.Port))
	}
	if cfg.Namespace == "" {
		errs = append(errs, errors.New("namespace is required"))
	}
	switch cfg.Repository.Driver {
	case "sqlite", "postgres", "none":
	default:
		errs = append(errs, fmt.Errorf("unsupported repository.driver %q", cfg.Repository.Driver))
	}
	switch cfg.Cache.Type {
	case "memory", "redis", "none":
	default:
		errs = append(errs, fmt.Errorf("unsupported cache.type %q", cfg.Cache.Type))
	}
	switch cfg.EventBus.Type {
	case "channel", "nats":
	default:
		errs = append(errs, fmt.Errorf("unsupported eventbus.type %q", cfg.EventBus.Type))
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unsupported logging.format %q", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *domain.Config) {
	v.SetDefault("namespace", d.Namespace)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("repository.driver", d.Repository.Driver)
	v.SetDefault("repository.sqlite_path", d.Repository.SQLitePath)
	v.SetDefault("repository.postgres_host", d.Repository.PostgresHost)
	v.SetDefault("repository.postgres_port", d.Repository.PostgresPort)
	v.SetDefault("repository.postgres_user", d.Repository.PostgresUser)
	v.SetDefault("repository.postgres_password", d.Repository.PostgresPassword)
	v.SetDefault("repository.postgres_db", d.Repository.PostgresDB)
	v.SetDefault("repository.postgres_sslmode", d.Repository.PostgresSSLMode)
	v.SetDefault("repository.max_open_conns", d.Repository.MaxOpenConns)
	v.SetDefault("repository.max_idle_conns", d.Repository.MaxIdleConns)
	v.SetDefault("repository.conn_max_lifetime", d.Repository.ConnMaxLifetime)

	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.local_max_size", d.Cache.LocalMaxSize)
	v.SetDefault("cache.local_ttl", d.Cache.LocalTTL)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.redis_password", d.Cache.RedisPassword)
	v.SetDefault("cache.redis_db", d.Cache.RedisDB)
	v.SetDefault("cache.enable_two_phase", d.Cache.EnableTwoPhase)

	v.SetDefault("eventbus.type", d.EventBus.Type)
	v.SetDefault("eventbus.channel_buffer_size", d.EventBus.ChannelBufferSize)
	v.SetDefault("eventbus.nats_url", d.EventBus.NATSUrl)
	v.SetDefault("eventbus.nats_token", d.EventBus.NATSToken)
	v.SetDefault("eventbus.nats_max_reconnects", d.EventBus.NATSMaxReconnects)
	v.SetDefault("eventbus.nats_reconnect_wait", d.EventBus.NATSReconnectWait)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}
