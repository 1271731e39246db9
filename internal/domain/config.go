package domain

// Config holds the complete defaultdesk configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`

	// Namespace scopes stored settings and bus messages.
	Namespace string `mapstructure:"namespace"`

	// Component configurations
	Repository RepositoryConfig `mapstructure:"repository"`
	Cache      CacheConfig      `mapstructure:"cache"`
	EventBus   EventBusConfig   `mapstructure:"eventbus"`

	// Observability
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// DefaultNamespace is used when no namespace is configured.
const DefaultNamespace = "local"

// DefaultConfig returns a single-node configuration: SQLite settings,
// in-memory cache and channel bus.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Namespace: DefaultNamespace,
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./defaultdesk.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 1000,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "defaultdesk",
		},
	}
}
