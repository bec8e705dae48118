package config

import "time"

// Data store selector values
const (
	// DataStoreSQLite selects the embedded file-backed store
	DataStoreSQLite = "sqlite"
	// DataStoreRedis selects the Redis cache service
	DataStoreRedis = "redis"
	// DataStoreMemory selects the process-local store
	DataStoreMemory = "memory"
)

// SupportedDataStores lists the accepted data_store.type values.
var SupportedDataStores = []string{DataStoreMemory, DataStoreRedis, DataStoreSQLite}

// Config is the root configuration structure for the storage service
type Config struct {
	Service       ServiceConfig       `mapstructure:"service"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	DataStore     DataStoreConfig     `mapstructure:"data_store"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServiceConfig configures service identity metadata.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// HTTPConfig configures the public API server
type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxRequestSize  int64         `mapstructure:"max_request_size"`
}

// DataStoreConfig selects and configures the key-value backend.
type DataStoreConfig struct {
	// Type is the backend selector: sqlite, redis or memory.
	Type string `mapstructure:"type"`
	// Path is the sqlite database file.
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	Redis       RedisConfig   `mapstructure:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	URL              string        `mapstructure:"url"`
	MaxConns         int           `mapstructure:"max_conns"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	Prefix           string        `mapstructure:"prefix"`
}

// ObservabilityConfig configures logging and metrics
type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"` // json, text
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "remote-storage",
			Environment: "development",
		},
		HTTP: HTTPConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  1 << 20,
		},
		DataStore: DataStoreConfig{
			Type:        DataStoreMemory,
			Path:        "./data/database.sqlite",
			BusyTimeout: 5 * time.Second,
			Redis: RedisConfig{
				MaxConns:         10,
				OperationTimeout: 5 * time.Second,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			LogFormat:      "json",
			MetricsEnabled: true,
		},
	}
}
