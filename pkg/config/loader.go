package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag names bound onto configuration keys when present on the flag set.
var flagBindings = map[string]string{
	"data-store":    "data_store.type",
	"database-path": "data_store.path",
	"redis-url":     "data_store.redis.url",
	"http-port":     "http.port",
	"log-level":     "observability.log_level",
	"log-format":    "observability.log_format",
}

// Loader defines the interface for loading configuration
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper for configuration management
type ViperLoader struct {
	configFile string
	envPrefix  string
	flags      *pflag.FlagSet
	v          *viper.Viper
}

// NewViperLoader creates a new ViperLoader
// configFile: path to configuration file (optional, can be empty)
// envPrefix: prefix for environment variables (e.g., "APP")
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// WithFlags binds command-line flags; a flag wins only when it was set explicitly.
func (l *ViperLoader) WithFlags(flags *pflag.FlagSet) *ViperLoader {
	l.flags = flags
	return l
}

// Load loads configuration with precedence: flags > ENV > file > defaults
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()
	l.v = v

	l.setDefaults(v, DefaultConfig())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	v.SetEnvPrefix(l.envPrefix)
	l.bindEnvVars(v)

	if err := l.bindFlags(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// AllSettings returns the merged settings of the last Load.
func (l *ViperLoader) AllSettings() map[string]any {
	if l.v == nil {
		return map[string]any{}
	}
	return l.v.AllSettings()
}

// bindEnvVars explicitly binds environment variables for nested structs
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("service.name", l.prefixedEnv("SERVICE_NAME"))
	v.BindEnv("service.environment", l.prefixedEnv("SERVICE_ENVIRONMENT"), l.prefixedEnv("ENVIRONMENT"))

	// HTTP
	v.BindEnv("http.port", l.prefixedEnv("HTTP_PORT"))
	v.BindEnv("http.read_timeout", l.prefixedEnv("HTTP_READ_TIMEOUT"))
	v.BindEnv("http.write_timeout", l.prefixedEnv("HTTP_WRITE_TIMEOUT"))
	v.BindEnv("http.idle_timeout", l.prefixedEnv("HTTP_IDLE_TIMEOUT"))
	v.BindEnv("http.shutdown_timeout", l.prefixedEnv("HTTP_SHUTDOWN_TIMEOUT"))
	v.BindEnv("http.max_request_size", l.prefixedEnv("HTTP_MAX_REQUEST_SIZE"))

	// Data store. The unprefixed names are the ones existing deployments export.
	v.BindEnv("data_store.type", l.prefixedEnv("DATA_STORE"), "DATA_STORE")
	v.BindEnv("data_store.path", l.prefixedEnv("DATABASE_PATH"), "DATABASE_PATH")
	v.BindEnv("data_store.busy_timeout", l.prefixedEnv("DATABASE_BUSY_TIMEOUT"))
	v.BindEnv("data_store.redis.url", l.prefixedEnv("REDIS_URL"), "REDIS_URL")
	v.BindEnv("data_store.redis.max_conns", l.prefixedEnv("REDIS_MAX_CONNS"))
	v.BindEnv("data_store.redis.operation_timeout", l.prefixedEnv("REDIS_OPERATION_TIMEOUT"))
	v.BindEnv("data_store.redis.prefix", l.prefixedEnv("REDIS_PREFIX"))

	// Observability
	v.BindEnv("observability.log_level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("observability.log_format", l.prefixedEnv("LOG_FORMAT"))
	v.BindEnv("observability.metrics_enabled", l.prefixedEnv("METRICS_ENABLED"))
}

func (l *ViperLoader) bindFlags(v *viper.Viper) error {
	if l.flags == nil {
		return nil
	}
	for name, key := range flagBindings {
		flag := l.flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func (l *ViperLoader) prefixedEnv(suffix string) string {
	prefix := strings.TrimSpace(l.envPrefix)
	if prefix == "" {
		prefix = "APP"
	}
	return fmt.Sprintf("%s_%s", strings.ToUpper(prefix), suffix)
}

func (l *ViperLoader) setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("service.name", cfg.Service.Name)
	v.SetDefault("service.environment", cfg.Service.Environment)

	// HTTP defaults
	v.SetDefault("http.port", cfg.HTTP.Port)
	v.SetDefault("http.read_timeout", cfg.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", cfg.HTTP.WriteTimeout)
	v.SetDefault("http.idle_timeout", cfg.HTTP.IdleTimeout)
	v.SetDefault("http.shutdown_timeout", cfg.HTTP.ShutdownTimeout)
	v.SetDefault("http.max_request_size", cfg.HTTP.MaxRequestSize)

	// Data store defaults
	v.SetDefault("data_store.type", cfg.DataStore.Type)
	v.SetDefault("data_store.path", cfg.DataStore.Path)
	v.SetDefault("data_store.busy_timeout", cfg.DataStore.BusyTimeout)
	v.SetDefault("data_store.redis.url", cfg.DataStore.Redis.URL)
	v.SetDefault("data_store.redis.max_conns", cfg.DataStore.Redis.MaxConns)
	v.SetDefault("data_store.redis.operation_timeout", cfg.DataStore.Redis.OperationTimeout)
	v.SetDefault("data_store.redis.prefix", cfg.DataStore.Redis.Prefix)

	// Observability defaults
	v.SetDefault("observability.log_level", cfg.Observability.LogLevel)
	v.SetDefault("observability.log_format", cfg.Observability.LogFormat)
	v.SetDefault("observability.metrics_enabled", cfg.Observability.MetricsEnabled)
}
