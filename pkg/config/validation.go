package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nimburion/remotestore/pkg/observability/logger"
)

// Validate validates the configuration and returns detailed errors.
// It normalizes the log settings in place.
func (l *ViperLoader) Validate(cfg *Config) error {
	return cfg.Validate()
}

// Validate checks the configuration and joins every problem found.
func (cfg *Config) Validate() error {
	var errs []error

	switch {
	case cfg.DataStore.Type == "":
		errs = append(errs, errors.New("data_store.type is required"))
	case !contains(SupportedDataStores, cfg.DataStore.Type):
		errs = append(errs, fmt.Errorf("invalid data_store.type: %s (must be one of: %v)", cfg.DataStore.Type, SupportedDataStores))
	}

	if cfg.DataStore.BusyTimeout < 0 {
		errs = append(errs, errors.New("data_store.busy_timeout cannot be negative"))
	}
	if cfg.DataStore.Type == DataStoreRedis && strings.TrimSpace(cfg.DataStore.Redis.URL) == "" {
		errs = append(errs, errors.New("data_store.redis.url is required when data_store.type is redis"))
	}
	if cfg.DataStore.Redis.MaxConns < 0 {
		errs = append(errs, errors.New("data_store.redis.max_conns cannot be negative"))
	}

	level, err := logger.ParseLogLevel(cfg.Observability.LogLevel)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid observability.log_level: %w", err))
	} else {
		cfg.Observability.LogLevel = string(level)
	}
	format, err := logger.ParseLogFormat(cfg.Observability.LogFormat)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid observability.log_format: %w", err))
	} else {
		cfg.Observability.LogFormat = string(format)
	}

	// port 0 lets the listener pick a free port
	if cfg.HTTP.Port < 0 || cfg.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid http.port: %d (must be between 0 and 65535)", cfg.HTTP.Port))
	}
	if cfg.HTTP.MaxRequestSize < 0 {
		errs = append(errs, errors.New("http.max_request_size cannot be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Redacted returns a copy safe to print: the Redis URL password is masked.
func (cfg Config) Redacted() Config {
	cfg.DataStore.Redis.URL = RedactURL(cfg.DataStore.Redis.URL)
	return cfg
}

// RedactURL masks the password of a URL with userinfo.
func RedactURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

// contains checks if a string slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
