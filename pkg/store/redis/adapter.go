// Package redis implements the key-value DataService on a Redis cache service.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nimburion/remotestore/pkg/observability/logger"
	"github.com/nimburion/remotestore/pkg/store"
)

// BackendName is the data store selector value for this backend.
const BackendName = "redis"

type redisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Config holds Redis connection configuration
type Config struct {
	URL              string
	MaxConns         int
	OperationTimeout time.Duration
	// Prefix namespaces keys as "prefix:key" when set.
	Prefix string
}

// Adapter stores JSON-encoded values as Redis strings without expiry.
type Adapter struct {
	client redisClient
	logger logger.Logger
	config Config
}

// NewAdapter builds a client from cfg.URL. No connection is made until the
// first command; use HealthCheck to verify reachability.
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		opts.PoolSize = cfg.MaxConns
	}
	if cfg.OperationTimeout > 0 {
		opts.ReadTimeout = cfg.OperationTimeout
		opts.WriteTimeout = cfg.OperationTimeout
	}

	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("backend", BackendName)
	log.Info("redis data store configured",
		"addr", opts.Addr,
		"db", opts.DB,
		"max_conns", opts.PoolSize,
	)

	return &Adapter{
		client: redis.NewClient(opts),
		logger: log,
		config: cfg,
	}, nil
}

// Name returns BackendName.
func (a *Adapter) Name() string { return BackendName }

func (a *Adapter) key(key string) string {
	if a.config.Prefix == "" {
		return key
	}
	return a.config.Prefix + ":" + key
}

// Get returns the decoded value for key, or nil when the key does not exist.
func (a *Adapter) Get(ctx context.Context, key string) (any, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	raw, err := a.client.Get(ctx, a.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return store.DecodeValue(key, raw)
}

// Set stores the JSON encoding of value without expiration.
func (a *Adapter) Set(ctx context.Context, key string, value any) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	encoded, err := store.EncodeValue(key, value)
	if err != nil {
		return err
	}
	if err := a.client.Set(ctx, a.key(key), encoded, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key succeeds.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	if err := a.client.Del(ctx, a.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}

// HealthCheck verifies the Redis connection is healthy with a timeout
func (a *Adapter) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := a.client.Ping(ctx).Err(); err != nil {
		a.logger.Error("Redis health check failed", "error", err)
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Close gracefully closes the Redis connection
func (a *Adapter) Close() error {
	a.logger.Info("closing Redis connection")
	if err := a.client.Close(); err != nil {
		a.logger.Error("failed to close Redis connection", "error", err)
		return fmt.Errorf("failed to close redis connection: %w", err)
	}
	return nil
}

var _ store.Backend = (*Adapter)(nil)
