// Package sqlite implements the key-value DataService on an embedded SQLite file.
//
// The adapter stays dormant until Initialize runs with configuration that
// selects it; only then is the directory created, the file opened and the
// schema ensured. Every data operation on a dormant adapter fails with
// store.ErrUninitialized.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/nimburion/remotestore/pkg/observability/logger"
	"github.com/nimburion/remotestore/pkg/store"
)

const (
	// BackendName is the data store selector value for this backend.
	BackendName = "sqlite"
	// DefaultPath is used when no database path is configured.
	DefaultPath = "./data/database.sqlite"

	defaultBusyTimeout = 5 * time.Second
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT)`
	createIndexSQL = `CREATE INDEX IF NOT EXISTS key_index ON kv (key)`
	selectValueSQL = `SELECT value FROM kv WHERE key = ?`
	upsertValueSQL = `INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	deleteValueSQL = `DELETE FROM kv WHERE key = ?`
)

// Config holds the inputs read at initialization.
type Config struct {
	// DataStore is the configured backend selector; it must equal BackendName.
	DataStore string
	// Path overrides DefaultPath.
	Path string
	// BusyTimeout bounds how long a writer waits on the file lock.
	BusyTimeout time.Duration
}

// Adapter is the SQLite-backed DataService.
type Adapter struct {
	db     atomic.Pointer[sql.DB]
	config Config
	logger logger.Logger
}

// NewAdapter returns a dormant adapter. Nothing is opened until Initialize.
func NewAdapter(cfg Config, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{
		config: cfg,
		logger: log.With("backend", BackendName),
	}
}

// Name returns BackendName.
func (a *Adapter) Name() string { return BackendName }

// Path returns the resolved database file path.
func (a *Adapter) Path() string {
	if strings.TrimSpace(a.config.Path) == "" {
		return DefaultPath
	}
	return a.config.Path
}

// Ready reports whether the adapter has an open database.
func (a *Adapter) Ready() bool {
	return a.db.Load() != nil
}

// Selected reports whether the configured selector is exactly BackendName.
func (a *Adapter) Selected() bool {
	return a.config.DataStore == BackendName
}

// Initialize opens the database file and ensures the schema when the adapter
// is selected. Failures are logged and reported in the result; the adapter
// then stays dormant. Calling Initialize on a ready adapter is a no-op.
func (a *Adapter) Initialize(ctx context.Context) store.InitResult {
	result := store.InitResult{Backend: BackendName, Path: a.Path()}

	if !a.Selected() {
		a.logger.Debug("sqlite data store not selected, staying dormant", "data_store", a.config.DataStore)
		result.Status = store.InitSkipped
		return result
	}
	if a.Ready() {
		result.Status = store.InitReady
		return result
	}

	db, err := a.open(ctx, result.Path)
	if err != nil {
		a.logger.Error("failed to initialize sqlite database", "path", result.Path, "error", err)
		result.Status = store.InitFailed
		result.Err = err
		return result
	}

	if !a.db.CompareAndSwap(nil, db) {
		// another Initialize won the race; keep its handle
		_ = db.Close()
	}
	a.logger.Info("sqlite database initialized", "path", result.Path)
	result.Status = store.InitReady
	return result
}

func (a *Adapter) open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	busyTimeout := a.config.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	db, err := sql.Open("sqlite", dataSourceName(path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// dataSourceName builds a file: URI so that characters such as '?' and '#'
// in path stay part of the file name instead of starting the query.
func dataSourceName(path string, busyTimeout time.Duration) string {
	u := url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     filepath.ToSlash(path),
		RawQuery: fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()),
	}
	return u.String()
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("create key index: %w", err)
	}
	return nil
}

func (a *Adapter) handle(key string) (*sql.DB, error) {
	db := a.db.Load()
	if db == nil {
		return nil, store.ErrUninitialized
	}
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}
	return db, nil
}

// Get returns the decoded value for key, or nil when no row exists.
func (a *Adapter) Get(ctx context.Context, key string) (any, error) {
	db, err := a.handle(key)
	if err != nil {
		return nil, err
	}

	var raw sql.NullString
	err = db.QueryRowContext(ctx, selectValueSQL, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get %q: %w", key, err)
	}
	if !raw.Valid {
		return nil, nil
	}
	return store.DecodeValue(key, raw.String)
}

// Set encodes value and upserts it under key.
func (a *Adapter) Set(ctx context.Context, key string, value any) error {
	db, err := a.handle(key)
	if err != nil {
		return err
	}

	encoded, err := store.EncodeValue(key, value)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, upsertValueSQL, key, encoded); err != nil {
		return fmt.Errorf("sqlite set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key succeeds.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	db, err := a.handle(key)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, deleteValueSQL, key); err != nil {
		return fmt.Errorf("sqlite delete %q: %w", key, err)
	}
	return nil
}

// HealthCheck pings the database. A dormant adapter is unhealthy.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	db := a.db.Load()
	if db == nil {
		return store.ErrUninitialized
	}

	hcCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(hcCtx); err != nil {
		a.logger.Error("sqlite health check failed", "error", err)
		return fmt.Errorf("sqlite health check failed: %w", err)
	}
	return nil
}

// Close releases the database handle and returns the adapter to the dormant
// state. Closing a dormant adapter is a no-op.
func (a *Adapter) Close() error {
	db := a.db.Swap(nil)
	if db == nil {
		return nil
	}

	a.logger.Info("closing sqlite database", "path", a.Path())
	if err := db.Close(); err != nil {
		a.logger.Error("failed to close sqlite database", "error", err)
		return fmt.Errorf("failed to close sqlite database: %w", err)
	}
	return nil
}

var (
	_ store.Backend     = (*Adapter)(nil)
	_ store.Initializer = (*Adapter)(nil)
)
