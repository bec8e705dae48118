package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TempDBPath returns a database path inside a nested, not yet existing
// directory under t.TempDir.
func TempDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data", name)
}

// StartRedis runs a disposable Redis container and returns its URL.
// The container is terminated when the test finishes.
func StartRedis(t *testing.T) string {
	t.Helper()
	RequireIntegration(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	return url
}
