// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"os"
	"testing"
)

// SkipIfShort skips the test if running in short mode
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// RequireIntegration skips the test unless INTEGRATION_TESTS is set.
// Integration tests need a container runtime.
func RequireIntegration(t *testing.T) {
	t.Helper()
	SkipIfShort(t)
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("skipping integration test (set INTEGRATION_TESTS=1 to run)")
	}
}
