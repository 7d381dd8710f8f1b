// Package integration exercises the service stack against a real PostgreSQL database
// started with testcontainers. Run with -short to skip.
package integration

import (
	"os"
	"testing"

	"github.com/bizgrid/backend/tests/testutil"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutil.CleanupSharedContainer()
	os.Exit(code)
}
