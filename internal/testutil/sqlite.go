// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"db-crud/internal/database"
	"db-crud/internal/schema"
	"db-crud/internal/seed"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens an empty file-backed SQLite database with foreign keys
// enforced. The pool is closed when the test ends.
func OpenSQLite(t testing.TB) *database.Handle {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	h, err := database.Open(context.Background(), database.Config{
		Driver: "sqlite",
		DSN:    dsn,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

// OpenSample opens a SQLite database holding the student-records sample
// schema and returns it with its reflected catalog.
func OpenSample(t testing.TB) (*database.Handle, *schema.Catalog) {
	t.Helper()

	h := OpenSQLite(t)
	ctx := context.Background()
	_, err := seed.CreateSampleSchema(ctx, h.DB, h.Dialect, nil)
	require.NoError(t, err)

	catalog, err := h.LoadCatalog(ctx)
	require.NoError(t, err)
	return h, catalog
}

// Exec runs statements against the handle, failing the test on error.
func Exec(t testing.TB, h *database.Handle, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := h.DB.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}
