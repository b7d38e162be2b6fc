package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// openTest opens an isolated in-memory database per test.
func openTest(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strptr(s string) *string   { return &s }
func f64ptr(f float64) *float64 { return &f }
