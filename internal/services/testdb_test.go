package services

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens an in-memory database with the full schema applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	entries, err := os.ReadDir("../../migrations")
	require.NoError(t, err)

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		script, err := os.ReadFile(filepath.Join("../../migrations", entry.Name()))
		require.NoError(t, err)
		_, err = db.Exec(string(script))
		require.NoError(t, err)
	}

	return db
}
