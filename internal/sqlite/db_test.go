package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"documents",
		"profiles",
		"calendar_events",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Migrations are idempotent
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestDocumentsTable verifies the documents table constraints
func TestDocumentsTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, owner_id, body) VALUES (?, ?, ?, ?)`,
		"tasks", "t1", "user-1", `{"title":"x"}`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, owner_id, body) VALUES (?, ?, ?, ?)`,
		"tasks", "t1", "user-1", `{"title":"y"}`)
	require.Error(t, err, "should fail with duplicate id")
	require.True(t, isUniqueViolation(err))

	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, owner_id, body) VALUES (?, ?, ?, ?)`,
		"tasks", "t2", "user-1", `{not json`)
	require.Error(t, err, "should fail with invalid body")

	// Same id in another collection is fine
	_, err = db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, owner_id, body) VALUES (?, ?, ?, ?)`,
		"projects", "t1", "user-1", `{}`)
	require.NoError(t, err)
}
