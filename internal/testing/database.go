package testing

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/teranos/atomspace/db"
)

// CreateTestDB creates a migrated in-memory SQLite database so tests run
// against the production schema. Cleanup is registered via t.Cleanup().
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB := CreateEmptyDB(t)
	require.NoError(t, db.Migrate(testDB, nil), "Failed to run migrations")

	return testDB
}

// CreateEmptyDB creates an in-memory SQLite database without any schema,
// for exercising missing-table error paths.
func CreateEmptyDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	// every pooled connection would get its own :memory: database
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}
