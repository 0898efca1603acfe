package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func memoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// one connection so every query sees the same in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate(t *testing.T) {
	t.Run("applies every embedded migration", func(t *testing.T) {
		db := memoryDB(t)

		require.NoError(t, Migrate(db, zaptest.NewLogger(t).Sugar()))

		known, err := KnownVersions()
		require.NoError(t, err)
		assert.Equal(t, []string{"000", "001", "002"}, known)

		applied, err := AppliedVersions(db)
		require.NoError(t, err)
		for _, v := range known {
			assert.True(t, applied[v], v)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		db := memoryDB(t)

		require.NoError(t, Migrate(db, nil))
		require.NoError(t, Migrate(db, nil))

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
		assert.Equal(t, 3, count)
	})

	t.Run("fresh database has no versions", func(t *testing.T) {
		applied, err := AppliedVersions(memoryDB(t))
		require.NoError(t, err)
		assert.Empty(t, applied)
	})

	t.Run("schema enforces unique nodes", func(t *testing.T) {
		db := memoryDB(t)
		require.NoError(t, Migrate(db, nil))

		_, err := db.Exec("INSERT INTO atoms (type, name) VALUES (2, 'cat')")
		require.NoError(t, err)
		_, err = db.Exec("INSERT INTO atoms (type, name) VALUES (2, 'cat')")
		assert.Error(t, err)
	})
}

func TestIsMissingSchema(t *testing.T) {
	db := memoryDB(t)
	_, err := db.Exec("SELECT * FROM atoms")
	assert.True(t, IsMissingSchema(err))
	assert.False(t, IsMissingSchema(nil))
}
