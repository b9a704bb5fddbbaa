package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSqliteDB_InMemory(t *testing.T) {
	database, err := NewSqliteDB()
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec("CREATE TABLE batches (id TEXT PRIMARY KEY, requester TEXT);")
	require.NoError(t, err)

	_, err = database.Exec("INSERT INTO batches (id, requester) VALUES ('b1', 'console');")
	require.NoError(t, err)

	var requester string
	require.NoError(t, database.Get(&requester, "SELECT requester FROM batches WHERE id = 'b1'"))
	assert.Equal(t, "console", requester)
}

func TestNewSqliteDB_CreatesParentDirs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs", "journal.db")

	database, err := NewSqliteDB(WithPath(dbPath), WithMaxOpenConns(1))
	require.NoError(t, err)
	defer database.Close()

	assert.DirExists(t, filepath.Dir(dbPath))
}

func TestNewSqliteDB_FileSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	database, err := NewSqliteDB(WithPath(dbPath))
	require.NoError(t, err)
	_, err = database.Exec("CREATE TABLE regions (x INTEGER, z INTEGER, dim INTEGER);")
	require.NoError(t, err)
	_, err = database.Exec("INSERT INTO regions VALUES (3, -4, 0);")
	require.NoError(t, err)
	require.NoError(t, database.Close())

	reopened, err := NewSqliteDB(WithPath(dbPath))
	require.NoError(t, err)
	defer reopened.Close()

	var count int
	require.NoError(t, reopened.Get(&count, "SELECT COUNT(*) FROM regions"))
	assert.Equal(t, 1, count)
}

func TestNewSqliteDB_PragmaOverride(t *testing.T) {
	database, err := NewSqliteDB(WithPragmas("PRAGMA journal_mode=WAL;"))
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY);")
	assert.NoError(t, err)
}
