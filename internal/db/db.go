package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/minecart-tools/regionsync/internal/utils"
)

const memoryPath = ":memory:"

// WAL keeps readers off the writer's back, the busy timeout papers over
// short lock contention between the daemon and ad-hoc inspection tools.
const defaultPragma = `
PRAGMA journal_mode=WAL;
PRAGMA busy_timeout=5000;
PRAGMA foreign_keys=ON;
PRAGMA temp_store=MEMORY;
PRAGMA cache_size=8000;
`

type options struct {
	path            string
	pragmas         string
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
}

// SqliteOption configures NewSqliteDB.
type SqliteOption func(*options)

// WithPath sets the database file path. ":memory:" opens an in-memory
// database.
func WithPath(path string) SqliteOption {
	return func(o *options) { o.path = path }
}

// WithPragmas replaces the default connection pragmas.
func WithPragmas(pragmas string) SqliteOption {
	return func(o *options) { o.pragmas = pragmas }
}

// WithMaxOpenConns caps the connection pool. Use 1 to serialize all
// access through a single connection.
func WithMaxOpenConns(n int) SqliteOption {
	return func(o *options) { o.maxOpenConns = n }
}

// WithMaxIdleConns sets the idle connection count.
func WithMaxIdleConns(n int) SqliteOption {
	return func(o *options) { o.maxIdleConns = n }
}

// WithConnMaxLifetime bounds how long a pooled connection is reused.
func WithConnMaxLifetime(d time.Duration) SqliteOption {
	return func(o *options) { o.connMaxLifetime = d }
}

// NewSqliteDB opens a sqlite database via sqlx, creating parent
// directories for file-backed paths and applying the pragmas.
func NewSqliteDB(opts ...SqliteOption) (*sqlx.DB, error) {
	o := &options{
		path:         memoryPath,
		pragmas:      defaultPragma,
		maxIdleConns: 2,
	}
	for _, opt := range opts {
		opt(o)
	}

	dsn, err := buildDSN(o.path)
	if err != nil {
		return nil, err
	}

	slog.Debug("db open", "driver", driverImpl, "path", o.path)
	sdb, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if o.maxOpenConns > 0 {
		sdb.SetMaxOpenConns(o.maxOpenConns)
	}
	if o.maxIdleConns > 0 {
		sdb.SetMaxIdleConns(o.maxIdleConns)
	}
	if o.connMaxLifetime > 0 {
		sdb.SetConnMaxLifetime(o.connMaxLifetime)
	}

	if _, err := sdb.Exec(o.pragmas); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	return sdb, nil
}

func buildDSN(path string) (string, error) {
	if path == memoryPath {
		return memoryPath, nil
	}
	if err := utils.EnsureParent(path); err != nil {
		return "", fmt.Errorf("ensure parent directory: %w", err)
	}
	// immediate txlock grabs the write lock up front instead of
	// failing mid-transaction on upgrade.
	return fmt.Sprintf("file:%s?_txlock=immediate&mode=rwc", path), nil
}
