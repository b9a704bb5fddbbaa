package updater

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/minecart-tools/regionsync/internal/db"
	"github.com/minecart-tools/regionsync/internal/region"
	"github.com/minecart-tools/regionsync/internal/utils"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS batches (
    id TEXT PRIMARY KEY,
    requester TEXT NOT NULL,
    started_at TEXT NOT NULL, -- RFC3339
    finished_at TEXT NOT NULL,
    ok_count INTEGER NOT NULL,
    fail_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_regions (
    batch_id TEXT NOT NULL REFERENCES batches(id),
    pos INTEGER NOT NULL,
    x INTEGER NOT NULL,
    z INTEGER NOT NULL,
    dim INTEGER NOT NULL,
    ok INTEGER NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (batch_id, pos)
);

CREATE INDEX IF NOT EXISTS idx_batches_started ON batches(started_at);
`

type dbBatch struct {
	ID         string `db:"id"`
	Requester  string `db:"requester"`
	StartedAt  string `db:"started_at"`
	FinishedAt string `db:"finished_at"`
	OKCount    int    `db:"ok_count"`
	FailCount  int    `db:"fail_count"`
}

type dbBatchRegion struct {
	BatchID string `db:"batch_id"`
	Pos     int    `db:"pos"`
	X       int    `db:"x"`
	Z       int    `db:"z"`
	Dim     int    `db:"dim"`
	OK      bool   `db:"ok"`
	Detail  string `db:"detail"`
}

// Journal keeps every batch outcome in an SQLite database, unlike the
// History ledger which only holds the latest batch.
type Journal struct {
	db     *sqlx.DB
	dbPath string
}

// NewJournal creates a Journal handle for the given database path.
// Call Open before use.
func NewJournal(dbPath string) *Journal {
	return &Journal{dbPath: dbPath}
}

// Open opens the underlying database and applies the schema.
func (j *Journal) Open() error {
	if j.db != nil {
		return fmt.Errorf("batch journal already open")
	}

	if err := utils.EnsureDir(filepath.Dir(j.dbPath)); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	sdb, err := db.NewSqliteDB(db.WithPath(j.dbPath), db.WithMaxOpenConns(1))
	if err != nil {
		return fmt.Errorf("failed to open batch journal: %w", err)
	}

	if _, err := sdb.Exec(journalSchema); err != nil {
		sdb.Close()
		return fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	j.db = sdb
	return nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return fmt.Errorf("batch journal not open")
	}
	if err := j.db.Close(); err != nil {
		slog.Error("failed to close batch journal", "error", err)
		return err
	}
	j.db = nil
	return nil
}

// RecordBatch stores one batch and its per-region outcomes in a single
// transaction.
func (j *Journal) RecordBatch(b *BatchRecord) error {
	if j.db == nil {
		return fmt.Errorf("batch journal not open")
	}

	okCount, failCount := b.Counts()

	tx, err := j.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin journal tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(
		`INSERT INTO batches (id, requester, started_at, finished_at, ok_count, fail_count)
		 VALUES (:id, :requester, :started_at, :finished_at, :ok_count, :fail_count)`,
		&dbBatch{
			ID:         b.ID,
			Requester:  b.Requester,
			StartedAt:  b.StartedAt.Format(time.RFC3339),
			FinishedAt: b.FinishedAt.Format(time.RFC3339),
			OKCount:    okCount,
			FailCount:  failCount,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to record batch %s: %w", b.ID, err)
	}

	for i, o := range b.Outcomes {
		_, err = tx.NamedExec(
			`INSERT INTO batch_regions (batch_id, pos, x, z, dim, ok, detail)
			 VALUES (:batch_id, :pos, :x, :z, :dim, :ok, :detail)`,
			&dbBatchRegion{
				BatchID: b.ID,
				Pos:     i,
				X:       o.Region.X,
				Z:       o.Region.Z,
				Dim:     o.Region.Dim,
				OK:      o.OK,
				Detail:  o.Detail,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to record batch %s outcome %d: %w", b.ID, i, err)
		}
	}

	return tx.Commit()
}

// Recent returns up to limit batches, most recent first, with their
// outcomes in batch order.
func (j *Journal) Recent(limit int) ([]*BatchRecord, error) {
	if j.db == nil {
		return nil, fmt.Errorf("batch journal not open")
	}
	if limit <= 0 {
		limit = 50
	}

	var rows []dbBatch
	err := j.db.Select(&rows,
		`SELECT id, requester, started_at, finished_at, ok_count, fail_count
		 FROM batches ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}

	records := make([]*BatchRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := j.hydrate(&row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (j *Journal) hydrate(row *dbBatch) (*BatchRecord, error) {
	startedAt, err := time.Parse(time.RFC3339, row.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse batch %s started_at: %w", row.ID, err)
	}
	finishedAt, err := time.Parse(time.RFC3339, row.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse batch %s finished_at: %w", row.ID, err)
	}

	var regionRows []dbBatchRegion
	err = j.db.Select(&regionRows,
		`SELECT batch_id, pos, x, z, dim, ok, detail
		 FROM batch_regions WHERE batch_id = ? ORDER BY pos`, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch %s outcomes: %w", row.ID, err)
	}

	outcomes := make([]Outcome, 0, len(regionRows))
	for _, rr := range regionRows {
		outcomes = append(outcomes, Outcome{
			Region: region.New(rr.X, rr.Z, rr.Dim),
			OK:     rr.OK,
			Detail: rr.Detail,
		})
	}

	return &BatchRecord{
		ID:         row.ID,
		Requester:  row.Requester,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Outcomes:   outcomes,
	}, nil
}
