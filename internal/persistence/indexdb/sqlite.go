// Package indexdb keeps a small SQLite catalog of snapshot files, per-tick
// stats and digests, so operators and the replay tooling can find the latest
// resumable state without scanning the data directory.
package indexdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type SQLiteIndex struct {
	db *sqlx.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	tick     TickRow
	snapshot SnapshotRow
}

type TickRow struct {
	Tick           uint64 `db:"tick"`
	SyncedSlots    int    `db:"synced_slots"`
	SweptModifiers int    `db:"swept_modifiers"`
	Events         int    `db:"events"`
	Digest         string `db:"digest"`
}

type SnapshotRow struct {
	Tick       uint64 `db:"tick"`
	Path       string `db:"path"`
	Provinces  int    `db:"provinces"`
	Countries  int    `db:"countries"`
	Wars       int    `db:"wars"`
	Digest     string `db:"digest"`
	RecordedAt string `db:"recorded_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS ticks (
	tick INTEGER PRIMARY KEY,
	synced_slots INTEGER NOT NULL,
	swept_modifiers INTEGER NOT NULL,
	events INTEGER NOT NULL,
	digest TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	tick INTEGER PRIMARY KEY,
	path TEXT NOT NULL,
	provinces INTEGER NOT NULL,
	countries INTEGER NOT NULL,
	wars INTEGER NOT NULL,
	digest TEXT NOT NULL,
	recorded_at TEXT NOT NULL
);
`

func Open(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	idx := &SQLiteIndex{
		db: db,
		ch: make(chan req, 256),
	}
	idx.wg.Add(1)
	go idx.writer()
	return idx, nil
}

func (x *SQLiteIndex) writer() {
	defer x.wg.Done()
	for r := range x.ch {
		switch r.kind {
		case reqTick:
			_, _ = x.db.NamedExec(`INSERT OR REPLACE INTO ticks
				(tick, synced_slots, swept_modifiers, events, digest)
				VALUES (:tick, :synced_slots, :swept_modifiers, :events, :digest)`, r.tick)
		case reqSnapshot:
			_, _ = x.db.NamedExec(`INSERT OR REPLACE INTO snapshots
				(tick, path, provinces, countries, wars, digest, recorded_at)
				VALUES (:tick, :path, :provinces, :countries, :wars, :digest, :recorded_at)`, r.snapshot)
		}
	}
}

// RecordTick enqueues a per-tick stats row. Drops the row when the writer is
// behind: index rows are observability, not simulation state.
func (x *SQLiteIndex) RecordTick(row TickRow) {
	if x.closed.Load() {
		return
	}
	select {
	case x.ch <- req{kind: reqTick, tick: row}:
	default:
	}
}

// RecordSnapshot enqueues a snapshot catalog row. Blocks briefly rather than
// dropping: losing a snapshot row would hide a resumable save.
func (x *SQLiteIndex) RecordSnapshot(row SnapshotRow) {
	if x.closed.Load() {
		return
	}
	if row.RecordedAt == "" {
		row.RecordedAt = time.Now().UTC().Format(time.RFC3339)
	}
	x.ch <- req{kind: reqSnapshot, snapshot: row}
}

// LatestSnapshot returns the highest-tick catalog row, if any.
func (x *SQLiteIndex) LatestSnapshot() (SnapshotRow, bool, error) {
	var row SnapshotRow
	err := x.db.Get(&row, `SELECT tick, path, provinces, countries, wars, digest, recorded_at
		FROM snapshots ORDER BY tick DESC LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return row, false, nil
		}
		return row, false, err
	}
	return row, true, nil
}

// TickStats returns the recorded rows for ticks in [from, to], ascending.
func (x *SQLiteIndex) TickStats(from, to uint64) ([]TickRow, error) {
	var rows []TickRow
	err := x.db.Select(&rows, `SELECT tick, synced_slots, swept_modifiers, events, digest
		FROM ticks WHERE tick BETWEEN ? AND ? ORDER BY tick ASC`, from, to)
	return rows, err
}

func (x *SQLiteIndex) Close() error {
	var err error
	x.once.Do(func() {
		x.closed.Store(true)
		close(x.ch)
		x.wg.Wait()
		err = x.db.Close()
	})
	return err
}
