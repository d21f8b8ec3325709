// Package audit implements the audit-record sink (spec.md §1 Out of scope,
// sketched): a minimal Sink interface with one default implementation that
// msgpack-encodes each Entry and writes it through database/sql into a
// process-wide __audit_log table.
package audit

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/persisto/errkind"
	"github.com/syssam/persisto/txscope"
)

// Entry is one audited write: the operation queued onto a txscope.Scope,
// plus the caller attribution a provider threads through every call.
type Entry struct {
	Time          time.Time
	Entity        string
	Operation     txscope.OperationKind
	CorrelationID string
	UserID        string
	SourceFile    string
	SourceLine    int
	SourceFunc    string
	OldEntity     any
	NewEntity     any
}

// Sink records audited writes. Record must not block its caller on a slow
// backing store beyond what the implementation itself chooses to buffer.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// SQLSink msgpack-encodes each Entry and inserts it into the __audit_log
// table. Each SQLSink runs CREATE TABLE IF NOT EXISTS once, through its own
// sync.Once, on its first Record call; that guard belongs to the SQLSink
// value and is not shared with other sinks, and no mutex is involved.
type SQLSink struct {
	db      *sql.DB
	dialect string

	once       sync.Once
	ensureErr  error
}

// NewSQLSink constructs a Sink writing audited entries to db.
func NewSQLSink(db *sql.DB, dialectName string) *SQLSink {
	return &SQLSink{db: db, dialect: dialectName}
}

func (s *SQLSink) ensureTable(ctx context.Context) error {
	s.once.Do(func() { s.ensureErr = s.createTable(ctx) })
	return s.ensureErr
}

func (s *SQLSink) createTable(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS __audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at DATETIME NOT NULL,
		entity TEXT NOT NULL,
		operation TEXT NOT NULL,
		correlation_id TEXT,
		user_id TEXT,
		source_file TEXT,
		source_line INTEGER,
		source_func TEXT,
		payload BLOB
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errkind.New(errkind.Internal, "__audit_log", "ensureTable", err)
	}
	return nil
}

// Record msgpack-encodes e's entity snapshots into a single payload column
// and inserts one row into __audit_log.
func (s *SQLSink) Record(ctx context.Context, e Entry) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	payload, err := msgpack.Marshal(struct {
		Old any
		New any
	}{e.OldEntity, e.NewEntity})
	if err != nil {
		return errkind.New(errkind.Internal, e.Entity, "Record", err)
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	const insert = `INSERT INTO __audit_log
		(recorded_at, entity, operation, correlation_id, user_id, source_file, source_line, source_func, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, insert,
		e.Time, e.Entity, e.Operation.String(), e.CorrelationID, e.UserID,
		e.SourceFile, e.SourceLine, e.SourceFunc, payload)
	if err != nil {
		return errkind.New(errkind.Internal, e.Entity, "Record", err)
	}
	return nil
}

var _ Sink = (*SQLSink)(nil)
