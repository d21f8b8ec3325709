package dialect

import "context"

// Supported dialect identifiers. DDL/DML generation, identifier escaping,
// and placeholder style all key off these strings.
const (
	SQLite   = "sqlite3"
	MySQL    = "mysql"
	Postgres = "postgres"
	// SQLServer is recognized by the DDL generator for the IF-NOT-EXISTS
	// guard form (§4.2) even though no driver is wired for it.
	SQLServer = "mssql"
)

// Driver is the minimal connection/command abstraction the engine depends
// on. The underlying database driver is an external collaborator (spec.md
// §1); this interface is the entire surface the engine requires of it.
type Driver interface {
	// Exec executes a query that doesn't return rows.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows.
	Query(ctx context.Context, query string, args, v any) error
	// Tx starts and returns a transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection(s).
	Close() error
	// Dialect returns the dialect name this driver was opened with.
	Dialect() string
}

// Tx is bound to a single, not-yet-committed transaction. It deliberately
// does not require the rest of Driver (Tx/Close/Dialect): a transaction in
// flight is only ever Exec'd/Queried against and then Commit/Rollback'd —
// dialect/sql's own *Tx type provides exactly this and nothing more.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// ExecQuerier is implemented by both Driver and Tx.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}
