// Package dialect defines the connection/command abstraction persisto's
// engine depends on (spec.md §1, §6 "Wire to driver"), plus the dialect
// name constants that DDL/DML generation and identifier escaping key off.
//
// # Supported Dialects
//
// The following dialects are supported:
//
//   - Postgres: PostgreSQL database
//   - MySQL: MySQL/MariaDB database
//   - SQLite: SQLite database
//   - SQLServer: recognized by the DDL generator, no driver wired
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres  = "postgres"
//	dialect.MySQL     = "mysql"
//	dialect.SQLite    = "sqlite3"
//	dialect.SQLServer = "mssql"
//
// # Driver Interface
//
// The package defines the Driver interface for database operations:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Transaction Interface
//
// Tx is the narrower surface a transaction in flight needs: Exec/Query
// plus Commit/Rollback, not the rest of Driver:
//
//	type Tx interface {
//	    ExecQuerier
//	    Commit() error
//	    Rollback() error
//	}
//
// # ExecQuerier Interface
//
// The ExecQuerier interface is implemented by both Driver and Tx:
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
// # Usage
//
// Opening a database connection and wrapping it with a Driver:
//
//	import (
//	    "github.com/syssam/persisto/dialect"
//	    "github.com/syssam/persisto/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
//	p := provider.New[User](drv.DB(), dialect.Postgres, userSchema{}, provider.Options{})
//
// # Sub-packages
//
// The dialect package contains two sub-packages:
//
//   - dialect/sql: query builders, predicate translation, and the Driver implementation
//   - dialect/sqlschema: per-field SQL annotations (column type, CHECK, ON DELETE)
package dialect
