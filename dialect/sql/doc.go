// Package sql provides SQL query building primitives and the database/sql
// driver wrapper the rest of the module uses.
//
// It renders SELECT queries and predicates for the dialects named in
// package dialect (PostgreSQL, MySQL, SQLite); values are bound as named
// arguments (@p0, @p1, ...), never inlined.
//
// # Builder Types
//
//   - Builder: low-level SQL string builder with identifier quoting
//     (NewBuilder, Quote)
//   - Selector: SELECT builder (NewSelector) with Select, Where, Having,
//     GroupBy, OrderBy, Limit, Offset, C and Query
//
// There are no INSERT, UPDATE or DELETE builders in this package (package
// mapper renders those statements), and Selector has no joins, no cursor
// pagination and no row locking (FOR UPDATE).
//
// # Dialect Support
//
// The dialect is chosen when a Selector is created:
//
//	import "github.com/syssam/persisto/dialect"
//
//	sel := sql.NewSelector(dialect.Postgres, "users")
//	sel.Select("id", "name").Where(sql.EQ(sel.C("status"), "active"))
//
// # Predicates
//
//	// Equality
//	sql.EQ("name", "john")           // name = @p0
//	sql.NEQ("status", "deleted")     // status <> @p0
//
//	// Comparison
//	sql.GT("age", 18)                // age > @p0
//	sql.LTE("price", 100.0)          // price <= @p0
//
//	// String matching (the pattern is bound, LIKE metacharacters escaped)
//	sql.Contains("name", "john")     // name LIKE @p0 ESCAPE '\', @p0 = "%john%"
//	sql.HasPrefix("email", "admin")  // email LIKE @p0 ESCAPE '\', @p0 = "admin%"
//
//	// NULL checks
//	sql.IsNull("deleted_at")         // deleted_at IS NULL
//	sql.NotNull("email")             // email IS NOT NULL
//
//	// IN clauses
//	sql.In("status", "active", "pending")  // status IN (@p0, @p1)
//
// Predicates combine with And, Or and Not. The Field* constructors
// (FieldEQ, FieldIn, FieldContains, ...) return func(*Selector) values that
// add the matching predicate on sel.C(name).
//
// # Usage from provider and predicate
//
// package provider issues every statement through a *Driver; a
// predicate.P[E] from package predicate is a func(*Selector) that adds
// filters to a Selector:
//
//	drv := sql.OpenDB(dialect.SQLite, db)
//	sel := sql.NewSelector(dialect.SQLite, "users")
//	sel.Where(sql.GT(sel.C("age"), 18))
//	query, args := sel.Query()
//	var rows sql.Rows
//	drv.Query(ctx, query, args, &rows)
package sql
