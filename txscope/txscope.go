// Package txscope implements the transactional batch scope (spec.md §4.5):
// an ordered list of operations committed or rolled back as a unit against
// one underlying database/sql transaction. A Scope that's never explicitly
// committed rolls back when Close is called, so deferring Close right
// after BeginTransaction is always safe.
package txscope

import (
	"context"
	"database/sql"
	"strconv"
	"sync"

	"github.com/syssam/persisto/errkind"
)

// OperationKind identifies the kind of write an Operation represents.
type OperationKind int

const (
	Insert OperationKind = iota
	Update
	Delete
)

// String implements fmt.Stringer.
func (k OperationKind) String() string {
	switch k {
	case Insert:
		return "Insert"
	case Update:
		return "Update"
	case Delete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Operation is one write queued onto a Scope. Query and Args are the
// already-rendered SQL and bound parameters (as produced by package
// mapper); OldEntity/NewEntity are carried for the scope's onOperation
// callback, not executed directly.
type Operation struct {
	Kind      OperationKind
	Query     string
	Args      []any
	OldEntity any
	NewEntity any
}

// Scope holds a native *sql.Tx and the ordered operations queued against
// it. It is not safe for concurrent use by multiple goroutines (spec.md
// §5: "a single transaction scope is not shared across threads").
type Scope struct {
	mu          sync.Mutex
	tx          *sql.Tx
	ops         []Operation
	done        bool
	nested      bool
	parent      *Scope
	onOperation func(Operation)
}

// New wraps an already-started *sql.Tx in a Scope. onOperation, if
// non-nil, is invoked synchronously as each operation is added.
func New(tx *sql.Tx, onOperation func(Operation)) *Scope {
	return &Scope{tx: tx, onOperation: onOperation}
}

// Nested wraps the same *sql.Tx as parent without starting a new native
// transaction and without savepoints: the returned Scope is a no-op
// wrapper whose Commit/Close defer to the outer scope (spec.md §4.5,
// §9 "Nested transactions"). Operations added through the nested Scope are
// queued on parent, since only the outermost scope ever commits anything.
func Nested(parent *Scope) *Scope {
	return &Scope{tx: parent.tx, nested: true, parent: parent}
}

// AddOperation appends op to the scope's ordered operation list. On a
// nested Scope this delegates to the outermost parent's list.
func (s *Scope) AddOperation(op Operation) error {
	if s.nested {
		return s.parent.AddOperation(op)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return errkind.New(errkind.Misconfiguration, "", "AddOperation",
			errScopeClosed)
	}
	s.ops = append(s.ops, op)
	if s.onOperation != nil {
		s.onOperation(op)
	}
	return nil
}

// Operations returns the operations queued so far, in insertion order. On
// a nested Scope this returns the outermost parent's operations.
func (s *Scope) Operations() []Operation {
	if s.nested {
		return s.parent.Operations()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Operation(nil), s.ops...)
}

// Exec executes query/args against the scope's transaction directly
// (bypassing the queued-operation bookkeeping, so onOperation is not
// called); statements that return rows go through Query instead.
func (s *Scope) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.tx.ExecContext(ctx, query, args...)
}

// Query runs a SELECT against the scope's transaction.
func (s *Scope) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.tx.QueryContext(ctx, query, args...)
}

// Commit executes every queued operation, in insertion order, against the
// scope's transaction; the first failure aborts the remaining operations
// and rolls back (spec.md §4.5). A nested Scope's Commit is a no-op: only
// the outermost scope controls the underlying transaction's fate.
func (s *Scope) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	if s.nested {
		s.done = true
		return nil
	}
	for i, op := range s.ops {
		if _, err := s.tx.ExecContext(ctx, op.Query, op.Args...); err != nil {
			_ = s.tx.Rollback()
			s.done = true
			return errkind.New(errkind.Internal, "", op.Kind.String(),
				errAt(i, err))
		}
	}
	s.done = true
	return s.tx.Commit()
}

// Close rolls back the transaction if Commit was never called. Safe to
// call after a successful Commit (a no-op then). A nested Scope's Close
// never touches the underlying transaction.
func (s *Scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.nested {
		s.done = true
		return nil
	}
	s.done = true
	return s.tx.Rollback()
}

type opError struct {
	index int
	err   error
}

func (e *opError) Error() string { return "operation " + strconv.Itoa(e.index) + ": " + e.err.Error() }
func (e *opError) Unwrap() error { return e.err }

func errAt(i int, err error) error { return &opError{index: i, err: err} }

var errScopeClosed = errClosed("txscope: scope already committed or closed")

type errClosed string

func (e errClosed) Error() string { return string(e) }
