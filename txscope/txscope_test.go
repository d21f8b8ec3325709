package txscope_test

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persisto/txscope"
)

func newMockTx(t *testing.T) (*sqlmock.Sqlmock, *txscope.Scope) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)
	return &mock, txscope.New(tx, nil)
}

func TestCommitExecutesOperationsInOrder(t *testing.T) {
	mock, scope := newMockTx(t)

	(*mock).ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	(*mock).ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(1, 1))
	(*mock).ExpectCommit()

	require.NoError(t, scope.AddOperation(txscope.Operation{
		Kind: txscope.Insert, Query: "INSERT INTO users (id) VALUES (?)", Args: []any{"u1"},
	}))
	require.NoError(t, scope.AddOperation(txscope.Operation{
		Kind: txscope.Update, Query: "UPDATE users SET name = ? WHERE id = ?", Args: []any{"alice", "u1"},
	}))

	require.NoError(t, scope.Commit(context.Background()))
	require.NoError(t, (*mock).ExpectationsWereMet())
}

func TestCommitRollsBackOnFirstFailure(t *testing.T) {
	mock, scope := newMockTx(t)

	(*mock).ExpectExec("INSERT INTO users").WillReturnError(errors.New("constraint failed"))
	(*mock).ExpectRollback()

	require.NoError(t, scope.AddOperation(txscope.Operation{
		Kind: txscope.Insert, Query: "INSERT INTO users (id) VALUES (?)", Args: []any{"u1"},
	}))

	err := scope.Commit(context.Background())
	require.Error(t, err)
	require.NoError(t, (*mock).ExpectationsWereMet())
}

func TestCloseWithoutCommitRollsBack(t *testing.T) {
	mock, scope := newMockTx(t)
	(*mock).ExpectRollback()

	require.NoError(t, scope.AddOperation(txscope.Operation{Kind: txscope.Delete, Query: "DELETE FROM users"}))
	require.NoError(t, scope.Close())
	require.NoError(t, (*mock).ExpectationsWereMet())
}

func TestCloseAfterCommitIsNoop(t *testing.T) {
	mock, scope := newMockTx(t)
	(*mock).ExpectCommit()

	require.NoError(t, scope.Commit(context.Background()))
	require.NoError(t, scope.Close()) // no further expectation, must not roll back
}

func TestAddOperationAfterCloseFails(t *testing.T) {
	mock, scope := newMockTx(t)
	(*mock).ExpectRollback()
	require.NoError(t, scope.Close())

	err := scope.AddOperation(txscope.Operation{Kind: txscope.Insert})
	require.Error(t, err)
}

func TestNestedScopeDefersToOuter(t *testing.T) {
	_, outer := newMockTx(t)
	inner := txscope.Nested(outer)

	require.NoError(t, inner.AddOperation(txscope.Operation{Kind: txscope.Insert, Query: "INSERT INTO x"}))
	// Inner commit/close are no-ops; the outer scope still owns the operation list.
	require.NoError(t, inner.Commit(context.Background()))
	require.NoError(t, inner.Close())
	require.Len(t, outer.Operations(), 1)
}

func TestOperationsReturnsSnapshot(t *testing.T) {
	_, scope := newMockTx(t)
	require.NoError(t, scope.AddOperation(txscope.Operation{Kind: txscope.Insert, Query: "INSERT INTO x"}))
	ops := scope.Operations()
	require.Len(t, ops, 1)
	require.Equal(t, txscope.Insert, ops[0].Kind)
}
