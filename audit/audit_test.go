package audit_test

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persisto/audit"
	"github.com/syssam/persisto/txscope"
)

func TestSQLSinkRecordsOneRowPerEntry(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	sink := audit.NewSQLSink(db, "sqlite3")
	ctx := context.Background()

	require.NoError(t, sink.Record(ctx, audit.Entry{
		Entity:    "User",
		Operation: txscope.Insert,
		UserID:    "alice",
		NewEntity: map[string]any{"id": "u1"},
	}))
	require.NoError(t, sink.Record(ctx, audit.Entry{
		Entity:    "User",
		Operation: txscope.Update,
		UserID:    "alice",
	}))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM __audit_log").Scan(&count))
	assert.Equal(t, 2, count)
}
