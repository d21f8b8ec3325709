package mapper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persisto/dialect/sql/schema"
	"github.com/syssam/persisto/mapper"
)

type user struct {
	ID        string
	Name      string
	Age       int
	CreatedAt time.Time
	Version   int64
	IsDeleted bool
}

func userTable(softDelete bool) *schema.Table {
	t := &schema.Table{
		Name: "users",
		Columns: []*schema.Column{
			{Name: "id", GoName: "ID", Type: "string", PrimaryKey: true, Unique: true},
			{Name: "name", GoName: "Name", Type: "string"},
			{Name: "age", GoName: "Age", Type: "int"},
			{Name: "created_at", GoName: "CreatedAt", Type: "time", AuditField: schema.AuditCreatedTime},
		},
	}
	t.PrimaryKey = []*schema.Column{t.Column("id")}
	if softDelete {
		t.EnableSoftDelete = true
		t.Columns = append(t.Columns,
			&schema.Column{Name: "version", GoName: "Version", Type: "int64", AuditField: schema.AuditVersion},
			&schema.Column{Name: "is_deleted", GoName: "IsDeleted", Type: "bool"},
		)
	}
	return t
}

func TestCreateTableSQL(t *testing.T) {
	table := userTable(true)
	ddl := mapper.CreateTableSQL("sqlite3", table)
	assert.Contains(t, ddl, `CREATE TABLE IF NOT EXISTS "users"`)
	assert.Contains(t, ddl, `"id" TEXT NOT NULL`)
	assert.Contains(t, ddl, `PRIMARY KEY ("id")`)
}

func TestCreateIndexSQL(t *testing.T) {
	table := userTable(false)
	idx := &schema.Index{Name: "idx_users_name", Columns: []*schema.Column{table.Column("name")}, Unique: true}
	ddl := mapper.CreateIndexSQL("sqlite3", table, idx)
	assert.Equal(t, `CREATE UNIQUE INDEX IF NOT EXISTS "idx_users_name" ON "users" ("name")`, ddl)
}

func TestEntityToParametersSkipsVersionColumn(t *testing.T) {
	table := userTable(true)
	u := &user{ID: "u1", Name: "alice", Age: 30}
	params, err := mapper.EntityToParameters(table, u)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, p := range params {
		names[p.Name] = true
	}
	assert.True(t, names["id"])
	assert.True(t, names["name"])
	assert.False(t, names["version"], "version is seeded by the provider, not the mapper")
}

func TestEntityToParametersRejectsNonStruct(t *testing.T) {
	table := userTable(false)
	_, err := mapper.EntityToParameters(table, 42)
	assert.Error(t, err)
}

func TestIDToParameters(t *testing.T) {
	table := userTable(false)
	args := mapper.IDToParameters(table, "u1")
	require.Len(t, args, 1)
	assert.Equal(t, "id", args[0].Name)
	assert.Equal(t, "u1", args[0].Value)
}

func TestInsertSQL(t *testing.T) {
	table := userTable(false)
	u := &user{ID: "u1", Name: "alice", Age: 30}
	query, args, err := mapper.InsertSQL("sqlite3", table, u)
	require.NoError(t, err)
	assert.Contains(t, query, `INSERT INTO "users"`)
	assert.Contains(t, query, `"id"`)
	assert.NotEmpty(t, args)
}

func TestBatchInsertSQL(t *testing.T) {
	table := userTable(false)
	entities := []any{
		&user{ID: "u1", Name: "alice", Age: 30},
		&user{ID: "u2", Name: "bob", Age: 40},
	}
	query, args, err := mapper.BatchInsertSQL("sqlite3", table, entities)
	require.NoError(t, err)
	assert.Contains(t, query, "VALUES")
	assert.Equal(t, 3, countOccurrences(query, "(")) // column list + one group per row
	assert.Len(t, args, 8) // 4 columns x 2 rows
}

func TestBatchInsertSQLRejectsEmpty(t *testing.T) {
	table := userTable(false)
	_, _, err := mapper.BatchInsertSQL("sqlite3", table, nil)
	assert.Error(t, err)
}

func TestUpdateSQLSoftDeleteBumpsVersion(t *testing.T) {
	table := userTable(true)
	u := &user{ID: "u1", Name: "alice2", Age: 31}
	query, args, err := mapper.UpdateSQL("sqlite3", table, u, 1)
	require.NoError(t, err)
	assert.Contains(t, query, `UPDATE "users" SET`)
	assert.Contains(t, query, `"version" = @version_next`)
	assert.Contains(t, query, `"version" = @version_match`)
	assert.NotEmpty(t, args)
}

func TestDeleteSQLHardDelete(t *testing.T) {
	table := userTable(false)
	query, args, err := mapper.DeleteSQL("sqlite3", table, "u1", 0)
	require.NoError(t, err)
	assert.Contains(t, query, `DELETE FROM "users"`)
	require.Len(t, args, 1)
}

func TestDeleteSQLSoftDelete(t *testing.T) {
	table := userTable(true)
	query, args, err := mapper.DeleteSQL("sqlite3", table, "u1", 2)
	require.NoError(t, err)
	assert.Contains(t, query, `UPDATE "users" SET`)
	assert.Contains(t, query, `"is_deleted" = @is_deleted`)
	assert.NotEmpty(t, args)
}

func TestSelectByIDSQLFiltersSoftDeleted(t *testing.T) {
	table := userTable(true)
	query, args, err := mapper.SelectByIDSQL("sqlite3", table, "u1")
	require.NoError(t, err)
	assert.Contains(t, query, `"is_deleted"`)
	assert.Contains(t, query, "ORDER BY")
	assert.Contains(t, query, "LIMIT 1")
	assert.Len(t, args, 2)
}

func TestSelectAllVersionsSQL(t *testing.T) {
	table := userTable(true)
	query, _, err := mapper.SelectAllVersionsSQL("sqlite3", table, "u1")
	require.NoError(t, err)
	assert.Contains(t, query, "ORDER BY")
	assert.NotContains(t, query, "LIMIT")
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
