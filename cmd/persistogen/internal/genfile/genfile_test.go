package genfile_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persisto/cmd/persistogen/internal/genfile"
)

func TestTableNamePluralizes(t *testing.T) {
	assert.Equal(t, "users", genfile.TableName("User"))
	assert.Equal(t, "categories", genfile.TableName("Category"))
}

func TestGenerateEmitsOneConstantPerFieldTypedToItsColumn(t *testing.T) {
	src, err := genfile.Generate("generated", "User", []genfile.Field{
		{Name: "name", GoType: "string"},
		{Name: "age", GoType: "int"},
		{Name: "balance", GoType: "float64"},
		{Name: "verified", GoType: "bool"},
		{Name: "created_at", GoType: "time"},
		{Name: "id", GoType: "uuid"},
	})
	require.NoError(t, err)

	out := string(src)
	assert.True(t, strings.Contains(out, "package generated"))
	assert.True(t, strings.Contains(out, "UserName"))
	assert.True(t, strings.Contains(out, "sql.StringField[predicate.P[User]]"))
	assert.True(t, strings.Contains(out, "UserAge"))
	assert.True(t, strings.Contains(out, "sql.IntField[predicate.P[User]]"))
	assert.True(t, strings.Contains(out, "UserBalance"))
	assert.True(t, strings.Contains(out, "sql.Float64Field[predicate.P[User]]"))
	assert.True(t, strings.Contains(out, "UserVerified"))
	assert.True(t, strings.Contains(out, "sql.BoolField[predicate.P[User]]"))
	assert.True(t, strings.Contains(out, "UserCreatedAt"))
	assert.True(t, strings.Contains(out, "sql.TimeField[predicate.P[User], time.Time]"))
	assert.True(t, strings.Contains(out, "UserId"))
	assert.True(t, strings.Contains(out, "sql.UUIDField[predicate.P[User], uuid.UUID]"))
}

func TestGenerateMapsTextToStringField(t *testing.T) {
	src, err := genfile.Generate("generated", "Order", []genfile.Field{{Name: "notes", GoType: "text"}})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(src), "sql.StringField[predicate.P[Order]]"))
}
