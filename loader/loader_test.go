package loader_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persisto"
	"github.com/syssam/persisto/dialect/sql/schema"
	"github.com/syssam/persisto/errkind"
	pfield "github.com/syssam/persisto/schema/field"
	pindex "github.com/syssam/persisto/schema/index"
	pmixin "github.com/syssam/persisto/schema/mixin"

	"github.com/syssam/persisto/loader"
)

type User struct {
	ID    string
	Name  string
	Email string
}

type userSchema struct {
	persisto.Schema
}

func (userSchema) Fields() []persisto.Field {
	return []persisto.Field{
		pfield.String("id"),
		pfield.String("name").NotEmpty(),
		pfield.String("email").Unique(),
	}
}

func (userSchema) Mixin() []persisto.Mixin {
	return []persisto.Mixin{pmixin.Time{}}
}

func (userSchema) Indexes() []persisto.Index {
	return []persisto.Index{
		pindex.Fields("email").Unique(),
	}
}

func (userSchema) Config() persisto.Config {
	return persisto.Config{EnableSoftDelete: true}
}

func TestLoadBasicEntity(t *testing.T) {
	table, err := loader.Load(userSchema{}, reflect.TypeOf(User{}))
	require.NoError(t, err)
	require.NotNil(t, table)

	assert.Equal(t, "User", table.Name)
	assert.NotNil(t, table.Column("id"))
	assert.NotNil(t, table.Column("name"))
	assert.NotNil(t, table.Column("email"))
	assert.True(t, table.Column("id").PrimaryKey)
	require.Len(t, table.PrimaryKey, 1)
}

func TestLoadMixinFieldsAreAppended(t *testing.T) {
	table, err := loader.Load(userSchema{}, reflect.TypeOf(User{}))
	require.NoError(t, err)

	assert.NotNil(t, table.Column("created_at"))
	assert.NotNil(t, table.Column("updated_at"))
}

func TestLoadSoftDeleteInjectsAuditColumns(t *testing.T) {
	table, err := loader.Load(userSchema{}, reflect.TypeOf(User{}))
	require.NoError(t, err)

	assert.True(t, table.EnableSoftDelete)
	version := table.Column("version")
	require.NotNil(t, version)
	assert.Equal(t, schema.AuditVersion, version.AuditField)

	deleted := table.Column("is_deleted")
	require.NotNil(t, deleted)
}

func TestLoadIndexes(t *testing.T) {
	table, err := loader.Load(userSchema{}, reflect.TypeOf(User{}))
	require.NoError(t, err)

	require.Len(t, table.Indexes, 1)
	assert.True(t, table.Indexes[0].Unique)
	require.Len(t, table.Indexes[0].Columns, 1)
	assert.Equal(t, "email", table.Indexes[0].Columns[0].Name)
}

type noIDSchema struct{ persisto.Schema }

func (noIDSchema) Fields() []persisto.Field {
	return []persisto.Field{pfield.String("name")}
}

func TestLoadMissingPrimaryKey(t *testing.T) {
	_, err := loader.Load(noIDSchema{}, reflect.TypeOf(struct{ Name string }{}))
	require.Error(t, err)
	assert.Equal(t, errkind.Misconfiguration, errkind.OfKind(err))
}

type panicSchema struct{ persisto.Schema }

func (panicSchema) Fields() []persisto.Field {
	panic("boom")
}

func TestLoadRecoversFromPanickingSchema(t *testing.T) {
	_, err := loader.Load(panicSchema{}, reflect.TypeOf(struct{}{}))
	require.Error(t, err)
	assert.Equal(t, errkind.Misconfiguration, errkind.OfKind(err))
}

type overrideSchema struct{ persisto.Schema }

func (overrideSchema) Fields() []persisto.Field {
	return []persisto.Field{
		pfield.String("id"),
		// Overrides the mixin's created_at with a different default.
		pfield.Time("created_at"),
	}
}

func (overrideSchema) Mixin() []persisto.Mixin {
	return []persisto.Mixin{pmixin.Time{}}
}

func TestLoadSchemaFieldOverridesMixinField(t *testing.T) {
	table, err := loader.Load(overrideSchema{}, reflect.TypeOf(struct{}{}))
	require.NoError(t, err)

	// Exactly one created_at column, the schema-level one.
	count := 0
	for _, c := range table.Columns {
		if c.Name == "created_at" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

type annotatedSchema struct{ persisto.Schema }

func (annotatedSchema) Fields() []persisto.Field {
	return []persisto.Field{pfield.String("id")}
}

func (annotatedSchema) Config() persisto.Config {
	return persisto.Config{Table: "accounts", Schema: "public"}
}

func TestLoadConfigOverridesTableName(t *testing.T) {
	table, err := loader.Load(annotatedSchema{}, reflect.TypeOf(struct{}{}))
	require.NoError(t, err)
	assert.Equal(t, "accounts", table.Name)
	assert.Equal(t, "public", table.SchemaName)
}
