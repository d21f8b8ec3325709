package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/persisto/dialect/sqlschema"
	"github.com/syssam/persisto/schema/field"
)

func TestStringBuilder(t *testing.T) {
	fd := field.String("email").
		Unique().
		NotEmpty().
		MaxLen(255).
		Comment("user email").
		Descriptor()

	assert.Equal(t, "email", fd.Name)
	assert.Equal(t, "Email", fd.GoName)
	assert.Equal(t, field.TypeString, fd.Info.Type)
	assert.True(t, fd.Unique)
	assert.Equal(t, int64(255), fd.Size)
	assert.Equal(t, "user email", fd.Comment)
	assert.Len(t, fd.Validators, 2)

	for _, v := range fd.Validators {
		assert.NoError(t, v("a@b.com"))
	}
	assert.Error(t, fd.Validators[0]("")) // NotEmpty
}

func TestStringBuilderNillableOptional(t *testing.T) {
	fd := field.String("nickname").Optional().Nillable().Descriptor()
	assert.True(t, fd.Optional)
	assert.True(t, fd.Nillable)
	assert.True(t, fd.Info.Nillable)
}

func TestEnumBuilder(t *testing.T) {
	fd := field.Enum("status").Values("pending", "active", "inactive").Default("pending").Descriptor()
	assert.Equal(t, field.TypeEnum, fd.Info.Type)
	assert.Equal(t, []string{"pending", "active", "inactive"}, fd.Enums)
	assert.Equal(t, "pending", fd.Default)
	assert.NoError(t, fd.Validators[0]("active"))
	assert.Error(t, fd.Validators[0]("bogus"))
}

func TestIntBuilder(t *testing.T) {
	fd := field.Int("age").NonNegative().Max(150).Descriptor()
	assert.Equal(t, field.TypeInt, fd.Info.Type)
	assert.Len(t, fd.Validators, 2)
	assert.NoError(t, fd.Validators[0](30))
	assert.Error(t, fd.Validators[0](-1))
	assert.Error(t, fd.Validators[1](200))
}

func TestInt64BuilderForeignKey(t *testing.T) {
	fd := field.Int64("owner_id").ForeignKey("users.id").Descriptor()
	assert.Equal(t, field.TypeInt64, fd.Info.Type)
	assert.Equal(t, "users.id", fd.ForeignKey)
}

func TestFloat64BuilderRange(t *testing.T) {
	fd := field.Float64("rating").Range(0, 5).Descriptor()
	assert.NoError(t, fd.Validators[0](3.5))
	assert.Error(t, fd.Validators[0](7.0))
}

func TestTimeBuilderDefaults(t *testing.T) {
	fd := field.Time("created_time").Immutable().Descriptor()
	assert.True(t, fd.Immutable)

	updated := field.Time("last_write_time").UpdateDefault(nowFunc).Descriptor()
	assert.True(t, updated.UpdateDefaultFunc)
}

func nowFunc() {}

func TestUUIDBuilder(t *testing.T) {
	fd := field.UUID("id", nil).Default(nowFunc).Descriptor()
	assert.Equal(t, field.TypeUUID, fd.Info.Type)
	assert.True(t, fd.DefaultFunc)
}

func TestJSONBuilder(t *testing.T) {
	fd := field.JSON("metadata", map[string]any{}).Optional().Descriptor()
	assert.Equal(t, field.TypeJSON, fd.Info.Type)
	assert.True(t, fd.Optional)
}

func TestOtherBuilderSchemaType(t *testing.T) {
	fd := field.Other("amount", "").
		SchemaType(map[string]string{"postgres": "decimal(10,2)"}).
		Descriptor()
	assert.Equal(t, field.TypeOther, fd.Info.Type)
	assert.Equal(t, "decimal(10,2)", fd.SchemaType["postgres"])
}

func TestAnnotations(t *testing.T) {
	fd := field.String("data").
		Annotations(sqlschema.ColumnType("JSONB"), sqlschema.Check("length(data) > 0")).
		Descriptor()
	assert.Len(t, fd.Annotations, 2)
}

func TestValidateCreateTag(t *testing.T) {
	fd := field.String("email").ValidateCreate("required,email").Descriptor()
	assert.Len(t, fd.CreateValidators, 1)
	assert.Error(t, fd.CreateValidators[0](""))
	assert.NoError(t, fd.CreateValidators[0]("a@b.com"))
}
