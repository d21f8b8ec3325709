package mixin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persisto"
	"github.com/syssam/persisto/schema"
	"github.com/syssam/persisto/schema/field"
	"github.com/syssam/persisto/schema/mixin"
)

func TestSchemaBaseMixin(t *testing.T) {
	m := mixin.Schema{}
	assert.Nil(t, m.Fields())
	assert.Nil(t, m.Indexes())
	assert.Nil(t, m.Annotations())
}

func TestMixinImplementsInterface(t *testing.T) {
	var _ persisto.Mixin = mixin.Schema{}
	var _ persisto.Mixin = &mixin.Schema{}
}

type testAnnotation string

func (testAnnotation) Name() string { return "testAnnotation" }

type testCustomMixin struct {
	mixin.Schema
}

func (testCustomMixin) Fields() []persisto.Field {
	return []persisto.Field{
		field.String("field1"),
		field.String("field2"),
	}
}

func TestAnnotateFields(t *testing.T) {
	tests := []struct {
		name        string
		annotations []schema.Annotation
		wantLen     int
	}{
		{"single_annotation", []schema.Annotation{testAnnotation("foo")}, 1},
		{"multiple_annotations", []schema.Annotation{testAnnotation("foo"), testAnnotation("bar")}, 2},
		{"empty_annotations", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotated := mixin.AnnotateFields(testCustomMixin{}, tt.annotations...)
			fields := annotated.Fields()
			require.Len(t, fields, 2)
			for _, f := range fields {
				assert.Len(t, f.Descriptor().Annotations, tt.wantLen)
			}
		})
	}
}

func TestAnnotateFieldsPreservesOtherMethods(t *testing.T) {
	annotated := mixin.AnnotateFields(testCustomMixin{}, testAnnotation("test"))
	assert.Nil(t, annotated.Indexes())
	assert.Nil(t, annotated.Annotations())
}

func TestBuiltinTimeMixin(t *testing.T) {
	fields := mixin.Time{}.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "created_at", fields[0].Descriptor().Name)
	assert.Equal(t, "updated_at", fields[1].Descriptor().Name)
	assert.True(t, fields[0].Descriptor().Immutable)
	assert.True(t, fields[1].Descriptor().UpdateDefaultFunc)
}

func TestCustomMixinEmbedsSchema(t *testing.T) {
	type AuditMixin struct {
		mixin.Schema
	}
	var _ persisto.Mixin = (*AuditMixin)(nil)

	fields := []persisto.Field{
		field.String("created_by"),
		field.String("updated_by").Optional(),
	}
	require.Len(t, fields, 2)
	assert.Equal(t, "created_by", fields[0].Descriptor().Name)
	assert.Equal(t, "updated_by", fields[1].Descriptor().Name)
}
