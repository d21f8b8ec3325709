// Package mixin provides reusable bundles of fields, indexes, and
// annotations that an entity schema can embed via its Mixin() method.
//
// Creating a custom mixin:
//
//	type AuditMixin struct {
//	    mixin.Schema
//	}
//
//	func (AuditMixin) Fields() []persisto.Field {
//	    return []persisto.Field{
//	        field.String("created_by").Optional(),
//	        field.String("updated_by").Optional(),
//	    }
//	}
//
// Using a mixin:
//
//	func (User) Mixin() []persisto.Mixin {
//	    return []persisto.Mixin{
//	        mixin.Time{},
//	    }
//	}
package mixin

import (
	"time"

	"github.com/syssam/persisto"
	"github.com/syssam/persisto/schema"
	"github.com/syssam/persisto/schema/field"
)

// Schema is the default implementation of persisto.Mixin. Embed it in
// custom mixin definitions and override only the methods you need.
type Schema struct{}

func (Schema) Fields() []persisto.Field               { return nil }
func (Schema) Indexes() []persisto.Index               { return nil }
func (Schema) Annotations() []schema.Annotation        { return nil }

var _ persisto.Mixin = (*Schema)(nil)

// Time adds created_at and updated_at timestamp fields. This is a plain
// convenience mixin; the loader adds no timestamp audit columns of its own
// (the only columns it appends are the version, is_deleted,
// absolute_expiration and is_archived columns the entity's Config enables).
type Time struct{ Schema }

func (Time) Fields() []persisto.Field {
	return []persisto.Field{
		field.Time("created_at").Default(time.Now).Immutable().Comment("creation timestamp"),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now).Comment("last write timestamp"),
	}
}

// CreateTime adds only a created_at field.
type CreateTime struct{ Schema }

func (CreateTime) Fields() []persisto.Field {
	return []persisto.Field{
		field.Time("created_at").Default(time.Now).Immutable().Comment("creation timestamp"),
	}
}

// UpdateTime adds only an updated_at field.
type UpdateTime struct{ Schema }

func (UpdateTime) Fields() []persisto.Field {
	return []persisto.Field{
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now).Comment("last write timestamp"),
	}
}

// AnnotateFields wraps a mixin and adds annotations to every field it
// contributes, useful for cross-cutting concerns like dialect overrides.
func AnnotateFields(m persisto.Mixin, annotations ...schema.Annotation) persisto.Mixin {
	return fieldAnnotator{Mixin: m, annotations: annotations}
}

type fieldAnnotator struct {
	persisto.Mixin
	annotations []schema.Annotation
}

func (a fieldAnnotator) Fields() []persisto.Field {
	fields := a.Mixin.Fields()
	for i := range fields {
		desc := fields[i].Descriptor()
		desc.Annotations = append(desc.Annotations, a.annotations...)
	}
	return fields
}
