// Package mixin provides optional, ready-to-use mixins for common
// schema patterns: timestamps, UUID primary keys, and tenant isolation
// fields.
//
//	func (User) Mixin() []persisto.Mixin {
//	    return []persisto.Mixin{
//	        mixin.Time{},
//	    }
//	}
package mixin

import (
	"time"

	"github.com/google/uuid"

	"github.com/syssam/persisto"
	"github.com/syssam/persisto/schema/field"
	"github.com/syssam/persisto/schema/mixin"
)

// CreateTime adds an immutable created_at field defaulting to time.Now.
type CreateTime struct{ mixin.Schema }

func (CreateTime) Fields() []persisto.Field {
	return []persisto.Field{
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

var _ persisto.Mixin = (*CreateTime)(nil)

// UpdateTime adds an updated_at field recomputed on every Update call.
type UpdateTime struct{ mixin.Schema }

func (UpdateTime) Fields() []persisto.Field {
	return []persisto.Field{
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

var _ persisto.Mixin = (*UpdateTime)(nil)

// Time composes CreateTime and UpdateTime.
type Time struct{ mixin.Schema }

func (Time) Fields() []persisto.Field {
	return append(CreateTime{}.Fields(), UpdateTime{}.Fields()...)
}

var _ persisto.Mixin = (*Time)(nil)

// ID adds a UUID primary key generated via google/uuid.
//
// For a custom ID scheme (e.g. Snowflake IDs), define your own mixin
// instead of using this one.
type ID struct{ mixin.Schema }

func (ID) Fields() []persisto.Field {
	return []persisto.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
	}
}

var _ persisto.Mixin = (*ID)(nil)

// TenantID adds an immutable tenant_id field for row-level multi-tenant
// isolation. Callers filter by it explicitly with a predicate (for example
// one built from dialect/sql's FieldEQ("tenant_id", ...)); this mixin only
// contributes the column.
type TenantID struct{ mixin.Schema }

func (TenantID) Fields() []persisto.Field {
	return []persisto.Field{
		field.String("tenant_id").Immutable().NotEmpty(),
	}
}

var _ persisto.Mixin = (*TenantID)(nil)
