// Package mixin provides reusable schema components: common fields and
// indexes shared across multiple entity schemas.
//
// Using a mixin:
//
//	type User struct{ persisto.Schema }
//
//	func (User) Mixin() []persisto.Mixin {
//	    return []persisto.Mixin{
//	        mixin.Time{},
//	    }
//	}
//
// The resulting User entity gets created_at (immutable) and updated_at
// (recomputed on every update).
//
// Creating a custom mixin:
//
//	type AuditMixin struct {
//	    mixin.Schema
//	}
//
//	func (AuditMixin) Fields() []persisto.Field {
//	    return []persisto.Field{
//	        field.String("created_by"),
//	        field.String("updated_by").Optional(),
//	    }
//	}
//
// Mixin fields are added after the schema's own fields, in the order the
// mixins are listed; a field whose name is already present (declared by the
// schema or by an earlier mixin) is skipped, so the first declaration wins.
package mixin
