// Package persisto is a reflective, annotation-driven persistence engine:
// register a Go struct describing an entity's fields, indexes, and
// table-level lifecycle flags, and the engine derives a Schema Model,
// generates dialect SQL, and drives it through a generic Provider.
package persisto

import (
	"time"

	"github.com/syssam/persisto/schema"
	"github.com/syssam/persisto/schema/field"
	"github.com/syssam/persisto/schema/index"
)

// Field is implemented by every schema/field builder (field.String, ...).
type Field interface {
	Descriptor() *field.Descriptor
}

// Index is implemented by schema/index builders (index.Fields, ...).
type Index interface {
	Descriptor() *index.Descriptor
}

// Mixin is a reusable bundle of fields, indexes, and annotations that an
// entity schema can embed via its Mixin() method.
type Mixin interface {
	Fields() []Field
	Indexes() []Index
	Annotations() []schema.Annotation
}

// Config holds table-level settings: storage key overrides and the three
// lifecycle toggles that drive auto-injected columns (spec.md §3 invariants
// 1-3): EnableSoftDelete appends version/is_deleted, EnableExpiry appends
// absolute_expiration, EnableArchive appends is_archived.
type Config struct {
	Table            string
	Schema           string
	EnableSoftDelete bool
	EnableExpiry     bool
	EnableArchive    bool
	ExpirySpan       time.Duration
}

// Interface is implemented by every entity schema definition. Embed Schema
// to pick up zero-value defaults and override only what the entity needs.
type Interface interface {
	Fields() []Field
	Indexes() []Index
	Mixin() []Mixin
	Config() Config
	Annotations() []schema.Annotation
}

// Schema is the default, embeddable implementation of Interface. A
// concrete entity definition embeds Schema and overrides Fields/Indexes/
// Mixin/Config/Annotations as needed:
//
//	type User struct{ persisto.Schema }
//
//	func (User) Fields() []persisto.Field {
//	    return []persisto.Field{
//	        field.String("email").Unique(),
//	    }
//	}
type Schema struct{}

func (Schema) Fields() []Field                   { return nil }
func (Schema) Indexes() []Index                  { return nil }
func (Schema) Mixin() []Mixin                    { return nil }
func (Schema) Config() Config                    { return Config{} }
func (Schema) Annotations() []schema.Annotation   { return nil }

var _ Interface = (*Schema)(nil)
