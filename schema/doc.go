// Package schema holds the Annotation interfaces (Annotation, Merger,
// CommentAnnotation) that fields, indexes and entities attach; the Schema
// Model itself (Table, Column, ...) is in dialect/sql/schema. Entity
// definitions don't live here either: a concrete entity embeds
// persisto.Schema and builds its columns/indexes with this package's
// subpackages:
//
//   - [field]: column builders for entity attributes
//   - [index]: index builders for database indexes
//   - [mixin]: reusable bundles of fields/indexes/annotations
//
// # Quick Start
//
// Define an entity schema by embedding persisto.Schema and implementing
// the methods it needs:
//
//	type User struct{ persisto.Schema }
//
//	func (User) Mixin() []persisto.Mixin {
//	    return []persisto.Mixin{
//	        mixin.Time{},  // created_at and updated_at timestamps
//	    }
//	}
//
//	func (User) Fields() []persisto.Field {
//	    return []persisto.Field{
//	        field.String("email").Unique().Email().MaxLen(255),
//	        field.String("name").NotEmpty().MaxLen(100),
//	        field.Enum("status").Values("active", "suspended", "deleted"),
//	    }
//	}
//
//	func (User) Indexes() []persisto.Index {
//	    return []persisto.Index{
//	        index.Fields("email").Unique(),
//	        index.Fields("status", "created_at"),
//	    }
//	}
//
//	func (User) Config() persisto.Config {
//	    return persisto.Config{EnableSoftDelete: true}
//	}
//
// # Field Types
//
// The field package provides builders for all common field types:
//
//	field.String("name")           // VARCHAR
//	field.Text("bio")              // TEXT (unlimited)
//	field.Int64("count")           // BIGINT
//	field.Float64("price")         // DOUBLE PRECISION
//	field.Bool("active")           // BOOLEAN
//	field.Time("created_at")       // TIMESTAMP
//	field.UUID("id", uuid.UUID{})  // UUID
//	field.Enum("status")           // ENUM
//	field.JSON("metadata", M{})    // JSONB
//	field.Bytes("data")            // BYTEA
//
// # Validation
//
// Fields support both built-in validators and struct tag validators:
//
//	// Built-in validators (self-documenting)
//	field.String("email").NotEmpty().MaxLen(255).Email()
//	field.Int64("age").NonNegative().Max(150)
//	field.Float64("rating").Range(0, 5)
//
//	// Struct tag validators (go-playground/validator syntax)
//	field.String("password").ValidateCreate("required,min=8,max=72")
//
// # Mixins
//
// The mixin package provides reusable schema components:
//
//	mixin.Time{}        // created_at, updated_at timestamps
//	mixin.CreateTime{}  // created_at only
//	mixin.UpdateTime{}  // updated_at only
//
// # Annotations
//
// schema.Annotation lets a field, index, or entity attach dialect-specific
// metadata without widening the builder API:
//
//	field.String("data").
//	    Annotations(sqlschema.ColumnType("JSONB"), sqlschema.Check("length(data) > 0"))
//
// For detailed documentation on each subpackage, see their respective
// package docs.
package schema
