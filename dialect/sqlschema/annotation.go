// Package sqlschema provides SQL-specific annotations attachable to fields,
// indexes, and entities, following ent's entsql annotation conventions.
//
// Field-level:
//
//	field.String("code").Annotations(sqlschema.Size(10))
//	field.String("data").Annotations(sqlschema.ColumnType("JSONB"))
//	field.Int("age").Annotations(sqlschema.Check("age >= 0"))
//	field.UUID("id", uuid.UUID{}).Annotations(sqlschema.DefaultExpr("gen_random_uuid()"))
//
// Foreign-key cascade actions:
//
//	field.Int64("owner_id").Annotations(sqlschema.OnDelete(sqlschema.Cascade))
//
// Index-level:
//
//	index.Fields("id").Annotations(sqlschema.IndexType("BTREE"), sqlschema.StorageParams("fillfactor=90"))
package sqlschema

import (
	"github.com/syssam/persisto/schema"
)

// AnnotationName is the name used for SQL annotations.
const AnnotationName = "sql"

// CascadeAction defines cascade behavior for foreign key constraints.
type CascadeAction string

const (
	Cascade    CascadeAction = "CASCADE"
	SetNull    CascadeAction = "SET NULL"
	Restrict   CascadeAction = "RESTRICT"
	SetDefault CascadeAction = "SET DEFAULT"
	NoAction   CascadeAction = "NO ACTION"
)

// Annotation holds SQL-specific settings for fields, foreign keys, and
// entities. Supports both functional construction (sqlschema.Size(10)) and
// struct literals (sqlschema.Annotation{Size: 10}).
type Annotation struct {
	// Table overrides the generated table name for an entity.
	Table string
	// Schema sets the database schema/namespace for multi-schema setups.
	Schema string
	// Size overrides the column size (e.g. VARCHAR(Size)).
	Size int64
	Precision int
	Scale     int
	// ColumnType sets a raw database column type, bypassing the default
	// per-dialect type mapping.
	ColumnType string
	// ColumnTypes sets the column type per dialect.
	ColumnTypes map[string]string
	Collation   string
	Charset     string
	// Check adds a CHECK constraint expression scoped to this column.
	Check string
	// Checks holds multiple named table-level CHECK constraints.
	Checks map[string]string
	// OnDelete/OnUpdate set the referential action for a foreign-key field.
	OnDelete CascadeAction
	OnUpdate CascadeAction
	// Default is a SQL literal default (used as-is in the DEFAULT clause).
	Default string
	// DefaultExpr is a SQL expression default, e.g. "CURRENT_TIMESTAMP".
	DefaultExpr string
	// DefaultExprs is a per-dialect override of DefaultExpr.
	DefaultExprs map[string]string
	// IndexType sets the index access method (BTREE, HASH, GIN, ...).
	IndexType string
	// StorageParams sets storage parameters for an index (fillfactor=90).
	StorageParams string
}

// Name implements schema.Annotation.
func (Annotation) Name() string { return AnnotationName }

var _ schema.Annotation = Annotation{}

// Table sets the database table name for an entity.
func Table(name string) Annotation { return Annotation{Table: name} }

// Schema sets the database schema for an entity.
func Schema(name string) Annotation { return Annotation{Schema: name} }

// Size sets the column size override.
func Size(size int64) Annotation { return Annotation{Size: size} }

// Precision sets a numeric column's precision.
func Precision(p int) Annotation { return Annotation{Precision: p} }

// Scale sets a numeric column's scale.
func Scale(s int) Annotation { return Annotation{Scale: s} }

// ColumnType sets a raw database column type.
func ColumnType(typ string) Annotation { return Annotation{ColumnType: typ} }

// Collation sets the collation for a string column.
func Collation(c string) Annotation { return Annotation{Collation: c} }

// Charset sets the character set for a string column.
func Charset(c string) Annotation { return Annotation{Charset: c} }

// Check adds a CHECK constraint to the column.
func Check(expr string) Annotation { return Annotation{Check: expr} }

// OnDelete sets the referential action for a foreign-key field.
func OnDelete(action CascadeAction) Annotation { return Annotation{OnDelete: action} }

// OnUpdate sets the referential action for a foreign-key field.
func OnUpdate(action CascadeAction) Annotation { return Annotation{OnUpdate: action} }

// Default sets a SQL literal default value.
func Default(value string) Annotation { return Annotation{Default: value} }

// DefaultExpr sets a SQL expression default value.
func DefaultExpr(expr string) Annotation { return Annotation{DefaultExpr: expr} }

// IndexType sets the index access method.
func IndexType(typ string) Annotation { return Annotation{IndexType: typ} }

// StorageParams sets index storage parameters.
func StorageParams(params string) Annotation { return Annotation{StorageParams: params} }

// Merge combines SQL annotations in order, later non-zero fields override
// earlier ones. Used when an entity-level annotation and a mixin-level
// annotation of the same kind both apply.
func Merge(annotations ...Annotation) Annotation {
	var out Annotation
	for _, a := range annotations {
		if a.Table != "" {
			out.Table = a.Table
		}
		if a.Schema != "" {
			out.Schema = a.Schema
		}
		if a.Size != 0 {
			out.Size = a.Size
		}
		if a.Precision != 0 {
			out.Precision = a.Precision
		}
		if a.Scale != 0 {
			out.Scale = a.Scale
		}
		if a.ColumnType != "" {
			out.ColumnType = a.ColumnType
		}
		if a.ColumnTypes != nil {
			out.ColumnTypes = a.ColumnTypes
		}
		if a.Collation != "" {
			out.Collation = a.Collation
		}
		if a.Charset != "" {
			out.Charset = a.Charset
		}
		if a.Check != "" {
			out.Check = a.Check
		}
		if a.Checks != nil {
			out.Checks = a.Checks
		}
		if a.OnDelete != "" {
			out.OnDelete = a.OnDelete
		}
		if a.OnUpdate != "" {
			out.OnUpdate = a.OnUpdate
		}
		if a.Default != "" {
			out.Default = a.Default
		}
		if a.DefaultExpr != "" {
			out.DefaultExpr = a.DefaultExpr
		}
		if a.DefaultExprs != nil {
			out.DefaultExprs = a.DefaultExprs
		}
		if a.IndexType != "" {
			out.IndexType = a.IndexType
		}
		if a.StorageParams != "" {
			out.StorageParams = a.StorageParams
		}
	}
	return out
}
