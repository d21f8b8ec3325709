package field

import "github.com/syssam/persisto/schema"

// OtherBuilder builds a field backed by a custom Go type that implements
// database/sql's Valuer/Scanner pair (ent's field.Other convention).
type OtherBuilder struct{ base }

// Other declares a custom-typed field. typ pins the Go type for
// reflection; SchemaType must then describe the concrete column type per
// dialect since there is no default mapping for an opaque Go type.
func Other(name string, typ any) *OtherBuilder {
	return &OtherBuilder{base{newDescriptor(name, TypeOther, goType(typ))}}
}

// Custom is an alias for Other, matching the doc-comment example
// field.Custom("amount", decimal.Decimal{}).
func Custom(name string, typ any) *OtherBuilder { return Other(name, typ) }

func (b *OtherBuilder) Unique() *OtherBuilder    { b.base = *b.base.unique(); return b }
func (b *OtherBuilder) Optional() *OtherBuilder  { b.base = *b.base.optional(); return b }
func (b *OtherBuilder) Nillable() *OtherBuilder  { b.base = *b.base.nillable(); return b }
func (b *OtherBuilder) Immutable() *OtherBuilder { b.base = *b.base.immutable(); return b }
func (b *OtherBuilder) Comment(s string) *OtherBuilder {
	b.base = *b.base.comment(s)
	return b
}
func (b *OtherBuilder) StorageKey(key string) *OtherBuilder {
	b.base = *b.base.storageKey(key)
	return b
}

// SchemaType sets the required per-dialect column type for this custom Go
// type, e.g. map[string]string{dialect.Postgres: "decimal(10,2)"}.
func (b *OtherBuilder) SchemaType(m map[string]string) *OtherBuilder {
	b.base = *b.base.schemaType(m)
	return b
}
func (b *OtherBuilder) Annotations(as ...schema.Annotation) *OtherBuilder {
	b.base = *b.base.annotations(as...)
	return b
}
func (b *OtherBuilder) Default(v any) *OtherBuilder {
	b.d.Default = v
	return b
}
