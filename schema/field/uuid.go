package field

import "github.com/syssam/persisto/schema"

// UUIDBuilder builds a UUID-typed field (stored as CHAR(36)/UUID/TEXT
// depending on dialect, bound to google/uuid.UUID in Go).
type UUIDBuilder struct{ base }

// UUID declares a UUID field. typ pins the Go type used for reflection,
// matching ent's convention of passing a zero value to infer the type.
func UUID(name string, typ any) *UUIDBuilder {
	return &UUIDBuilder{base{newDescriptor(name, TypeUUID, "uuid.UUID")}}
}

func (b *UUIDBuilder) Unique() *UUIDBuilder    { b.base = *b.base.unique(); return b }
func (b *UUIDBuilder) Optional() *UUIDBuilder  { b.base = *b.base.optional(); return b }
func (b *UUIDBuilder) Nillable() *UUIDBuilder  { b.base = *b.base.nillable(); return b }
func (b *UUIDBuilder) Immutable() *UUIDBuilder { b.base = *b.base.immutable(); return b }
func (b *UUIDBuilder) Comment(s string) *UUIDBuilder {
	b.base = *b.base.comment(s)
	return b
}
func (b *UUIDBuilder) StorageKey(key string) *UUIDBuilder {
	b.base = *b.base.storageKey(key)
	return b
}
func (b *UUIDBuilder) Annotations(as ...schema.Annotation) *UUIDBuilder {
	b.base = *b.base.annotations(as...)
	return b
}

// Default accepts a zero-arg "func() uuid.UUID" (e.g. uuid.New), called
// once per row at create time.
func (b *UUIDBuilder) Default(fn any) *UUIDBuilder {
	b.d.DefaultFunc = true
	b.d.Default = fn
	return b
}
