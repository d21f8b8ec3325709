package field

import "github.com/syssam/persisto/schema"

// BoolBuilder builds a boolean field.
type BoolBuilder struct{ base }

// Bool declares a boolean field.
func Bool(name string) *BoolBuilder {
	return &BoolBuilder{base{newDescriptor(name, TypeBool, "bool")}}
}

func (b *BoolBuilder) Optional() *BoolBuilder  { b.base = *b.base.optional(); return b }
func (b *BoolBuilder) Nillable() *BoolBuilder  { b.base = *b.base.nillable(); return b }
func (b *BoolBuilder) Immutable() *BoolBuilder { b.base = *b.base.immutable(); return b }
func (b *BoolBuilder) Comment(s string) *BoolBuilder {
	b.base = *b.base.comment(s)
	return b
}
func (b *BoolBuilder) StorageKey(key string) *BoolBuilder {
	b.base = *b.base.storageKey(key)
	return b
}
func (b *BoolBuilder) Annotations(as ...schema.Annotation) *BoolBuilder {
	b.base = *b.base.annotations(as...)
	return b
}
func (b *BoolBuilder) Default(v bool) *BoolBuilder {
	b.d.Default = v
	return b
}
