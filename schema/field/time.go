package field

import (
	"time"

	"github.com/syssam/persisto/schema"
)

// TimeBuilder builds a timestamp field.
type TimeBuilder struct{ base }

// Time declares a time.Time field.
func Time(name string) *TimeBuilder {
	return &TimeBuilder{base{newDescriptor(name, TypeTime, "time.Time")}}
}

func (b *TimeBuilder) Optional() *TimeBuilder  { b.base = *b.base.optional(); return b }
func (b *TimeBuilder) Nillable() *TimeBuilder  { b.base = *b.base.nillable(); return b }
func (b *TimeBuilder) Immutable() *TimeBuilder { b.base = *b.base.immutable(); return b }
func (b *TimeBuilder) Comment(s string) *TimeBuilder {
	b.base = *b.base.comment(s)
	return b
}
func (b *TimeBuilder) StorageKey(key string) *TimeBuilder {
	b.base = *b.base.storageKey(key)
	return b
}
func (b *TimeBuilder) Annotations(as ...schema.Annotation) *TimeBuilder {
	b.base = *b.base.annotations(as...)
	return b
}

// Default accepts either a literal time.Time or a zero-arg "func() time.Time"
// (e.g. time.Now), called once per row at create time.
func (b *TimeBuilder) Default(v any) *TimeBuilder {
	if _, ok := v.(func() time.Time); ok {
		b.d.DefaultFunc = true
	}
	b.d.Default = v
	return b
}

// UpdateDefault sets a value recomputed on every Update call (the
// LastWriteTime convention, spec.md §3 invariant 3).
func (b *TimeBuilder) UpdateDefault(v any) *TimeBuilder {
	b.d.UpdateDefault = v
	b.d.UpdateDefaultFunc = true
	return b
}
