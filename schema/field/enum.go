package field

import (
	"fmt"

	"github.com/syssam/persisto/schema"
)

// EnumBuilder builds a finite-value-set string field.
type EnumBuilder struct{ base }

// Enum declares an enum field. Call Values to set the permitted set.
func Enum(name string) *EnumBuilder {
	return &EnumBuilder{base{newDescriptor(name, TypeEnum, "string")}}
}

// Values sets the permitted values and registers a membership validator.
func (b *EnumBuilder) Values(values ...string) *EnumBuilder {
	b.d.Enums = values
	b.d.Validators = append(b.d.Validators, func(v any) error {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		for _, allowed := range values {
			if s == allowed {
				return nil
			}
		}
		return fmt.Errorf("field %q: value %q is not one of %v", b.d.Name, s, values)
	})
	return b
}

func (b *EnumBuilder) Optional() *EnumBuilder  { b.base = *b.base.optional(); return b }
func (b *EnumBuilder) Nillable() *EnumBuilder  { b.base = *b.base.nillable(); return b }
func (b *EnumBuilder) Immutable() *EnumBuilder { b.base = *b.base.immutable(); return b }
func (b *EnumBuilder) Comment(s string) *EnumBuilder {
	b.base = *b.base.comment(s)
	return b
}
func (b *EnumBuilder) StorageKey(key string) *EnumBuilder {
	b.base = *b.base.storageKey(key)
	return b
}
func (b *EnumBuilder) Annotations(as ...schema.Annotation) *EnumBuilder {
	b.base = *b.base.annotations(as...)
	return b
}
func (b *EnumBuilder) Default(v string) *EnumBuilder {
	b.d.Default = v
	return b
}
