package field

import (
	"fmt"

	"github.com/syssam/persisto/schema"
)

// IntBuilder builds an int (32-bit range, stored as INTEGER) field.
type IntBuilder struct{ base }

// Int declares an int field.
func Int(name string) *IntBuilder {
	return &IntBuilder{base{newDescriptor(name, TypeInt, "int")}}
}

func (b *IntBuilder) Unique() *IntBuilder    { b.base = *b.base.unique(); return b }
func (b *IntBuilder) Optional() *IntBuilder  { b.base = *b.base.optional(); return b }
func (b *IntBuilder) Nillable() *IntBuilder  { b.base = *b.base.nillable(); return b }
func (b *IntBuilder) Immutable() *IntBuilder { b.base = *b.base.immutable(); return b }
func (b *IntBuilder) Comment(s string) *IntBuilder {
	b.base = *b.base.comment(s)
	return b
}
func (b *IntBuilder) StorageKey(key string) *IntBuilder {
	b.base = *b.base.storageKey(key)
	return b
}
func (b *IntBuilder) Annotations(as ...schema.Annotation) *IntBuilder {
	b.base = *b.base.annotations(as...)
	return b
}
func (b *IntBuilder) Default(v any) *IntBuilder {
	if _, ok := v.(func() int); ok {
		b.d.DefaultFunc = true
	}
	b.d.Default = v
	return b
}
func (b *IntBuilder) Min(n int) *IntBuilder {
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if i, ok := v.(int); ok && i < n {
			return fmt.Errorf("field %q: %d is under min %d", b.d.Name, i, n)
		}
		return nil
	})
	return b
}
func (b *IntBuilder) Max(n int) *IntBuilder {
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if i, ok := v.(int); ok && i > n {
			return fmt.Errorf("field %q: %d exceeds max %d", b.d.Name, i, n)
		}
		return nil
	})
	return b
}
func (b *IntBuilder) NonNegative() *IntBuilder { return b.Min(0) }
func (b *IntBuilder) Positive() *IntBuilder {
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if i, ok := v.(int); ok && i <= 0 {
			return fmt.Errorf("field %q: must be positive", b.d.Name)
		}
		return nil
	})
	return b
}
func (b *IntBuilder) Range(min, max int) *IntBuilder { return b.Min(min).Max(max) }

// Int64Builder builds an int64 (BIGINT) field.
type Int64Builder struct{ base }

// Int64 declares an int64 field.
func Int64(name string) *Int64Builder {
	return &Int64Builder{base{newDescriptor(name, TypeInt64, "int64")}}
}

func (b *Int64Builder) Unique() *Int64Builder    { b.base = *b.base.unique(); return b }
func (b *Int64Builder) Optional() *Int64Builder  { b.base = *b.base.optional(); return b }
func (b *Int64Builder) Nillable() *Int64Builder  { b.base = *b.base.nillable(); return b }
func (b *Int64Builder) Immutable() *Int64Builder { b.base = *b.base.immutable(); return b }
func (b *Int64Builder) Comment(s string) *Int64Builder {
	b.base = *b.base.comment(s)
	return b
}
func (b *Int64Builder) StorageKey(key string) *Int64Builder {
	b.base = *b.base.storageKey(key)
	return b
}
func (b *Int64Builder) ForeignKey(ref string) *Int64Builder {
	b.d.ForeignKey = ref
	return b
}
func (b *Int64Builder) Annotations(as ...schema.Annotation) *Int64Builder {
	b.base = *b.base.annotations(as...)
	return b
}
func (b *Int64Builder) Default(v any) *Int64Builder {
	if _, ok := v.(func() int64); ok {
		b.d.DefaultFunc = true
	}
	b.d.Default = v
	return b
}
func (b *Int64Builder) Min(n int64) *Int64Builder {
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if i, ok := v.(int64); ok && i < n {
			return fmt.Errorf("field %q: %d is under min %d", b.d.Name, i, n)
		}
		return nil
	})
	return b
}
func (b *Int64Builder) Max(n int64) *Int64Builder {
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if i, ok := v.(int64); ok && i > n {
			return fmt.Errorf("field %q: %d exceeds max %d", b.d.Name, i, n)
		}
		return nil
	})
	return b
}
func (b *Int64Builder) NonNegative() *Int64Builder { return b.Min(0) }
func (b *Int64Builder) Range(min, max int64) *Int64Builder { return b.Min(min).Max(max) }

// Float64Builder builds a double-precision floating point field.
type Float64Builder struct{ base }

// Float64 declares a float64 field.
func Float64(name string) *Float64Builder {
	return &Float64Builder{base{newDescriptor(name, TypeFloat64, "float64")}}
}

func (b *Float64Builder) Unique() *Float64Builder    { b.base = *b.base.unique(); return b }
func (b *Float64Builder) Optional() *Float64Builder  { b.base = *b.base.optional(); return b }
func (b *Float64Builder) Nillable() *Float64Builder  { b.base = *b.base.nillable(); return b }
func (b *Float64Builder) Immutable() *Float64Builder { b.base = *b.base.immutable(); return b }
func (b *Float64Builder) Comment(s string) *Float64Builder {
	b.base = *b.base.comment(s)
	return b
}
func (b *Float64Builder) StorageKey(key string) *Float64Builder {
	b.base = *b.base.storageKey(key)
	return b
}
func (b *Float64Builder) Annotations(as ...schema.Annotation) *Float64Builder {
	b.base = *b.base.annotations(as...)
	return b
}
func (b *Float64Builder) Default(v any) *Float64Builder {
	if _, ok := v.(func() float64); ok {
		b.d.DefaultFunc = true
	}
	b.d.Default = v
	return b
}
func (b *Float64Builder) Range(min, max float64) *Float64Builder {
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if f, ok := v.(float64); ok && (f < min || f > max) {
			return fmt.Errorf("field %q: %v outside range [%v, %v]", b.d.Name, f, min, max)
		}
		return nil
	})
	return b
}
func (b *Float64Builder) Positive() *Float64Builder {
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if f, ok := v.(float64); ok && f <= 0 {
			return fmt.Errorf("field %q: must be positive", b.d.Name)
		}
		return nil
	})
	return b
}
