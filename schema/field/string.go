package field

import (
	"fmt"
	"regexp"

	"github.com/syssam/persisto/schema"
)

// StringBuilder builds a VARCHAR-like field.
type StringBuilder struct{ base }

// String declares a bounded-length string field (VARCHAR).
func String(name string) *StringBuilder {
	return &StringBuilder{base{newDescriptor(name, TypeString, "string")}}
}

// Text declares an unbounded string field (TEXT).
func Text(name string) *StringBuilder {
	b := &StringBuilder{base{newDescriptor(name, TypeText, "string")}}
	return b
}

func (b *StringBuilder) Unique() *StringBuilder    { b.base = *b.base.unique(); return b }
func (b *StringBuilder) Optional() *StringBuilder  { b.base = *b.base.optional(); return b }
func (b *StringBuilder) Nillable() *StringBuilder  { b.base = *b.base.nillable(); return b }
func (b *StringBuilder) Immutable() *StringBuilder { b.base = *b.base.immutable(); return b }
func (b *StringBuilder) Sensitive() *StringBuilder { b.base = *b.base.sensitive(); return b }
func (b *StringBuilder) Comment(s string) *StringBuilder {
	b.base = *b.base.comment(s)
	return b
}
func (b *StringBuilder) Deprecated(reason string) *StringBuilder {
	b.base = *b.base.deprecated(reason)
	return b
}
func (b *StringBuilder) StorageKey(key string) *StringBuilder {
	b.base = *b.base.storageKey(key)
	return b
}

// ForeignKey declares this field as referencing "table.column"; loader.Load
// carries the reference through as Column.ForeignKeyRef for
// loader.ResolveForeignKeys to resolve once every related table is loaded.
func (b *StringBuilder) ForeignKey(ref string) *StringBuilder {
	b.d.ForeignKey = ref
	return b
}
func (b *StringBuilder) SchemaType(m map[string]string) *StringBuilder {
	b.base = *b.base.schemaType(m)
	return b
}
func (b *StringBuilder) Annotations(as ...schema.Annotation) *StringBuilder {
	b.base = *b.base.annotations(as...)
	return b
}
func (b *StringBuilder) ValidateCreate(tag string) *StringBuilder {
	b.base = *b.base.validateCreate(tag)
	return b
}
func (b *StringBuilder) ValidateUpdate(tag string) *StringBuilder {
	b.base = *b.base.validateUpdate(tag)
	return b
}

// MaxLen sets the column size and registers a max-length validator.
func (b *StringBuilder) MaxLen(n int64) *StringBuilder {
	b.d.Size = n
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if s, ok := v.(string); ok && int64(len(s)) > n {
			return fmt.Errorf("field %q: length %d exceeds max %d", b.d.Name, len(s), n)
		}
		return nil
	})
	return b
}

// MinLen registers a min-length validator.
func (b *StringBuilder) MinLen(n int64) *StringBuilder {
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if s, ok := v.(string); ok && int64(len(s)) < n {
			return fmt.Errorf("field %q: length %d is under min %d", b.d.Name, len(s), n)
		}
		return nil
	})
	return b
}

// NotEmpty rejects the zero-value empty string.
func (b *StringBuilder) NotEmpty() *StringBuilder {
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if s, ok := v.(string); ok && s == "" {
			return fmt.Errorf("field %q: must not be empty", b.d.Name)
		}
		return nil
	})
	return b
}

// Match rejects values that don't satisfy the regular expression.
func (b *StringBuilder) Match(re *regexp.Regexp) *StringBuilder {
	b.d.Validators = append(b.d.Validators, func(v any) error {
		if s, ok := v.(string); ok && !re.MatchString(s) {
			return fmt.Errorf("field %q: value does not match pattern %q", b.d.Name, re.String())
		}
		return nil
	})
	return b
}

// Email is shorthand for Match against a conservative email pattern.
func (b *StringBuilder) Email() *StringBuilder {
	return b.Match(emailRe)
}

// Default sets a literal or zero-arg function default.
func (b *StringBuilder) Default(v any) *StringBuilder {
	if _, ok := v.(func() string); ok {
		b.d.DefaultFunc = true
	}
	b.d.Default = v
	return b
}
