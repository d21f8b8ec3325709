package field

import "github.com/syssam/persisto/schema"

// JSONBuilder builds a JSON-encoded field, stored as JSON/JSONB/TEXT
// depending on dialect and serialized by the mapper via encoding/json.
type JSONBuilder struct{ base }

// JSON declares a JSON field. typ pins the Go type used for
// marshal/unmarshal, matching ent's convention of passing a zero value.
func JSON(name string, typ any) *JSONBuilder {
	return &JSONBuilder{base{newDescriptor(name, TypeJSON, goType(typ))}}
}

func (b *JSONBuilder) Optional() *JSONBuilder  { b.base = *b.base.optional(); return b }
func (b *JSONBuilder) Nillable() *JSONBuilder  { b.base = *b.base.nillable(); return b }
func (b *JSONBuilder) Immutable() *JSONBuilder { b.base = *b.base.immutable(); return b }
func (b *JSONBuilder) Comment(s string) *JSONBuilder {
	b.base = *b.base.comment(s)
	return b
}
func (b *JSONBuilder) StorageKey(key string) *JSONBuilder {
	b.base = *b.base.storageKey(key)
	return b
}
func (b *JSONBuilder) SchemaType(m map[string]string) *JSONBuilder {
	b.base = *b.base.schemaType(m)
	return b
}
func (b *JSONBuilder) Annotations(as ...schema.Annotation) *JSONBuilder {
	b.base = *b.base.annotations(as...)
	return b
}
func (b *JSONBuilder) Default(fn any) *JSONBuilder {
	b.d.DefaultFunc = true
	b.d.Default = fn
	return b
}

// BytesBuilder builds a raw binary field (BLOB/BYTEA).
type BytesBuilder struct{ base }

// Bytes declares a []byte field.
func Bytes(name string) *BytesBuilder {
	return &BytesBuilder{base{newDescriptor(name, TypeBytes, "[]byte")}}
}

func (b *BytesBuilder) Optional() *BytesBuilder  { b.base = *b.base.optional(); return b }
func (b *BytesBuilder) Nillable() *BytesBuilder  { b.base = *b.base.nillable(); return b }
func (b *BytesBuilder) Immutable() *BytesBuilder { b.base = *b.base.immutable(); return b }
func (b *BytesBuilder) Sensitive() *BytesBuilder { b.base = *b.base.sensitive(); return b }
func (b *BytesBuilder) Comment(s string) *BytesBuilder {
	b.base = *b.base.comment(s)
	return b
}
func (b *BytesBuilder) StorageKey(key string) *BytesBuilder {
	b.base = *b.base.storageKey(key)
	return b
}
func (b *BytesBuilder) MaxLen(n int64) *BytesBuilder {
	b.d.Size = n
	return b
}
func (b *BytesBuilder) Annotations(as ...schema.Annotation) *BytesBuilder {
	b.base = *b.base.annotations(as...)
	return b
}

func goType(typ any) string {
	switch typ.(type) {
	case string:
		return "string"
	case map[string]any:
		return "map[string]any"
	default:
		return "any"
	}
}
