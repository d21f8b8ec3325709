// Package index provides a fluent builder for declaring table indexes
// (spec.md §3 Index annotation).
package index

import "github.com/syssam/persisto/schema"

// Descriptor is the resolved description of one index.
type Descriptor struct {
	Fields      []string
	Edges       []string // relation names; reserved, unused by the loader (no edge/relation model, spec.md Non-goals).
	Unique      bool
	StorageKey  string
	Annotations []schema.Annotation
}

// Builder is the fluent index declaration.
type Builder struct {
	d *Descriptor
}

// Fields declares the index's leading column list.
func Fields(fields ...string) *Builder {
	return &Builder{d: &Descriptor{Fields: fields}}
}

// Edges appends relation names to the index. Reserved for forward
// compatibility; the loader does not currently translate these into FK
// participation since this engine has no graph/edge model.
func Edges(edges ...string) *Builder {
	return &Builder{d: &Descriptor{Edges: edges}}
}

// Fields appends to the builder's field list.
func (b *Builder) Fields(fields ...string) *Builder {
	b.d.Fields = append(b.d.Fields, fields...)
	return b
}

// Edges appends to the builder's edge list.
func (b *Builder) Edges(edges ...string) *Builder {
	b.d.Edges = append(b.d.Edges, edges...)
	return b
}

// Unique marks the index as enforcing uniqueness.
func (b *Builder) Unique() *Builder {
	b.d.Unique = true
	return b
}

// StorageKey overrides the generated index name.
func (b *Builder) StorageKey(key string) *Builder {
	b.d.StorageKey = key
	return b
}

// Annotations attaches dialect-specific annotations (sqlschema.IndexType, ...).
func (b *Builder) Annotations(as ...schema.Annotation) *Builder {
	b.d.Annotations = append(b.d.Annotations, as...)
	return b
}

// Descriptor returns the built index description.
func (b *Builder) Descriptor() *Descriptor { return b.d }
