package schema

// Annotation is implemented by values returned from a field, index, or
// entity's Annotations() method to attach dialect- or tooling-specific
// metadata without widening the core field/index builder API.
type Annotation interface {
	// Name identifies the annotation's namespace, e.g. "sql".
	Name() string
}

// Merger is implemented by annotations that know how to combine with a
// later annotation of the same Name(), e.g. when Mixin and entity
// annotations of the same kind both apply to a field.
type Merger interface {
	Merge(Annotation) Annotation
}

// CommentAnnotation attaches a human-readable comment to an entity, field,
// or index, surfaced in generated SQL DDL and documentation.
type CommentAnnotation struct {
	Text string
}

// Name implements Annotation.
func (CommentAnnotation) Name() string { return "Comment" }

// Comment returns a CommentAnnotation wrapping text.
func Comment(text string) *CommentAnnotation {
	return &CommentAnnotation{Text: text}
}
