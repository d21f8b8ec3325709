// Package field provides fluent builders for declaring entity fields: the
// database column name, Go type, nullability, defaults, validators, and
// dialect annotations that the loader turns into a Table (spec.md §3, §4.1).
package field

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/syssam/persisto/schema"
)

// Type is the logical field type. It mirrors
// dialect/sql/schema.ColumnType's string values so the loader can translate
// a Descriptor into a Column without a lookup table.
type Type string

const (
	TypeInt     Type = "int"
	TypeInt64   Type = "int64"
	TypeFloat64 Type = "float64"
	TypeBool    Type = "bool"
	TypeString  Type = "string"
	TypeText    Type = "text"
	TypeTime    Type = "time"
	TypeUUID    Type = "uuid"
	TypeEnum    Type = "enum"
	TypeJSON    Type = "json"
	TypeBytes   Type = "bytes"
	TypeOther   Type = "other"
)

// TypeInfo describes the Go/DB type pairing for a field.
type TypeInfo struct {
	Type    Type
	Ident   string // Go type identifier, e.g. "string", "time.Time", "uuid.UUID".
	Nillable bool
}

// Validator validates a field's runtime value, returning a descriptive
// error when invalid. Built-in validators (NotEmpty, Range, ...) are
// closures of this type; ValidateCreate/ValidateUpdate accept the same
// shape so both paths share one error format.
type Validator func(any) error

// Descriptor is the fully-resolved, introspectable description of one
// field, produced by calling Descriptor() on any of the type-specific
// builders below.
type Descriptor struct {
	Name       string
	GoName     string
	Info       *TypeInfo
	Tag        string // optional struct tag override for generated structs.
	Size       int64
	Precision  int
	Scale      int
	Enums      []string
	Unique     bool
	Nillable   bool
	Optional   bool
	Immutable  bool
	Sensitive  bool
	Comment    string
	Deprecated bool
	DeprecatedReason string

	Default       any
	DefaultFunc   bool // true when Default holds a "func() T" to call per-row.
	UpdateDefault any
	UpdateDefaultFunc bool

	StorageKey string // overrides the derived column name.
	ForeignKey string // "table.column" this field references, if any.
	SchemaType map[string]string

	Validators       []Validator
	CreateValidators []Validator
	UpdateValidators []Validator

	Annotations []schema.Annotation
}

func goName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "id" {
			b.WriteString("ID")
			continue
		}
		for i, r := range part {
			if i == 0 {
				r = unicode.ToUpper(r)
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func newDescriptor(name string, t Type, ident string) *Descriptor {
	return &Descriptor{
		Name:   name,
		GoName: goName(name),
		Info:   &TypeInfo{Type: t, Ident: ident},
	}
}

// base holds the Descriptor shared by every typed builder and implements
// the options common to all field kinds. Typed builders embed it and
// return themselves from each method to keep the fluent chain typed.
type base struct {
	d *Descriptor
}

func (b base) Descriptor() *Descriptor { return b.d }

func (b base) unique() *base    { b.d.Unique = true; return &b }
func (b base) optional() *base  { b.d.Optional = true; return &b }
func (b base) nillable() *base  { b.d.Nillable = true; b.d.Info.Nillable = true; return &b }
func (b base) immutable() *base { b.d.Immutable = true; return &b }
func (b base) sensitive() *base { b.d.Sensitive = true; return &b }
func (b base) comment(s string) *base {
	b.d.Comment = s
	return &b
}
func (b base) deprecated(reason string) *base {
	b.d.Deprecated = true
	b.d.DeprecatedReason = reason
	return &b
}
func (b base) storageKey(key string) *base { b.d.StorageKey = key; return &b }
func (b base) schemaType(m map[string]string) *base {
	b.d.SchemaType = m
	return &b
}
func (b base) annotations(as ...schema.Annotation) *base {
	b.d.Annotations = append(b.d.Annotations, as...)
	return &b
}
func (b base) validateCreate(tag string) *base {
	b.d.CreateValidators = append(b.d.CreateValidators, tagValidator(b.d.Name, tag))
	return &b
}
func (b base) validateUpdate(tag string) *base {
	b.d.UpdateValidators = append(b.d.UpdateValidators, tagValidator(b.d.Name, tag))
	return &b
}

// tagValidator interprets a small, go-playground/validator-flavored subset
// of struct tags ("required", "omitempty", "min=N", "max=N", "email") using
// only the primitives this package already implements, so the engine never
// takes on an unground dependency just to parse a tag string.
func tagValidator(field, tag string) Validator {
	rules := strings.Split(tag, ",")
	optional := false
	for _, r := range rules {
		if r == "omitempty" {
			optional = true
		}
	}
	return func(v any) error {
		if v == nil || v == "" {
			if optional {
				return nil
			}
			for _, r := range rules {
				if r == "required" {
					return fmt.Errorf("field %q: value is required", field)
				}
			}
			return nil
		}
		for _, r := range rules {
			switch {
			case r == "email":
				if s, ok := v.(string); ok && !emailRe.MatchString(s) {
					return fmt.Errorf("field %q: invalid email", field)
				}
			case strings.HasPrefix(r, "min="):
				if n, ok := v.(int); ok {
					var min int
					fmt.Sscanf(strings.TrimPrefix(r, "min="), "%d", &min)
					if n < min {
						return fmt.Errorf("field %q: must be >= %d", field, min)
					}
				}
			case strings.HasPrefix(r, "max="):
				if n, ok := v.(int); ok {
					var max int
					fmt.Sscanf(strings.TrimPrefix(r, "max="), "%d", &max)
					if n > max {
						return fmt.Errorf("field %q: must be <= %d", field, max)
					}
				}
			}
		}
		return nil
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
