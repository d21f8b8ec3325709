// Package genfile renders the predicate-constant source file persistogen
// writes for one entity, separated from main so it's testable without
// exec'ing the CLI.
package genfile

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/tools/imports"
)

// TableName returns entity's lower-cased, pluralized name (User -> users).
// This is not loader.Load's default table name, which is the entity's type
// name unchanged.
func TableName(entity string) string {
	return inflect.Pluralize(strings.ToLower(entity))
}

// Field is one column persistogen renders a predicate constant for.
// GoType names a schema.ColumnType ("string", "int", "int64", "float64",
// "bool", "time", "uuid", "enum", "json", "bytes", "other", "text") and
// picks which generic dialect/sql field type backs the constant.
type Field struct {
	Name   string
	GoType string
}

// fieldCtor maps GoType to the generic field constructor that matches it
// and, for the two-parameter field types, the second type argument.
func fieldCtor(goType string) (name string, typeArg jen.Code) {
	switch goType {
	case "bool":
		return "BoolField", nil
	case "int":
		return "IntField", nil
	case "int64":
		return "Int64Field", nil
	case "float64":
		return "Float64Field", nil
	case "time":
		return "TimeField", jen.Qual("time", "Time")
	case "uuid":
		return "UUIDField", jen.Qual("github.com/google/uuid", "UUID")
	case "enum":
		return "EnumField", jen.Id("string")
	case "json", "bytes", "other":
		return "OtherField", jen.Id("any")
	default: // "string", "text"
		return "StringField", nil
	}
}

// Generate renders, then gofmt/goimports-cleans, a Go source file
// declaring one dialect/sql field-predicate constant per column in
// fields, each instantiated with the generic type that matches its
// schema.ColumnType so the constant only ever compiles against the Go
// type the column actually holds.
func Generate(pkgName, entity string, fields []Field) ([]byte, error) {
	f := jen.NewFile(pkgName)
	f.HeaderComment(fmt.Sprintf("Code generated by persistogen for %s (table %q). DO NOT EDIT.", entity, TableName(entity)))

	for _, col := range fields {
		constName := entity + inflect.Camelize(col.Name)
		ctor, typeArg := fieldCtor(col.GoType)
		typeArgs := []jen.Code{jen.Qual("github.com/syssam/persisto/predicate", "P").Index(jen.Id(entity))}
		if typeArg != nil {
			typeArgs = append(typeArgs, typeArg)
		}
		f.Var().Id(constName).Op("=").
			Qual("github.com/syssam/persisto/dialect/sql", ctor).Types(typeArgs...).
			Call(jen.Lit(col.Name))
	}

	var buf strings.Builder
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("genfile: rendering %s: %w", entity, err)
	}
	return imports.Process("generated.go", []byte(buf.String()), nil)
}
