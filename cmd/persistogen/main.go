// Command persistogen emits a small, entity-specific helper file: typed
// field-predicate constants (predicate.P[E]) for every column passed on
// the command line, each instantiated from the generic dialect/sql field
// type matching the column's declared schema type. It exists so a
// consumer doesn't have to hand-write predicate.P[E] boilerplate for
// every field they want to filter on.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/persisto/cmd/persistogen/internal/genfile"
)

func main() {
	var entity, pkg, outPath string
	var rawFields []string

	root := &cobra.Command{
		Use:   "persistogen",
		Short: "Generate typed predicate helpers for a persisto entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if entity == "" || len(rawFields) == 0 {
				return fmt.Errorf("--entity and at least one --field are required")
			}
			fields, err := parseFields(rawFields)
			if err != nil {
				return err
			}
			src, err := genfile.Generate(pkg, entity, fields)
			if err != nil {
				return err
			}
			return os.WriteFile(outPath, src, 0o644)
		},
	}
	root.Flags().StringVar(&entity, "entity", "", "Go struct name of the entity, e.g. User")
	root.Flags().StringVar(&pkg, "package", "generated", "package name for the output file")
	root.Flags().StringSliceVar(&rawFields, "field", nil,
		`column and schema type as "name:type" (string, text, int, int64, float64, bool, time, uuid, enum, json, bytes, other), repeatable`)
	root.Flags().StringVar(&outPath, "out", "predicate_gen.go", "output file path")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// parseFields splits each "name:type" flag value into a genfile.Field.
func parseFields(raw []string) ([]genfile.Field, error) {
	fields := make([]genfile.Field, 0, len(raw))
	for _, r := range raw {
		name, goType, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf(`--field %q must be "name:type"`, r)
		}
		fields = append(fields, genfile.Field{Name: name, GoType: goType})
	}
	return fields, nil
}
