// Package mapper translates between a dialect/sql/schema.Table (the Schema
// Model) and concrete SQL text plus Go entity values: it owns every DDL and
// DML string the engine emits, and the reflection that binds struct fields
// to named parameters and scans result rows back into structs (spec.md
// §3, §4.2).
package mapper

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	dsql "github.com/syssam/persisto/dialect/sql"
	"github.com/syssam/persisto/dialect/sql/schema"
)

// CreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement for t.
func CreateTableSQL(dialectName string, t *schema.Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(schema.EscapeQualified(dialectName, t.FullName()))
	b.WriteString(" (\n")

	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+len(t.Checks)+1)
	for _, c := range t.Columns {
		lines = append(lines, "  "+columnDefSQL(dialectName, c))
	}
	if pk := t.PrimaryKeyColumns(); len(pk) > 0 {
		names := make([]string, len(pk))
		for i, c := range pk {
			names[i] = schema.Escape(dialectName, c.Name)
		}
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(names, ", ")+")")
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, "  "+foreignKeySQL(dialectName, fk))
	}
	for _, ck := range t.Checks {
		lines = append(lines, fmt.Sprintf("  CONSTRAINT %s CHECK (%s)", schema.Escape(dialectName, ck.Name), ck.Expr))
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")
	return b.String()
}

func columnDefSQL(dialectName string, c *schema.Column) string {
	var b strings.Builder
	b.WriteString(schema.Escape(dialectName, c.Name))
	b.WriteString(" ")
	b.WriteString(c.SQLType(dialectName))
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Unique && !c.PrimaryKey {
		b.WriteString(" UNIQUE")
	}
	switch {
	case c.DefaultExpr != "":
		b.WriteString(" DEFAULT ")
		b.WriteString(c.DefaultExpr)
	case c.Default != nil && !isFuncValue(c.Default):
		b.WriteString(" DEFAULT ")
		b.WriteString(literalSQL(c.Default))
	}
	if c.Check != "" {
		b.WriteString(" CHECK (")
		b.WriteString(c.Check)
		b.WriteString(")")
	}
	return b.String()
}

func isFuncValue(v any) bool {
	return reflect.ValueOf(v).Kind() == reflect.Func
}

func literalSQL(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "1"
		}
		return "0"
	case time.Time:
		return "'" + val.Format(time.RFC3339) + "'"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func foreignKeySQL(dialectName string, fk *schema.ForeignKey) string {
	cols := make([]string, len(fk.Columns))
	for i, c := range fk.Columns {
		cols[i] = schema.Escape(dialectName, c.Name)
	}
	refCols := make([]string, len(fk.RefColumns))
	for i, c := range fk.RefColumns {
		refCols[i] = schema.Escape(dialectName, c.Name)
	}
	s := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		schema.Escape(dialectName, fk.Name), strings.Join(cols, ", "),
		schema.EscapeQualified(dialectName, fk.RefTable.FullName()), strings.Join(refCols, ", "))
	if fk.OnDelete != "" {
		s += " ON DELETE " + fk.OnDelete
	}
	if fk.OnUpdate != "" {
		s += " ON UPDATE " + fk.OnUpdate
	}
	return s
}

// CreateIndexSQL renders a CREATE [UNIQUE] INDEX statement for idx.
func CreateIndexSQL(dialectName string, t *schema.Table, idx *schema.Index) string {
	kw := "CREATE INDEX"
	if idx.Unique {
		kw = "CREATE UNIQUE INDEX"
	}
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		name := schema.Escape(dialectName, c.Name)
		if idx.Descending[c.Name] {
			name += " DESC"
		}
		cols[i] = name
	}
	s := fmt.Sprintf("%s IF NOT EXISTS %s ON %s (%s)", kw, schema.Escape(dialectName, idx.Name),
		schema.EscapeQualified(dialectName, t.FullName()), strings.Join(cols, ", "))
	if idx.Where != "" {
		s += " WHERE " + idx.Where
	}
	return s
}

// EntityToParameters extracts column/value pairs from entity (a struct or
// pointer to struct) by matching each non-version column's GoName to a
// struct field. Columns with no matching field (audit columns the provider
// seeds itself) are skipped.
func EntityToParameters(t *schema.Table, entity any) ([]dsql.NamedArg, error) {
	rv, err := structValue(entity)
	if err != nil {
		return nil, err
	}
	args := make([]dsql.NamedArg, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.AuditField == schema.AuditVersion {
			continue
		}
		fv := rv.FieldByName(c.GoName)
		if !fv.IsValid() {
			continue
		}
		args = append(args, dsql.NamedArg{Name: c.Name, Value: fv.Interface()})
	}
	return args, nil
}

// IDToParameters binds id to the table's single natural-key column. It
// returns nil when the table has a composite declared primary key (the
// caller is expected to use a predicate-based lookup instead).
func IDToParameters(t *schema.Table, id any) []dsql.NamedArg {
	pk := t.NaturalKeyColumn()
	if pk == nil {
		return nil
	}
	return []dsql.NamedArg{{Name: pk.Name, Value: id}}
}

func structValue(entity any) (reflect.Value, error) {
	rv := reflect.ValueOf(entity)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("mapper: entity is a nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("mapper: entity must be a struct or pointer to struct, got %T", entity)
	}
	return rv, nil
}

// insertParameters is EntityToParameters plus the version column, whose
// value the provider has already set on entity before an insert.
func insertParameters(t *schema.Table, entity any) ([]dsql.NamedArg, error) {
	params, err := EntityToParameters(t, entity)
	if err != nil {
		return nil, err
	}
	rv, _ := structValue(entity)
	for _, c := range t.Columns {
		if fv := rv.FieldByName(c.GoName); c.AuditField == schema.AuditVersion && fv.IsValid() {
			params = append(params, dsql.NamedArg{Name: c.Name, Value: fv.Interface()})
		}
	}
	return params, nil
}

// InsertSQL renders an INSERT statement binding entity's columns by name
// (@colname), alongside the ordered driver arguments to execute it with.
func InsertSQL(dialectName string, t *schema.Table, entity any) (string, []any, error) {
	params, err := insertParameters(t, entity)
	if err != nil {
		return "", nil, err
	}
	b := dsql.NewBuilder(dialectName)
	cols := make([]string, len(params))
	placeholders := make([]string, len(params))
	for i, p := range params {
		cols[i] = schema.Escape(dialectName, p.Name)
		placeholders[i] = b.NamedArgValue(p.Name, p.Value)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.EscapeQualified(dialectName, t.FullName()),
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return query, b.Args(), nil
}

// BatchInsertSQL renders a single multi-row INSERT for entities, all of
// which must share the same set of bound columns.
func BatchInsertSQL(dialectName string, t *schema.Table, entities []any) (string, []any, error) {
	if len(entities) == 0 {
		return "", nil, fmt.Errorf("mapper: BatchInsertSQL requires at least one entity")
	}
	first, err := insertParameters(t, entities[0])
	if err != nil {
		return "", nil, err
	}
	b := dsql.NewBuilder(dialectName)
	cols := make([]string, len(first))
	for i, p := range first {
		cols[i] = schema.Escape(dialectName, p.Name)
	}
	rowGroups := make([]string, len(entities))
	for i, e := range entities {
		params, err := insertParameters(t, e)
		if err != nil {
			return "", nil, err
		}
		if len(params) != len(first) {
			return "", nil, fmt.Errorf("mapper: entity %d binds %d columns, want %d", i, len(params), len(first))
		}
		placeholders := make([]string, len(params))
		for j, p := range params {
			placeholders[j] = b.NamedArgValue(p.Name+"_"+strconv.Itoa(i), p.Value)
		}
		rowGroups[i] = "(" + strings.Join(placeholders, ", ") + ")"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		schema.EscapeQualified(dialectName, t.FullName()),
		strings.Join(cols, ", "), strings.Join(rowGroups, ", "))
	return query, b.Args(), nil
}

// UpdateSQL renders an UPDATE statement for entity keyed by its natural
// key. When t.EnableSoftDelete, the WHERE clause also pins the row's
// current version (optimistic concurrency, spec.md §3 invariant 2) and the
// SET clause advances version by one.
func UpdateSQL(dialectName string, t *schema.Table, entity any, expectedVersion int64) (string, []any, error) {
	params, err := EntityToParameters(t, entity)
	if err != nil {
		return "", nil, err
	}
	pk := t.NaturalKeyColumn()
	if pk == nil {
		return "", nil, fmt.Errorf("mapper: UpdateSQL requires a single natural-key column")
	}
	b := dsql.NewBuilder(dialectName)
	sets := make([]string, 0, len(params))
	var idValue any
	for _, p := range params {
		if p.Name == pk.Name {
			idValue = p.Value
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s", schema.Escape(dialectName, p.Name), b.NamedArgValue(p.Name, p.Value)))
	}
	if t.EnableSoftDelete {
		sets = append(sets, fmt.Sprintf("%s = %s", schema.Escape(dialectName, "version"), b.NamedArgValue("version_next", expectedVersion+1)))
	}
	where := fmt.Sprintf("%s = %s", schema.Escape(dialectName, pk.Name), b.NamedArgValue("id", idValue))
	if t.EnableSoftDelete {
		where += fmt.Sprintf(" AND %s = %s", schema.Escape(dialectName, "version"), b.NamedArgValue("version_match", expectedVersion))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		schema.EscapeQualified(dialectName, t.FullName()), strings.Join(sets, ", "), where)
	return query, b.Args(), nil
}

// DeleteSQL renders a DELETE (or, when t.EnableSoftDelete, an UPDATE that
// flips is_deleted and advances version) statement for the row identified
// by id.
func DeleteSQL(dialectName string, t *schema.Table, id any, expectedVersion int64) (string, []any, error) {
	pk := t.NaturalKeyColumn()
	if pk == nil {
		return "", nil, fmt.Errorf("mapper: DeleteSQL requires a single natural-key column")
	}
	b := dsql.NewBuilder(dialectName)
	if !t.EnableSoftDelete {
		where := fmt.Sprintf("%s = %s", schema.Escape(dialectName, pk.Name), b.NamedArgValue("id", id))
		query := fmt.Sprintf("DELETE FROM %s WHERE %s", schema.EscapeQualified(dialectName, t.FullName()), where)
		return query, b.Args(), nil
	}
	set := fmt.Sprintf("%s = %s, %s = %s",
		schema.Escape(dialectName, "is_deleted"), b.NamedArgValue("is_deleted", true),
		schema.Escape(dialectName, "version"), b.NamedArgValue("version_next", expectedVersion+1))
	where := fmt.Sprintf("%s = %s AND %s = %s",
		schema.Escape(dialectName, pk.Name), b.NamedArgValue("id", id),
		schema.Escape(dialectName, "version"), b.NamedArgValue("version_match", expectedVersion))
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", schema.EscapeQualified(dialectName, t.FullName()), set, where)
	return query, b.Args(), nil
}

// SelectByIDSQL renders a SELECT for the current (highest-version, not
// soft-deleted) row matching id.
func SelectByIDSQL(dialectName string, t *schema.Table, id any) (string, []any, error) {
	pk := t.NaturalKeyColumn()
	if pk == nil {
		return "", nil, fmt.Errorf("mapper: SelectByIDSQL requires a single natural-key column")
	}
	s := dsql.NewSelector(dialectName, t.FullName())
	s.Where(dsql.EQ(s.C(pk.Name), id))
	if t.EnableSoftDelete {
		s.Where(dsql.EQ(s.C("is_deleted"), false))
		s.OrderBy(s.C("version") + " DESC")
		s.Limit(1)
	}
	query, args := s.Query()
	return query, args, nil
}

// SelectAllVersionsSQL renders a SELECT returning every stored version of
// the row matching id, newest first. Only meaningful when EnableSoftDelete.
func SelectAllVersionsSQL(dialectName string, t *schema.Table, id any) (string, []any, error) {
	pk := t.NaturalKeyColumn()
	if pk == nil {
		return "", nil, fmt.Errorf("mapper: SelectAllVersionsSQL requires a single natural-key column")
	}
	s := dsql.NewSelector(dialectName, t.FullName())
	s.Where(dsql.EQ(s.C(pk.Name), id))
	s.OrderBy(s.C("version") + " DESC")
	query, args := s.Query()
	return query, args, nil
}

// SelectAllSQL renders an unfiltered SELECT over t's current rows (honoring
// soft-delete visibility), for callers that apply their own predicates on
// top of the returned Selector.
func SelectAllSQL(dialectName string, t *schema.Table) *dsql.Selector {
	s := dsql.NewSelector(dialectName, t.FullName())
	if t.EnableSoftDelete {
		s.Where(dsql.EQ(s.C("is_deleted"), false))
	}
	return s
}

// ScanRow scans the current row of rows into dest (a pointer to struct),
// matching each result column name to a struct field via the table's
// Column(name).GoName. Columns with no table entry, or no matching
// addressable field, are discarded. rows accepts anything shaped like
// *sql.Rows — in particular dialect/sql's own Rows, the value a
// dialect.Driver's Query method fills in.
func ScanRow(t *schema.Table, rows dsql.ColumnScanner, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("mapper: dest must be a non-nil pointer to struct, got %T", dest)
	}
	rv = rv.Elem()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("mapper: reading result columns: %w", err)
	}
	targets := make([]any, len(cols))
	for i, name := range cols {
		var discard any
		targets[i] = &discard
		col := t.Column(name)
		if col == nil {
			continue
		}
		fv := rv.FieldByName(col.GoName)
		if fv.IsValid() && fv.CanAddr() {
			targets[i] = fv.Addr().Interface()
		}
	}
	return rows.Scan(targets...)
}
