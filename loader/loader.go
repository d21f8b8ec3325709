// Package loader resolves a persisto.Interface (plus its mixins) into a
// dialect/sql/schema.Table: the Schema Model the Mapper, predicate
// translator, and provider all generate SQL against (spec.md §3, §4.1).
//
// Load builds a new Table on every call and keeps no cache; a provider
// calls it once, from Initialize, and keeps the result.
package loader

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/syssam/persisto"
	"github.com/syssam/persisto/dialect/sql/schema"
	"github.com/syssam/persisto/dialect/sqlschema"
	"github.com/syssam/persisto/errkind"
	"github.com/syssam/persisto/schema/field"
	"github.com/syssam/persisto/schema/index"
)

// Load resolves def (and its mixins' fields and indexes, in declaration
// order; a schema field overrides a mixin field of the same name) into a
// Table. Table-level sqlschema annotations are read from def only; a
// mixin's annotations are not applied. t is the concrete entity struct type the caller binds rows to,
// used only to derive the default table name when no sqlschema.Table
// annotation is present.
func Load(def persisto.Interface, t reflect.Type) (*schema.Table, error) {
	name := tableName(def, t)
	table := &schema.Table{Name: name}

	fields, err := safeFields(def)
	if err != nil {
		return nil, errkind.New(errkind.Misconfiguration, name, "Fields", err)
	}
	for _, f := range fields {
		col, err := columnFromDescriptor(f.Descriptor())
		if err != nil {
			return nil, errkind.New(errkind.Misconfiguration, name, "Fields", err)
		}
		table.Columns = append(table.Columns, col)
		if col.PrimaryKey {
			table.PrimaryKey = append(table.PrimaryKey, col)
		}
	}

	mixins, err := safeMixins(def)
	if err != nil {
		return nil, errkind.New(errkind.Misconfiguration, name, "Mixin", err)
	}
	for _, m := range mixins {
		mfields, err := safeMixinFields(m)
		if err != nil {
			return nil, errkind.New(errkind.Misconfiguration, name, "Mixin.Fields", err)
		}
		for _, f := range mfields {
			if table.Column(fieldName(f)) != nil {
				// A schema-level field with the same name overrides the mixin's.
				continue
			}
			col, err := columnFromDescriptor(f.Descriptor())
			if err != nil {
				return nil, errkind.New(errkind.Misconfiguration, name, "Mixin.Fields", err)
			}
			table.Columns = append(table.Columns, col)
			if col.PrimaryKey {
				table.PrimaryKey = append(table.PrimaryKey, col)
			}
		}
		midx, err := safeMixinIndexes(m)
		if err != nil {
			return nil, errkind.New(errkind.Misconfiguration, name, "Mixin.Indexes", err)
		}
		for _, idx := range midx {
			table.Indexes = append(table.Indexes, indexFromDescriptor(table, idx.Descriptor()))
		}
	}

	indexes, err := safeIndexes(def)
	if err != nil {
		return nil, errkind.New(errkind.Misconfiguration, name, "Indexes", err)
	}
	for _, idx := range indexes {
		table.Indexes = append(table.Indexes, indexFromDescriptor(table, idx.Descriptor()))
	}

	cfg := def.Config()
	if cfg.Table != "" {
		table.Name = cfg.Table
	}
	table.SchemaName = cfg.Schema
	table.EnableSoftDelete = cfg.EnableSoftDelete
	table.EnableExpiry = cfg.EnableExpiry
	table.EnableArchive = cfg.EnableArchive
	if cfg.ExpirySpan > 0 {
		table.ExpirySpan = cfg.ExpirySpan.String()
	}

	applyEntityAnnotations(table, def)

	if table.EnableSoftDelete {
		appendAuditColumn(table, "version", schema.TypeInt64.String(), schema.AuditVersion)
		appendAuditColumn(table, "is_deleted", schema.TypeBool.String(), schema.AuditNone)
	}
	if table.EnableExpiry {
		appendAuditColumn(table, "absolute_expiration", schema.TypeTime.String(), schema.AuditNone)
	}
	if table.EnableArchive {
		appendAuditColumn(table, "is_archived", schema.TypeBool.String(), schema.AuditNone)
	}

	if len(table.PrimaryKey) == 0 {
		return nil, errkind.New(errkind.Misconfiguration, name, "Load",
			fmt.Errorf("entity %q declares no primary key field (expected a field named \"id\")", name))
	}

	return table, nil
}

// ResolveForeignKeys links every column's unresolved "table.column"
// foreign-key reference to the referenced table's column, appending a
// schema.ForeignKey constraint onto the owning table. Call once every
// related schema has been passed through Load, keyed by Table.Name,
// before handing any of the tables to a provider (spec.md §4.4
// "Foreign-key cascade").
func ResolveForeignKeys(tables map[string]*schema.Table) error {
	for _, t := range tables {
		for _, c := range t.Columns {
			if c.ForeignKeyRef == "" {
				continue
			}
			parts := strings.SplitN(c.ForeignKeyRef, ".", 2)
			if len(parts) != 2 {
				return errkind.New(errkind.Misconfiguration, t.Name, "ResolveForeignKeys",
					fmt.Errorf("field %q: malformed foreign key reference %q, want \"table.column\"", c.Name, c.ForeignKeyRef))
			}
			refTable, ok := tables[parts[0]]
			if !ok {
				return errkind.New(errkind.Misconfiguration, t.Name, "ResolveForeignKeys",
					fmt.Errorf("field %q: foreign key references unknown table %q", c.Name, parts[0]))
			}
			refCol := refTable.Column(parts[1])
			if refCol == nil {
				return errkind.New(errkind.Misconfiguration, t.Name, "ResolveForeignKeys",
					fmt.Errorf("field %q: foreign key references unknown column %q on table %q", c.Name, parts[1], parts[0]))
			}
			t.ForeignKeys = append(t.ForeignKeys, &schema.ForeignKey{
				Name:       "fk_" + t.Name + "_" + c.Name,
				Columns:    []*schema.Column{c},
				RefTable:   refTable,
				RefColumns: []*schema.Column{refCol},
				OnDelete:   c.OnDelete,
				OnUpdate:   c.OnUpdate,
			})
		}
	}
	return nil
}

func tableName(def persisto.Interface, t reflect.Type) string {
	if cfg := def.Config(); cfg.Table != "" {
		return cfg.Table
	}
	return indirect(t).Name()
}

func indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func fieldName(f persisto.Field) string {
	return f.Descriptor().Name
}

// callDescriptorFunc invokes a field.Descriptor.Default/UpdateDefault
// value known to hold a niladic func (e.g. time.Now, uuid.New) via
// reflection, since the descriptor stores it as any to stay type-generic
// across field kinds.
func callDescriptorFunc(fn any) any {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.Type().NumIn() != 0 || v.Type().NumOut() != 1 {
		return nil
	}
	return v.Call(nil)[0].Interface()
}

// columnFromDescriptor translates a field.Descriptor into a schema.Column,
// applying every sqlschema.Annotation among the field's annotations in
// order, so a later annotation's non-zero settings override an earlier
// one's.
func columnFromDescriptor(fd *field.Descriptor) (*schema.Column, error) {
	if fd.Info == nil {
		return nil, fmt.Errorf("field %q: missing type info", fd.Name)
	}
	col := &schema.Column{
		Name:       fd.Name,
		GoName:     fd.GoName,
		Type:       string(fd.Info.Type),
		SchemaType: fd.SchemaType,
		Size:       fd.Size,
		Precision:  fd.Precision,
		Scale:      fd.Scale,
		Nullable:   fd.Nillable,
		Unique:     fd.Unique,
		Enums:      fd.Enums,
		Comment:    fd.Comment,
		ForeignKeyRef: fd.ForeignKey,
	}
	if fd.StorageKey != "" {
		col.Name = fd.StorageKey
	}
	if fd.Default != nil && !fd.DefaultFunc {
		col.Default = fd.Default
	}
	if fd.DefaultFunc {
		fn := fd.Default
		col.DefaultFn = func() any { return callDescriptorFunc(fn) }
	}
	if fd.UpdateDefaultFunc {
		fn := fd.UpdateDefault
		col.UpdateDefaultFn = func() any { return callDescriptorFunc(fn) }
	}
	if fd.Info.Type == field.TypeOther && col.SchemaType == nil {
		return nil, fmt.Errorf("field %q: Other fields require SchemaType", fd.Name)
	}
	// The engine has no explicit "primary key" builder method; by
	// convention (matching every schema in the example pack) the field
	// named "id" is the primary key.
	if fd.Name == "id" {
		col.PrimaryKey = true
		col.Unique = true
	}
	for _, at := range fd.Annotations {
		sa, ok := at.(sqlschema.Annotation)
		if !ok {
			continue
		}
		applyColumnAnnotation(col, sa)
	}
	return col, nil
}

func applyColumnAnnotation(col *schema.Column, a sqlschema.Annotation) {
	if a.Size != 0 {
		col.Size = a.Size
	}
	if a.Precision != 0 {
		col.Precision = a.Precision
	}
	if a.Scale != 0 {
		col.Scale = a.Scale
	}
	if a.ColumnType != "" {
		if col.SchemaType == nil {
			col.SchemaType = map[string]string{}
		}
		for _, d := range []string{"sqlite3", "mysql", "postgres", "sqlserver"} {
			col.SchemaType[d] = a.ColumnType
		}
	}
	for d, t := range a.ColumnTypes {
		if col.SchemaType == nil {
			col.SchemaType = map[string]string{}
		}
		col.SchemaType[d] = t
	}
	if a.Check != "" {
		col.Check = a.Check
	}
	if a.Default != "" {
		col.Default = a.Default
	}
	if a.DefaultExpr != "" {
		col.DefaultExpr = a.DefaultExpr
	}
	if a.OnDelete != "" {
		col.OnDelete = string(a.OnDelete)
	}
	if a.OnUpdate != "" {
		col.OnUpdate = string(a.OnUpdate)
	}
}

func indexFromDescriptor(table *schema.Table, idx *index.Descriptor) *schema.Index {
	si := &schema.Index{Unique: idx.Unique, StorageKey: idx.StorageKey}
	for _, name := range idx.Fields {
		if c := table.Column(name); c != nil {
			si.Columns = append(si.Columns, c)
		}
	}
	si.Name = idx.StorageKey
	if si.Name == "" {
		si.Name = indexName(table.Name, idx.Fields)
	}
	return si
}

func indexName(table string, fields []string) string {
	name := "idx_" + table
	for _, f := range fields {
		name += "_" + f
	}
	return name
}

func applyEntityAnnotations(table *schema.Table, def persisto.Interface) {
	for _, at := range def.Annotations() {
		if sa, ok := at.(sqlschema.Annotation); ok {
			if sa.Table != "" {
				table.Name = sa.Table
			}
			if sa.Schema != "" {
				table.SchemaName = sa.Schema
			}
			for name, expr := range sa.Checks {
				table.Checks = append(table.Checks, &schema.Check{Name: name, Expr: expr})
			}
		}
	}
}

func appendAuditColumn(table *schema.Table, name string, typ string, kind schema.AuditKind) {
	if table.Column(name) != nil {
		return
	}
	table.Columns = append(table.Columns, &schema.Column{
		Name:       name,
		GoName:     auditGoName(name),
		Type:       typ,
		AuditField: kind,
	})
}

func auditGoName(column string) string {
	switch column {
	case "version":
		return "Version"
	case "is_deleted":
		return "IsDeleted"
	case "absolute_expiration":
		return "AbsoluteExpiration"
	case "is_archived":
		return "IsArchived"
	default:
		return column
	}
}

// safeFields/safeMixins/... wrap the corresponding Interface/Mixin method
// calls with recover so a panicking schema definition surfaces as an
// errkind.Misconfiguration error instead of crashing the caller.
func safeFields(def persisto.Interface) (fields []persisto.Field, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("Fields panicked: %v", v)
		}
	}()
	return def.Fields(), nil
}

func safeIndexes(def persisto.Interface) (indexes []persisto.Index, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("Indexes panicked: %v", v)
		}
	}()
	return def.Indexes(), nil
}

func safeMixins(def persisto.Interface) (mixins []persisto.Mixin, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("Mixin panicked: %v", v)
		}
	}()
	return def.Mixin(), nil
}

func safeMixinFields(m persisto.Mixin) (fields []persisto.Field, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("Mixin.Fields panicked: %v", v)
		}
	}()
	return m.Fields(), nil
}

func safeMixinIndexes(m persisto.Mixin) (indexes []persisto.Index, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("Mixin.Indexes panicked: %v", v)
		}
	}()
	return m.Indexes(), nil
}
