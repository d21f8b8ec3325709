// Package schema holds the Schema Model (spec.md §3, §4.1): a pure,
// in-memory description of a table derived from a consumer's annotations.
// It owns identifier escaping so every SQL generator (DDL, DML, the
// predicate translator) stays dialect-consistent.
package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/persisto/dialect"
	dsql "github.com/syssam/persisto/dialect/sql"
)

// ColumnType enumerates the logical SQL type of a column. The concrete
// per-dialect type string is derived from it unless a SchemaType override
// is supplied.
type ColumnType int

const (
	TypeInvalid ColumnType = iota
	TypeBool
	TypeInt
	TypeInt64
	TypeFloat64
	TypeString
	TypeText
	TypeTime
	TypeUUID
	TypeEnum
	TypeJSON
	TypeBytes
	TypeOther
)

// String implements fmt.Stringer.
func (t ColumnType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeText:
		return "text"
	case TypeTime:
		return "time"
	case TypeUUID:
		return "uuid"
	case TypeEnum:
		return "enum"
	case TypeJSON:
		return "json"
	case TypeBytes:
		return "bytes"
	case TypeOther:
		return "other"
	default:
		return "invalid"
	}
}

// AuditKind marks a column with a special lifecycle role (spec.md §3,
// AuditField annotation).
type AuditKind int

const (
	AuditNone AuditKind = iota
	AuditVersion
	AuditCreatedTime
	AuditLastWriteTime
)

// Column is one column of a Table, carrying every piece of per-column
// metadata the Mapper needs to generate DDL/DML (spec.md §4.2).
type Column struct {
	// Name is the database column name.
	Name string
	// GoName is the derived Go struct field name (PascalCase of Name),
	// used by the Mapper to bind entity fields via reflection.
	GoName string
	Type   string // logical type, see ColumnType.String().
	// SchemaType optionally overrides the generated SQL type per dialect
	// ("sqlite3" -> "TEXT", "postgres" -> "jsonb", ...).
	SchemaType map[string]string
	Size       int64
	Precision  int
	Scale      int
	Nullable   bool
	Unique     bool
	Default    any
	// DefaultExpr, when set, is emitted verbatim as the column's DEFAULT
	// clause instead of a literal (e.g. "CURRENT_TIMESTAMP").
	DefaultExpr string
	// DefaultFn, when set, is invoked by the provider to compute a value
	// for this column on Create when the entity's field is still zero
	// (field.Descriptor.DefaultFunc, e.g. time.Now/uuid.New).
	DefaultFn func() any
	// UpdateDefaultFn, when set, is invoked by the provider on every
	// Update call regardless of the entity's current value
	// (field.Descriptor.UpdateDefaultFunc, e.g. an updated_at stamp).
	UpdateDefaultFn func() any
	PrimaryKey      bool
	Computed    bool
	ComputedExpr string
	Check       string // raw per-column CHECK expression, if any.
	Enums       []string
	AuditField  AuditKind
	Comment     string
	// ForeignKeyRef is the unresolved "table.column" reference declared via
	// a field descriptor's ForeignKey builder method, if any. A loader-level
	// pass (loader.ResolveForeignKeys) turns it into a ForeignKey on the
	// owning Table once every related table has been loaded.
	ForeignKeyRef string
	OnDelete      string
	OnUpdate      string
}

// SQLType resolves the concrete column type for a dialect.
func (c *Column) SQLType(dialectName string) string {
	if t, ok := c.SchemaType[dialectName]; ok {
		return t
	}
	return defaultSQLType(dialectName, c)
}

func defaultSQLType(dialectName string, c *Column) string {
	kind := c.Type
	switch dialectName {
	case dialect.MySQL:
		switch kind {
		case TypeBool.String():
			return "TINYINT(1)"
		case TypeInt.String():
			return "INT"
		case TypeInt64.String():
			return "BIGINT"
		case TypeFloat64.String():
			return "DOUBLE"
		case TypeString.String():
			if c.Size > 0 {
				return fmt.Sprintf("VARCHAR(%d)", c.Size)
			}
			return "VARCHAR(255)"
		case TypeText.String():
			return "TEXT"
		case TypeTime.String():
			return "DATETIME(6)"
		case TypeUUID.String():
			return "CHAR(36)"
		case TypeEnum.String():
			return "VARCHAR(64)"
		case TypeJSON.String():
			return "JSON"
		case TypeBytes.String():
			return "BLOB"
		default:
			return "TEXT"
		}
	case dialect.Postgres:
		switch kind {
		case TypeBool.String():
			return "BOOLEAN"
		case TypeInt.String():
			return "INTEGER"
		case TypeInt64.String():
			return "BIGINT"
		case TypeFloat64.String():
			return "DOUBLE PRECISION"
		case TypeString.String():
			if c.Size > 0 {
				return fmt.Sprintf("VARCHAR(%d)", c.Size)
			}
			return "TEXT"
		case TypeText.String():
			return "TEXT"
		case TypeTime.String():
			return "TIMESTAMPTZ"
		case TypeUUID.String():
			return "UUID"
		case TypeEnum.String():
			return "TEXT"
		case TypeJSON.String():
			return "JSONB"
		case TypeBytes.String():
			return "BYTEA"
		default:
			return "TEXT"
		}
	default: // SQLite.
		switch kind {
		case TypeBool.String():
			return "BOOLEAN"
		case TypeInt.String(), TypeInt64.String():
			return "INTEGER"
		case TypeFloat64.String():
			return "REAL"
		case TypeString.String(), TypeText.String(), TypeEnum.String(), TypeUUID.String(), TypeJSON.String():
			return "TEXT"
		case TypeTime.String():
			return "DATETIME"
		case TypeBytes.String():
			return "BLOB"
		default:
			return "TEXT"
		}
	}
}

// Index describes a table index (spec.md §3 Index annotation).
type Index struct {
	Name       string
	Columns    []*Column
	Unique     bool
	Descending map[string]bool // per-column DESC flag, keyed by column name.
	Included   []*Column        // covering/included columns, where supported.
	Where      string           // partial index predicate, raw SQL.
}

// ForeignKey describes a table-level FOREIGN KEY constraint.
type ForeignKey struct {
	Name       string
	Columns    []*Column
	RefTable   *Table
	RefColumns []*Column
	OnDelete   string
	OnUpdate   string
}

// Check describes a named CHECK constraint.
type Check struct {
	Name string
	Expr string
}

// Table is the Schema Model for one entity type (spec.md §3 "Derived
// schema S(E)").
type Table struct {
	Name             string
	SchemaName       string // optional DB schema/namespace qualifier.
	Columns          []*Column
	PrimaryKey       []*Column // declared PK, in order; Version is appended separately when EnableSoftDelete.
	Indexes          []*Index
	ForeignKeys      []*ForeignKey
	Checks           []*Check
	EnableSoftDelete bool
	EnableExpiry     bool
	EnableArchive    bool
	ExpirySpan       string // duration string, e.g. "720h"; informational only.
}

// FullName returns the schema-qualified table name.
func (t *Table) FullName() string {
	if t.SchemaName == "" {
		return t.Name
	}
	return t.SchemaName + "." + t.Name
}

// Column looks up a column by its database name.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnByGoName looks up a column by its derived Go field name.
func (t *Table) ColumnByGoName(name string) *Column {
	for _, c := range t.Columns {
		if c.GoName == name {
			return c
		}
	}
	return nil
}

// PrimaryKeyColumns returns the full, logical primary key: the declared PK
// followed by Version when soft-delete is enabled (spec.md §3 invariant 2).
func (t *Table) PrimaryKeyColumns() []*Column {
	cols := append([]*Column(nil), t.PrimaryKey...)
	if t.EnableSoftDelete {
		if v := t.Column("version"); v != nil {
			cols = append(cols, v)
		}
	}
	return cols
}

// NaturalKeyColumn returns the single natural-key column when the declared
// (non-Version) primary key is exactly one field, and nil otherwise.
func (t *Table) NaturalKeyColumn() *Column {
	if len(t.PrimaryKey) == 1 {
		return t.PrimaryKey[0]
	}
	return nil
}

// Escape escapes an identifier for dialectName using the rule shared by
// every generator (spec.md §3 invariant 5).
func Escape(dialectName, ident string) string {
	return dsql.Quote(dialectName, ident)
}

// EscapeQualified escapes a dotted "schema.table" or "table.column" name,
// escaping each segment independently.
func EscapeQualified(dialectName, ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = Escape(dialectName, p)
	}
	return strings.Join(parts, ".")
}
