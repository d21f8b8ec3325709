package sql

import (
	"database/sql"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/syssam/persisto/dialect"
)

// caseFolder applies Unicode-aware case folding to a Go-side literal before
// it's bound as a parameter, so EqualFold/ContainsFold agree with the
// database's (ASCII-only) LOWER() on non-ASCII input only to the extent a
// single shared folding rule can: both sides still compare via LOWER() in
// SQL, but the literal itself is folded the same way regardless of dialect.
var caseFolder = cases.Fold()

// Named wraps a value as a database/sql named argument so the driver binds
// it by @name instead of by position.
func Named(name string, v any) sql.NamedArg { return sql.Named(name, v) }

// NewBuilder creates a bare Builder for dialectName, for DML generators
// outside this package (the mapper) that bind parameters directly rather
// than through a Selector.
func NewBuilder(dialectName string) *Builder {
	return &Builder{dialect: dialectName}
}

// Builder is the shared state threaded through every statement builder:
// an accumulating SQL buffer, the named arguments bound to it so far, and
// the dialect driving identifier escaping and literal quoting.
type Builder struct {
	sb      strings.Builder
	args    []NamedArg
	dialect string
	total   *int // shared parameter counter, so nested builders don't collide.
}

// NamedArg is a (name, value) pair bound into a statement. Names mirror
// column names for DML (spec.md §3 invariant 6) and are positionally
// numbered (@p0, @p1, ...) for predicate translation (spec.md §4.3).
type NamedArg struct {
	Name  string
	Value any
}

// Args renders the args as database/sql driver arguments using sql.Named,
// so the SQLite driver can bind them by name.
func (b *Builder) Args() []any {
	out := make([]any, len(b.args))
	for i, a := range b.args {
		out[i] = Named(a.Name, a.Value)
	}
	return out
}

// RawArgs returns the ordered (name, value) pairs without wrapping them.
func (b *Builder) RawArgs() []NamedArg { return append([]NamedArg(nil), b.args...) }

func (b *Builder) writeString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

func (b *Builder) nextParamName() string {
	if b.total == nil {
		b.total = new(int)
	}
	n := *b.total
	*b.total++
	return "p" + strconv.Itoa(n)
}

// Arg appends a value as a new positional parameter (@p0, @p1, ...) and
// returns the placeholder text to splice into the SQL fragment.
func (b *Builder) Arg(v any) string {
	name := b.nextParamName()
	b.args = append(b.args, NamedArg{Name: name, Value: v})
	return "@" + name
}

// NamedArgValue binds a value under an explicit parameter name (used by DML
// generation, where parameter names mirror column names rather than @pN).
func (b *Builder) NamedArgValue(name string, v any) string {
	b.args = append(b.args, NamedArg{Name: name, Value: v})
	return "@" + name
}

// String returns the accumulated SQL text.
func (b *Builder) String() string { return b.sb.String() }

// Quote escapes a SQL identifier consistently for the builder's dialect.
// SQLite/Postgres use double quotes, MySQL uses backticks, SQL Server uses
// brackets; the choice is dialect-consistent across every generator that
// shares a Builder (spec.md §3 invariant 5).
func Quote(dialectName, ident string) string {
	switch dialectName {
	case dialect.MySQL:
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	case dialect.SQLServer:
		return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
	default: // SQLite, Postgres.
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
}

// Predicate represents a boolean WHERE/HAVING fragment together with the
// parameters it bound while rendering. It is the unit the predicate
// translator (package predicate) composes with And/Or/Not.
type Predicate struct {
	fn func(*Builder)
}

// P wraps a raw builder function as a Predicate.
func P(fn func(*Builder)) *Predicate { return &Predicate{fn: fn} }

// Append renders the predicate into the shared builder.
func (p *Predicate) Append(b *Builder) {
	if p == nil || p.fn == nil {
		return
	}
	p.fn(b)
}

// Selector builds a SELECT statement. Column references and the
// soft-delete filter are prefixed consistently with the same alias
// (spec.md §4.2) and the translator never double-prefixes an identifier
// that already carries one (spec.md §4.3).
type Selector struct {
	dialect    string
	table      string
	alias      string
	columns    []string
	where      *Predicate
	order      []string
	limit      *int
	offset     *int
	groupBy    []string
	having     *Predicate
	paramCount int
}

// NewSelector creates a Selector over the given table in the given dialect.
func NewSelector(dialectName, table string) *Selector {
	return &Selector{dialect: dialectName, table: table}
}

// As sets a table alias used to qualify column references.
func (s *Selector) As(alias string) *Selector {
	s.alias = alias
	return s
}

// Select sets the projected columns; an empty call selects "*".
func (s *Selector) Select(columns ...string) *Selector {
	s.columns = columns
	return s
}

// Dialect returns the dialect name the selector renders against, so a
// predicate combinator can open a scratch Selector over the same table
// without hard-coding a dialect.
func (s *Selector) Dialect() string { return s.dialect }

// TableName returns the selector's underlying table name.
func (s *Selector) TableName() string { return s.table }

// Predicate returns the selector's accumulated WHERE predicate, or nil if
// none has been set. Used by predicate combinators that build a scratch
// Selector purely to capture what a sub-predicate would contribute.
func (s *Selector) Predicate() *Predicate { return s.where }

// C returns an escaped, alias-qualified column reference. It never
// double-prefixes: if name already contains a "." it is assumed to be
// qualified already, and a name containing "(" (an expression such as
// COUNT(*)) is returned unchanged.
func (s *Selector) C(name string) string {
	if strings.Contains(name, ".") || strings.Contains(name, "(") {
		return name
	}
	escaped := Quote(s.dialect, name)
	if s.alias == "" {
		return escaped
	}
	return Quote(s.dialect, s.alias) + "." + escaped
}

// Where ANDs an additional predicate onto the selector's WHERE clause.
func (s *Selector) Where(p *Predicate) *Selector {
	if p == nil {
		return s
	}
	if s.where == nil {
		s.where = p
		return s
	}
	s.where = And(s.where, p)
	return s
}

// Having ANDs an additional predicate onto the selector's HAVING clause.
func (s *Selector) Having(p *Predicate) *Selector {
	if p == nil {
		return s
	}
	if s.having == nil {
		s.having = p
		return s
	}
	s.having = And(s.having, p)
	return s
}

// OrderBy appends raw, already-escaped "col ASC|DESC" terms.
func (s *Selector) OrderBy(terms ...string) *Selector {
	s.order = append(s.order, terms...)
	return s
}

// GroupBy appends group-by columns (escaped by the caller via C).
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.groupBy = append(s.groupBy, columns...)
	return s
}

// Limit sets the LIMIT clause.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset sets the OFFSET clause.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// Query renders the SELECT statement and its ordered arguments.
func (s *Selector) Query() (string, []any) {
	b := &Builder{dialect: s.dialect, total: &s.paramCount}
	b.writeString("SELECT ")
	switch {
	case len(s.columns) == 0:
		b.writeString("*")
	default:
		cols := make([]string, len(s.columns))
		for i, c := range s.columns {
			cols[i] = s.C(c)
		}
		b.writeString(strings.Join(cols, ", "))
	}
	b.writeString(" FROM ").writeString(Quote(s.dialect, s.table))
	if s.alias != "" {
		b.writeString(" AS ").writeString(Quote(s.dialect, s.alias))
	}
	if s.where != nil {
		b.writeString(" WHERE ")
		s.where.Append(b)
	}
	if len(s.groupBy) > 0 {
		b.writeString(" GROUP BY ").writeString(strings.Join(s.groupBy, ", "))
	}
	if s.having != nil {
		b.writeString(" HAVING ")
		s.having.Append(b)
	}
	if len(s.order) > 0 {
		b.writeString(" ORDER BY ").writeString(strings.Join(s.order, ", "))
	}
	if s.limit != nil {
		b.writeString(" LIMIT ").writeString(strconv.Itoa(*s.limit))
	}
	if s.offset != nil {
		b.writeString(" OFFSET ").writeString(strconv.Itoa(*s.offset))
	}
	return b.String(), b.Args()
}

// --- predicate combinators -------------------------------------------------

// And combines predicates with AND, wrapping each side in parentheses to
// avoid precedence ambiguity (spec.md §4.3 tie-break rule).
func And(ps ...*Predicate) *Predicate {
	return P(func(b *Builder) {
		writeJoined(b, ps, " AND ")
	})
}

// Or combines predicates with OR.
func Or(ps ...*Predicate) *Predicate {
	return P(func(b *Builder) {
		writeJoined(b, ps, " OR ")
	})
}

// Not negates a predicate.
func Not(p *Predicate) *Predicate {
	return P(func(b *Builder) {
		b.writeString("NOT (")
		p.Append(b)
		b.writeString(")")
	})
}

func writeJoined(b *Builder, ps []*Predicate, sep string) {
	filtered := ps[:0:0]
	for _, p := range ps {
		if p != nil {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return
	}
	if len(filtered) == 1 {
		filtered[0].Append(b)
		return
	}
	for i, p := range filtered {
		if i > 0 {
			b.writeString(sep)
		}
		b.writeString("(")
		p.Append(b)
		b.writeString(")")
	}
}

func compare(col, op string, v any) *Predicate {
	return P(func(b *Builder) {
		b.writeString(col).writeString(" ").writeString(op).writeString(" ").writeString(b.Arg(v))
	})
}

// EQ builds "col = @pN".
func EQ(col string, v any) *Predicate { return compare(col, "=", v) }

// NEQ builds "col <> @pN".
func NEQ(col string, v any) *Predicate { return compare(col, "<>", v) }

// GT builds "col > @pN".
func GT(col string, v any) *Predicate { return compare(col, ">", v) }

// GTE builds "col >= @pN".
func GTE(col string, v any) *Predicate { return compare(col, ">=", v) }

// LT builds "col < @pN".
func LT(col string, v any) *Predicate { return compare(col, "<", v) }

// LTE builds "col <= @pN".
func LTE(col string, v any) *Predicate { return compare(col, "<=", v) }

// In builds "col IN (@p0, @p1, ...)".
func In(col string, vs ...any) *Predicate {
	return P(func(b *Builder) {
		b.writeString(col).writeString(" IN (")
		for i, v := range vs {
			if i > 0 {
				b.writeString(", ")
			}
			b.writeString(b.Arg(v))
		}
		b.writeString(")")
	})
}

// NotIn builds "col NOT IN (@p0, @p1, ...)".
func NotIn(col string, vs ...any) *Predicate {
	return P(func(b *Builder) {
		b.writeString(col).writeString(" NOT IN (")
		for i, v := range vs {
			if i > 0 {
				b.writeString(", ")
			}
			b.writeString(b.Arg(v))
		}
		b.writeString(")")
	})
}

// IsNull builds "col IS NULL".
func IsNull(col string) *Predicate {
	return P(func(b *Builder) { b.writeString(col).writeString(" IS NULL") })
}

// NotNull builds "col IS NOT NULL".
func NotNull(col string) *Predicate {
	return P(func(b *Builder) { b.writeString(col).writeString(" IS NOT NULL") })
}

// Contains builds "col LIKE @pN" with value %s%, escaping LIKE metacharacters.
func Contains(col, v string) *Predicate { return like(col, "%"+escapeLike(v)+"%") }

// HasPrefix builds "col LIKE @pN" with value s%.
func HasPrefix(col, v string) *Predicate { return like(col, escapeLike(v)+"%") }

// HasSuffix builds "col LIKE @pN" with value %s.
func HasSuffix(col, v string) *Predicate { return like(col, "%"+escapeLike(v)) }

func like(col, pattern string) *Predicate {
	return P(func(b *Builder) {
		b.writeString(col).writeString(" LIKE ").writeString(b.Arg(pattern)).writeString(` ESCAPE '\'`)
	})
}

// escapeLike escapes LIKE metacharacters (%, _, \) in a literal fragment.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// fold wraps col in LOWER() for a case-insensitive comparison. EqualFold
// and ContainsFold also fold the bound literal with golang.org/x/text/cases
// (caseFolder) before binding it.
func fold(col string) string {
	return "LOWER(" + col + ")"
}

// EqualFold builds a case-insensitive equality comparison.
func EqualFold(col, v string) *Predicate {
	folded := caseFolder.String(v)
	return P(func(b *Builder) {
		b.writeString(fold(col)).writeString(" = LOWER(").writeString(b.Arg(folded)).writeString(")")
	})
}

// ContainsFold builds a case-insensitive Contains comparison.
func ContainsFold(col, v string) *Predicate {
	folded := caseFolder.String(v)
	return P(func(b *Builder) {
		b.writeString(fold(col)).writeString(" LIKE LOWER(").writeString(b.Arg("%" + escapeLike(folded) + "%")).writeString(")")
	})
}

// --- Field-level predicate constructors (named, non-generic entry points) --

// FieldEQ returns a predicate constructor compatible with predicate.P[E].
func FieldEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(EQ(s.C(name), v)) }
}

// FieldNEQ is the NEQ counterpart of FieldEQ.
func FieldNEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(NEQ(s.C(name), v)) }
}

// FieldGT is the GT counterpart of FieldEQ.
func FieldGT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GT(s.C(name), v)) }
}

// FieldGTE is the GTE counterpart of FieldEQ.
func FieldGTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GTE(s.C(name), v)) }
}

// FieldLT is the LT counterpart of FieldEQ.
func FieldLT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LT(s.C(name), v)) }
}

// FieldLTE is the LTE counterpart of FieldEQ.
func FieldLTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LTE(s.C(name), v)) }
}

// FieldIn is the IN counterpart of FieldEQ.
func FieldIn[T any](name string, vs ...T) func(*Selector) {
	return func(s *Selector) {
		v := make([]any, len(vs))
		for i := range vs {
			v[i] = vs[i]
		}
		s.Where(In(s.C(name), v...))
	}
}

// FieldNotIn is the NOT IN counterpart of FieldEQ.
func FieldNotIn[T any](name string, vs ...T) func(*Selector) {
	return func(s *Selector) {
		v := make([]any, len(vs))
		for i := range vs {
			v[i] = vs[i]
		}
		s.Where(NotIn(s.C(name), v...))
	}
}

// FieldIsNull builds an IS NULL predicate constructor.
func FieldIsNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(IsNull(s.C(name))) }
}

// FieldNotNull builds an IS NOT NULL predicate constructor.
func FieldNotNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(NotNull(s.C(name))) }
}

// FieldContains builds a Contains predicate constructor.
func FieldContains(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(Contains(s.C(name), v)) }
}

// FieldContainsFold builds a case-insensitive Contains predicate constructor.
func FieldContainsFold(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(ContainsFold(s.C(name), v)) }
}

// FieldHasPrefix builds a HasPrefix predicate constructor.
func FieldHasPrefix(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(HasPrefix(s.C(name), v)) }
}

// FieldHasSuffix builds a HasSuffix predicate constructor.
func FieldHasSuffix(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(HasSuffix(s.C(name), v)) }
}

// FieldEqualFold builds a case-insensitive equality predicate constructor.
func FieldEqualFold(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(EqualFold(s.C(name), v)) }
}
