// Package provider implements the Persistence Provider state machine
// (spec.md §4.4): the generic, reflection-bound CRUD surface that turns a
// loaded Schema Model, the Mapper's SQL, and a predicate tree into actual
// rows. It composes package loader (schema resolution), mapper (SQL
// generation and row binding), predicate (typed filters), retry and
// transient (transient-fault classification), and txscope (explicit
// multi-statement transactions).
package provider

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/persisto"
	"github.com/syssam/persisto/dialect"
	dsql "github.com/syssam/persisto/dialect/sql"
	"github.com/syssam/persisto/dialect/sql/schema"
	"github.com/syssam/persisto/errkind"
	"github.com/syssam/persisto/event"
	"github.com/syssam/persisto/loader"
	"github.com/syssam/persisto/mapper"
	"github.com/syssam/persisto/predicate"
	"github.com/syssam/persisto/retry"
	"github.com/syssam/persisto/transient"
	"github.com/syssam/persisto/txscope"
)

// Entity is the type constraint satisfied by any schema-bound struct: a
// plain Go struct whose fields the Mapper binds by name via reflection.
// There is no required method set (spec.md §3: no reflection beyond
// matching a derived Go field name).
type Entity any

// CallerInfo identifies the caller of a data operation: a correlation id
// for tracing across retries and batches, an optional user id for audit
// attribution, and the optional call-site metadata the audit/event sinks
// attach to each record (spec.md §4).
type CallerInfo struct {
	CorrelationID uuid.UUID
	UserID        string
	SourceFile    string
	SourceLine    int
	SourceFunc    string
}

// Provider is the typed persistence surface for entity type E (spec.md
// §4.4, §6). Query returns a Go 1.23 range-over-func iterator, the
// idiomatic realization of "a lazy sequence that, when enumerated,
// streams rows."
type Provider[E Entity] interface {
	Initialize(ctx context.Context) error
	Create(ctx context.Context, e *E, caller CallerInfo) (*E, error)
	CreateBatch(ctx context.Context, es []*E, caller CallerInfo, batchSize int) error
	Get(ctx context.Context, id any, caller CallerInfo, opts ...GetOption) (*E, error)
	GetAllVersions(ctx context.Context, id any, caller CallerInfo) ([]*E, error)
	Update(ctx context.Context, e *E, caller CallerInfo) (*E, error)
	Delete(ctx context.Context, id any, caller CallerInfo) error
	Query(ctx context.Context, caller CallerInfo, opts ...QueryOption[E]) iter.Seq2[*E, error]
	Count(ctx context.Context, opts ...QueryOption[E]) (int64, error)
	Exists(ctx context.Context, p predicate.P[E]) (bool, error)
	Purge(ctx context.Context, opts PurgeOptions[E]) (int64, error)
	BeginTransaction(ctx context.Context) (*txscope.Scope, error)
	Close() error
}

// state is the provider's lifecycle (spec.md §4.4): only Ready accepts
// data operations.
type state int32

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
	stateDisposing
	stateDisposed
)

// GetOption configures a single Get call.
type GetOption func(*getOptions)

type getOptions struct {
	includeDeleted bool
}

// IncludeDeleted makes Get return the latest row regardless of its
// is_deleted tombstone (spec.md §4.4 GetAsync).
func IncludeDeleted() GetOption {
	return func(o *getOptions) { o.includeDeleted = true }
}

// QueryOption configures a Query/Count call.
type QueryOption[E Entity] func(*queryOptions[E])

type orderTerm struct {
	column string
	desc   bool
}

type queryOptions[E Entity] struct {
	pred           predicate.P[E]
	order          []orderTerm
	skip, take     *int
	includeDeleted bool
}

// Where restricts the query to rows matching p.
func Where[E Entity](p predicate.P[E]) QueryOption[E] {
	return func(o *queryOptions[E]) { o.pred = p }
}

// OrderBy appends an ORDER BY term, ascending unless desc is true. Chained
// calls lower to "col1 ASC, col2 DESC, ..." (spec.md §4.3).
func OrderBy[E Entity](column string, desc bool) QueryOption[E] {
	return func(o *queryOptions[E]) { o.order = append(o.order, orderTerm{column, desc}) }
}

// Skip maps to SQL OFFSET.
func Skip[E Entity](n int) QueryOption[E] {
	return func(o *queryOptions[E]) { o.skip = &n }
}

// Take maps to SQL LIMIT.
func Take[E Entity](n int) QueryOption[E] {
	return func(o *queryOptions[E]) { o.take = &n }
}

// IncludeDeletedRows disables the default soft-delete visibility filter
// for a single Query/Count call.
func IncludeDeletedRows[E Entity]() QueryOption[E] {
	return func(o *queryOptions[E]) { o.includeDeleted = true }
}

// PurgeOptions selects what PurgeAsync removes (spec.md §4.4).
type PurgeOptions[E Entity] struct {
	// Predicate, when set, restricts purge to matching rows.
	Predicate predicate.P[E]
	// Expired purges rows whose absolute_expiration has passed.
	Expired bool
	// Preview returns the count that would be purged without deleting.
	Preview bool
	// Vacuum runs VACUUM after a non-preview purge.
	Vacuum bool
}

// Options configure a SQLProvider at construction time.
type Options struct {
	// RetryPolicy governs transient-fault retries on every data
	// operation. The zero value uses retry's backoff defaults.
	RetryPolicy retry.Policy
	// DefaultBatchSize is used by CreateBatch when batchSize <= 0.
	DefaultBatchSize int
	// BatchConcurrency bounds how many batches CreateBatch runs
	// concurrently (golang.org/x/sync/errgroup, spec.md §5). Zero means 4.
	BatchConcurrency int
	// OnOperation, when set, is passed to every scope BeginTransaction
	// opens and is invoked for each write queued onto it.
	OnOperation func(txscope.Operation)
	// Table, when set, is used instead of resolving def via loader.Load.
	// Callers that wire cross-entity foreign keys load every related
	// schema first, call loader.ResolveForeignKeys on the result, and pass
	// each resolved Table here so Initialize issues DDL that already
	// carries the FOREIGN KEY constraints.
	Table *schema.Table
	// Events, when set, observes retries, soft-delete version advances,
	// purges, and state transitions (spec.md §4.9). Never required: a nil
	// Events is simply not called.
	Events event.Sink
}

func (p *SQLProvider[E]) emit(ev event.Event) {
	if p.opts.Events != nil {
		p.opts.Events.Emit(ev)
	}
}

// SQLProvider is the dialect/sql.Driver-backed implementation of Provider
// (spec.md §6 "Wire to driver"): every statement runs through drv's
// Exec/Query rather than directly against *sql.DB, so a consumer can
// substitute any dialect.Driver (a session-variable-aware Conn, a traced
// wrapper, …) without the provider changing.
type SQLProvider[E Entity] struct {
	drv     *dsql.Driver
	dialect string
	def     persisto.Interface
	entType reflect.Type
	opts    Options

	mu       sync.Mutex
	table    *schema.Table
	state    atomic.Int32
	initOnce sync.Once
	initErr  error
}

var _ Provider[struct{ ID string }] = (*SQLProvider[struct{ ID string }])(nil)

// New constructs a SQLProvider for entity type E against db, rendering SQL
// for dialectName (one of dialect.SQLite/MySQL/Postgres/SQLServer). def
// describes E's schema (fields, indexes, config); it is resolved into a
// Table lazily, on the first Initialize call. db is wrapped once with
// dsql.OpenDB so every operation is issued through the dialect.Driver
// abstraction instead of raw database/sql calls.
func New[E Entity](db *sql.DB, dialectName string, def persisto.Interface, opts Options) *SQLProvider[E] {
	if opts.DefaultBatchSize <= 0 {
		opts.DefaultBatchSize = 500
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = 4
	}
	return &SQLProvider[E]{
		drv:     dsql.OpenDB(dialectName, db),
		dialect: dialectName,
		def:     def,
		entType: reflect.TypeOf((*E)(nil)).Elem(),
		opts:    opts,
	}
}

// exec runs query/args through drv, discarding the result.
func (p *SQLProvider[E]) exec(ctx context.Context, query string, args []any) error {
	return p.drv.Exec(ctx, query, args, nil)
}

// execAffected runs query/args through drv and returns rows affected.
func (p *SQLProvider[E]) execAffected(ctx context.Context, query string, args []any) (int64, error) {
	var res dsql.Result
	if err := p.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// queryRows runs query/args through drv and returns the resulting Rows,
// the dialect.Driver-routed equivalent of *sql.DB.QueryContext.
func (p *SQLProvider[E]) queryRows(ctx context.Context, query string, args []any) (*dsql.Rows, error) {
	var rows dsql.Rows
	if err := p.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	return &rows, nil
}

// queryScalar runs query/args through drv and scans the single leading
// column of the first row into dest, the driver-routed equivalent of
// *sql.DB.QueryRowContext(...).Scan.
func (p *SQLProvider[E]) queryScalar(ctx context.Context, query string, args []any, dest any) error {
	rows, err := p.queryRows(ctx, query, args)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	return rows.Scan(dest)
}

// Initialize resolves the Schema Model and issues the table/index DDL.
// Idempotent within a process: concurrent callers all observe exactly one
// Initializing->Ready transition, guarded by an internal once-cell
// (spec.md §4.4, "InitializeAsync is idempotent... guarded by an internal
// once-cell").
func (p *SQLProvider[E]) Initialize(ctx context.Context) error {
	p.initOnce.Do(func() {
		p.state.Store(int32(stateInitializing))
		p.emit(event.Event{Kind: event.StateTransition, Entity: p.entityName(), Detail: "Initializing"})
		p.initErr = p.initialize(ctx)
		if p.initErr != nil {
			p.state.Store(int32(stateUninitialized))
			return
		}
		p.state.Store(int32(stateReady))
		p.emit(event.Event{Kind: event.StateTransition, Entity: p.entityName(), Detail: "Ready"})
	})
	return p.initErr
}

func (p *SQLProvider[E]) initialize(ctx context.Context) error {
	t := p.opts.Table
	if t == nil {
		var err error
		t, err = loader.Load(p.def, p.entType)
		if err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.table = t
	p.mu.Unlock()

	if err := p.exec(ctx, mapper.CreateTableSQL(p.dialect, t), nil); err != nil {
		return errkind.New(errkind.Internal, t.Name, "Initialize", err)
	}
	for _, idx := range t.Indexes {
		if err := p.exec(ctx, mapper.CreateIndexSQL(p.dialect, t, idx), nil); err != nil {
			return errkind.New(errkind.Internal, t.Name, "Initialize", err)
		}
	}
	return nil
}

func (p *SQLProvider[E]) entityName() string {
	return p.entType.Name()
}

func (p *SQLProvider[E]) checkReady(op string) error {
	if state(p.state.Load()) != stateReady {
		return errkind.New(errkind.Misconfiguration, p.entityName(), op,
			fmt.Errorf("provider is not in the Ready state"))
	}
	return nil
}

// Close disposes the provider, closing the underlying driver connection.
// Further data operations return a Misconfiguration error.
func (p *SQLProvider[E]) Close() error {
	p.state.Store(int32(stateDisposing))
	p.emit(event.Event{Kind: event.StateTransition, Entity: p.entityName(), Detail: "Disposing"})
	err := p.drv.Close()
	p.state.Store(int32(stateDisposed))
	p.emit(event.Event{Kind: event.StateTransition, Entity: p.entityName(), Detail: "Disposed"})
	return err
}

// classifyExecError turns a raw driver error into an errkind.Error,
// recognizing the unique-constraint-violation message shape common to
// modernc.org/sqlite, go-sql-driver/mysql, and lib/pq (spec.md §4.6
// non-transient list, §7).
func classifyExecError(entity, op string, err error) error {
	if err == nil {
		return nil
	}
	if transient.Is(err) {
		return errkind.New(errkind.Transient, entity, op, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate entry"),
		strings.Contains(msg, "duplicate key value"):
		return errkind.New(errkind.EntityAlreadyExists, entity, op, err)
	case strings.Contains(msg, "foreign key constraint"), strings.Contains(msg, "check constraint"),
		strings.Contains(msg, "constraint failed"):
		return errkind.New(errkind.DataIntegrity, entity, op, err)
	default:
		return errkind.New(errkind.Internal, entity, op, err)
	}
}

// withRetry runs op under the provider's retry policy, classifying the
// final driver error into an errkind.Error first so retry.Do can see
// whether it's Transient.
func (p *SQLProvider[E]) withRetry(ctx context.Context, op string, fn func() error) error {
	err := retry.Do(ctx, p.opts.RetryPolicy, func() error {
		if err := fn(); err != nil {
			kerr := classifyExecError(p.entityName(), op, err)
			if errkind.Is(kerr, errkind.Transient) {
				p.emit(event.Event{Kind: event.TransientFault, Entity: p.entityName(), Detail: op, Err: kerr})
			}
			return kerr
		}
		return nil
	})
	if err != nil && errkind.Is(err, errkind.Transient) {
		p.emit(event.Event{Kind: event.RetryExhausted, Entity: p.entityName(), Detail: op, Err: err})
	}
	return err
}

// applyCreateDefaults sets every field whose column has a function default
// (DefaultFn) and that's still its zero value, and — for soft-delete
// entities — the initial version/is_deleted pair (spec.md §4.4 CreateAsync preconditions).
func applyCreateDefaults(rv reflect.Value, t *schema.Table) {
	for _, c := range t.Columns {
		fv := rv.FieldByName(c.GoName)
		if !fv.IsValid() || !fv.CanSet() {
			continue
		}
		if c.AuditField == schema.AuditVersion {
			fv.SetInt(1)
			continue
		}
		if c.Name == "is_deleted" {
			fv.SetBool(false)
			continue
		}
		if c.DefaultFn != nil && fv.IsZero() {
			setReflected(fv, c.DefaultFn())
		}
	}
}

// applyUpdateDefaults re-computes every UpdateDefault-bearing field —
// unconditionally, since "LastWriteTime is set to a single now per
// logical operation" (spec.md §4.4) regardless of the caller-supplied
// value.
func applyUpdateDefaults(rv reflect.Value, t *schema.Table) {
	for _, c := range t.Columns {
		if c.UpdateDefaultFn == nil {
			continue
		}
		fv := rv.FieldByName(c.GoName)
		if fv.IsValid() && fv.CanSet() {
			setReflected(fv, c.UpdateDefaultFn())
		}
	}
}

func setReflected(fv reflect.Value, v any) {
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Type().AssignableTo(fv.Type()) {
		fv.Set(rv)
	}
}

func entityStructValue(e any) (reflect.Value, error) {
	rv := reflect.ValueOf(e)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("entity must be a non-nil pointer")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("entity must point to a struct")
	}
	return rv, nil
}

// Create inserts e, assigning its soft-delete version/timestamps first
// (spec.md §4.4 CreateAsync).
func (p *SQLProvider[E]) Create(ctx context.Context, e *E, caller CallerInfo) (*E, error) {
	if err := p.checkReady("Create"); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errkind.New(errkind.InvalidArgument, p.entityName(), "Create",
			fmt.Errorf("entity must not be nil"))
	}
	t := p.snapshotTable()
	rv, err := entityStructValue(e)
	if err != nil {
		return nil, errkind.New(errkind.InvalidArgument, p.entityName(), "Create", err)
	}
	applyCreateDefaults(rv, t)

	query, args, err := mapper.InsertSQL(p.dialect, t, e)
	if err != nil {
		return nil, errkind.New(errkind.Internal, p.entityName(), "Create", err)
	}
	err = p.withRetry(ctx, "Create", func() error {
		return p.exec(ctx, query, args)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateBatch splits es into batches of batchSize (opts.DefaultBatchSize
// when batchSize<=0), each committed as one transaction; a batch's
// failure rolls back only that batch (spec.md §4.4). Batches run
// concurrently, bounded by opts.BatchConcurrency, via errgroup.
func (p *SQLProvider[E]) CreateBatch(ctx context.Context, es []*E, caller CallerInfo, batchSize int) error {
	if err := p.checkReady("CreateBatch"); err != nil {
		return err
	}
	if batchSize <= 0 {
		batchSize = p.opts.DefaultBatchSize
	}
	t := p.snapshotTable()

	var batches [][]*E
	for i := 0; i < len(es); i += batchSize {
		end := i + batchSize
		if end > len(es) {
			end = len(es)
		}
		batches = append(batches, es[i:end])
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.opts.BatchConcurrency)
	for _, batch := range batches {
		eg.Go(func() error {
			return p.createOneBatch(gctx, t, batch)
		})
	}
	return eg.Wait()
}

func (p *SQLProvider[E]) createOneBatch(ctx context.Context, t *schema.Table, batch []*E) error {
	for _, e := range batch {
		rv, err := entityStructValue(e)
		if err != nil {
			return errkind.New(errkind.InvalidArgument, p.entityName(), "CreateBatch", err)
		}
		applyCreateDefaults(rv, t)
	}
	entities := make([]any, len(batch))
	for i, e := range batch {
		entities[i] = e
	}
	query, args, err := mapper.BatchInsertSQL(p.dialect, t, entities)
	if err != nil {
		return errkind.New(errkind.Internal, p.entityName(), "CreateBatch", err)
	}
	return p.withRetry(ctx, "CreateBatch", func() error {
		tx, err := p.drv.Tx(ctx)
		if err != nil {
			return err
		}
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

// Get returns the current row for id, or persisto.ErrNotFound wrapped in
// an errkind.EntityNotFound error when absent (spec.md §4.4 GetAsync).
func (p *SQLProvider[E]) Get(ctx context.Context, id any, caller CallerInfo, opts ...GetOption) (*E, error) {
	if err := p.checkReady("Get"); err != nil {
		return nil, err
	}
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}
	t := p.snapshotTable()

	query, args, err := mapper.SelectByIDSQL(p.dialect, t, id)
	if err != nil {
		return nil, errkind.New(errkind.Internal, p.entityName(), "Get", err)
	}
	if o.includeDeleted && t.EnableSoftDelete {
		query, args, err = selectByIDIncludingDeleted(p.dialect, t, id)
		if err != nil {
			return nil, errkind.New(errkind.Internal, p.entityName(), "Get", err)
		}
	}

	var e E
	err = p.withRetry(ctx, "Get", func() error {
		rows, qerr := p.queryRows(ctx, query, args)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		if !rows.Next() {
			return rows.Err()
		}
		return mapper.ScanRow(t, rows, &e)
	})
	if err != nil {
		return nil, err
	}
	if reflect.ValueOf(e).IsZero() {
		return nil, errkind.New(errkind.EntityNotFound, p.entityName(), "Get", persisto.NewNotFoundErrorWithID(p.entityName(), id)).WithPK(id)
	}
	return &e, nil
}

// selectByIDIncludingDeleted mirrors mapper.SelectByIDSQL without the
// is_deleted filter, for GetOption IncludeDeleted.
func selectByIDIncludingDeleted(dialectName string, t *schema.Table, id any) (string, []any, error) {
	pk := t.NaturalKeyColumn()
	if pk == nil {
		return "", nil, fmt.Errorf("provider: Get requires a single natural-key column")
	}
	s := dsql.NewSelector(dialectName, t.FullName())
	s.Where(dsql.EQ(s.C(pk.Name), id))
	s.OrderBy(s.C("version") + " DESC")
	s.Limit(1)
	query, args := s.Query()
	return query, args, nil
}

// GetAllVersions returns every stored version of the row chain for id,
// newest first (spec.md §4.4 GetByKeyAsync include_all_versions).
func (p *SQLProvider[E]) GetAllVersions(ctx context.Context, id any, caller CallerInfo) ([]*E, error) {
	if err := p.checkReady("GetAllVersions"); err != nil {
		return nil, err
	}
	t := p.snapshotTable()
	query, args, err := mapper.SelectAllVersionsSQL(p.dialect, t, id)
	if err != nil {
		return nil, errkind.New(errkind.Internal, p.entityName(), "GetAllVersions", err)
	}

	var out []*E
	err = p.withRetry(ctx, "GetAllVersions", func() error {
		out = nil
		rows, qerr := p.queryRows(ctx, query, args)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		for rows.Next() {
			var e E
			if serr := mapper.ScanRow(t, rows, &e); serr != nil {
				return serr
			}
			out = append(out, &e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies optimistic-concurrency semantics (spec.md §4.4
// UpdateAsync): without soft-delete it issues a direct UPDATE; with
// soft-delete it reads the current max version inside the same
// transaction and inserts a new row when e.Version matches.
func (p *SQLProvider[E]) Update(ctx context.Context, e *E, caller CallerInfo) (*E, error) {
	if err := p.checkReady("Update"); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errkind.New(errkind.InvalidArgument, p.entityName(), "Update",
			fmt.Errorf("entity must not be nil"))
	}
	t := p.snapshotTable()
	rv, err := entityStructValue(e)
	if err != nil {
		return nil, errkind.New(errkind.InvalidArgument, p.entityName(), "Update", err)
	}
	applyUpdateDefaults(rv, t)

	if !t.EnableSoftDelete {
		return p.updateHard(ctx, t, e)
	}
	return p.updateVersioned(ctx, t, e, rv)
}

func (p *SQLProvider[E]) updateHard(ctx context.Context, t *schema.Table, e *E) (*E, error) {
	query, args, err := mapper.UpdateSQL(p.dialect, t, e, 0)
	if err != nil {
		return nil, errkind.New(errkind.Internal, p.entityName(), "Update", err)
	}
	var affected int64
	err = p.withRetry(ctx, "Update", func() error {
		var execErr error
		affected, execErr = p.execAffected(ctx, query, args)
		return execErr
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, errkind.New(errkind.EntityNotFound, p.entityName(), "Update", persisto.ErrNotFound)
	}
	return e, nil
}

func (p *SQLProvider[E]) updateVersioned(ctx context.Context, t *schema.Table, e *E, rv reflect.Value) (*E, error) {
	pk := t.NaturalKeyColumn()
	if pk == nil {
		return nil, errkind.New(errkind.Internal, p.entityName(), "Update",
			fmt.Errorf("soft-delete update requires a single natural-key column"))
	}
	idField := rv.FieldByName(pk.GoName)
	if !idField.IsValid() {
		return nil, errkind.New(errkind.Internal, p.entityName(), "Update",
			fmt.Errorf("entity has no field %q", pk.GoName))
	}
	id := idField.Interface()
	versionField := rv.FieldByName("Version")
	if !versionField.IsValid() {
		return nil, errkind.New(errkind.Internal, p.entityName(), "Update",
			fmt.Errorf("soft-delete entity must have a Version field"))
	}
	expectedVersion := versionField.Int()

	var result *E
	err := p.withRetry(ctx, "Update", func() error {
		tx, err := p.drv.Tx(ctx)
		if err != nil {
			return err
		}
		maxVersion, deleted, err := currentVersion(ctx, tx, p.dialect, t, id)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if maxVersion == 0 {
			_ = tx.Rollback()
			return errkind.New(errkind.EntityNotFound, p.entityName(), "Update", persisto.NewNotFoundErrorWithID(p.entityName(), id)).WithPK(id)
		}
		if deleted || expectedVersion != maxVersion {
			_ = tx.Rollback()
			return errkind.New(errkind.ConcurrencyConflict, p.entityName(), "Update", fmt.Errorf("expected version %d, current is %d (deleted=%v)", expectedVersion, maxVersion, deleted)).WithPK(id)
		}

		newVersion := maxVersion + 1
		versionField.SetInt(newVersion)
		isDeletedField := rv.FieldByName("IsDeleted")
		if isDeletedField.IsValid() && isDeletedField.CanSet() {
			isDeletedField.SetBool(false)
		}
		query, args, ierr := mapper.InsertSQL(p.dialect, t, e)
		if ierr != nil {
			_ = tx.Rollback()
			return ierr
		}
		if ierr := tx.Exec(ctx, query, args, nil); ierr != nil {
			_ = tx.Rollback()
			return ierr
		}
		if cerr := tx.Commit(); cerr != nil {
			return cerr
		}
		result = e
		p.emit(event.Event{Kind: event.VersionAdvanced, Entity: p.entityName(), Detail: fmt.Sprintf("%d->%d", expectedVersion, newVersion)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// currentVersion reads the highest version row for id inside tx, required
// before any versioned write (spec.md §4.4 concurrency invariant).
func currentVersion(ctx context.Context, tx dialect.Tx, dialectName string, t *schema.Table, id any) (version int64, deleted bool, err error) {
	pk := t.NaturalKeyColumn()
	s := dsql.NewSelector(dialectName, t.FullName())
	s.Select("version", "is_deleted")
	s.Where(dsql.EQ(s.C(pk.Name), id))
	s.OrderBy(s.C("version") + " DESC")
	s.Limit(1)
	query, args := s.Query()

	var rows dsql.Rows
	if qerr := tx.Query(ctx, query, args, &rows); qerr != nil {
		return 0, false, qerr
	}
	defer rows.Close()
	if !rows.Next() {
		return 0, false, rows.Err()
	}
	if serr := rows.Scan(&version, &deleted); serr != nil {
		return 0, false, serr
	}
	return version, deleted, rows.Err()
}

// Delete removes id (spec.md §4.4 DeleteAsync): a hard DELETE when
// soft-delete is disabled (absence is a no-op), or, when enabled, an UPDATE
// that marks the latest version row deleted and advances its version
// (already-deleted or missing rows are a no-op).
func (p *SQLProvider[E]) Delete(ctx context.Context, id any, caller CallerInfo) error {
	if err := p.checkReady("Delete"); err != nil {
		return err
	}
	t := p.snapshotTable()
	if !t.EnableSoftDelete {
		query, args, err := mapper.DeleteSQL(p.dialect, t, id, 0)
		if err != nil {
			return errkind.New(errkind.Internal, p.entityName(), "Delete", err)
		}
		return p.withRetry(ctx, "Delete", func() error {
			return p.exec(ctx, query, args)
		})
	}

	return p.withRetry(ctx, "Delete", func() error {
		tx, err := p.drv.Tx(ctx)
		if err != nil {
			return err
		}
		maxVersion, deleted, err := currentVersion(ctx, tx, p.dialect, t, id)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if maxVersion == 0 || deleted {
			return tx.Rollback() // already absent/tombstoned: no-op.
		}
		query, args, derr := mapper.DeleteSQL(p.dialect, t, id, maxVersion)
		if derr != nil {
			_ = tx.Rollback()
			return derr
		}
		if derr := tx.Exec(ctx, query, args, nil); derr != nil {
			_ = tx.Rollback()
			return derr
		}
		return tx.Commit()
	})
}

// Query returns a lazy iterator over rows matching opts (spec.md §4.4
// QueryAsync). The underlying *sql.Rows is closed when iteration ends,
// whether by exhaustion, an error, or the consumer stopping early.
func (p *SQLProvider[E]) Query(ctx context.Context, caller CallerInfo, opts ...QueryOption[E]) iter.Seq2[*E, error] {
	return func(yield func(*E, error) bool) {
		if err := p.checkReady("Query"); err != nil {
			yield(nil, err)
			return
		}
		t := p.snapshotTable()
		var o queryOptions[E]
		for _, opt := range opts {
			opt(&o)
		}
		sel := p.buildSelector(t, o)
		query, args := sel.Query()

		rows, err := p.queryRows(ctx, query, args)
		if err != nil {
			yield(nil, classifyExecError(p.entityName(), "Query", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			var e E
			if serr := mapper.ScanRow(t, rows, &e); serr != nil {
				yield(nil, errkind.New(errkind.Internal, p.entityName(), "Query", serr))
				return
			}
			if !yield(&e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, classifyExecError(p.entityName(), "Query", err))
		}
	}
}

func (p *SQLProvider[E]) buildSelector(t *schema.Table, o queryOptions[E]) *dsql.Selector {
	var sel *dsql.Selector
	if o.includeDeleted {
		sel = dsql.NewSelector(p.dialect, t.FullName())
	} else {
		sel = mapper.SelectAllSQL(p.dialect, t)
	}
	if o.pred != nil {
		o.pred(sel)
	}
	for _, term := range o.order {
		col := sel.C(term.column)
		if term.desc {
			col += " DESC"
		} else {
			col += " ASC"
		}
		sel.OrderBy(col)
	}
	if o.skip != nil {
		sel.Offset(*o.skip)
	}
	if o.take != nil {
		sel.Limit(*o.take)
	}
	return sel
}

// Count returns the number of rows matching opts (spec.md §4.4
// CountAsync; an unset predicate counts every visible row).
func (p *SQLProvider[E]) Count(ctx context.Context, opts ...QueryOption[E]) (int64, error) {
	if err := p.checkReady("Count"); err != nil {
		return 0, err
	}
	t := p.snapshotTable()
	var o queryOptions[E]
	for _, opt := range opts {
		opt(&o)
	}
	sel := p.buildSelector(t, o)
	sel.Select("COUNT(*)")
	query, args := sel.Query()

	var count int64
	err := p.withRetry(ctx, "Count", func() error {
		return p.queryScalar(ctx, query, args, &count)
	})
	return count, err
}

// Exists reports whether any visible row matches p (spec.md §4.4
// ExistsAsync).
func (p *SQLProvider[E]) Exists(ctx context.Context, pred predicate.P[E]) (bool, error) {
	count, err := p.Count(ctx, Where(pred), Take[E](1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Purge deletes rows per opts (spec.md §4.4 PurgeAsync): expired rows,
// predicate-matched rows, or both. Preview mode reports the count without
// deleting; Vacuum runs VACUUM afterward.
func (p *SQLProvider[E]) Purge(ctx context.Context, opts PurgeOptions[E]) (int64, error) {
	if err := p.checkReady("Purge"); err != nil {
		return 0, err
	}
	t := p.snapshotTable()
	sel := dsql.NewSelector(p.dialect, t.FullName())
	if opts.Expired {
		if t.Column("absolute_expiration") == nil {
			return 0, errkind.New(errkind.Misconfiguration, p.entityName(), "Purge",
				fmt.Errorf("entity has no absolute_expiration column (EnableExpiry not set)"))
		}
		sel.Where(dsql.LTE(sel.C("absolute_expiration"), time.Now()))
	}
	if opts.Predicate != nil {
		opts.Predicate(sel)
	}

	if opts.Preview {
		countSel := dsql.NewSelector(p.dialect, t.FullName())
		if sel.Predicate() != nil {
			countSel.Where(sel.Predicate())
		}
		countSel.Select("COUNT(*)")
		query, args := countSel.Query()
		var count int64
		err := p.queryScalar(ctx, query, args, &count)
		return count, err
	}

	deleteQuery, args := purgeDeleteSQL(p.dialect, t, sel)
	var affected int64
	err := p.withRetry(ctx, "Purge", func() error {
		var execErr error
		affected, execErr = p.execAffected(ctx, deleteQuery, args)
		return execErr
	})
	if err != nil {
		return 0, err
	}
	p.emit(event.Event{Kind: event.RowPurged, Entity: p.entityName(), Detail: fmt.Sprintf("%d rows", affected)})
	if opts.Vacuum {
		if verr := p.exec(ctx, "VACUUM", nil); verr != nil {
			return affected, errkind.New(errkind.Internal, p.entityName(), "Purge", verr)
		}
	}
	return affected, nil
}

// purgeDeleteSQL renders "DELETE FROM table WHERE <predicate>" from a
// Selector built purely to accumulate the WHERE clause.
func purgeDeleteSQL(dialectName string, t *schema.Table, sel *dsql.Selector) (string, []any) {
	query := "DELETE FROM " + schema.EscapeQualified(dialectName, t.FullName())
	p := sel.Predicate()
	if p == nil {
		return query, nil
	}
	b := dsql.NewBuilder(dialectName)
	p.Append(b)
	return query + " WHERE " + b.String(), b.Args()
}

// BeginTransaction starts a native transaction and wraps it in a
// txscope.Scope (spec.md §4.5). txscope operates on a genuine *sql.Tx (its
// own explicit multi-statement transaction API, independent of the
// Driver-routed helpers the rest of this provider uses), so it is obtained
// directly from the driver's underlying *sql.DB rather than through drv.Tx.
func (p *SQLProvider[E]) BeginTransaction(ctx context.Context) (*txscope.Scope, error) {
	if err := p.checkReady("BeginTransaction"); err != nil {
		return nil, err
	}
	tx, err := p.drv.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, errkind.New(errkind.Internal, p.entityName(), "BeginTransaction", err)
	}
	return txscope.New(tx, p.opts.OnOperation), nil
}

func (p *SQLProvider[E]) snapshotTable() *schema.Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.table
}
