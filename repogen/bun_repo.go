package repogen

import (
	"context"
	"fmt"
	"reflect"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/rise-and-shine/entityrepo/filter"
	"github.com/rise-and-shine/entityrepo/observability/logger"
	"github.com/rise-and-shine/entityrepo/pagination"
	"github.com/rise-and-shine/entityrepo/pg"
	"github.com/rise-and-shine/entityrepo/sorter"
	"github.com/rise-and-shine/entityrepo/sqlitewr"
	"github.com/rise-and-shine/entityrepo/val"
)

// largeBulkSize bounds how many ids are kept in error details.
const largeBulkSize = 10

// BunRepo implements Repo on a relational database through bun.
// PostgreSQL and SQLite are supported.
type BunRepo[E any, C filter.Criteria] struct {
	idb        bun.IDB
	schema     Schema[E]
	schemaName string
	table      string
	alias      string
	log        logger.Logger
}

var _ Repo[struct{}, filter.Criteria] = (*BunRepo[struct{}, filter.Criteria])(nil)

// BunRepoBuilder is a builder for BunRepo with sensible defaults.
type BunRepoBuilder[E any, C filter.Criteria] struct {
	idb        bun.IDB
	schema     Schema[E]
	schemaName string
	log        logger.Logger
}

// NewBunRepoBuilder creates a new builder. The schema name defaults to "public"
// on PostgreSQL and "main" on SQLite.
func NewBunRepoBuilder[E any, C filter.Criteria](idb bun.IDB, schema Schema[E]) *BunRepoBuilder[E, C] {
	return &BunRepoBuilder[E, C]{
		idb:    idb,
		schema: schema,
	}
}

// WithSchemaName sets the database schema holding the table.
func (b *BunRepoBuilder[E, C]) WithSchemaName(name string) *BunRepoBuilder[E, C] {
	b.schemaName = name
	return b
}

// WithLogger sets the logger. Defaults to the global logger named "repogen".
func (b *BunRepoBuilder[E, C]) WithLogger(l logger.Logger) *BunRepoBuilder[E, C] {
	b.log = l
	return b
}

// Build creates the BunRepo. It panics when the schema is incomplete.
func (b *BunRepoBuilder[E, C]) Build() *BunRepo[E, C] {
	b.schema.mustValidate()

	schemaName := b.schemaName
	if schemaName == "" {
		schemaName = "public"
		if b.idb.Dialect().Name() == dialect.SQLite {
			schemaName = sqlitewr.Schema
		}
	}

	log := b.log
	if log == nil {
		log = logger.Named("repogen")
	}

	table := b.idb.Dialect().Tables().Get(reflect.TypeFor[E]())

	return &BunRepo[E, C]{
		idb:        b.idb,
		schema:     b.schema,
		schemaName: schemaName,
		table:      table.Name,
		alias:      table.Alias,
		log:        log.With("entity", b.schema.Entity),
	}
}

// WithTx returns a copy of the repository bound to tx.
func (r *BunRepo[E, C]) WithTx(tx bun.Tx) *BunRepo[E, C] {
	clone := *r
	clone.idb = tx
	return &clone
}

func (r *BunRepo[E, C]) Create(ctx context.Context, entity *E) (*E, error) {
	if entity == nil {
		return nil, nilEntity(r.schema.Entity, "create")
	}
	if r.schema.ID(entity) == "" {
		r.schema.SetID(entity, uuid.NewString())
	}
	if err := val.ValidateSchema(entity); err != nil {
		return nil, err
	}

	q := r.idb.NewInsert().Model(entity)
	q = q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(r.table), bun.Ident(r.alias))
	_, err := q.Exec(ctx)
	if err != nil {
		if code, ok := r.conflictCode(err); ok {
			return nil, conflict(r.schema.Entity, code, r.schema.ID(entity), queryDetails(err, q))
		}
		return nil, technical(err, queryDetails(err, q))
	}

	return entity, nil
}

func (r *BunRepo[E, C]) Update(ctx context.Context, entity *E) (*E, error) {
	if entity == nil {
		return nil, nilEntity(r.schema.Entity, "update")
	}
	id := r.schema.ID(entity)
	if id == "" {
		return nil, missingEntity(r.schema.Entity, id)
	}
	if err := val.ValidateSchema(entity); err != nil {
		return nil, err
	}

	q := r.idb.NewUpdate().Model(entity).WherePK()
	q = q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(r.table), bun.Ident(r.alias))
	result, err := q.Exec(ctx)
	if err != nil {
		if code, ok := r.conflictCode(err); ok {
			return nil, errx.New(
				fmt.Sprintf("conflict while updating %s", r.schema.Entity),
				errx.WithCode(lo.CoalesceOrEmpty(code, CodeConflict)),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(queryDetails(err, q)),
			)
		}
		return nil, technical(err, queryDetails(err, q))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, technical(err, queryDetails(err, q))
	}
	if rowsAffected == 0 {
		return nil, missingEntity(r.schema.Entity, id)
	}

	return entity, nil
}

func (r *BunRepo[E, C]) Delete(ctx context.Context, id string) error {
	_, err := r.deleteIDs(ctx, r.idb, []string{id})
	return err
}

func (r *BunRepo[E, C]) FindByID(ctx context.Context, id string) (*E, error) {
	entities, err := r.find(ctx, r.idb, filter.Eq(IDField, id), SearchOptions{}, pagination.Of(0, 1))
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, nil //nolint:nilnil // absence is not an error for lookups by id
	}
	return &entities[0], nil
}

func (r *BunRepo[E, C]) FindByIDs(ctx context.Context, ids []string) ([]E, error) {
	if len(ids) == 0 {
		return []E{}, nil
	}
	return r.find(ctx, r.idb, filter.In(IDField, filter.SetOf(ids...)), SearchOptions{}, pagination.All())
}

func (r *BunRepo[E, C]) Search(ctx context.Context, criteria C, opts ...SearchOption) ([]E, error) {
	return r.find(ctx, r.idb, criteria.Cond(), buildSearchOptions(opts), pagination.All())
}

func (r *BunRepo[E, C]) SearchPage(
	ctx context.Context,
	criteria C,
	p pagination.Pageable,
	opts ...SearchOption,
) (pagination.Page[E], error) {
	p.Normalize(pagination.WithMaxPageSize(pagination.MaxSize))
	cond := criteria.Cond()

	total, err := r.count(ctx, cond)
	if err != nil {
		return pagination.Page[E]{}, err
	}
	if !p.Unpaged() && p.Offset() >= total {
		return pagination.NewPage[E](nil, p, total), nil
	}

	entities, err := r.find(ctx, r.idb, cond, buildSearchOptions(opts), p)
	if err != nil {
		return pagination.Page[E]{}, err
	}

	return pagination.NewPage(entities, p, total), nil
}

func (r *BunRepo[E, C]) Count(ctx context.Context, criteria C) (int, error) {
	return r.count(ctx, criteria.Cond())
}

func (r *BunRepo[E, C]) DeleteWhere(ctx context.Context, criteria C) ([]string, error) {
	cond := criteria.Cond()
	var removed []string

	err := r.idb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ids, err := r.matchingIDs(ctx, tx, cond)
		if err != nil {
			return err
		}
		removed, err = r.deleteIDs(ctx, tx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.log.WithContext(ctx).With("removed", len(removed)).Debug("deleted by criteria")
	return removed, nil
}

func (r *BunRepo[E, C]) DeleteAndReturn(ctx context.Context, criteria C) ([]E, error) {
	cond := criteria.Cond()
	var entities []E

	err := r.idb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		entities, err = r.find(ctx, tx, cond, SearchOptions{}, pagination.All())
		if err != nil {
			return err
		}
		_, err = r.deleteIDs(ctx, tx, lo.Map(entities, func(e E, _ int) string { return r.schema.ID(&e) }))
		return err
	})
	if err != nil {
		return nil, err
	}

	r.log.WithContext(ctx).With("removed", len(entities)).Debug("deleted by criteria")
	return entities, nil
}

func (r *BunRepo[E, C]) find(
	ctx context.Context,
	idb bun.IDB,
	cond filter.Cond,
	opts SearchOptions,
	p pagination.Pageable,
) ([]E, error) {
	order, err := r.schema.order(opts.Sort)
	if err != nil {
		return nil, err
	}
	excluded, err := r.schema.excluded(opts.Exclude)
	if err != nil {
		return nil, err
	}

	entities := make([]E, 0)
	if filter.IsNone(cond) {
		return entities, nil
	}

	q := idb.NewSelect().Model(&entities)
	q = r.applyModelTableExpr(q)
	q, err = r.where(q, cond)
	if err != nil {
		return nil, err
	}
	for _, f := range excluded {
		q = q.ExcludeColumn(f.Column)
	}
	for _, o := range order {
		q = r.orderBy(q, o)
	}
	if !p.Unpaged() {
		q = q.Limit(p.Limit()).Offset(p.Offset())
	}

	if err = q.Scan(ctx); err != nil {
		return nil, technical(err, queryDetails(err, q))
	}
	return entities, nil
}

func (r *BunRepo[E, C]) count(ctx context.Context, cond filter.Cond) (int, error) {
	if filter.IsNone(cond) {
		return 0, nil
	}

	q := r.idb.NewSelect().Model((*E)(nil))
	q = r.applyModelTableExpr(q)
	q, err := r.where(q, cond)
	if err != nil {
		return 0, err
	}

	count, err := q.Count(ctx)
	if err != nil {
		return 0, technical(err, queryDetails(err, q))
	}
	return count, nil
}

func (r *BunRepo[E, C]) matchingIDs(ctx context.Context, idb bun.IDB, cond filter.Cond) ([]string, error) {
	ids := make([]string, 0)
	if filter.IsNone(cond) {
		return ids, nil
	}
	order, err := r.schema.order(sorter.Opt{})
	if err != nil {
		return nil, err
	}

	idCol := r.schema.Fields[IDField].Column
	q := idb.NewSelect().Model((*E)(nil))
	q = r.applyModelTableExpr(q)
	q = q.ColumnExpr("?.?", bun.Ident(r.alias), bun.Ident(idCol))
	q, err = r.where(q, cond)
	if err != nil {
		return nil, err
	}
	for _, o := range order {
		q = r.orderBy(q, o)
	}

	if err = q.Scan(ctx, &ids); err != nil {
		return nil, technical(err, queryDetails(err, q))
	}
	return ids, nil
}

// deleteIDs removes ids and returns the ones that existed. Callers needing an exact
// before-set run it in the transaction that selected ids.
func (r *BunRepo[E, C]) deleteIDs(ctx context.Context, idb bun.IDB, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	idCol := r.schema.Fields[IDField].Column
	q := idb.NewDelete().Model((*E)(nil))
	q = q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(r.table), bun.Ident(r.alias))
	q = q.Where("? IN (?)", bun.Ident(idCol), bun.In(ids))

	result, err := q.Exec(ctx)
	if err != nil {
		if len(ids) > largeBulkSize {
			q = nil // avoid huge error details
		}
		return nil, technical(err, queryDetails(err, q))
	}

	if len(ids) == 1 {
		n, err := result.RowsAffected()
		if err != nil {
			return nil, technical(err, nil)
		}
		if n == 0 {
			return []string{}, nil
		}
	}
	return ids, nil
}

func (r *BunRepo[E, C]) where(q *bun.SelectQuery, cond filter.Cond) (*bun.SelectQuery, error) {
	frag, err := filter.Compile(cond, r.alias, r.schema.resolve, r.idb.Dialect().Name())
	if err != nil {
		return nil, err
	}
	return q.Where(frag.Query, frag.Args...), nil
}

func (r *BunRepo[E, C]) orderBy(q *bun.SelectQuery, o sorter.Opt) *bun.SelectQuery {
	col := r.schema.Fields[o.F].Column
	if o.D == sorter.Desc {
		return q.OrderExpr("?.? DESC NULLS LAST", bun.Ident(r.alias), bun.Ident(col))
	}
	return q.OrderExpr("?.? ASC NULLS FIRST", bun.Ident(r.alias), bun.Ident(col))
}

func (r *BunRepo[E, C]) applyModelTableExpr(q *bun.SelectQuery) *bun.SelectQuery {
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(r.table), bun.Ident(r.alias))
}

// conflictCode reports whether err is a unique violation and the code mapped to its constraint.
func (r *BunRepo[E, C]) conflictCode(err error) (string, bool) {
	if constraint, ok := pg.UniqueViolation(err); ok {
		return r.schema.ConflictCodes[constraint], true
	}
	if target, ok := sqlitewr.UniqueViolation(err); ok {
		return r.schema.ConflictCodes[target], true
	}
	return "", false
}

// CreateTable creates the entity table when it does not exist yet.
// It is meant for embedded databases and tests, not for schema migrations.
func CreateTable[E any](ctx context.Context, idb bun.IDB) error {
	q := idb.NewCreateTable().Model((*E)(nil)).IfNotExists()
	if _, err := q.Exec(ctx); err != nil {
		return technical(err, queryDetails(err, q))
	}
	return nil
}
