package repogen

import (
	"context"
	"encoding/json"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/filter"
	"github.com/rise-and-shine/entityrepo/observability/logger"
	"github.com/rise-and-shine/entityrepo/pagination"
	"github.com/rise-and-shine/entityrepo/val"
)

// DocRepo implements Repo on a document store. Criteria are evaluated in memory
// over the collection, with the same semantics as the SQL engine.
// Only the id is unique: ConflictCodes are not enforced by document stores.
type DocRepo[E any, C filter.Criteria] struct {
	store      docstore.Store
	schema     Schema[E]
	collection string
	log        logger.Logger
}

var _ Repo[struct{}, filter.Criteria] = (*DocRepo[struct{}, filter.Criteria])(nil)

// DocRepoBuilder is a builder for DocRepo with sensible defaults.
type DocRepoBuilder[E any, C filter.Criteria] struct {
	store      docstore.Store
	schema     Schema[E]
	collection string
	log        logger.Logger
}

func NewDocRepoBuilder[E any, C filter.Criteria](store docstore.Store, schema Schema[E]) *DocRepoBuilder[E, C] {
	return &DocRepoBuilder[E, C]{
		store:      store,
		schema:     schema,
		collection: schema.Collection,
	}
}

// WithCollection overrides the collection name from the schema.
func (b *DocRepoBuilder[E, C]) WithCollection(name string) *DocRepoBuilder[E, C] {
	b.collection = name
	return b
}

// WithLogger sets the logger. Defaults to the global logger named "repogen".
func (b *DocRepoBuilder[E, C]) WithLogger(l logger.Logger) *DocRepoBuilder[E, C] {
	b.log = l
	return b
}

// Build creates the DocRepo. It panics when the schema is incomplete.
func (b *DocRepoBuilder[E, C]) Build() *DocRepo[E, C] {
	b.schema.mustValidate()

	log := b.log
	if log == nil {
		log = logger.Named("repogen")
	}

	return &DocRepo[E, C]{
		store:      b.store,
		schema:     b.schema,
		collection: lo.CoalesceOrEmpty(b.collection, b.schema.Entity),
		log:        log.With("entity", b.schema.Entity),
	}
}

func (r *DocRepo[E, C]) Create(ctx context.Context, entity *E) (*E, error) {
	if entity == nil {
		return nil, nilEntity(r.schema.Entity, "create")
	}
	if r.schema.ID(entity) == "" {
		r.schema.SetID(entity, uuid.NewString())
	}
	if err := val.ValidateSchema(entity); err != nil {
		return nil, err
	}

	id := r.schema.ID(entity)
	doc, err := json.Marshal(entity)
	if err != nil {
		return nil, technical(err, r.details(id))
	}

	stored, err := r.store.Insert(ctx, r.collection, id, doc)
	if err != nil {
		return nil, technical(err, r.details(id))
	}
	if !stored {
		return nil, conflict(r.schema.Entity, "", id, r.details(id))
	}
	return entity, nil
}

func (r *DocRepo[E, C]) Update(ctx context.Context, entity *E) (*E, error) {
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

	doc, err := json.Marshal(entity)
	if err != nil {
		return nil, technical(err, r.details(id))
	}

	stored, err := r.store.Replace(ctx, r.collection, id, doc)
	if err != nil {
		return nil, technical(err, r.details(id))
	}
	if !stored {
		return nil, missingEntity(r.schema.Entity, id)
	}
	return entity, nil
}

func (r *DocRepo[E, C]) Delete(ctx context.Context, id string) error {
	if _, err := r.store.Delete(ctx, r.collection, id); err != nil {
		return technical(err, r.details(id))
	}
	return nil
}

func (r *DocRepo[E, C]) FindByID(ctx context.Context, id string) (*E, error) {
	doc, found, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return nil, technical(err, r.details(id))
	}
	if !found {
		return nil, nil //nolint:nilnil // absence is not an error for lookups by id
	}

	entity, err := r.decode(id, doc)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *DocRepo[E, C]) FindByIDs(ctx context.Context, ids []string) ([]E, error) {
	if len(ids) == 0 {
		return []E{}, nil
	}

	docs, err := r.store.GetMany(ctx, r.collection, lo.Uniq(ids))
	if err != nil {
		return nil, technical(err, r.details(""))
	}

	entities, err := r.decodeAll(docs)
	if err != nil {
		return nil, err
	}
	order, err := r.schema.order(SearchOptions{}.Sort)
	if err != nil {
		return nil, err
	}
	r.schema.sortEntities(entities, order)
	return entities, nil
}

func (r *DocRepo[E, C]) Search(ctx context.Context, criteria C, opts ...SearchOption) ([]E, error) {
	o := buildSearchOptions(opts)
	matched, err := r.match(ctx, criteria.Cond(), o)
	if err != nil {
		return nil, err
	}
	return r.project(matched, o)
}

func (r *DocRepo[E, C]) SearchPage(
	ctx context.Context,
	criteria C,
	p pagination.Pageable,
	opts ...SearchOption,
) (pagination.Page[E], error) {
	p.Normalize(pagination.WithMaxPageSize(pagination.MaxSize))
	o := buildSearchOptions(opts)

	matched, err := r.match(ctx, criteria.Cond(), o)
	if err != nil {
		return pagination.Page[E]{}, err
	}

	page := pagination.Slice(matched, p)
	page.Content, err = r.project(page.Content, o)
	if err != nil {
		return pagination.Page[E]{}, err
	}
	return page, nil
}

func (r *DocRepo[E, C]) Count(ctx context.Context, criteria C) (int, error) {
	matched, err := r.match(ctx, criteria.Cond(), SearchOptions{})
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

func (r *DocRepo[E, C]) DeleteWhere(ctx context.Context, criteria C) ([]string, error) {
	entities, err := r.DeleteAndReturn(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return lo.Map(entities, func(e E, _ int) string { return r.schema.ID(&e) }), nil
}

func (r *DocRepo[E, C]) DeleteAndReturn(ctx context.Context, criteria C) ([]E, error) {
	matched, err := r.match(ctx, criteria.Cond(), SearchOptions{})
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return []E{}, nil
	}

	ids := lo.Map(matched, func(e E, _ int) string { return r.schema.ID(&e) })
	removed, err := r.store.Delete(ctx, r.collection, ids...)
	if err != nil {
		return nil, technical(err, r.details(""))
	}

	// a concurrent delete may have won for some ids; only report what this call removed
	removedSet := lo.Keyify(removed)
	out := lo.Filter(matched, func(e E, _ int) bool {
		_, ok := removedSet[r.schema.ID(&e)]
		return ok
	})

	r.log.WithContext(ctx).With("removed", len(out)).Debug("deleted by criteria")
	return out, nil
}

// match returns every entity satisfying cond, ordered.
func (r *DocRepo[E, C]) match(ctx context.Context, cond filter.Cond, o SearchOptions) ([]E, error) {
	order, err := r.schema.order(o.Sort)
	if err != nil {
		return nil, err
	}
	if _, err = r.schema.excluded(o.Exclude); err != nil {
		return nil, err
	}
	if err = r.schema.checkFields(cond); err != nil {
		return nil, err
	}
	if filter.IsNone(cond) {
		return []E{}, nil
	}

	docs, err := r.store.Scan(ctx, r.collection)
	if err != nil {
		return nil, technical(err, r.details(""))
	}
	entities, err := r.decodeAll(docs)
	if err != nil {
		return nil, err
	}

	matched := lo.Filter(entities, func(e E, _ int) bool {
		return filter.Eval(cond, r.schema.getter(&e))
	})
	r.schema.sortEntities(matched, order)
	return matched, nil
}

func (r *DocRepo[E, C]) project(entities []E, o SearchOptions) ([]E, error) {
	excluded, err := r.schema.excluded(o.Exclude)
	if err != nil {
		return nil, err
	}
	for i := range entities {
		for _, f := range excluded {
			f.Clear(&entities[i])
		}
	}
	return entities, nil
}

func (r *DocRepo[E, C]) decodeAll(docs map[string][]byte) ([]E, error) {
	entities := make([]E, 0, len(docs))
	for id, doc := range docs {
		e, err := r.decode(id, doc)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *DocRepo[E, C]) decode(id string, doc []byte) (E, error) {
	var e E
	if err := json.Unmarshal(doc, &e); err != nil {
		return e, technical(err, r.details(id))
	}
	return e, nil
}

func (r *DocRepo[E, C]) details(id string) errx.D {
	d := errx.D{"collection": r.collection}
	if id != "" {
		d["id"] = id
	}
	return d
}
