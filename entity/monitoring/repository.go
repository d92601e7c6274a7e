package monitoring

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/entityrepo/asyncwrite"
	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/repogen"
	"github.com/rise-and-shine/entityrepo/sorter"
)

const (
	fieldID          = "id"
	fieldNodeID      = "node_id"
	fieldType        = "type"
	fieldPayload     = "payload"
	fieldEvaluatedAt = "evaluated_at"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
)

type Repository interface {
	repogen.Repo[Monitoring, Criteria]

	DeleteByNodeID(ctx context.Context, nodeID string) ([]string, error)
}

var schema = repogen.Schema[Monitoring]{
	Entity:     "Monitoring",
	Collection: "monitoring",
	Fields: map[string]repogen.Field[Monitoring]{
		fieldID:     {Column: "id", Get: func(m *Monitoring) any { return m.ID }},
		fieldNodeID: {Column: "node_id", Get: func(m *Monitoring) any { return m.NodeID }},
		fieldType:   {Column: "type", Get: func(m *Monitoring) any { return string(m.Type) }},
		fieldPayload: {
			Column: "payload",
			Get:    func(m *Monitoring) any { return m.Payload },
			Clear:  func(m *Monitoring) { m.Payload = "" },
		},
		fieldEvaluatedAt: {Column: "evaluated_at", Get: func(m *Monitoring) any { return m.EvaluatedAt }},
		fieldCreatedAt:   {Column: "created_at", Get: func(m *Monitoring) any { return m.CreatedAt }},
		fieldUpdatedAt:   {Column: "updated_at", Get: func(m *Monitoring) any { return m.UpdatedAt }},
	},
	DefaultSort: sorter.ByDesc(fieldEvaluatedAt),
	ID:          func(m *Monitoring) string { return m.ID },
	SetID:       func(m *Monitoring, id string) { m.ID = id },
}

type repository struct {
	repogen.Repo[Monitoring, Criteria]
}

func NewBunRepository(idb bun.IDB) Repository {
	return &repository{repogen.NewBunRepoBuilder[Monitoring, Criteria](idb, schema).Build()}
}

func NewDocRepository(store docstore.Store) Repository {
	return &repository{repogen.NewDocRepoBuilder[Monitoring, Criteria](store, schema).Build()}
}

func (r *repository) DeleteByNodeID(ctx context.Context, nodeID string) ([]string, error) {
	return r.DeleteWhere(ctx, NewCriteria().NodeIDs(nodeID).Build())
}

// NewWriter returns an asynchronous front for repo.Create. The caller owns the writer and must close it.
func NewWriter(
	repo Repository,
	cfg asyncwrite.Config,
	opts ...asyncwrite.Option,
) (*asyncwrite.Writer[Monitoring], error) {
	return asyncwrite.New(repo.Create, cfg, opts...)
}

func SortableFields() []string {
	return schema.SortableFields()
}
