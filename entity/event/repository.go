package event

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/filter"
	"github.com/rise-and-shine/entityrepo/repogen"
	"github.com/rise-and-shine/entityrepo/sorter"
)

const (
	fieldID           = "id"
	fieldType         = "type"
	fieldPayload      = "payload"
	fieldParentID     = "parent_id"
	fieldProperties   = "properties"
	fieldEnvironments = "environments"
	fieldCreatedAt    = "created_at"
	fieldUpdatedAt    = "updated_at"
)

// FieldPayload can be passed to repogen.WithExcludedFields to skip event payloads.
const FieldPayload = fieldPayload

type Repository interface {
	repogen.Repo[Event, Criteria]

	// DeleteByEnvironmentID removes the events emitted in the environment and returns their ids.
	DeleteByEnvironmentID(ctx context.Context, environmentID string) ([]string, error)
	// DeleteByAPI removes the events of the API and returns their ids.
	DeleteByAPI(ctx context.Context, apiID string) ([]string, error)
}

var schema = repogen.Schema[Event]{
	Entity:     "Event",
	Collection: "events",
	Fields: map[string]repogen.Field[Event]{
		fieldID:   {Column: "id", Get: func(e *Event) any { return e.ID }},
		fieldType: {Column: "type", Get: func(e *Event) any { return string(e.Type) }},
		fieldPayload: {
			Column: "payload",
			Get:    func(e *Event) any { return e.Payload },
			Clear:  func(e *Event) { e.Payload = "" },
		},
		fieldParentID: {Column: "parent_id", Get: func(e *Event) any { return e.ParentID }},
		fieldProperties: {
			Column: "properties",
			Kind:   filter.JSONMap,
			Get:    func(e *Event) any { return e.Properties },
		},
		fieldEnvironments: {
			Column: "environments",
			Kind:   filter.JSONArray,
			Get:    func(e *Event) any { return e.Environments },
		},
		fieldCreatedAt: {Column: "created_at", Get: func(e *Event) any { return e.CreatedAt }},
		fieldUpdatedAt: {Column: "updated_at", Get: func(e *Event) any { return e.UpdatedAt }},
	},
	DefaultSort: sorter.ByDesc(fieldUpdatedAt),
	ID:          func(e *Event) string { return e.ID },
	SetID:       func(e *Event, id string) { e.ID = id },
}

type repository struct {
	repogen.Repo[Event, Criteria]
}

func NewBunRepository(idb bun.IDB) Repository {
	return &repository{repogen.NewBunRepoBuilder[Event, Criteria](idb, schema).Build()}
}

func NewDocRepository(store docstore.Store) Repository {
	return &repository{repogen.NewDocRepoBuilder[Event, Criteria](store, schema).Build()}
}

func (r *repository) DeleteByEnvironmentID(ctx context.Context, environmentID string) ([]string, error) {
	return r.DeleteWhere(ctx, NewCriteria().Environments(environmentID).Build())
}

func (r *repository) DeleteByAPI(ctx context.Context, apiID string) ([]string, error) {
	return r.DeleteWhere(ctx, NewCriteria().Property(PropertyAPIID, apiID).Build())
}

func SortableFields() []string {
	return schema.SortableFields()
}
