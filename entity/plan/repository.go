package plan

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/filter"
	"github.com/rise-and-shine/entityrepo/repogen"
	"github.com/rise-and-shine/entityrepo/sorter"
)

const (
	fieldID            = "id"
	fieldAPI           = "api"
	fieldEnvironmentID = "environment_id"
	fieldName          = "name"
	fieldDescription   = "description"
	fieldStatus        = "status"
	fieldTags          = "tags"
	fieldOrder         = "order"
	fieldDefinition    = "definition"
	fieldCreatedAt     = "created_at"
	fieldUpdatedAt     = "updated_at"
)

// FieldDefinition can be passed to repogen.WithExcludedFields to list plans without their definition.
const FieldDefinition = fieldDefinition

type Repository interface {
	repogen.Repo[Plan, Criteria]

	DeleteByAPI(ctx context.Context, apiID string) ([]string, error)
	DeleteByEnvironmentID(ctx context.Context, environmentID string) ([]string, error)
}

var schema = repogen.Schema[Plan]{
	Entity:     "Plan",
	Collection: "plans",
	Fields: map[string]repogen.Field[Plan]{
		fieldID:            {Column: "id", Get: func(p *Plan) any { return p.ID }},
		fieldAPI:           {Column: "api", Get: func(p *Plan) any { return p.API }},
		fieldEnvironmentID: {Column: "environment_id", Get: func(p *Plan) any { return p.EnvironmentID }},
		fieldName:          {Column: "name", Get: func(p *Plan) any { return p.Name }},
		fieldDescription:   {Column: "description", Get: func(p *Plan) any { return p.Description }},
		fieldStatus:        {Column: "status", Get: func(p *Plan) any { return string(p.Status) }},
		fieldTags:          {Column: "tags", Kind: filter.JSONArray, Get: func(p *Plan) any { return p.Tags }},
		fieldOrder:         {Column: "order", Get: func(p *Plan) any { return p.Order }},
		fieldDefinition: {
			Column: "definition",
			Get:    func(p *Plan) any { return p.Definition },
			Clear:  func(p *Plan) { p.Definition = "" },
		},
		fieldCreatedAt: {Column: "created_at", Get: func(p *Plan) any { return p.CreatedAt }},
		fieldUpdatedAt: {Column: "updated_at", Get: func(p *Plan) any { return p.UpdatedAt }},
	},
	DefaultSort: sorter.By(fieldOrder),
	ID:          func(p *Plan) string { return p.ID },
	SetID:       func(p *Plan, id string) { p.ID = id },
}

type repository struct {
	repogen.Repo[Plan, Criteria]
}

func NewBunRepository(idb bun.IDB) Repository {
	return &repository{repogen.NewBunRepoBuilder[Plan, Criteria](idb, schema).Build()}
}

func NewDocRepository(store docstore.Store) Repository {
	return &repository{repogen.NewDocRepoBuilder[Plan, Criteria](store, schema).Build()}
}

func (r *repository) DeleteByAPI(ctx context.Context, apiID string) ([]string, error) {
	return r.DeleteWhere(ctx, NewCriteria().APIs(apiID).Build())
}

func (r *repository) DeleteByEnvironmentID(ctx context.Context, environmentID string) ([]string, error) {
	return r.DeleteWhere(ctx, NewCriteria().Environments(environmentID).Build())
}

func SortableFields() []string {
	return schema.SortableFields()
}
