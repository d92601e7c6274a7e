package subscription

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
	fieldPlan          = "plan"
	fieldApplication   = "application"
	fieldEnvironmentID = "environment_id"
	fieldStatus        = "status"
	fieldMetadata      = "metadata"
	fieldCreatedAt     = "created_at"
	fieldUpdatedAt     = "updated_at"
	fieldStartingAt    = "starting_at"
	fieldEndingAt      = "ending_at"
	fieldClosedAt      = "closed_at"
)

type Repository interface {
	repogen.Repo[Subscription, Criteria]

	// DeleteByEnvironmentID removes every subscription of the environment and returns their ids.
	DeleteByEnvironmentID(ctx context.Context, environmentID string) ([]string, error)
}

var schema = repogen.Schema[Subscription]{
	Entity:     "Subscription",
	Collection: "subscriptions",
	Fields: map[string]repogen.Field[Subscription]{
		fieldID:            {Column: "id", Get: func(s *Subscription) any { return s.ID }},
		fieldAPI:           {Column: "api", Get: func(s *Subscription) any { return s.API }},
		fieldPlan:          {Column: "plan", Get: func(s *Subscription) any { return s.Plan }},
		fieldApplication:   {Column: "application", Get: func(s *Subscription) any { return s.Application }},
		fieldEnvironmentID: {Column: "environment_id", Get: func(s *Subscription) any { return s.EnvironmentID }},
		fieldStatus:        {Column: "status", Get: func(s *Subscription) any { return string(s.Status) }},
		fieldMetadata: {
			Column: "metadata",
			Kind:   filter.JSONMap,
			Get:    func(s *Subscription) any { return s.Metadata },
		},
		fieldCreatedAt:  {Column: "created_at", Get: func(s *Subscription) any { return s.CreatedAt }},
		fieldUpdatedAt:  {Column: "updated_at", Get: func(s *Subscription) any { return s.UpdatedAt }},
		fieldStartingAt: {Column: "starting_at", Get: func(s *Subscription) any { return s.StartingAt }},
		fieldEndingAt:   {Column: "ending_at", Get: func(s *Subscription) any { return s.EndingAt }},
		fieldClosedAt:   {Column: "closed_at", Get: func(s *Subscription) any { return s.ClosedAt }},
	},
	DefaultSort: sorter.ByDesc(fieldCreatedAt),
	ID:          func(s *Subscription) string { return s.ID },
	SetID:       func(s *Subscription, id string) { s.ID = id },
}

type repository struct {
	repogen.Repo[Subscription, Criteria]
}

func NewBunRepository(idb bun.IDB) Repository {
	return &repository{repogen.NewBunRepoBuilder[Subscription, Criteria](idb, schema).Build()}
}

func NewDocRepository(store docstore.Store) Repository {
	return &repository{repogen.NewDocRepoBuilder[Subscription, Criteria](store, schema).Build()}
}

func (r *repository) DeleteByEnvironmentID(ctx context.Context, environmentID string) ([]string, error) {
	return r.DeleteWhere(ctx, NewCriteria().Environments(environmentID).Build())
}

// SortableFields lists the field names accepted for sorting subscriptions.
func SortableFields() []string {
	return schema.SortableFields()
}
