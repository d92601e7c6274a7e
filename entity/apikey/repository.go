package apikey

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/filter"
	"github.com/rise-and-shine/entityrepo/repogen"
	"github.com/rise-and-shine/entityrepo/sorter"
)

// CodeKeyAlreadyExists is returned when creating a key whose value is already taken.
// Only relational stores enforce it.
const CodeKeyAlreadyExists = "API_KEY_ALREADY_EXISTS"

const (
	fieldID            = "id"
	fieldKey           = "key"
	fieldSubscriptions = "subscriptions"
	fieldApplication   = "application"
	fieldEnvironmentID = "environment_id"
	fieldRevoked       = "revoked"
	fieldPaused        = "paused"
	fieldExpireAt      = "expire_at"
	fieldCreatedAt     = "created_at"
	fieldUpdatedAt     = "updated_at"
)

// Repository stores API keys.
type Repository interface {
	repogen.Repo[APIKey, Criteria]

	// FindByKey returns nil when no key has the value key.
	FindByKey(ctx context.Context, key string) (*APIKey, error)
	// FindBySubscription returns every key, revoked ones included, attached to the subscription.
	FindBySubscription(ctx context.Context, subscriptionID string) ([]APIKey, error)
	// DeleteByEnvironmentID removes every key of the environment and returns their ids.
	DeleteByEnvironmentID(ctx context.Context, environmentID string) ([]string, error)
}

var schema = repogen.Schema[APIKey]{
	Entity:     "ApiKey",
	Collection: "api_keys",
	Fields: map[string]repogen.Field[APIKey]{
		fieldID:            {Column: "id", Get: func(k *APIKey) any { return k.ID }},
		fieldKey:           {Column: "key", Get: func(k *APIKey) any { return k.Key }},
		fieldApplication:   {Column: "application", Get: func(k *APIKey) any { return k.Application }},
		fieldEnvironmentID: {Column: "environment_id", Get: func(k *APIKey) any { return k.EnvironmentID }},
		fieldRevoked:       {Column: "revoked", Get: func(k *APIKey) any { return k.Revoked }},
		fieldPaused:        {Column: "paused", Get: func(k *APIKey) any { return k.Paused }},
		fieldExpireAt:      {Column: "expire_at", Get: func(k *APIKey) any { return k.ExpireAt }},
		fieldCreatedAt:     {Column: "created_at", Get: func(k *APIKey) any { return k.CreatedAt }},
		fieldUpdatedAt:     {Column: "updated_at", Get: func(k *APIKey) any { return k.UpdatedAt }},
		fieldSubscriptions: {
			Column: "subscriptions",
			Kind:   filter.JSONArray,
			Get:    func(k *APIKey) any { return k.Subscriptions },
		},
	},
	DefaultSort: sorter.ByDesc(fieldUpdatedAt),
	ID:          func(k *APIKey) string { return k.ID },
	SetID:       func(k *APIKey, id string) { k.ID = id },
	ConflictCodes: map[string]string{
		"api_keys_key_key": CodeKeyAlreadyExists,
		"api_keys.key":     CodeKeyAlreadyExists,
	},
}

type repository struct {
	repogen.Repo[APIKey, Criteria]
}

// NewBunRepository returns a Repository on a relational database.
func NewBunRepository(idb bun.IDB) Repository {
	return &repository{repogen.NewBunRepoBuilder[APIKey, Criteria](idb, schema).Build()}
}

// NewDocRepository returns a Repository on a document store.
func NewDocRepository(store docstore.Store) Repository {
	return &repository{repogen.NewDocRepoBuilder[APIKey, Criteria](store, schema).Build()}
}

func (r *repository) FindByKey(ctx context.Context, key string) (*APIKey, error) {
	keys, err := r.Search(ctx, Criteria{keys: filter.SetOf(key), includeRevoked: true})
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil //nolint:nilnil // absence is not an error for lookups
	}
	return &keys[0], nil
}

func (r *repository) FindBySubscription(ctx context.Context, subscriptionID string) ([]APIKey, error) {
	return r.Search(ctx, NewCriteria().Subscriptions(subscriptionID).IncludeRevoked(true).Build())
}

func (r *repository) DeleteByEnvironmentID(ctx context.Context, environmentID string) ([]string, error) {
	return r.DeleteWhere(ctx, NewCriteria().Environments(environmentID).IncludeRevoked(true).Build())
}

// SortableFields lists the field names accepted for sorting API keys.
func SortableFields() []string {
	return schema.SortableFields()
}
