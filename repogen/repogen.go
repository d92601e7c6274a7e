// Package repogen provides generic repositories over relational and document stores.
//
// Every entity repository exposes the same contract (Repo) whatever the backing store:
// create with conflict detection, update with a strict existence check, idempotent delete,
// criteria search with sorting, pagination and projections, and deletion by criteria
// that reports what was removed.
package repogen

import (
	"context"

	"github.com/rise-and-shine/entityrepo/filter"
	"github.com/rise-and-shine/entityrepo/pagination"
	"github.com/rise-and-shine/entityrepo/sorter"
)

// Repo is the contract shared by BunRepo and DocRepo.
type Repo[E any, C filter.Criteria] interface {
	// Create stores a new entity. An empty id is replaced with a random UUID.
	// Fails with CodeConflict when the id (or a mapped unique key) already exists.
	Create(ctx context.Context, entity *E) (*E, error)
	// Update replaces an existing entity. Fails with CodeIllegalState when entity is nil
	// or its id does not exist. Never creates.
	Update(ctx context.Context, entity *E) (*E, error)
	// Delete removes the entity with id. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// FindByID returns nil without error when id does not exist.
	FindByID(ctx context.Context, id string) (*E, error)
	// FindByIDs returns the existing entities among ids, in default order.
	FindByIDs(ctx context.Context, ids []string) ([]E, error)
	// Search returns every match in a deterministic order.
	Search(ctx context.Context, criteria C, opts ...SearchOption) ([]E, error)
	// SearchPage returns one page of Search. TotalElements ignores paging.
	SearchPage(ctx context.Context, criteria C, p pagination.Pageable, opts ...SearchOption) (pagination.Page[E], error)
	Count(ctx context.Context, criteria C) (int, error)

	// DeleteWhere removes every match and returns the removed ids.
	DeleteWhere(ctx context.Context, criteria C) ([]string, error)
	// DeleteAndReturn is DeleteWhere returning the removed entities as they were before deletion.
	DeleteAndReturn(ctx context.Context, criteria C) ([]E, error)
}

// SearchOptions holds the optional parts of a search.
type SearchOptions struct {
	Sort    sorter.Opt
	Exclude []string
}

type SearchOption func(*SearchOptions)

// WithSort orders results by a logical field. The schema default applies when not given.
func WithSort(opt sorter.Opt) SearchOption {
	return func(o *SearchOptions) {
		o.Sort = opt
	}
}

// WithExcludedFields leaves the given heavy fields empty on returned entities.
// Matching is not affected.
func WithExcludedFields(fields ...string) SearchOption {
	return func(o *SearchOptions) {
		o.Exclude = append(o.Exclude, fields...)
	}
}

func buildSearchOptions(opts []SearchOption) SearchOptions {
	var o SearchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
