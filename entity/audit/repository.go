package audit

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/filter"
	"github.com/rise-and-shine/entityrepo/repogen"
	"github.com/rise-and-shine/entityrepo/sorter"
)

const (
	fieldID             = "id"
	fieldOrganizationID = "organization_id"
	fieldEnvironmentID  = "environment_id"
	fieldReferenceType  = "reference_type"
	fieldReferenceID    = "reference_id"
	fieldUser           = "user"
	fieldEvent          = "event"
	fieldProperties     = "properties"
	fieldPatch          = "patch"
	fieldCreatedAt      = "created_at"
)

// FieldPatch can be passed to repogen.WithExcludedFields to skip the recorded patches.
const FieldPatch = fieldPatch

type Repository interface {
	repogen.Repo[Audit, Criteria]

	// DeleteByReference removes every entry about one object and returns their ids.
	DeleteByReference(ctx context.Context, refType ReferenceType, refID string) ([]string, error)
	// DeleteByEnvironmentID removes the entries recorded in the environment, whatever they
	// reference, and the entries about the environment itself. Ids recorded in the
	// environment come first.
	DeleteByEnvironmentID(ctx context.Context, environmentID string) ([]string, error)
	// DeleteByEnvironmentIDAndAge removes the entries of the environment created strictly
	// more than maxAge before now. The clock is read on every call.
	DeleteByEnvironmentIDAndAge(ctx context.Context, environmentID string, maxAge time.Duration) ([]string, error)
}

var schema = repogen.Schema[Audit]{
	Entity:     "Audit",
	Collection: "audits",
	Fields: map[string]repogen.Field[Audit]{
		fieldID:             {Column: "id", Get: func(a *Audit) any { return a.ID }},
		fieldOrganizationID: {Column: "organization_id", Get: func(a *Audit) any { return a.OrganizationID }},
		fieldEnvironmentID:  {Column: "environment_id", Get: func(a *Audit) any { return a.EnvironmentID }},
		fieldReferenceType:  {Column: "reference_type", Get: func(a *Audit) any { return string(a.ReferenceType) }},
		fieldReferenceID:    {Column: "reference_id", Get: func(a *Audit) any { return a.ReferenceID }},
		fieldUser:           {Column: "user", Get: func(a *Audit) any { return a.User }},
		fieldEvent:          {Column: "event", Get: func(a *Audit) any { return a.Event }},
		fieldProperties: {
			Column: "properties",
			Kind:   filter.JSONMap,
			Get:    func(a *Audit) any { return a.Properties },
		},
		fieldPatch: {
			Column: "patch",
			Get:    func(a *Audit) any { return a.Patch },
			Clear:  func(a *Audit) { a.Patch = "" },
		},
		fieldCreatedAt: {Column: "created_at", Get: func(a *Audit) any { return a.CreatedAt }},
	},
	DefaultSort: sorter.ByDesc(fieldCreatedAt),
	ID:          func(a *Audit) string { return a.ID },
	SetID:       func(a *Audit, id string) { a.ID = id },
}

// Option configures a Repository.
type Option func(*repository)

// WithClock replaces time.Now as the source of the current time for retention.
func WithClock(now func() time.Time) Option {
	return func(r *repository) {
		r.now = now
	}
}

type repository struct {
	repogen.Repo[Audit, Criteria]
	now func() time.Time
}

func newRepository(base repogen.Repo[Audit, Criteria], opts []Option) *repository {
	r := &repository{Repo: base, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func NewBunRepository(idb bun.IDB, opts ...Option) Repository {
	return newRepository(repogen.NewBunRepoBuilder[Audit, Criteria](idb, schema).Build(), opts)
}

func NewDocRepository(store docstore.Store, opts ...Option) Repository {
	return newRepository(repogen.NewDocRepoBuilder[Audit, Criteria](store, schema).Build(), opts)
}

func (r *repository) DeleteByReference(ctx context.Context, refType ReferenceType, refID string) ([]string, error) {
	return r.DeleteWhere(ctx, NewCriteria().References(refType, refID).Build())
}

func (r *repository) DeleteByEnvironmentID(ctx context.Context, environmentID string) ([]string, error) {
	recorded, err := r.DeleteWhere(ctx, NewCriteria().Environments(environmentID).Build())
	if err != nil {
		return nil, err
	}
	about, err := r.DeleteByReference(ctx, ReferenceEnvironment, environmentID)
	if err != nil {
		return recorded, err
	}
	return append(recorded, about...), nil
}

func (r *repository) DeleteByEnvironmentIDAndAge(
	ctx context.Context,
	environmentID string,
	maxAge time.Duration,
) ([]string, error) {
	cutoff := r.now().Add(-maxAge)
	return r.DeleteWhere(ctx, NewCriteria().Environments(environmentID).To(cutoff).Build())
}

func SortableFields() []string {
	return schema.SortableFields()
}
