package apikey

import (
	"time"

	"github.com/rise-and-shine/entityrepo/filter"
)

// Criteria selects API keys. The zero value matches every non-revoked key.
type Criteria struct {
	ids                      filter.Set[string]
	keys                     filter.Set[string]
	subscriptions            filter.Set[string]
	environments             filter.Set[string]
	includeRevoked           bool
	from, to                 time.Time
	expireAfter              time.Time
	expireBefore             time.Time
	includeWithoutExpiration bool
}

func (c Criteria) Cond() filter.Cond {
	revoked := filter.Eq(fieldRevoked, false)
	if c.includeRevoked {
		revoked = filter.All()
	}

	return filter.And(
		filter.In(fieldID, c.ids),
		filter.In(fieldKey, c.keys),
		filter.ContainsAny(fieldSubscriptions, c.subscriptions),
		filter.In(fieldEnvironmentID, c.environments),
		revoked,
		filter.Window(fieldUpdatedAt, c.from, c.to, false),
		filter.Window(fieldExpireAt, c.expireAfter, c.expireBefore, c.includeWithoutExpiration),
	)
}

// Builder accumulates Criteria. Build returns a snapshot that later calls do not change.
type Builder struct {
	c Criteria
}

func NewCriteria() *Builder {
	return &Builder{}
}

// IDs restricts to the given ids. Calling it with no ids matches nothing.
func (b *Builder) IDs(ids ...string) *Builder {
	b.c.ids = filter.SetOf(ids...)
	return b
}

// Subscriptions keeps keys attached to any of the given subscriptions.
func (b *Builder) Subscriptions(ids ...string) *Builder {
	b.c.subscriptions = filter.SetOf(ids...)
	return b
}

func (b *Builder) Environments(ids ...string) *Builder {
	b.c.environments = filter.SetOf(ids...)
	return b
}

// IncludeRevoked also returns revoked keys. They are left out by default.
func (b *Builder) IncludeRevoked(include bool) *Builder {
	b.c.includeRevoked = include
	return b
}

// From keeps keys updated at or after t.
func (b *Builder) From(t time.Time) *Builder {
	b.c.from = t
	return b
}

// To keeps keys updated before t.
func (b *Builder) To(t time.Time) *Builder {
	b.c.to = t
	return b
}

// ExpireAfter keeps keys expiring at or after t.
func (b *Builder) ExpireAfter(t time.Time) *Builder {
	b.c.expireAfter = t
	return b
}

// ExpireBefore keeps keys expiring before t.
func (b *Builder) ExpireBefore(t time.Time) *Builder {
	b.c.expireBefore = t
	return b
}

// IncludeWithoutExpiration keeps keys that never expire when an expiration bound is set.
func (b *Builder) IncludeWithoutExpiration(include bool) *Builder {
	b.c.includeWithoutExpiration = include
	return b
}

func (b *Builder) Build() Criteria {
	c := b.c
	c.ids = c.ids.Clone()
	c.keys = c.keys.Clone()
	c.subscriptions = c.subscriptions.Clone()
	c.environments = c.environments.Clone()
	return c
}
