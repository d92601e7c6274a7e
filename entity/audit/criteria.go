package audit

import (
	"time"

	"github.com/rise-and-shine/entityrepo/filter"
)

// Criteria selects audit entries. The zero value matches everything.
type Criteria struct {
	referenceType ReferenceType
	references    filter.Set[string]
	organizations filter.Set[string]
	environments  filter.Set[string]
	events        filter.Set[string]
	from, to      time.Time
}

func (c Criteria) Cond() filter.Cond {
	refType := filter.All()
	if c.referenceType != "" {
		refType = filter.Eq(fieldReferenceType, string(c.referenceType))
	}

	return filter.And(
		refType,
		filter.In(fieldReferenceID, c.references),
		filter.In(fieldOrganizationID, c.organizations),
		filter.In(fieldEnvironmentID, c.environments),
		filter.In(fieldEvent, c.events),
		filter.Window(fieldCreatedAt, c.from, c.to, false),
	)
}

type Builder struct {
	c Criteria
}

func NewCriteria() *Builder {
	return &Builder{}
}

// References keeps entries about the given objects of one kind.
func (b *Builder) References(refType ReferenceType, ids ...string) *Builder {
	b.c.referenceType = refType
	b.c.references = filter.SetOf(ids...)
	return b
}

func (b *Builder) Organizations(ids ...string) *Builder {
	b.c.organizations = filter.SetOf(ids...)
	return b
}

func (b *Builder) Environments(ids ...string) *Builder {
	b.c.environments = filter.SetOf(ids...)
	return b
}

func (b *Builder) Events(events ...string) *Builder {
	b.c.events = filter.SetOf(events...)
	return b
}

// From keeps entries created at or after t.
func (b *Builder) From(t time.Time) *Builder {
	b.c.from = t
	return b
}

// To keeps entries created before t.
func (b *Builder) To(t time.Time) *Builder {
	b.c.to = t
	return b
}

func (b *Builder) Build() Criteria {
	c := b.c
	c.references = c.references.Clone()
	c.organizations = c.organizations.Clone()
	c.environments = c.environments.Clone()
	c.events = c.events.Clone()
	return c
}
