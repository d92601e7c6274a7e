package subscription

import (
	"time"

	"github.com/rise-and-shine/entityrepo/filter"
)

// Criteria selects subscriptions. The zero value matches everything.
type Criteria struct {
	ids               filter.Set[string]
	apis              filter.Set[string]
	plans             filter.Set[string]
	applications      filter.Set[string]
	statuses          filter.Set[Status]
	environments      filter.Set[string]
	from, to          time.Time
	endingAtAfter     time.Time
	endingAtBefore    time.Time
	includeWithoutEnd bool
}

func (c Criteria) Cond() filter.Cond {
	return filter.And(
		filter.In(fieldID, c.ids),
		filter.In(fieldAPI, c.apis),
		filter.In(fieldPlan, c.plans),
		filter.In(fieldApplication, c.applications),
		filter.In(fieldStatus, c.statuses),
		filter.In(fieldEnvironmentID, c.environments),
		filter.Window(fieldCreatedAt, c.from, c.to, false),
		filter.Window(fieldEndingAt, c.endingAtAfter, c.endingAtBefore, c.includeWithoutEnd),
	)
}

type Builder struct {
	c Criteria
}

func NewCriteria() *Builder {
	return &Builder{}
}

func (b *Builder) IDs(ids ...string) *Builder {
	b.c.ids = filter.SetOf(ids...)
	return b
}

func (b *Builder) APIs(ids ...string) *Builder {
	b.c.apis = filter.SetOf(ids...)
	return b
}

func (b *Builder) Plans(ids ...string) *Builder {
	b.c.plans = filter.SetOf(ids...)
	return b
}

func (b *Builder) Applications(ids ...string) *Builder {
	b.c.applications = filter.SetOf(ids...)
	return b
}

func (b *Builder) Statuses(statuses ...Status) *Builder {
	b.c.statuses = filter.SetOf(statuses...)
	return b
}

func (b *Builder) Environments(ids ...string) *Builder {
	b.c.environments = filter.SetOf(ids...)
	return b
}

// From keeps subscriptions created at or after t.
func (b *Builder) From(t time.Time) *Builder {
	b.c.from = t
	return b
}

// To keeps subscriptions created before t.
func (b *Builder) To(t time.Time) *Builder {
	b.c.to = t
	return b
}

// EndingAtAfter keeps subscriptions ending at or after t.
func (b *Builder) EndingAtAfter(t time.Time) *Builder {
	b.c.endingAtAfter = t
	return b
}

// EndingAtBefore keeps subscriptions ending before t.
func (b *Builder) EndingAtBefore(t time.Time) *Builder {
	b.c.endingAtBefore = t
	return b
}

// IncludeWithoutEnd keeps open-ended subscriptions when an ending bound is set.
func (b *Builder) IncludeWithoutEnd(include bool) *Builder {
	b.c.includeWithoutEnd = include
	return b
}

func (b *Builder) Build() Criteria {
	c := b.c
	c.ids = c.ids.Clone()
	c.apis = c.apis.Clone()
	c.plans = c.plans.Clone()
	c.applications = c.applications.Clone()
	c.statuses = c.statuses.Clone()
	c.environments = c.environments.Clone()
	return c
}
