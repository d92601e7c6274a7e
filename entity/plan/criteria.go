package plan

import "github.com/rise-and-shine/entityrepo/filter"

// Criteria selects plans. The zero value matches everything.
type Criteria struct {
	ids          filter.Set[string]
	apis         filter.Set[string]
	environments filter.Set[string]
	statuses     filter.Set[Status]
	tags         filter.Set[string]
	query        string
}

func (c Criteria) Cond() filter.Cond {
	return filter.And(
		filter.In(fieldID, c.ids),
		filter.In(fieldAPI, c.apis),
		filter.In(fieldEnvironmentID, c.environments),
		filter.In(fieldStatus, c.statuses),
		filter.ContainsAny(fieldTags, c.tags),
		filter.Text(c.query, fieldName, fieldDescription),
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

func (b *Builder) Environments(ids ...string) *Builder {
	b.c.environments = filter.SetOf(ids...)
	return b
}

func (b *Builder) Statuses(statuses ...Status) *Builder {
	b.c.statuses = filter.SetOf(statuses...)
	return b
}

// Tags keeps plans carrying at least one of tags.
func (b *Builder) Tags(tags ...string) *Builder {
	b.c.tags = filter.SetOf(tags...)
	return b
}

// Query keeps plans whose name or description contains q, ignoring case.
func (b *Builder) Query(q string) *Builder {
	b.c.query = q
	return b
}

func (b *Builder) Build() Criteria {
	c := b.c
	c.ids = c.ids.Clone()
	c.apis = c.apis.Clone()
	c.environments = c.environments.Clone()
	c.statuses = c.statuses.Clone()
	c.tags = c.tags.Clone()
	return c
}
