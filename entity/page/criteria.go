package page

import "github.com/rise-and-shine/entityrepo/filter"

// Criteria selects pages. The zero value matches everything.
type Criteria struct {
	referenceType ReferenceType
	referenceID   string
	names         filter.Set[string]
	types         filter.Set[Type]
	published     *bool
	parents       filter.Set[string]
}

func (c Criteria) Cond() filter.Cond {
	ref := filter.All()
	if c.referenceType != "" {
		ref = filter.And(
			filter.Eq(fieldReferenceType, string(c.referenceType)),
			filter.Eq(fieldReferenceID, c.referenceID),
		)
	}
	published := filter.All()
	if c.published != nil {
		published = filter.Eq(fieldPublished, *c.published)
	}

	return filter.And(
		ref,
		filter.In(fieldName, c.names),
		filter.In(fieldType, c.types),
		published,
		filter.In(fieldParentID, c.parents),
	)
}

type Builder struct {
	c Criteria
}

func NewCriteria() *Builder {
	return &Builder{}
}

// Reference keeps the pages owned by one environment or API.
func (b *Builder) Reference(refType ReferenceType, refID string) *Builder {
	b.c.referenceType = refType
	b.c.referenceID = refID
	return b
}

func (b *Builder) Names(names ...string) *Builder {
	b.c.names = filter.SetOf(names...)
	return b
}

func (b *Builder) Types(types ...Type) *Builder {
	b.c.types = filter.SetOf(types...)
	return b
}

// Published keeps published pages when true and unpublished ones when false.
// Both are returned when it is never called.
func (b *Builder) Published(published bool) *Builder {
	b.c.published = &published
	return b
}

// Parent keeps the direct children of the page. Parent("") keeps root pages.
func (b *Builder) Parent(id string) *Builder {
	b.c.parents = filter.SetOf(id)
	return b
}

func (b *Builder) Build() Criteria {
	c := b.c
	if b.c.published != nil {
		published := *b.c.published
		c.published = &published
	}
	c.names = c.names.Clone()
	c.types = c.types.Clone()
	c.parents = c.parents.Clone()
	return c
}
