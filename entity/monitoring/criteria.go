package monitoring

import (
	"time"

	"github.com/rise-and-shine/entityrepo/filter"
)

// Criteria selects reports. The zero value matches everything.
type Criteria struct {
	nodeIDs  filter.Set[string]
	types    filter.Set[Type]
	from, to time.Time
}

func (c Criteria) Cond() filter.Cond {
	return filter.And(
		filter.In(fieldNodeID, c.nodeIDs),
		filter.In(fieldType, c.types),
		filter.Window(fieldEvaluatedAt, c.from, c.to, false),
	)
}

type Builder struct {
	c Criteria
}

func NewCriteria() *Builder {
	return &Builder{}
}

func (b *Builder) NodeIDs(ids ...string) *Builder {
	b.c.nodeIDs = filter.SetOf(ids...)
	return b
}

func (b *Builder) Types(types ...Type) *Builder {
	b.c.types = filter.SetOf(types...)
	return b
}

// From keeps reports evaluated at or after t.
func (b *Builder) From(t time.Time) *Builder {
	b.c.from = t
	return b
}

// To keeps reports evaluated before t.
func (b *Builder) To(t time.Time) *Builder {
	b.c.to = t
	return b
}

func (b *Builder) Build() Criteria {
	c := b.c
	c.nodeIDs = c.nodeIDs.Clone()
	c.types = c.types.Clone()
	return c
}
