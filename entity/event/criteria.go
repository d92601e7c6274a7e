package event

import (
	"maps"
	"slices"
	"time"

	"github.com/rise-and-shine/entityrepo/filter"
)

// Criteria selects events. The zero value matches everything.
type Criteria struct {
	ids          filter.Set[string]
	types        filter.Set[Type]
	environments filter.Set[string]
	properties   map[string]filter.Set[string]
	from, to     time.Time
}

func (c Criteria) Cond() filter.Cond {
	conds := []filter.Cond{
		filter.In(fieldID, c.ids),
		filter.In(fieldType, c.types),
		filter.ContainsAny(fieldEnvironments, c.environments),
		filter.Window(fieldUpdatedAt, c.from, c.to, false),
	}
	for _, key := range slices.Sorted(maps.Keys(c.properties)) {
		conds = append(conds, filter.Property(fieldProperties, key, c.properties[key]))
	}
	return filter.And(conds...)
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

func (b *Builder) Types(types ...Type) *Builder {
	b.c.types = filter.SetOf(types...)
	return b
}

// Environments keeps events emitted in any of the given environments.
func (b *Builder) Environments(ids ...string) *Builder {
	b.c.environments = filter.SetOf(ids...)
	return b
}

// Property keeps events whose property key holds any of values.
// Several properties must all match.
func (b *Builder) Property(key string, values ...string) *Builder {
	props := make(map[string]filter.Set[string], len(b.c.properties)+1)
	maps.Copy(props, b.c.properties)
	props[key] = filter.SetOf(values...)
	b.c.properties = props
	return b
}

// From keeps events updated at or after t.
func (b *Builder) From(t time.Time) *Builder {
	b.c.from = t
	return b
}

// To keeps events updated before t.
func (b *Builder) To(t time.Time) *Builder {
	b.c.to = t
	return b
}

func (b *Builder) Build() Criteria {
	c := b.c
	c.ids = c.ids.Clone()
	c.types = c.types.Clone()
	c.environments = c.environments.Clone()
	if b.c.properties != nil {
		c.properties = make(map[string]filter.Set[string], len(b.c.properties))
		for k, v := range b.c.properties {
			c.properties[k] = v.Clone()
		}
	}
	return c
}
