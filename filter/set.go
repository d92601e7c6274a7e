package filter

import "github.com/samber/lo"

// Set is a collection filter value with three states:
// unset (the zero value) imposes no constraint,
// set to an empty collection matches nothing,
// set to values matches records whose field equals any of them.
type Set[T comparable] struct {
	values []T
	set    bool
}

// SetOf returns a set holding the distinct values in order of first appearance.
// SetOf() with no arguments is the empty, match-nothing set.
func SetOf[T comparable](values ...T) Set[T] {
	return Set[T]{values: lo.Uniq(values), set: true}
}

// IsSet reports whether the set was explicitly provided.
func (s Set[T]) IsSet() bool {
	return s.set
}

// Values returns a copy of the values.
func (s Set[T]) Values() []T {
	out := make([]T, len(s.values))
	copy(out, s.values)
	return out
}

func (s Set[T]) Len() int {
	return len(s.values)
}

func (s Set[T]) Contains(v T) bool {
	return lo.Contains(s.values, v)
}

// Add returns a new set with v appended. Adding to an unset set makes it set.
func (s Set[T]) Add(values ...T) Set[T] {
	merged := make([]T, 0, len(s.values)+len(values))
	merged = append(merged, s.values...)
	merged = append(merged, values...)
	return SetOf(merged...)
}

// Clone returns an independent copy, keeping the unset state.
func (s Set[T]) Clone() Set[T] {
	if !s.set {
		return Set[T]{}
	}
	return Set[T]{values: s.Values(), set: true}
}
