package sema

import "slices"

// Set is an insertion-ordered set of values compared by identity.
//
// Members must be comparable, which holds for every pointer-typed value.
type Set struct {
	items []Value
}

// NewSet returns a set of the unwrapped items, dropping duplicates.
func NewSet(items ...Value) *Set {
	s := &Set{items: make([]Value, 0, len(items))}

	for _, v := range items {
		s.add(Unwrap(v))
	}

	return s
}

func (s *Set) add(v Value) {
	if !s.Contains(v) {
		s.items = append(s.items, v)
	}
}

func (s *Set) Type() TypeID                        { return TypeSet }
func (s *Set) Kind() Kind                          { return KindSet }
func (s *Set) Property(name string) (Value, error) { return nil, propertyNotFound(s, name) }
func (s *Set) Clone() Value                        { return &Set{items: slices.Clone(s.items)} }

// Items returns the members in insertion order.
func (s *Set) Items() []Value { return slices.Clone(s.items) }

// Len returns the number of members.
func (s *Set) Len() int { return len(s.items) }

// Contains reports whether v is a member.
func (s *Set) Contains(v Value) bool {
	v = Unwrap(v)

	return slices.Contains(s.items, v)
}

func unionSets(lhs, rhs Value) (Value, error) {
	a, b := lhs.(*Set), rhs.(*Set)

	u := NewSet(a.items...)
	for _, v := range b.items {
		u.add(v)
	}

	return u, nil
}

func differenceSets(lhs, rhs Value) (Value, error) {
	a, b := lhs.(*Set), rhs.(*Set)

	d := &Set{}
	for _, v := range a.items {
		if !b.Contains(v) {
			d.items = append(d.items, v)
		}
	}

	return d, nil
}
