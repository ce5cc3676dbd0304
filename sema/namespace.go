package sema

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
)

// Namespace maps unique names to values, preserving insertion order.
type Namespace struct {
	members map[string]Value
	names   []string
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{members: make(map[string]Value)}
}

func (n *Namespace) Type() TypeID { return TypeNamespace }
func (n *Namespace) Kind() Kind   { return KindNamespace }

// Property returns the member with the given name.
func (n *Namespace) Property(name string) (Value, error) {
	if v, ok := n.members[name]; ok {
		return v, nil
	}

	return nil, propertyNotFound(n, name)
}

// Clone copies the member table. Members are shared.
func (n *Namespace) Clone() Value {
	return &Namespace{
		members: maps.Clone(n.members),
		names:   slices.Clone(n.names),
	}
}

// Get returns the member with the given name.
func (n *Namespace) Get(name string) (Value, bool) {
	v, ok := n.members[name]

	return v, ok
}

// Set binds name to v. Rebinding keeps the name's original position.
func (n *Namespace) Set(name string, v Value) {
	if _, ok := n.members[name]; !ok {
		n.names = append(n.names, name)
	}

	n.members[name] = v
}

// Len returns the number of members.
func (n *Namespace) Len() int { return len(n.names) }

// Names returns the member names in insertion order.
func (n *Namespace) Names() []string { return slices.Clone(n.names) }

// All returns an iterator over members in insertion order.
func (n *Namespace) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, name := range n.names {
			if !yield(name, n.members[name]) {
				return
			}
		}
	}
}

// Ensure returns the namespace at path, creating missing intermediate
// namespaces. It fails with [ErrTypeMismatch] if a segment is bound to
// something other than a namespace.
func (n *Namespace) Ensure(path []string) (*Namespace, error) {
	cur := n

	for i, name := range path {
		v, ok := cur.members[name]
		if !ok {
			next := NewNamespace()
			cur.Set(name, next)
			cur = next

			continue
		}

		next, ok := Unwrap(v).(*Namespace)
		if !ok {
			return nil, ErrTypeMismatch.With(
				slog.String("path", joinPath(path[:i+1])),
				slog.String("want", "namespace"),
				slog.String("got", Describe(v)),
			)
		}

		cur = next
	}

	return cur, nil
}

// Lookup walks a dotted path through member properties.
func (n *Namespace) Lookup(path []string) (Value, error) {
	return walk(n, path)
}
