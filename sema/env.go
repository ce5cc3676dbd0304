package sema

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/abuild/log"
)

// Environment is the result of [Analyze]: the resolved root namespace, the
// index of named targets, and the extensions recorded during analysis.
type Environment struct {
	root       *Namespace
	targets    map[string]Value
	logger     log.Logger
	extensions []Extension
}

func newEnvironment(sc *Context) *Environment {
	return &Environment{
		root:       sc.root,
		targets:    make(map[string]Value),
		extensions: sc.Extensions(),
		logger:     sc.logger,
	}
}

// Root returns the resolved global namespace.
func (env *Environment) Root() *Namespace { return env.root }

// Logger returns the logger used during analysis.
func (env *Environment) Logger() log.Logger { return env.logger }

// Target returns the target bound to the dotted assignment name.
func (env *Environment) Target(name string) (Value, bool) {
	v, ok := env.targets[name]

	return v, ok
}

// TargetNames returns the names of all targets, sorted.
func (env *Environment) TargetNames() []string {
	return slices.Sorted(maps.Keys(env.targets))
}

// Lookup walks a dotted path from the root namespace.
func (env *Environment) Lookup(dotted string) (Value, error) {
	return walk(env.root, splitPath(dotted))
}

// Extensions returns the extensions recorded during analysis.
func (env *Environment) Extensions() []Extension {
	return append([]Extension(nil), env.extensions...)
}

// ToMap converts the user bindings of the root namespace to native Go
// values. Type descriptors are omitted.
func (env *Environment) ToMap() map[string]any {
	m, _ := nativeValue(env.root).(map[string]any)

	return m
}

func nativeValue(v Value) any {
	w := Unwrap(v)

	switch u := w.(type) {
	case *String:
		return u.value

	case *Namespace:
		m := make(map[string]any, u.Len())

		for name, member := range u.All() {
			if _, ok := Unwrap(member).(*TypeDescriptor); ok {
				continue
			}

			if sub, ok := Unwrap(member).(*Namespace); ok && sub.Len() > 0 && onlyTypes(sub) {
				continue
			}

			m[name] = nativeValue(member)
		}

		return m

	case *Set:
		items := make([]any, u.Len())
		for i, item := range u.items {
			items[i] = nativeValue(item)
		}

		return items

	case *Delayed:
		return map[string]any{"pending": u.String()}

	case fmt.Stringer:
		return map[string]any{
			"type":  w.Type().String(),
			"value": u.String(),
		}

	default:
		return map[string]any{"type": w.Type().String()}
	}
}

// onlyTypes reports whether a namespace holds nothing but type descriptors,
// as namespaces created by dotted type registration do.
func onlyTypes(n *Namespace) bool {
	for _, member := range n.All() {
		switch u := Unwrap(member).(type) {
		case *TypeDescriptor:
		case *Namespace:
			if !onlyTypes(u) {
				return false
			}
		default:
			return false
		}
	}

	return true
}

func splitPath(dotted string) []string { return strings.Split(dotted, ".") }
