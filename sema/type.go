package sema

import (
	"log/slog"
	"strconv"
	"strings"
)

// Constructor builds a value of type t from resolved or unresolved
// arguments. Constructors that cannot proceed with unresolved arguments
// return [NewInstantiation](t, args).
type Constructor func(sc *Context, t *TypeDescriptor, args []Value) (Value, error)

// TypeDescriptor is the value bound to a registered type name.
type TypeDescriptor struct {
	ctor   Constructor
	name   string
	source string
	id     TypeID
}

func (t *TypeDescriptor) Type() TypeID                        { return TypeType }
func (t *TypeDescriptor) Kind() Kind                          { return KindType }
func (t *TypeDescriptor) Property(name string) (Value, error) { return nil, propertyNotFound(t, name) }

func (t *TypeDescriptor) Clone() Value {
	c := *t

	return &c
}

// ID returns the identifier of the described type.
func (t *TypeDescriptor) ID() TypeID { return t.id }

// Name returns the fully qualified type name.
func (t *TypeDescriptor) Name() string { return t.name }

// Source returns the label of the module that registered the type.
func (t *TypeDescriptor) Source() string { return t.source }

// Constructible reports whether the type can be instantiated.
func (t *TypeDescriptor) Constructible() bool { return t.ctor != nil }

// String returns the qualified name.
func (t *TypeDescriptor) String() string { return t.name }

// Instantiate constructs a value of the type. If any argument is
// unresolved, the result is a pending instantiation.
func (t *TypeDescriptor) Instantiate(sc *Context, args []Value) (Value, error) {
	if t.ctor == nil {
		return nil, ErrNotConstructible.With(slog.String("type", t.name))
	}

	if !allResolved(args) {
		return NewInstantiation(t, args), nil
	}

	return t.ctor(sc, t, args)
}

// Arity constrains how many arguments of one type a constructor accepts.
type Arity struct {
	n     int
	exact bool
}

// Any accepts any number of arguments of a type.
func Any() Arity { return Arity{} }

// Exactly accepts exactly n arguments of a type.
func Exactly(n int) Arity { return Arity{n: n, exact: true} }

// String returns "*" or the exact count.
func (a Arity) String() string {
	if !a.exact {
		return "*"
	}

	return strconv.Itoa(a.n)
}

// Checked wraps ctor with argument validation.
//
// The returned constructor defers while any argument is unresolved. Once
// all arguments are resolved, every argument type must appear in
// constraints ([ErrUnexpectedArgumentType]) and each [Exactly] count must
// match ([ErrArgumentCountMismatch]). ctor receives the arguments
// unwrapped.
func Checked(constraints map[TypeID]Arity, ctor Constructor) Constructor {
	return func(sc *Context, t *TypeDescriptor, args []Value) (Value, error) {
		if !allResolved(args) {
			return NewInstantiation(t, args), nil
		}

		counts := make(map[TypeID]int, len(constraints))

		for i, arg := range args {
			id := arg.Type()
			if _, ok := constraints[id]; !ok {
				return nil, ErrUnexpectedArgumentType.With(
					slog.String("type", t.name),
					slog.Int("index", i),
					slog.String("got", id.String()),
				)
			}

			counts[id]++
		}

		for id, arity := range constraints {
			if arity.exact && counts[id] != arity.n {
				return nil, ErrArgumentCountMismatch.With(
					slog.String("type", t.name),
					slog.String("argument", id.String()),
					slog.Int("want", arity.n),
					slog.Int("got", counts[id]),
				)
			}
		}

		return ctor(sc, t, unwrapAll(args))
	}
}

func joinPath(path []string) string { return strings.Join(path, ".") }
