package sema

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
)

// Kind classifies the concrete representation of a [Value].
type Kind uint8

const (
	KindString Kind = iota
	KindNamespace
	KindSet
	KindType
	KindTarget
	KindDelayed
	// KindOpaque is reported by plugin-contributed values that are neither
	// targets nor one of the builtin kinds.
	KindOpaque
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNamespace:
		return "namespace"
	case KindSet:
		return "set"
	case KindType:
		return "type"
	case KindTarget:
		return "target"
	case KindDelayed:
		return "delayed"
	case KindOpaque:
		return "opaque"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// TypeID identifies a registered type. The zero value [NoType] marks a
// value that is not yet resolved.
type TypeID uint32

// NoType is the type of an unresolved value.
const NoType TypeID = 0

var typeNames struct {
	sync.RWMutex
	names []string // index id-1
}

// NewTypeID allocates a process-unique type identifier. The name is used
// only for diagnostics.
func NewTypeID(name string) TypeID {
	typeNames.Lock()
	defer typeNames.Unlock()

	typeNames.names = append(typeNames.names, name)

	return TypeID(len(typeNames.names))
}

// String returns the name the identifier was allocated with.
func (id TypeID) String() string {
	if id == NoType {
		return "<unresolved>"
	}

	typeNames.RLock()
	defer typeNames.RUnlock()

	if int(id) > len(typeNames.names) {
		return "type#" + strconv.FormatUint(uint64(id), 10)
	}

	return typeNames.names[id-1]
}

// Identifiers of the builtin types.
var (
	TypeString    = NewTypeID("string")
	TypeNamespace = NewTypeID("namespace")
	TypeSet       = NewTypeID("set")
	TypeType      = NewTypeID("type")
)

// Value is a node of the semantic object graph.
//
// Values are shared by reference. A value's type is fixed once it reports
// anything other than [NoType].
type Value interface {
	Type() TypeID
	Kind() Kind
	Property(name string) (Value, error)
	Clone() Value
}

// IsResolved reports whether v has a concrete type.
func IsResolved(v Value) bool { return v != nil && v.Type() != NoType }

// Unwrap follows resolved placeholders to the concrete value. Pending
// placeholders are returned as is.
func Unwrap(v Value) Value {
	for {
		d, ok := v.(*Delayed)
		if !ok {
			return v
		}

		r, ok := d.Resolved()
		if !ok {
			return v
		}

		v = r
	}
}

// As unwraps v and converts it to T.
func As[T Value](v Value) (T, error) {
	t, ok := Unwrap(v).(T)
	if !ok {
		return t, ErrTypeMismatch.With(
			slog.String("want", fmt.Sprintf("%T", t)),
			slog.String("got", Describe(v)),
		)
	}

	return t, nil
}

// Describe returns a short diagnostic description of v.
func Describe(v Value) string {
	u := Unwrap(v)
	if u == nil {
		return "<nil>"
	}

	switch s := u.(type) {
	case *Delayed:
		return s.String()
	case *String:
		return strconv.Quote(s.value)
	case fmt.Stringer:
		return u.Type().String() + " " + strconv.Quote(s.String())
	default:
		return u.Type().String()
	}
}

func propertyNotFound(v Value, name string) error {
	return ErrPropertyNotFound.With(
		slog.String("property", name),
		slog.String("of", Describe(v)),
	)
}

// walk looks up a dotted path starting at root.
func walk(root Value, path []string) (Value, error) {
	cur := root

	for _, name := range path {
		next, err := Unwrap(cur).Property(name)
		if err != nil {
			return nil, err
		}

		cur = next
	}

	return cur, nil
}

func allResolved(vs []Value) bool {
	for _, v := range vs {
		if !IsResolved(v) {
			return false
		}
	}

	return true
}

func unwrapAll(vs []Value) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Unwrap(v)
	}

	return out
}
