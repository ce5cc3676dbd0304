package sema

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/abuild/lang"
)

// PendingKind identifies what a [Delayed] placeholder is waiting to do.
type PendingKind uint8

const (
	// PendingReference resolves a dotted path against the root namespace.
	PendingReference PendingKind = iota
	// PendingInstantiation constructs a known type once arguments resolve.
	PendingInstantiation
	// PendingTypeLookup resolves a dotted type name, then instantiates it.
	PendingTypeLookup
	// PendingBinaryOp applies an operator once both operands resolve.
	PendingBinaryOp
)

// String returns a readable name for the kind.
func (k PendingKind) String() string {
	switch k {
	case PendingReference:
		return "reference"
	case PendingInstantiation:
		return "instantiation"
	case PendingTypeLookup:
		return "type lookup"
	case PendingBinaryOp:
		return "binary operation"
	default:
		return "unknown"
	}
}

// Delayed stands in for a value that cannot be computed yet.
//
// A placeholder is either pending or resolved. Resolution happens once, in
// [Context.Resolve], and stores the result behind [Delayed.Resolved]; the
// placeholder itself is never replaced, so every holder observes the
// result.
type Delayed struct {
	resolved Value
	desc     *TypeDescriptor // PendingInstantiation
	lhs, rhs Value           // PendingBinaryOp
	path     []string        // PendingReference, PendingTypeLookup
	args     []Value         // PendingInstantiation, PendingTypeLookup
	rng      lang.Range
	seq      int // registration order, 0 if unregistered
	kind     PendingKind
	op       Op
}

// NewReference returns a placeholder for the value at a dotted path.
func NewReference(path []string) *Delayed {
	return &Delayed{kind: PendingReference, path: slices.Clone(path)}
}

// NewInstantiation returns a placeholder that constructs t from args.
func NewInstantiation(t *TypeDescriptor, args []Value) *Delayed {
	return &Delayed{kind: PendingInstantiation, desc: t, args: slices.Clone(args)}
}

// NewTypeLookup returns a placeholder that instantiates the type bound at
// a dotted path.
func NewTypeLookup(path []string, args []Value) *Delayed {
	return &Delayed{
		kind: PendingTypeLookup,
		path: slices.Clone(path),
		args: slices.Clone(args),
	}
}

// NewBinaryOp returns a placeholder for lhs op rhs.
func NewBinaryOp(op Op, lhs, rhs Value) *Delayed {
	return &Delayed{kind: PendingBinaryOp, op: op, lhs: lhs, rhs: rhs}
}

// Type forwards to the resolved value, or returns [NoType].
func (d *Delayed) Type() TypeID {
	if d.resolved == nil {
		return NoType
	}

	return d.resolved.Type()
}

func (d *Delayed) Kind() Kind { return KindDelayed }

// Property forwards to the resolved value.
func (d *Delayed) Property(name string) (Value, error) {
	if d.resolved == nil {
		return nil, propertyNotFound(d, name)
	}

	return d.resolved.Property(name)
}

// Clone clones the resolved value, or returns a new unregistered
// placeholder with the same payload.
func (d *Delayed) Clone() Value {
	if d.resolved != nil {
		return d.resolved.Clone()
	}

	c := *d
	c.seq = 0
	c.path = slices.Clone(d.path)
	c.args = slices.Clone(d.args)

	return &c
}

// Resolved returns the result of resolution.
func (d *Delayed) Resolved() (Value, bool) { return d.resolved, d.resolved != nil }

// Pending returns what the placeholder is waiting for. ok is false once
// resolved.
func (d *Delayed) Pending() (kind PendingKind, ok bool) {
	return d.kind, d.resolved == nil
}

// Range returns the source range of the expression that produced d.
func (d *Delayed) Range() lang.Range { return d.rng }

// String describes the pending operation.
func (d *Delayed) String() string {
	if d.resolved != nil {
		return Describe(d.resolved)
	}

	var sb strings.Builder

	sb.WriteString(d.kind.String())
	sb.WriteByte(' ')

	switch d.kind {
	case PendingReference:
		sb.WriteString(joinPath(d.path))
	case PendingInstantiation:
		sb.WriteString(d.desc.name)
		sb.WriteString("(...)")
	case PendingTypeLookup:
		sb.WriteString(joinPath(d.path))
		sb.WriteString("(...)")
	case PendingBinaryOp:
		sb.WriteString(d.lhs.Type().String())
		sb.WriteString(" " + d.op.String() + " ")
		sb.WriteString(d.rhs.Type().String())
	}

	return sb.String()
}

// tryResolve attempts to compute the placeholder's value. It returns false
// if a dependency is still unresolved. Errors are fatal.
func (d *Delayed) tryResolve(sc *Context) (bool, error) {
	if d.resolved != nil {
		return true, nil
	}

	var (
		v   Value
		err error
	)

	switch d.kind {
	case PendingReference:
		v, err = walk(sc.root, d.path)
		if err != nil || !IsResolved(v) {
			return false, nil
		}

	case PendingInstantiation:
		if !allResolved(d.args) {
			return false, nil
		}

		v, err = d.desc.Instantiate(sc, d.args)

	case PendingTypeLookup:
		if !allResolved(d.args) {
			return false, nil
		}

		found, lookupErr := walk(sc.root, d.path)
		if lookupErr != nil || !IsResolved(found) {
			return false, nil
		}

		t, ok := Unwrap(found).(*TypeDescriptor)
		if !ok {
			err = ErrTypeMismatch.With(
				slog.String("path", joinPath(d.path)),
				slog.String("want", "type"),
				slog.String("got", Describe(found)),
			)

			break
		}

		v, err = t.Instantiate(sc, d.args)

	case PendingBinaryOp:
		if !IsResolved(d.lhs) || !IsResolved(d.rhs) {
			return false, nil
		}

		v, err = Apply(d.op, d.lhs, d.rhs)
	}

	if err != nil {
		return false, sc.located(err, d.rng)
	}

	d.resolved = v

	// A constructor may itself defer; its placeholder joins the queue.
	sc.Defer(v, d.rng)

	return true, nil
}
