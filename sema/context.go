package sema

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/abuild/lang"
	"github.com/ardnew/abuild/log"
	"github.com/ardnew/abuild/pkg"
)

// BuiltinSource is the source label of types registered by this package.
const BuiltinSource = "<builtin>"

// Extension is analysis state contributed by a type constructor, such as a
// plugin import, and carried into the [Environment].
type Extension interface {
	ExtensionName() string
}

// Context is the state of one semantic analysis: the root namespace with
// its registered types, the queue of pending placeholders, and collected
// extensions.
//
// A Context is not safe for concurrent use.
type Context struct {
	root       *Namespace
	types      map[TypeID]*TypeDescriptor
	logger     log.Logger
	pending    []*Delayed
	extensions []Extension
	seq        int
}

// NewContext returns a context whose root namespace holds the builtin
// types string, namespace and set.
func NewContext(logger log.Logger) *Context {
	sc := &Context{
		root:   NewNamespace(),
		types:  make(map[TypeID]*TypeDescriptor),
		logger: logger,
	}

	registerBuiltins(sc)

	return sc
}

// Root returns the global namespace.
func (sc *Context) Root() *Namespace { return sc.root }

// Logger returns the analysis logger.
func (sc *Context) Logger() log.Logger { return sc.logger }

// RegisterType binds a descriptor for the dotted name in the global
// namespace, creating intermediate namespaces as needed. If id is
// [NoType], a new identifier is allocated. A nil ctor registers a type that
// cannot be instantiated.
func (sc *Context) RegisterType(
	name, source string,
	id TypeID,
	ctor Constructor,
) (*TypeDescriptor, error) {
	path := strings.Split(name, ".")
	if slices.Contains(path, "") {
		return nil, ErrInvalidName.With(slog.String("name", name))
	}

	parent, err := sc.root.Ensure(path[:len(path)-1])
	if err != nil {
		return nil, err
	}

	leaf := path[len(path)-1]

	if existing, ok := parent.Get(leaf); ok {
		if t, ok := Unwrap(existing).(*TypeDescriptor); ok {
			return nil, ErrDuplicateTypeName.With(
				slog.String("name", name),
				slog.String("source", t.source),
			)
		}

		return nil, ErrDuplicateTypeName.With(
			slog.String("name", name),
			slog.String("bound", Describe(existing)),
		)
	}

	if id == NoType {
		id = NewTypeID(name)
	}

	t := &TypeDescriptor{id: id, name: name, source: source, ctor: ctor}

	parent.Set(leaf, t)
	sc.types[id] = t

	sc.logger.Trace("register type",
		slog.String("name", name),
		slog.String("source", source),
		slog.Bool("constructible", ctor != nil))

	return t, nil
}

// Descriptor returns the descriptor registered for id.
func (sc *Context) Descriptor(id TypeID) (*TypeDescriptor, bool) {
	t, ok := sc.types[id]

	return t, ok
}

// Defer queues v for resolution if it is a pending placeholder that has
// not been queued yet. rng is recorded as its source location unless one
// is already set.
func (sc *Context) Defer(v Value, rng lang.Range) {
	d, ok := v.(*Delayed)
	if !ok || d.resolved != nil || d.seq != 0 {
		return
	}

	if !d.rng.Start.IsValid() {
		d.rng = rng
	}

	sc.seq++
	d.seq = sc.seq
	sc.pending = append(sc.pending, d)
}

// Pending returns the number of queued placeholders.
func (sc *Context) Pending() int { return len(sc.pending) }

// AddExtension records an extension for the resulting environment.
func (sc *Context) AddExtension(e Extension) {
	sc.extensions = append(sc.extensions, e)
}

// Extensions returns the recorded extensions in registration order.
func (sc *Context) Extensions() []Extension {
	return append([]Extension(nil), sc.extensions...)
}

// Resolve runs resolution sweeps until every queued placeholder resolves or
// a sweep makes no progress.
//
// Within a sweep, placeholders are attempted in registration order and a
// success is visible to the placeholders after it. Placeholders queued
// during a sweep are attempted in the next one. If placeholders remain
// pending, Resolve fails with [ErrUnresolvedReferences] located at the
// earliest registered one.
func (sc *Context) Resolve(ctx context.Context) error {
	for sweep := 1; len(sc.pending) > 0; sweep++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := sc.pending
		sc.pending = nil

		var (
			retry    []*Delayed
			resolved int
		)

		for _, d := range batch {
			ok, err := d.tryResolve(sc)
			if err != nil {
				return err
			}

			if ok {
				resolved++
			} else {
				retry = append(retry, d)
			}
		}

		sc.pending = append(retry, sc.pending...)

		sc.logger.TraceContext(ctx, "resolve sweep",
			slog.Int("sweep", sweep),
			slog.Int("resolved", resolved),
			slog.Int("pending", len(sc.pending)))

		if resolved == 0 {
			break
		}
	}

	if len(sc.pending) == 0 {
		return nil
	}

	first := sc.pending[0]
	for _, d := range sc.pending[1:] {
		if d.seq < first.seq {
			first = d
		}
	}

	return ErrUnresolvedReferences.With(
		slog.String("at", first.rng.Start.String()),
		slog.String("first", first.String()),
		slog.Int("pending", len(sc.pending)),
	)
}

// located annotates err with the start of rng.
func (sc *Context) located(err error, rng lang.Range) error {
	if !rng.Start.IsValid() {
		return err
	}

	return pkg.WrapError(err).With(slog.String("at", rng.Start.String()))
}
