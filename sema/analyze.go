package sema

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ardnew/abuild/lang"
	"github.com/ardnew/abuild/log"
)

// TypeProvider registers additional types into a fresh analysis context.
type TypeProvider func(sc *Context) error

// Option configures [Analyze].
type Option func(*options)

type options struct {
	logger    *log.Logger
	providers []TypeProvider
}

// WithTypes adds type providers, applied in order after the builtins.
func WithTypes(providers ...TypeProvider) Option {
	return func(o *options) { o.providers = append(o.providers, providers...) }
}

// WithLogger sets the analysis logger. By default the logger carried by
// the context passed to [Analyze] is used.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// Analyze evaluates the assignments of ast in order, then resolves every
// placeholder they produced.
//
// Each assignment binds its dotted name in the root namespace. Names bound
// to targets after resolution form the environment's target index; when a
// name is bound more than once, the last binding wins.
func Analyze(ctx context.Context, ast *lang.AST, opts ...Option) (*Environment, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := log.FromContext(ctx)
	if o.logger != nil {
		logger = *o.logger
	}

	sc := NewContext(logger)

	for _, provide := range o.providers {
		if err := provide(sc); err != nil {
			return nil, err
		}
	}

	a := &analyzer{sc: sc}

	for _, asgn := range ast.Assignments {
		if err := a.assign(asgn); err != nil {
			logger.DebugContext(ctx, "analysis failed",
				slog.String("target", asgn.Target.String()),
				slog.Any("error", err))

			return nil, err
		}
	}

	logger.TraceContext(ctx, "assignments bound",
		slog.Int("assignments", len(ast.Assignments)),
		slog.Int("pending", sc.Pending()))

	if err := sc.Resolve(ctx); err != nil {
		return nil, err
	}

	env := newEnvironment(sc)

	for _, name := range a.candidates {
		v, err := sc.root.Lookup(splitPath(name))
		if err != nil {
			continue
		}

		if Unwrap(v).Kind() == KindTarget {
			env.targets[name] = Unwrap(v)
		}
	}

	logger.DebugContext(ctx, "analysis complete",
		slog.Int("targets", len(env.targets)),
		slog.Int("extensions", len(env.extensions)))

	return env, nil
}

type analyzer struct {
	sc         *Context
	candidates []string
}

// assign evaluates one assignment and binds the result.
func (a *analyzer) assign(asgn *lang.Assignment) error {
	path := asgn.Target.Path

	v, err := a.eval(asgn.Value)
	if err != nil {
		return err
	}

	if op, ok := asgn.Op.Binary(); ok {
		cur, err := a.sc.root.Lookup(path)
		if err != nil {
			return a.sc.located(err, asgn.Target.Range)
		}

		v, err = Apply(Op(op), cur, v)
		if err != nil {
			return a.sc.located(err, asgn.Range)
		}

		a.sc.Defer(v, asgn.Range)
	}

	parent, err := a.sc.root.Ensure(path[:len(path)-1])
	if err != nil {
		return a.sc.located(err, asgn.Target.Range)
	}

	parent.Set(path[len(path)-1], v)

	if name := asgn.Target.String(); !slices.Contains(a.candidates, name) {
		a.candidates = append(a.candidates, name)
	}

	return nil
}

// eval evaluates an expression against the current bindings. Anything
// that cannot be evaluated yet becomes a queued placeholder.
func (a *analyzer) eval(e *lang.Expr) (Value, error) {
	switch e.Kind {
	case lang.ExprString:
		return NewString(e.Text), nil

	case lang.ExprReference:
		if v, err := a.sc.root.Lookup(e.ID.Path); err == nil {
			return v, nil
		}

		d := NewReference(e.ID.Path)
		a.sc.Defer(d, e.Range)

		return d, nil

	case lang.ExprCall:
		args := make([]Value, len(e.Args))

		for i, arg := range e.Args {
			v, err := a.eval(arg)
			if err != nil {
				return nil, err
			}

			args[i] = v
		}

		var result Value

		found, err := a.sc.root.Lookup(e.ID.Path)

		switch {
		case err != nil || !IsResolved(found):
			result = NewTypeLookup(e.ID.Path, args)

		default:
			t, ok := Unwrap(found).(*TypeDescriptor)
			if !ok {
				return nil, a.sc.located(ErrTypeMismatch.With(
					slog.String("path", e.ID.String()),
					slog.String("want", "type"),
					slog.String("got", Describe(found)),
				), e.Range)
			}

			result, err = t.Instantiate(a.sc, args)
			if err != nil {
				return nil, a.sc.located(err, e.Range)
			}
		}

		a.sc.Defer(result, e.Range)

		return result, nil

	case lang.ExprBinary:
		lhs, err := a.eval(e.LHS)
		if err != nil {
			return nil, err
		}

		rhs, err := a.eval(e.RHS)
		if err != nil {
			return nil, err
		}

		result, err := Apply(Op(e.Op), lhs, rhs)
		if err != nil {
			return nil, a.sc.located(err, e.Range)
		}

		a.sc.Defer(result, e.Range)

		return result, nil

	default:
		return nil, ErrTypeMismatch.With(slog.String("expression", e.Kind.String()))
	}
}
