package build

import (
	"context"
	"log/slog"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/abuild/log"
	"github.com/ardnew/abuild/pkg"
	"github.com/ardnew/abuild/sema"
)

// maxSuggestions bounds the "did you mean" candidates of an unknown
// target.
const maxSuggestions = 3

// Lookup finds the target bound to name in env. Names bound directly to
// targets are preferred; otherwise name is looked up as a dotted path.
func Lookup(env *sema.Environment, name string) (Target, error) {
	if v, ok := env.Target(name); ok {
		if t, ok := v.(Target); ok {
			return t, nil
		}
	}

	v, err := env.Lookup(name)
	if err == nil {
		if t, ok := sema.Unwrap(v).(Target); ok {
			return t, nil
		}

		return nil, ErrUnknownTarget.With(
			slog.String("target", name),
			slog.String("bound", sema.Describe(v)),
		)
	}

	attrs := []slog.Attr{slog.String("target", name)}
	if s := Suggest(name, env.TargetNames()); len(s) > 0 {
		attrs = append(attrs, slog.Any("suggestions", s))
	}

	return nil, ErrUnknownTarget.Wrap(err).With(attrs...)
}

// Suggest returns up to three of names that fuzzily match name, best
// first.
func Suggest(name string, names []string) []string {
	matches := fuzzy.Find(name, names)

	var out []string

	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}

		out = append(out, m.Str)
	}

	return out
}

// Prepare returns a build context for env. Plugin runtime initializers
// recorded during analysis run in import order.
func Prepare(env *sema.Environment, opts ...Option) (*Context, error) {
	rc := NewContext(opts...)

	for _, ext := range env.Extensions() {
		ri, ok := ext.(RuntimeInitializer)
		if !ok {
			continue
		}

		if err := ri.InitRuntime(rc); err != nil {
			return nil, pkg.WrapError(err).With(slog.String("plugin", ri.ExtensionName()))
		}
	}

	return rc, nil
}

// Plan discovers the dependency graph of t and orders it. The graph is
// walked twice: the first walk indexes generated files, the second
// computes dependencies against the complete index.
func Plan(rc *Context, t Target) ([]Target, error) {
	g, err := Discover(rc, t)
	if err != nil {
		return nil, err
	}

	g.Invalidate()

	if g, err = Discover(rc, t); err != nil {
		return nil, err
	}

	order, err := g.Sort()
	if err != nil {
		return nil, err
	}

	rc.logger.Debug("plan",
		slog.String("target", t.String()),
		slog.Int("targets", len(order)))

	return order, nil
}

// Run builds the target named name in env. Unless an option sets one, the
// logger carried by ctx is used.
func Run(ctx context.Context, env *sema.Environment, name string, opts ...Option) error {
	t, err := Lookup(env, name)
	if err != nil {
		return err
	}

	opts = append([]Option{WithLogger(log.FromContext(ctx))}, opts...)

	rc, err := Prepare(env, opts...)
	if err != nil {
		return err
	}

	return Execute(ctx, rc, t)
}

// Execute plans and builds t in rc, blocking until it completes or ctx
// is done. Nothing runs if the dependency graph has a cycle.
func Execute(ctx context.Context, rc *Context, t Target) error {
	if _, err := Plan(rc, t); err != nil {
		return err
	}

	f := Build(ctx, rc, t)

	select {
	case <-f.Done():
		return f.Err()
	case <-ctx.Done():
		rc.aborted.Store(true)

		return ctx.Err()
	}
}
