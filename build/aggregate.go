package build

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/abuild/sema"
)

// Type identifiers of the action-less targets.
var (
	AggregateType  = sema.NewTypeID("aggregate")
	DebugPrintType = sema.NewTypeID("debug_print")
)

// Aggregate groups targets under one name.
type Aggregate struct {
	deps []Target
}

// NewAggregate returns a target depending on deps.
func NewAggregate(deps ...Target) *Aggregate { return &Aggregate{deps: deps} }

func (a *Aggregate) Type() sema.TypeID { return AggregateType }
func (a *Aggregate) Kind() sema.Kind   { return sema.KindTarget }
func (a *Aggregate) Clone() sema.Value { return NewAggregate(a.deps...) }

func (a *Aggregate) Property(name string) (sema.Value, error) {
	return nil, sema.ErrPropertyNotFound.With(
		slog.String("property", name),
		slog.String("of", "aggregate"),
	)
}

func (a *Aggregate) String() string {
	names := make([]string, len(a.deps))
	for i, d := range a.deps {
		names[i] = d.String()
	}

	return "aggregate(" + strings.Join(names, ", ") + ")"
}

func (a *Aggregate) Dependencies(*Context) ([]Target, error) { return a.deps, nil }
func (a *Aggregate) Inputs(*Context) ([]string, error)       { return nil, nil }
func (a *Aggregate) Outputs(*Context) ([]string, error)      { return nil, nil }
func (a *Aggregate) NeedsRebuild(*Context) (bool, error)     { return false, nil }
func (a *Aggregate) Run(context.Context, *Context) error     { return nil }
func (a *Aggregate) Invalidate()                             {}

// newAggregate depends on the target arguments and ignores the rest.
func newAggregate(_ *sema.Context, t *sema.TypeDescriptor, args []sema.Value) (sema.Value, error) {
	if !resolved(args) {
		return sema.NewInstantiation(t, args), nil
	}

	var deps []Target

	for _, arg := range args {
		if dep, ok := sema.Unwrap(arg).(Target); ok {
			deps = append(deps, dep)
		}
	}

	return NewAggregate(deps...), nil
}

// DebugPrint is always stale; its action logs a message.
type DebugPrint struct {
	message string
}

func (d *DebugPrint) Type() sema.TypeID { return DebugPrintType }
func (d *DebugPrint) Kind() sema.Kind   { return sema.KindTarget }
func (d *DebugPrint) Clone() sema.Value { return &DebugPrint{message: d.message} }
func (d *DebugPrint) String() string    { return "debug_print(" + d.message + ")" }

func (d *DebugPrint) Property(name string) (sema.Value, error) {
	if name == "message" {
		return sema.NewString(d.message), nil
	}

	return nil, sema.ErrPropertyNotFound.With(
		slog.String("property", name),
		slog.String("of", "debug_print"),
	)
}

func (d *DebugPrint) Dependencies(*Context) ([]Target, error) { return nil, nil }
func (d *DebugPrint) Inputs(*Context) ([]string, error)       { return nil, nil }
func (d *DebugPrint) Outputs(*Context) ([]string, error)      { return nil, nil }
func (d *DebugPrint) NeedsRebuild(*Context) (bool, error)     { return true, nil }
func (d *DebugPrint) Invalidate()                             {}

func (d *DebugPrint) Run(ctx context.Context, rc *Context) error {
	rc.logger.InfoContext(ctx, d.message)

	return nil
}

func newDebugPrint(_ *sema.Context, _ *sema.TypeDescriptor, args []sema.Value) (sema.Value, error) {
	return &DebugPrint{message: stringArgs(args)[0]}, nil
}

func resolved(args []sema.Value) bool {
	for _, arg := range args {
		if !sema.IsResolved(arg) {
			return false
		}
	}

	return true
}
