package build

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/ardnew/abuild/sema"
)

// Target is a value that can be brought up to date.
//
// Methods taking a [Context] may cache their results per Context until
// Invalidate is called.
type Target interface {
	sema.Value

	// Dependencies returns the targets that must be built first.
	Dependencies(rc *Context) ([]Target, error)
	// Inputs returns the files read by Run.
	Inputs(rc *Context) ([]string, error)
	// Outputs returns the files written by Run.
	Outputs(rc *Context) ([]string, error)
	// NeedsRebuild reports staleness that file times cannot express.
	NeedsRebuild(rc *Context) (bool, error)
	// Run performs the target's action.
	Run(ctx context.Context, rc *Context) error
	// Invalidate drops every cached result.
	Invalidate()

	String() string
}

// Linkable is implemented by targets whose outputs are passed to a linker.
type Linkable interface {
	Capabilities(rc *Context) ([]*LinkerCapability, error)
}

// Generator is implemented by targets that produce files other targets
// may read. Those files are indexed so that readers depend on their
// producer.
type Generator interface {
	GeneratedFiles(rc *Context) ([]string, error)
}

// Future is the eventual result of building a target.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

func (f *Future) complete(err error) {
	f.err = err
	close(f.done)
}

// Done returns a channel closed when the build completes.
func (f *Future) Done() <-chan struct{} { return f.done }

// Err returns the build result. It is only meaningful after Done is closed.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the build completes or ctx is done.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Built reports whether t is up to date in rc.
//
// The result is memoized per Context. Built must not be called on a
// target whose dependency graph has a cycle.
func Built(rc *Context, t Target) (bool, error) {
	rc.mu.Lock()
	b, ok := rc.built[t]
	rc.mu.Unlock()

	if ok {
		return b, nil
	}

	b, err := built(rc, t)
	if err != nil {
		return false, err
	}

	rc.mu.Lock()
	rc.built[t] = b
	rc.mu.Unlock()

	return b, nil
}

func built(rc *Context, t Target) (bool, error) {
	deps, err := t.Dependencies(rc)
	if err != nil {
		return false, err
	}

	for _, dep := range deps {
		ok, err := Built(rc, dep)
		if err != nil || !ok {
			return false, err
		}
	}

	outputs, err := t.Outputs(rc)
	if err != nil {
		return false, err
	}

	oldest, ok, err := oldestModTime(outputs)
	if err != nil || !ok {
		return false, err
	}

	inputs, err := t.Inputs(rc)
	if err != nil {
		return false, err
	}

	if len(inputs) > 0 && len(outputs) > 0 {
		newest, ok, err := newestModTime(inputs)
		if err != nil || !ok {
			return false, err
		}

		if newest.After(oldest) {
			return false, nil
		}
	}

	stale, err := t.NeedsRebuild(rc)
	if err != nil {
		return false, err
	}

	return !stale, nil
}

// oldestModTime returns the earliest modification time of paths. ok is
// false if any path does not exist.
func oldestModTime(paths []string) (oldest time.Time, ok bool, err error) {
	for i, p := range paths {
		mt, exists, err := modTime(p)
		if err != nil || !exists {
			return time.Time{}, false, err
		}

		if i == 0 || mt.Before(oldest) {
			oldest = mt
		}
	}

	return oldest, true, nil
}

// newestModTime returns the latest modification time of paths. ok is
// false if any path does not exist.
func newestModTime(paths []string) (newest time.Time, ok bool, err error) {
	for _, p := range paths {
		mt, exists, err := modTime(p)
		if err != nil || !exists {
			return time.Time{}, false, err
		}

		if mt.After(newest) {
			newest = mt
		}
	}

	return newest, true, nil
}

func modTime(path string) (time.Time, bool, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, nil
	}

	if err != nil {
		return time.Time{}, false, err
	}

	return fi.ModTime(), true, nil
}

// Build returns the future result of bringing t up to date in rc.
//
// Every call for the same target and Context returns the same future, and
// the target's action runs at most once. The action starts only after all
// dependencies completed successfully and a worker slot is free.
func Build(ctx context.Context, rc *Context, t Target) *Future {
	rc.mu.Lock()
	if f, ok := rc.futures[t]; ok {
		rc.mu.Unlock()

		return f
	}

	f := newFuture()
	rc.futures[t] = f
	rc.mu.Unlock()

	ok, err := Built(rc, t)

	switch {
	case err != nil:
		rc.fail(ctx, f, t.String(), ErrBuildActionFailure.Wrap(err).With(slog.String("target", t.String())))

	case ok:
		rc.logger.TraceContext(ctx, "up to date", slog.String("target", t.String()))
		rc.emit(Event{Kind: EventUpToDate, Target: t.String()})
		f.complete(nil)

	default:
		go rc.run(ctx, t, f)
	}

	return f
}

func (rc *Context) run(ctx context.Context, t Target, f *Future) {
	name := t.String()

	deps, err := t.Dependencies(rc)
	if err != nil {
		rc.fail(ctx, f, name, ErrBuildActionFailure.Wrap(err).With(slog.String("target", name)))

		return
	}

	pending := make([]*Future, len(deps))
	for i, dep := range deps {
		pending[i] = Build(ctx, rc, dep)
	}

	for i, dep := range pending {
		if err := dep.Wait(ctx); err != nil {
			rc.emit(Event{Kind: EventSkipped, Target: name, Err: err})
			f.complete(ErrDependencyFailed.Wrap(err).With(
				slog.String("target", name),
				slog.String("dependency", deps[i].String()),
			))

			return
		}
	}

	if err := rc.slots.Acquire(ctx, 1); err != nil {
		rc.emit(Event{Kind: EventSkipped, Target: name, Err: err})
		f.complete(err)

		return
	}
	defer rc.slots.Release(1)

	if rc.aborted.Load() {
		rc.emit(Event{Kind: EventSkipped, Target: name})
		f.complete(ErrAborted.With(slog.String("target", name)))

		return
	}

	rc.logger.DebugContext(ctx, "run", slog.String("target", name))
	rc.emit(Event{Kind: EventStarted, Target: name})

	start := time.Now()

	if err := t.Run(ctx, rc); err != nil {
		rc.fail(ctx, f, name, ErrBuildActionFailure.Wrap(err).With(slog.String("target", name)))

		return
	}

	elapsed := time.Since(start)
	rc.logger.DebugContext(ctx, "done",
		slog.String("target", name),
		slog.Duration("elapsed", elapsed))
	rc.emit(Event{Kind: EventFinished, Target: name, Elapsed: elapsed})
	f.complete(nil)
}

// fail completes f with err. Unless keep-going is set, no further action
// of rc starts afterwards.
func (rc *Context) fail(ctx context.Context, f *Future, name string, err error) {
	if !rc.keepGoing {
		rc.aborted.Store(true)
	}

	rc.logger.ErrorContext(ctx, "failed", slog.String("target", name), slog.Any("error", err))
	rc.emit(Event{Kind: EventFailed, Target: name, Err: err})
	f.complete(err)
}
