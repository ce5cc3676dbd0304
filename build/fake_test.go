package build

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ardnew/abuild/lang"
	"github.com/ardnew/abuild/log"
	"github.com/ardnew/abuild/pkg"
	"github.com/ardnew/abuild/sema"
)

var errFake = errors.New("fake failure")

var fakeTargetType = sema.NewTypeID("fake_target")

// fakeTarget is a target with a scripted action.
type fakeTarget struct {
	name   string
	deps   []Target
	stale  bool
	err    error
	check  error
	runs   atomic.Int32
	action func() error
}

func newFake(name string, deps ...Target) *fakeTarget {
	return &fakeTarget{name: name, deps: deps, stale: true}
}

func (f *fakeTarget) Type() sema.TypeID { return fakeTargetType }
func (f *fakeTarget) Kind() sema.Kind   { return sema.KindTarget }
func (f *fakeTarget) Clone() sema.Value { return f }
func (f *fakeTarget) String() string    { return f.name }

func (f *fakeTarget) Property(name string) (sema.Value, error) {
	return nil, sema.ErrPropertyNotFound.With(slog.String("property", name))
}

func (f *fakeTarget) Dependencies(*Context) ([]Target, error) { return f.deps, nil }
func (f *fakeTarget) Inputs(*Context) ([]string, error)       { return nil, nil }
func (f *fakeTarget) Outputs(*Context) ([]string, error)      { return nil, nil }
func (f *fakeTarget) NeedsRebuild(*Context) (bool, error)     { return f.stale, f.check }
func (f *fakeTarget) Invalidate()                             {}

func (f *fakeTarget) Run(context.Context, *Context) error {
	f.runs.Add(1)

	if f.action != nil {
		if err := f.action(); err != nil {
			return err
		}
	}

	return f.err
}

// timeline records action boundaries in the order they happen.
type timeline struct {
	mu     sync.Mutex
	events []string
}

func (tl *timeline) mark(event string) {
	if tl == nil {
		return
	}

	tl.mu.Lock()
	tl.events = append(tl.events, event)
	tl.mu.Unlock()
}

// index returns the position of event, or -1.
func (tl *timeline) index(event string) int {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	return slices.Index(tl.events, event)
}

// requireBefore fails unless first was recorded before second.
func (tl *timeline) requireBefore(t *testing.T, first, second string) {
	t.Helper()

	i, j := tl.index(first), tl.index(second)
	require.NotEqual(t, -1, i, "missing %s in %v", first, tl.events)
	require.NotEqual(t, -1, j, "missing %s in %v", second, tl.events)
	require.Less(t, i, j, "%s after %s in %v", first, second, tl.events)
}

// fakeCompiler "compiles" path into outdir/path.out.
type fakeCompiler struct {
	capability *LinkerCapability
	trace      *timeline
	// extra inputs by source path, relative to the output directory
	extra map[string][]string

	mu       sync.Mutex
	compiled []string
}

func (c *fakeCompiler) output(rc *Context, path string) string {
	return filepath.Join(rc.OutputDir(), path+".out")
}

func (c *fakeCompiler) Inputs(rc *Context, path string) ([]string, error) {
	inputs := []string{rc.Abs(path)}
	for _, e := range c.extra[path] {
		inputs = append(inputs, filepath.Join(rc.OutputDir(), e))
	}

	return inputs, nil
}

func (c *fakeCompiler) Outputs(rc *Context, path string) ([]string, error) {
	return []string{c.output(rc, path)}, nil
}

func (c *fakeCompiler) NeedsRebuild(*Context, string) (bool, error) { return false, nil }

func (c *fakeCompiler) Compile(_ context.Context, rc *Context, path string) error {
	out := c.output(rc, path)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}

	c.trace.mark("compile:" + path + ":start")
	defer c.trace.mark("compile:" + path + ":end")

	c.mu.Lock()
	c.compiled = append(c.compiled, path)
	c.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	return os.WriteFile(out, []byte(path), 0o644)
}

func (c *fakeCompiler) Capability() *LinkerCapability { return c.capability }

func (c *fakeCompiler) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.compiled)
}

type linkCall struct {
	output string
	kind   BinaryKind
	inputs []string
	flags  []string
}

type fakeLinker struct {
	trace *timeline
	mu    sync.Mutex
	calls []linkCall
}

func (l *fakeLinker) Link(
	_ context.Context,
	_ *Context,
	output string,
	kind BinaryKind,
	inputs, flags []string,
) error {
	l.trace.mark("link:" + filepath.Base(output) + ":start")
	defer l.trace.mark("link:" + filepath.Base(output) + ":end")

	l.mu.Lock()
	l.calls = append(l.calls, linkCall{output, kind, inputs, flags})
	l.mu.Unlock()

	return os.WriteFile(output, []byte("linked"), 0o755)
}

func (l *fakeLinker) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.calls)
}

// fakeToolchain registers a compiler for ".src" files linked by a single
// capability.
type fakeToolchain struct {
	compiler *fakeCompiler
	linker   *fakeLinker
}

func newToolchain() *fakeToolchain {
	l := &fakeLinker{}
	c := &fakeCompiler{
		capability: &LinkerCapability{Name: "fake", Convenient: l},
		extra:      map[string][]string{},
	}

	return &fakeToolchain{compiler: c, linker: l}
}

func (tc *fakeToolchain) register(rc *Context) {
	rc.RegisterCompiler(".src", tc.compiler)
	rc.RegisterLinker(tc.compiler.capability)
}

func newTestContext(t *testing.T, opts ...Option) *Context {
	t.Helper()

	dir := t.TempDir()

	return NewContext(append([]Option{
		WithWorkDir(dir),
		WithLogger(log.Discard()),
	}, opts...)...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func analyze(t *testing.T, src string) *sema.Environment {
	t.Helper()

	ast, err := lang.ParseString(context.Background(), src)
	require.NoError(t, err)

	env, err := sema.Analyze(context.Background(), ast,
		sema.WithTypes(Types),
		sema.WithLogger(log.Discard()))
	require.NoError(t, err)

	return env
}

func errAttr(err error, key string) (slog.Value, bool) {
	var pe *pkg.Error
	if !errors.As(err, &pe) {
		return slog.Value{}, false
	}

	return pe.Attr(key)
}
