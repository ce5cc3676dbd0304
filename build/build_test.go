package build

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_RunsSharedDependencyOnce(t *testing.T) {
	rc := newTestContext(t, WithJobs(4))

	shared := newFake("shared")

	var roots []Target
	for range 16 {
		roots = append(roots, newFake("root", shared))
	}

	top := NewAggregate(roots...)

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			assert.NoError(t, Build(context.Background(), rc, top).Wait(context.Background()))
		}()
	}

	wg.Wait()

	assert.EqualValues(t, 1, shared.runs.Load())

	for _, r := range roots {
		assert.EqualValues(t, 1, r.(*fakeTarget).runs.Load())
	}
}

func TestBuild_SameFuture(t *testing.T) {
	rc := newTestContext(t)
	tgt := newFake("a")

	f1 := Build(context.Background(), rc, tgt)
	f2 := Build(context.Background(), rc, tgt)

	assert.Same(t, f1, f2)
	require.NoError(t, f1.Wait(context.Background()))
}

func TestBuild_DependencyFinishesBeforeDependent(t *testing.T) {
	rc := newTestContext(t, WithJobs(4))
	trace := &timeline{}

	stamp := func(f *fakeTarget) *fakeTarget {
		f.action = func() error {
			trace.mark(f.name + ":start")
			time.Sleep(5 * time.Millisecond)
			trace.mark(f.name + ":end")

			return nil
		}

		return f
	}

	base := stamp(newFake("base"))
	left := stamp(newFake("left", base))
	right := stamp(newFake("right", base))
	top := stamp(newFake("top", left, right))

	require.NoError(t, Build(context.Background(), rc, top).Wait(context.Background()))

	trace.requireBefore(t, "base:end", "left:start")
	trace.requireBefore(t, "base:end", "right:start")
	trace.requireBefore(t, "left:end", "top:start")
	trace.requireBefore(t, "right:end", "top:start")
}

func TestBuild_UpToDateDoesNotRun(t *testing.T) {
	rc := newTestContext(t)

	tgt := newFake("fresh")
	tgt.stale = false

	require.NoError(t, Build(context.Background(), rc, tgt).Wait(context.Background()))
	assert.Zero(t, tgt.runs.Load())
}

func TestBuild_DependencyFailure(t *testing.T) {
	rc := newTestContext(t)

	bad := newFake("bad")
	bad.err = errFake

	dependent := newFake("dependent", bad)

	err := Build(context.Background(), rc, dependent).Wait(context.Background())
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrDependencyFailed)
	assert.ErrorIs(t, err, ErrBuildActionFailure)
	assert.ErrorIs(t, err, errFake)
	assert.Zero(t, dependent.runs.Load())

	v, ok := errAttr(err, "dependency")
	require.True(t, ok)
	assert.Equal(t, "bad", v.String())
}

// abortScenario builds aggregate(fail, after(slow)) with two slots. slow
// holds a slot until fail has been reported, so after is scheduled only
// once the failure is known.
func abortScenario(t *testing.T, keepGoing bool) (*fakeTarget, error) {
	t.Helper()

	failed := make(chan struct{})

	var once sync.Once

	rc := newTestContext(t,
		WithJobs(2),
		WithKeepGoing(keepGoing),
		WithObserver(ObserverFunc(func(e Event) {
			if e.Kind == EventFailed && e.Target == "fail" {
				once.Do(func() { close(failed) })
			}
		})))

	fail := newFake("fail")
	fail.err = errFake

	slow := newFake("slow")
	slow.action = func() error {
		select {
		case <-failed:
			return nil
		case <-time.After(5 * time.Second):
			return errFake
		}
	}

	after := newFake("after", slow)

	err := Build(context.Background(), rc, NewAggregate(fail, after)).Wait(context.Background())
	require.ErrorIs(t, err, ErrDependencyFailed)

	return after, Build(context.Background(), rc, after).Wait(context.Background())
}

func TestBuild_AbortStopsNewActions(t *testing.T) {
	after, err := abortScenario(t, false)

	assert.ErrorIs(t, err, ErrAborted)
	assert.Zero(t, after.runs.Load())
}

func TestBuild_KeepGoing(t *testing.T) {
	after, err := abortScenario(t, true)

	assert.NoError(t, err)
	assert.EqualValues(t, 1, after.runs.Load())
}

func TestBuild_StatusErrorAborts(t *testing.T) {
	tests := []struct {
		name      string
		keepGoing bool
	}{
		{"abort", false},
		{"keep going", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var failed []string

			rc := newTestContext(t,
				WithKeepGoing(tt.keepGoing),
				WithObserver(ObserverFunc(func(e Event) {
					if e.Kind == EventFailed {
						failed = append(failed, e.Target)
					}
				})))

			broken := newFake("broken")
			broken.check = errFake

			err := Build(context.Background(), rc, broken).Wait(context.Background())
			require.ErrorIs(t, err, ErrBuildActionFailure)
			require.ErrorIs(t, err, errFake)
			assert.Zero(t, broken.runs.Load())
			assert.Equal(t, []string{"broken"}, failed)
			assert.Equal(t, !tt.keepGoing, rc.Aborted())

			later := newFake("later")
			err = Build(context.Background(), rc, later).Wait(context.Background())

			if tt.keepGoing {
				assert.NoError(t, err)
				assert.EqualValues(t, 1, later.runs.Load())
			} else {
				assert.ErrorIs(t, err, ErrAborted)
				assert.Zero(t, later.runs.Load())
			}
		})
	}
}

func TestBuild_ObserverEvents(t *testing.T) {
	var (
		mu     sync.Mutex
		events = map[string][]EventKind{}
	)

	rc := newTestContext(t, WithObserver(ObserverFunc(func(e Event) {
		mu.Lock()
		defer mu.Unlock()

		events[e.Target] = append(events[e.Target], e.Kind)
	})))

	fresh := newFake("fresh")
	fresh.stale = false

	stale := newFake("stale", fresh)

	require.NoError(t, Build(context.Background(), rc, stale).Wait(context.Background()))

	assert.Equal(t, []EventKind{EventUpToDate}, events["fresh"])
	assert.Equal(t, []EventKind{EventStarted, EventFinished}, events["stale"])
}

func TestFuture_WaitCanceled(t *testing.T) {
	f := newFuture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, f.Wait(ctx), context.Canceled)
	assert.NoError(t, f.Err())
}

func TestBuilt_Staleness(t *testing.T) {
	tc := newToolchain()
	rc := newTestContext(t)
	tc.register(rc)

	src := filepath.Join(rc.WorkDir(), "a.src")
	out := filepath.Join(rc.OutputDir(), "a.src.out")

	writeFile(t, src, "source")

	f := rc.FileTarget("a.src")

	ok, err := Built(rc, f)
	require.NoError(t, err)
	assert.False(t, ok, "missing output")

	past := time.Now().Add(-time.Hour)

	writeFile(t, out, "object")
	require.NoError(t, os.Chtimes(src, past, past))

	rc2 := newTestContext(t, WithWorkDir(rc.WorkDir()))
	tc.register(rc2)

	ok, err = Built(rc2, rc2.FileTarget("a.src"))
	require.NoError(t, err)
	assert.True(t, ok, "output newer than input")

	require.NoError(t, Build(context.Background(), rc2, rc2.FileTarget("a.src")).Wait(context.Background()))
	assert.Zero(t, tc.compiler.count())

	require.NoError(t, os.Chtimes(out, past.Add(-time.Hour), past.Add(-time.Hour)))

	rc3 := newTestContext(t, WithWorkDir(rc.WorkDir()))
	tc.register(rc3)

	ok, err = Built(rc3, rc3.FileTarget("a.src"))
	require.NoError(t, err)
	assert.False(t, ok, "input newer than output")
}

func TestBuilt_Memoized(t *testing.T) {
	rc := newTestContext(t)

	tgt := newFake("a")
	tgt.stale = false

	ok, err := Built(rc, tgt)
	require.NoError(t, err)
	require.True(t, ok)

	tgt.stale = true

	ok, err = Built(rc, tgt)
	require.NoError(t, err)
	assert.True(t, ok)
}
