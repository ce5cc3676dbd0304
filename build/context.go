package build

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/ardnew/abuild/log"
)

// DefaultOutputDir is the output directory, relative to the working
// directory, used when none is configured.
const DefaultOutputDir = "build-output"

// Context holds the state of one build invocation: the registered
// compilers and linkers, the memoized build results, and the index of
// generated files.
//
// A Context is safe for concurrent use once registration is complete.
type Context struct {
	mu        sync.Mutex
	futures   map[Target]*Future
	built     map[Target]bool
	generated map[string]Target
	files     map[string]*File

	compilers map[string]Compiler
	linkers   []*LinkerCapability

	workDir   string
	outputDir string
	env       []string
	jobs      int
	keepGoing bool
	observer  Observer
	logger    log.Logger

	slots   *semaphore.Weighted
	aborted atomic.Bool
}

// Option configures a [Context].
type Option func(*Context)

// WithWorkDir sets the directory relative paths are resolved against.
// The default is the process working directory.
func WithWorkDir(dir string) Option {
	return func(rc *Context) { rc.workDir = dir }
}

// WithOutputDir sets the directory build outputs are written under. A
// relative dir is resolved against the working directory.
func WithOutputDir(dir string) Option {
	return func(rc *Context) { rc.outputDir = dir }
}

// WithJobs limits how many actions run at once. Values below one select
// the number of CPUs.
func WithJobs(n int) Option {
	return func(rc *Context) { rc.jobs = n }
}

// WithKeepGoing keeps starting independent actions after one fails.
func WithKeepGoing(keepGoing bool) Option {
	return func(rc *Context) { rc.keepGoing = keepGoing }
}

// WithEnv adds KEY=VALUE entries to the environment of spawned tools.
// Later entries override earlier ones and the process environment.
func WithEnv(env ...string) Option {
	return func(rc *Context) { rc.env = append(rc.env, env...) }
}

// WithObserver sets the receiver of build events.
func WithObserver(o Observer) Option {
	return func(rc *Context) { rc.observer = o }
}

// WithLogger sets the build logger.
func WithLogger(logger log.Logger) Option {
	return func(rc *Context) { rc.logger = logger }
}

// NewContext returns an empty build context.
func NewContext(opts ...Option) *Context {
	rc := &Context{
		futures:   make(map[Target]*Future),
		built:     make(map[Target]bool),
		generated: make(map[string]Target),
		files:     make(map[string]*File),
		compilers: make(map[string]Compiler),
	}

	for _, opt := range opts {
		opt(rc)
	}

	if rc.workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			rc.workDir = wd
		}
	}

	if rc.outputDir == "" {
		rc.outputDir = DefaultOutputDir
	}

	if !filepath.IsAbs(rc.outputDir) {
		rc.outputDir = filepath.Join(rc.workDir, rc.outputDir)
	}

	if rc.jobs < 1 {
		rc.jobs = runtime.NumCPU()
	}

	rc.slots = semaphore.NewWeighted(int64(rc.jobs))

	return rc
}

// WorkDir returns the directory relative paths are resolved against.
func (rc *Context) WorkDir() string { return rc.workDir }

// OutputDir returns the absolute output directory.
func (rc *Context) OutputDir() string { return rc.outputDir }

// Jobs returns the number of worker slots.
func (rc *Context) Jobs() int { return rc.jobs }

// Logger returns the build logger.
func (rc *Context) Logger() log.Logger { return rc.logger }

// Environ returns the environment for spawned tools.
func (rc *Context) Environ() []string {
	env := os.Environ()
	if len(rc.env) == 0 {
		return env
	}

	env = slices.DeleteFunc(env, func(kv string) bool {
		key, _, _ := strings.Cut(kv, "=")

		return slices.ContainsFunc(rc.env, func(o string) bool {
			return strings.HasPrefix(o, key+"=")
		})
	})

	return append(env, rc.env...)
}

// Aborted reports whether a failed action stopped the build.
func (rc *Context) Aborted() bool { return rc.aborted.Load() }

// Abs returns path resolved against the working directory.
func (rc *Context) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(rc.workDir, path)
}

// RegisterCompiler registers c for source files with extension ext
// (including the dot). A later registration for the same extension wins.
func (rc *Context) RegisterCompiler(ext string, c Compiler) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.compilers[ext] = c
}

// Compiler returns the compiler registered for the extension of path.
func (rc *Context) Compiler(path string) (Compiler, error) {
	ext := filepath.Ext(path)

	rc.mu.Lock()
	c, ok := rc.compilers[ext]
	rc.mu.Unlock()

	if !ok {
		return nil, ErrNoCompiler.With(
			slog.String("path", path),
			slog.String("extension", ext),
		)
	}

	return c, nil
}

// RegisterLinker appends c to the linker capabilities in registration
// order.
func (rc *Context) RegisterLinker(c *LinkerCapability) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.linkers = append(rc.linkers, c)
}

// FileTarget returns the file target for path, creating it on first use.
// Paths naming the same file share one target.
func (rc *Context) FileTarget(path string) *File {
	p := normalizePath(rc.workDir, path)
	key := rc.Abs(p)

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if f, ok := rc.files[key]; ok {
		return f
	}

	f := &File{path: p}
	rc.files[key] = f

	return f
}

// GeneratedBy returns the target that produces path, if any.
func (rc *Context) GeneratedBy(path string) (Target, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	t, ok := rc.generated[rc.Abs(path)]

	return t, ok
}

// registerGenerated records t as the producer of path unless another
// target already claimed it.
func (rc *Context) registerGenerated(path string, t Target) {
	key := rc.Abs(path)

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, ok := rc.generated[key]; !ok {
		rc.generated[key] = t
	}
}

func (rc *Context) emit(e Event) {
	if rc.observer != nil {
		rc.observer.Observe(e)
	}
}

// normalizePath cleans path. Relative paths that escape dir are made
// absolute.
func normalizePath(dir, path string) string {
	p := filepath.Clean(path)
	if filepath.IsAbs(p) {
		return p
	}

	if p == ".." || strings.HasPrefix(p, ".."+string(filepath.Separator)) {
		return filepath.Join(dir, p)
	}

	return p
}
