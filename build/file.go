package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ardnew/abuild/sema"
)

// Type identifiers of the file targets.
var (
	FileType  = sema.NewTypeID("file")
	FilesType = sema.NewTypeID("files")
)

func init() {
	sema.RegisterOperator(sema.Add, FilesType, FilesType, unionFiles)
	sema.RegisterOperator(sema.Sub, FilesType, FilesType, differenceFiles)
}

// File is a single source file built by the compiler registered for its
// extension. Files are obtained from [Context.FileTarget].
type File struct {
	path string
	deps cached[[]Target]
}

func (f *File) Type() sema.TypeID { return FileType }
func (f *File) Kind() sema.Kind   { return sema.KindTarget }
func (f *File) Clone() sema.Value { return &File{path: f.path} }
func (f *File) String() string    { return f.path }

// Property exposes the file path as "path".
func (f *File) Property(name string) (sema.Value, error) {
	if name == "path" {
		return sema.NewString(f.path), nil
	}

	return nil, sema.ErrPropertyNotFound.With(
		slog.String("property", name),
		slog.String("of", "file"),
	)
}

// Path returns the normalized source path.
func (f *File) Path() string { return f.path }

// Dependencies returns the producers of generated files among the
// inputs.
func (f *File) Dependencies(rc *Context) ([]Target, error) {
	return f.deps.get(rc, func() ([]Target, error) {
		inputs, err := f.Inputs(rc)
		if err != nil {
			return nil, err
		}

		var deps []Target

		for _, in := range inputs {
			if g, ok := rc.GeneratedBy(in); ok && g != Target(f) && !slices.Contains(deps, g) {
				deps = append(deps, g)
			}
		}

		return deps, nil
	})
}

func (f *File) Inputs(rc *Context) ([]string, error) {
	c, err := rc.Compiler(f.path)
	if err != nil {
		return nil, err
	}

	return c.Inputs(rc, f.path)
}

func (f *File) Outputs(rc *Context) ([]string, error) {
	c, err := rc.Compiler(f.path)
	if err != nil {
		return nil, err
	}

	return c.Outputs(rc, f.path)
}

func (f *File) NeedsRebuild(rc *Context) (bool, error) {
	c, err := rc.Compiler(f.path)
	if err != nil {
		return false, err
	}

	return c.NeedsRebuild(rc, f.path)
}

func (f *File) Run(ctx context.Context, rc *Context) error {
	c, err := rc.Compiler(f.path)
	if err != nil {
		return err
	}

	return c.Compile(ctx, rc, f.path)
}

func (f *File) Invalidate() { f.deps.reset() }

// Capabilities returns the linker capability of the file's compiler.
func (f *File) Capabilities(rc *Context) ([]*LinkerCapability, error) {
	c, err := rc.Compiler(f.path)
	if err != nil {
		return nil, err
	}

	return appendCapabilities(nil, c.Capability()), nil
}

// GeneratedFiles returns the compiler outputs.
func (f *File) GeneratedFiles(rc *Context) ([]string, error) { return f.Outputs(rc) }

// Files is a sorted set of source paths. It has no action of its own; it
// depends on one [File] per path.
type Files struct {
	paths []string
	deps  cached[[]Target]
}

// NewFiles returns the files value for paths, cleaned, sorted and
// deduplicated.
func NewFiles(paths ...string) *Files {
	ps := make([]string, 0, len(paths))
	for _, p := range paths {
		ps = append(ps, filepath.Clean(p))
	}

	slices.Sort(ps)

	return &Files{paths: slices.Compact(ps)}
}

func (fs *Files) Type() sema.TypeID { return FilesType }
func (fs *Files) Kind() sema.Kind   { return sema.KindTarget }
func (fs *Files) Clone() sema.Value { return &Files{paths: slices.Clone(fs.paths)} }
func (fs *Files) String() string    { return strings.Join(fs.paths, " ") }

func (fs *Files) Property(name string) (sema.Value, error) {
	return nil, sema.ErrPropertyNotFound.With(
		slog.String("property", name),
		slog.String("of", "files"),
	)
}

// Paths returns the sorted paths.
func (fs *Files) Paths() []string { return slices.Clone(fs.paths) }

func (fs *Files) Dependencies(rc *Context) ([]Target, error) {
	return fs.deps.get(rc, func() ([]Target, error) {
		deps := make([]Target, len(fs.paths))
		for i, p := range fs.paths {
			deps[i] = rc.FileTarget(p)
		}

		return deps, nil
	})
}

func (fs *Files) Inputs(*Context) ([]string, error) { return nil, nil }

// Outputs returns the union of the outputs of every file.
func (fs *Files) Outputs(rc *Context) ([]string, error) {
	deps, err := fs.Dependencies(rc)
	if err != nil {
		return nil, err
	}

	var outputs []string

	for _, dep := range deps {
		out, err := dep.Outputs(rc)
		if err != nil {
			return nil, err
		}

		for _, o := range out {
			if !slices.Contains(outputs, o) {
				outputs = append(outputs, o)
			}
		}
	}

	return outputs, nil
}

func (fs *Files) NeedsRebuild(*Context) (bool, error) { return false, nil }
func (fs *Files) Run(context.Context, *Context) error { return nil }
func (fs *Files) Invalidate()                         { fs.deps.reset() }

// Capabilities returns the deduplicated capabilities of every file.
func (fs *Files) Capabilities(rc *Context) ([]*LinkerCapability, error) {
	deps, err := fs.Dependencies(rc)
	if err != nil {
		return nil, err
	}

	return capabilitiesOf(rc, deps)
}

func unionFiles(lhs, rhs sema.Value) (sema.Value, error) {
	a, b := lhs.(*Files), rhs.(*Files)

	return NewFiles(append(slices.Clone(a.paths), b.paths...)...), nil
}

func differenceFiles(lhs, rhs sema.Value) (sema.Value, error) {
	a, b := lhs.(*Files), rhs.(*Files)

	paths := slices.DeleteFunc(slices.Clone(a.paths), func(p string) bool {
		_, found := slices.BinarySearch(b.paths, p)

		return found
	})

	return &Files{paths: paths}, nil
}

// newFiles constructs files from its string arguments.
func newFiles(_ *sema.Context, _ *sema.TypeDescriptor, args []sema.Value) (sema.Value, error) {
	return NewFiles(stringArgs(args)...), nil
}

// newGlob constructs files from the matches of a doublestar pattern,
// relative to the process working directory.
func newGlob(sc *sema.Context, _ *sema.TypeDescriptor, args []sema.Value) (sema.Value, error) {
	pattern := stringArgs(args)[0]

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, ErrBadPattern.Wrap(err).With(slog.String("pattern", pattern))
	}

	sc.Logger().Trace("glob",
		slog.String("pattern", pattern),
		slog.Int("matches", len(matches)))

	return NewFiles(matches...), nil
}

func stringArgs(args []sema.Value) []string {
	var ss []string

	for _, arg := range args {
		if s, ok := arg.(*sema.String); ok {
			ss = append(ss, s.String())
		}
	}

	return ss
}
