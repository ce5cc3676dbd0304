package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/ardnew/abuild/sema"
)

// Type identifiers of the linked targets.
var (
	ExecutableType    = sema.NewTypeID("executable")
	SharedLibraryType = sema.NewTypeID("shared_library")
)

// Binary is the output of a linker: an executable or a shared library.
type Binary struct {
	name string
	kind BinaryKind
	deps []Target
}

// NewBinary returns a binary linked from the outputs of deps.
func NewBinary(name string, kind BinaryKind, deps ...Target) *Binary {
	return &Binary{name: name, kind: kind, deps: deps}
}

func (b *Binary) Type() sema.TypeID {
	if b.kind == SharedLibrary {
		return SharedLibraryType
	}

	return ExecutableType
}

func (b *Binary) Kind() sema.Kind   { return sema.KindTarget }
func (b *Binary) Clone() sema.Value { return NewBinary(b.name, b.kind, slices.Clone(b.deps)...) }
func (b *Binary) String() string    { return b.name }

// Property exposes the binary name as "name".
func (b *Binary) Property(name string) (sema.Value, error) {
	if name == "name" {
		return sema.NewString(b.name), nil
	}

	return nil, sema.ErrPropertyNotFound.With(
		slog.String("property", name),
		slog.String("of", b.kind.String()),
	)
}

// Name returns the binary name without directory, prefix or suffix.
func (b *Binary) Name() string { return b.name }

// BinaryKind returns whether b is an executable or a shared library.
func (b *Binary) BinaryKind() BinaryKind { return b.kind }

func (b *Binary) Dependencies(*Context) ([]Target, error) { return b.deps, nil }

// Inputs returns the outputs of every dependency.
func (b *Binary) Inputs(rc *Context) ([]string, error) {
	var inputs []string

	for _, dep := range b.deps {
		out, err := dep.Outputs(rc)
		if err != nil {
			return nil, err
		}

		inputs = append(inputs, out...)
	}

	return inputs, nil
}

// Outputs returns outdir/name for executables and outdir/lib<name>.so for
// shared libraries.
func (b *Binary) Outputs(rc *Context) ([]string, error) {
	return []string{b.output(rc)}, nil
}

func (b *Binary) output(rc *Context) string {
	if b.kind == SharedLibrary {
		return filepath.Join(rc.OutputDir(), "lib"+b.name+".so")
	}

	return filepath.Join(rc.OutputDir(), b.name)
}

func (b *Binary) NeedsRebuild(*Context) (bool, error) { return false, nil }
func (b *Binary) Invalidate()                         {}

// Capabilities returns the capabilities of the linked inputs, so that a
// binary linking a shared library also links that library's runtime.
func (b *Binary) Capabilities(rc *Context) ([]*LinkerCapability, error) {
	return capabilitiesOf(rc, b.deps)
}

// GeneratedFiles returns the linked binary.
func (b *Binary) GeneratedFiles(rc *Context) ([]string, error) { return b.Outputs(rc) }

// Run selects a linker for the dependencies' capabilities and links.
func (b *Binary) Run(ctx context.Context, rc *Context) error {
	caps, err := b.Capabilities(rc)
	if err != nil {
		return err
	}

	linker, flags, err := rc.SelectLinker(caps)
	if err != nil {
		return err
	}

	inputs, err := b.Inputs(rc)
	if err != nil {
		return err
	}

	output := b.output(rc)

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}

	rc.logger.InfoContext(ctx, "link",
		slog.String("kind", b.kind.String()),
		slog.String("output", output),
		slog.Int("inputs", len(inputs)))

	return linker.Link(ctx, rc, output, b.kind, inputs, flags)
}

// binaryConstructor returns the constructor of a binary kind. The single
// string argument names the binary; the others are linked.
func binaryConstructor(kind BinaryKind) sema.Constructor {
	return sema.Checked(map[sema.TypeID]sema.Arity{
		sema.TypeString:   sema.Exactly(1),
		FilesType:         sema.Any(),
		SharedLibraryType: sema.Any(),
	}, func(_ *sema.Context, t *sema.TypeDescriptor, args []sema.Value) (sema.Value, error) {
		name := stringArgs(args)[0]
		if name == "" || filepath.Base(name) != name {
			return nil, sema.ErrInvalidName.With(
				slog.String("type", t.Name()),
				slog.String("name", name),
			)
		}

		var deps []Target

		for _, arg := range args {
			if dep, ok := arg.(Target); ok {
				deps = append(deps, dep)
			}
		}

		return NewBinary(name, kind, deps...), nil
	})
}
