package cxx

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/abuild/build"
)

// Sidecar suffixes appended to the object path.
const (
	depsSuffix    = ".deps"
	commandSuffix = ".command"
)

// Compiler compiles one C++ source into an object file.
type Compiler struct {
	flags      string
	capability *build.LinkerCapability
	run        runFunc
}

func objectPath(rc *build.Context, path string) string {
	return filepath.Join(rc.OutputDir(), path+".o")
}

// Inputs returns the prerequisites recorded by the last compilation, or
// path alone if it has not been compiled.
func (c *Compiler) Inputs(rc *build.Context, path string) ([]string, error) {
	data, err := os.ReadFile(objectPath(rc, path) + depsSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{rc.Abs(path)}, nil
	}

	if err != nil {
		return nil, err
	}

	deps := parseDepfile(data)

	inputs := make([]string, 0, len(deps)+1)
	inputs = append(inputs, rc.Abs(path))

	for _, d := range deps {
		if a := rc.Abs(d); a != inputs[0] {
			inputs = append(inputs, a)
		}
	}

	return inputs, nil
}

func (c *Compiler) Outputs(rc *build.Context, path string) ([]string, error) {
	return []string{objectPath(rc, path)}, nil
}

// NeedsRebuild reports whether the object was built with a different
// command line.
func (c *Compiler) NeedsRebuild(rc *build.Context, path string) (bool, error) {
	obj := objectPath(rc, path)

	prev, err := os.ReadFile(obj + commandSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}

	if err != nil {
		return false, err
	}

	return strings.TrimSpace(string(prev)) != c.command(rc, path), nil
}

// Compile runs the compiler and records the command line on success.
func (c *Compiler) Compile(ctx context.Context, rc *build.Context, path string) error {
	obj := objectPath(rc, path)

	if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
		return err
	}

	command := c.command(rc, path)

	rc.Logger().InfoContext(ctx, "compile",
		slog.String("source", path),
		slog.String("object", obj))

	out, err := c.run(ctx, rc, command)
	if len(out) > 0 {
		rc.Logger().DebugContext(ctx, strings.TrimSpace(string(out)), slog.String("source", path))
	}

	if err != nil {
		return err
	}

	return os.WriteFile(obj+commandSuffix, []byte(command+"\n"), 0o644)
}

func (c *Compiler) Capability() *build.LinkerCapability { return c.capability }

func (c *Compiler) command(rc *build.Context, path string) string {
	obj := objectPath(rc, path)

	return script(
		"exec ${CXX:-c++} -c ${CXXFLAGS} -fPIC",
		"-o", quote(obj),
		quote(path),
		c.flags,
		"-MD -MF", quote(obj+depsSuffix),
	)
}
