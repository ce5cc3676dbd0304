package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/abuild/build"
	"github.com/ardnew/abuild/log"
)

const testBuildfile = `
greeting = "hello"
a = debug_print("a")
b = debug_print("b")
default = aggregate(a, b)
`

// setup writes a buildfile into a fresh working directory and returns its
// path with a context whose command output is captured.
func setup(t *testing.T, src string) (string, context.Context, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, DefaultBuildfile)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	var out bytes.Buffer

	ctx := log.WithContext(context.Background(), log.Discard())
	ctx = WithOutput(ctx, &out)

	return path, ctx, &out
}

func TestBuild_DefaultTarget(t *testing.T) {
	path, ctx, out := setup(t, testBuildfile)

	b := &Build{File: path, OutputDir: t.TempDir(), Jobs: 2}
	require.NoError(t, b.Run(ctx))

	assert.Contains(t, out.String(), "default")
	assert.Contains(t, out.String(), "3 built")
}

func TestBuild_NamedTarget(t *testing.T) {
	path, ctx, out := setup(t, testBuildfile)

	b := &Build{File: path, OutputDir: t.TempDir(), Targets: []string{"a"}}
	require.NoError(t, b.Run(ctx))

	assert.Contains(t, out.String(), "1 built")
	assert.NotContains(t, out.String(), "default")
}

func TestBuild_UnknownTarget(t *testing.T) {
	path, ctx, _ := setup(t, testBuildfile)

	b := &Build{File: path, OutputDir: t.TempDir(), Targets: []string{"defualt"}}
	err := b.Run(ctx)
	require.ErrorIs(t, err, build.ErrUnknownTarget)
}

func TestBuild_NoTargets(t *testing.T) {
	path, ctx, _ := setup(t, `x = "y"`)

	b := &Build{File: path, OutputDir: t.TempDir()}
	assert.ErrorIs(t, b.Run(ctx), ErrNoTargets)
}

func TestBuild_MissingBuildfile(t *testing.T) {
	_, ctx, _ := setup(t, testBuildfile)

	b := &Build{File: "does-not-exist", OutputDir: t.TempDir()}
	assert.ErrorIs(t, b.Run(ctx), ErrReadBuildfile)
}

func TestBuild_SelectTargets(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		targets []string
		want    []string
	}{
		{"named", testBuildfile, []string{"b"}, []string{"b"}},
		{"default", testBuildfile, nil, []string{DefaultTarget}},
		{"all", "x = debug_print(\"x\")\ny = debug_print(\"y\")", nil, []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ctx, _ := setup(t, tt.src)

			env, err := analyze(ctx, path)
			require.NoError(t, err)

			b := &Build{Targets: tt.targets}
			assert.Equal(t, tt.want, b.selectTargets(env))
		})
	}
}

func TestCheck(t *testing.T) {
	path, ctx, out := setup(t, testBuildfile)

	t.Run("json", func(t *testing.T) {
		out.Reset()

		c := &Check{File: path, Format: "json", Indent: 2}
		require.NoError(t, c.Run(ctx))

		var m map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &m))
		assert.Equal(t, "hello", m["greeting"])
		assert.Contains(t, m, "default")
	})

	t.Run("yaml", func(t *testing.T) {
		out.Reset()

		c := &Check{File: path, Format: "yaml", Indent: 2}
		require.NoError(t, c.Run(ctx))

		var m map[string]any
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &m))
		assert.Equal(t, "hello", m["greeting"])
	})
}

func TestTargets(t *testing.T) {
	path, ctx, out := setup(t, testBuildfile)

	tests := []struct {
		name   string
		filter string
		want   []string
		reject []string
	}{
		{"all", "", []string{"a", "b", "default"}, nil},
		{"by type", `type == "debug_print"`, []string{"a", "b"}, []string{"default"}},
		{"by name", `name startsWith "def"`, []string{"default"}, []string{"debug_print"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()

			cmd := &Targets{File: path, Filter: tt.filter}
			require.NoError(t, cmd.Run(ctx))

			for _, s := range tt.want {
				assert.Contains(t, out.String(), s)
			}

			for _, s := range tt.reject {
				assert.NotContains(t, out.String(), s)
			}
		})
	}
}

func TestTargets_BadFilter(t *testing.T) {
	path, ctx, _ := setup(t, testBuildfile)

	for _, filter := range []string{`name ==`, `len(name)`} {
		cmd := &Targets{File: path, Filter: filter}
		assert.ErrorIs(t, cmd.Run(ctx), ErrFilter, filter)
	}
}

func TestFmt(t *testing.T) {
	path, ctx, out := setup(t, `a=debug_print( "x" )`)

	t.Run("native", func(t *testing.T) {
		out.Reset()

		f := &Native{Input{Source: path, Indent: 2}}
		require.NoError(t, f.Run(ctx))
		assert.Equal(t, "a = debug_print(\"x\")\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		out.Reset()

		f := &JSON{Input{Source: path, Indent: 2}}
		require.NoError(t, f.Run(ctx))
		assert.True(t, json.Valid(out.Bytes()))
	})

	t.Run("parse error", func(t *testing.T) {
		bad, ctx, _ := setup(t, `a = debug_print("x"`)

		f := &YAML{Input{Source: bad}}
		assert.ErrorIs(t, f.Run(ctx), ErrReadBuildfile)
	})
}

func TestReadBuildfile(t *testing.T) {
	path, ctx, _ := setup(t, testBuildfile)

	first, err := readBuildfile(ctx, path)
	require.NoError(t, err)
	require.Len(t, first.Assignments, 4)

	second, err := readBuildfile(ctx, path)
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged content is parsed once")

	_, err = readBuildfile(ctx, filepath.Dir(path))
	assert.ErrorIs(t, err, ErrReadBuildfile, "directory")
}
