package build

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/abuild/sema"
)

func TestNewFiles_SortedUnique(t *testing.T) {
	fs := NewFiles("b.cpp", "./a.cpp", "b.cpp", "src/../c.cpp")

	assert.Equal(t, []string{"a.cpp", "b.cpp", "c.cpp"}, fs.Paths())
	assert.Equal(t, "a.cpp b.cpp c.cpp", fs.String())
}

func TestFiles_Operators(t *testing.T) {
	lhs := NewFiles("a", "c", "e")
	rhs := NewFiles("b", "c", "d")

	sum, err := sema.Apply(sema.Add, lhs, rhs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, sum.(*Files).Paths())

	diff, err := sema.Apply(sema.Sub, lhs, rhs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "e"}, diff.(*Files).Paths())

	assert.Equal(t, []string{"a", "c", "e"}, lhs.Paths(), "operands unchanged")

	_, err = sema.Apply(sema.Add, lhs, sema.NewString("x"))
	assert.ErrorIs(t, err, sema.ErrUnsupportedOperator)
}

func TestNormalizePath(t *testing.T) {
	dir := filepath.FromSlash("/work/project")

	tests := []struct {
		in, want string
	}{
		{"a.cpp", "a.cpp"},
		{"./src/a.cpp", filepath.FromSlash("src/a.cpp")},
		{"src/../a.cpp", "a.cpp"},
		{"../lib/b.cpp", filepath.FromSlash("/work/lib/b.cpp")},
		{"/abs/c.cpp", filepath.FromSlash("/abs/c.cpp")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(dir, filepath.FromSlash(tt.in)), tt.in)
	}
}

func TestContext_FileTargetMemoized(t *testing.T) {
	rc := newTestContext(t)

	a := rc.FileTarget("src/a.cpp")

	assert.Same(t, a, rc.FileTarget("./src/a.cpp"))
	assert.Same(t, a, rc.FileTarget(filepath.Join(rc.WorkDir(), "src", "a.cpp")))
	assert.NotSame(t, a, rc.FileTarget("src/b.cpp"))
}

func TestFile_NoCompiler(t *testing.T) {
	rc := newTestContext(t)

	_, err := rc.FileTarget("a.unknown").Outputs(rc)
	require.ErrorIs(t, err, ErrNoCompiler)

	v, ok := errAttr(err, "extension")
	require.True(t, ok)
	assert.Equal(t, ".unknown", v.String())
}

func TestFiles_OutputsAndCapabilities(t *testing.T) {
	tc := newToolchain()
	rc := newTestContext(t)
	tc.register(rc)

	fs := NewFiles("b.src", "a.src")

	outs, err := fs.Outputs(rc)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(rc.OutputDir(), "a.src.out"),
		filepath.Join(rc.OutputDir(), "b.src.out"),
	}, outs)

	caps, err := fs.Capabilities(rc)
	require.NoError(t, err)
	assert.Equal(t, []*LinkerCapability{tc.compiler.capability}, caps)
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "a.src"), "")
	writeFile(t, filepath.Join(dir, "sub", "b.src"), "")
	writeFile(t, filepath.Join(dir, "sub", "c.txt"), "")

	pattern := filepath.ToSlash(filepath.Join(dir, "**", "*.src"))
	env := analyze(t, "srcs = glob(\""+pattern+"\")")

	v, ok := env.Target("srcs")
	require.True(t, ok)

	fs, ok := v.(*Files)
	require.True(t, ok)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.src"),
		filepath.Join(dir, "sub", "b.src"),
	}, fs.Paths())
}
