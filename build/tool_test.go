package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectLinker(t *testing.T) {
	cc, cxx, fortran := &fakeLinker{}, &fakeLinker{}, &fakeLinker{}

	c := &LinkerCapability{Name: "c", Convenient: cc, CompatibleWith: []string{"c"}}
	cpp := &LinkerCapability{
		Name:              "c++",
		Convenient:        cxx,
		CompatibleWith:    []string{"c", "c++"},
		InconvenientFlags: []string{"-lstdc++"},
	}
	f := &LinkerCapability{
		Name:              "fortran",
		Convenient:        fortran,
		CompatibleWith:    []string{"c", "fortran"},
		InconvenientFlags: []string{"-lgfortran"},
	}

	tests := []struct {
		name   string
		caps   []*LinkerCapability
		linker Linker
		flags  []string
		err    error
	}{
		{name: "none", err: ErrNoLinker},
		{name: "single", caps: []*LinkerCapability{cpp}, linker: cxx},
		{name: "compatible", caps: []*LinkerCapability{c, cpp}, linker: cxx},
		{
			name:   "first compatible registered",
			caps:   []*LinkerCapability{c, f},
			linker: fortran,
		},
		{name: "incompatible", caps: []*LinkerCapability{cpp, f}, err: ErrNoLinker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := newTestContext(t)
			rc.RegisterLinker(c)
			rc.RegisterLinker(cpp)
			rc.RegisterLinker(f)

			linker, flags, err := rc.SelectLinker(tt.caps)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)

				return
			}

			require.NoError(t, err)
			assert.Same(t, tt.linker, linker)
			assert.Equal(t, tt.flags, flags)
		})
	}
}

func TestSelectLinker_InconvenientFlags(t *testing.T) {
	cc, cxx := &fakeLinker{}, &fakeLinker{}

	c := &LinkerCapability{Name: "c", Convenient: cc, CompatibleWith: []string{"c", "c++"}}
	cpp := &LinkerCapability{
		Name:              "c++",
		Convenient:        cxx,
		InconvenientFlags: []string{"-lstdc++"},
	}

	rc := newTestContext(t)
	rc.RegisterLinker(c)
	rc.RegisterLinker(cpp)

	linker, flags, err := rc.SelectLinker([]*LinkerCapability{c, cpp})
	require.NoError(t, err)
	assert.Same(t, cc, linker)
	assert.Equal(t, []string{"-lstdc++"}, flags)
}

func TestAppendCapabilities(t *testing.T) {
	a := &LinkerCapability{Name: "a"}
	b := &LinkerCapability{Name: "b"}

	caps := appendCapabilities(nil, a, nil, b, a)
	assert.Equal(t, []*LinkerCapability{a, b}, caps)
}
