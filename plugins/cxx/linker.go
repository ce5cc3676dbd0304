package cxx

import (
	"context"
	"strings"

	"github.com/ardnew/abuild/build"
)

// Linker links objects and shared libraries with the C++ driver.
type Linker struct {
	flags string
	run   runFunc
}

// Link runs the driver once; extra flags come from capabilities this
// linker does not supply implicitly.
func (l *Linker) Link(
	ctx context.Context,
	rc *build.Context,
	output string,
	kind build.BinaryKind,
	inputs, flags []string,
) error {
	var shared string
	if kind == build.SharedLibrary {
		shared = "-shared"
	}

	command := script(
		"exec ${CXX:-c++} ${CXXFLAGS}",
		"-o", quote(output),
		shared,
		quoteAll(inputs),
		l.flags,
		strings.Join(flags, " "),
	)

	out, err := l.run(ctx, rc, command)
	if len(out) > 0 {
		rc.Logger().DebugContext(ctx, strings.TrimSpace(string(out)))
	}

	return err
}
