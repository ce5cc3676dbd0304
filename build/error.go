package build

import "github.com/ardnew/abuild/pkg"

// Predefined errors (sentinel values).
var (
	ErrCycleDetected      = pkg.NewError("dependency cycle detected")
	ErrUnknownTarget      = pkg.NewError("unknown target")
	ErrBuildActionFailure = pkg.NewError("build action failed")
	ErrDependencyFailed   = pkg.NewError("dependency failed")
	ErrAborted            = pkg.NewError("build aborted")
	ErrNoCompiler         = pkg.NewError("no compiler registered")
	ErrNoLinker           = pkg.NewError("no suitable linker")
	ErrUnknownPlugin      = pkg.NewError("unknown plugin")
	ErrBadPattern         = pkg.NewError("invalid glob pattern")
)
