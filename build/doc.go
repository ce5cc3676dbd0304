// Package build executes the targets of an analyzed buildfile.
//
// # Targets
//
// A [Target] is a [sema.Value] that can be brought up to date. It reports
// its dependencies, the files it reads and writes, and an action that
// produces those files. The builtin target types are registered into
// analysis by [Types]:
//
//	file(...)            not constructible; created for each path of a files value
//	files("a.cpp", ...)  sorted set of source paths; + is union, - is difference
//	glob("src/**/*.cpp") files matching a doublestar pattern
//	executable(name, ...)      link files and shared libraries into outdir/name
//	shared_library(name, ...)  link into outdir/lib<name>.so
//	aggregate(...)       depend on every target argument
//	debug_print(s)       always stale; logs s
//	import(name, args)   load a registered [Plugin]
//
// # Execution
//
// A [Context] holds the state of one build invocation. [Build] returns a
// [Future] that completes when a target and all its dependencies are up
// to date. Each target's action runs at most once per Context no matter
// how many dependents request it, and actions run on a bounded number of
// worker slots.
//
// [Run] is the top-level driver: it looks up a target by name, prepares a
// Context, rejects dependency cycles, and waits for the build.
//
// # Staleness
//
// [Built] reports whether a target is up to date: every dependency is
// built, every output exists, no input is newer than the oldest output,
// and the target's own NeedsRebuild hook agrees.
package build
