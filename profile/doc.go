// Package profile provides optional runtime profiling for abuild.
//
// Profiling is backed by [github.com/pkg/profile] and is compiled in only
// when building with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Profiler.Start] returns a no-op and [Modes] is empty, so
// callers never need to guard their calls.
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/abuild-pprof", Quiet: true}
//	defer p.Start().Stop()
//
// Profiles are written to Path with names matching the mode (cpu.pprof,
// mem.pprof, ...). Analyze them with go tool pprof:
//
//	go tool pprof -http=: /tmp/abuild-pprof/cpu.pprof
//
// The CLI exposes the same settings as --pprof-mode and --pprof-dir. The
// default directory is "pprof" under the user cache directory.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
