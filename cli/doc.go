// Package cli contains the command line interface for abuild.
//
// # Usage
//
//	abuild [flags] [build] [target ...]
//	abuild check [-F yaml|json]
//	abuild targets [-x FILTER]
//	abuild fmt [native|json|yaml] [source]
//
// Build is the default command: with no target it builds "default" when
// the buildfile binds it, and every target otherwise.
//
// # Configuration
//
// Flag defaults are read from the config file in the user configuration
// directory, written in buildfile syntax, and from config.json beside it:
//
//	log.level = "debug"
//	build.jobs = "8"
//
// # Tool environment
//
// Variables from --env-file dotenv files are added to the environment of
// every compiler and linker command, so CXX and CXXFLAGS can be set per
// project:
//
//	abuild -e toolchain.env -C project app
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time: timestamp layout name or Go layout
//   - --log-caller: include caller information
//   - --log-pretty: colorize output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: profile kind (cpu, mem, trace, ...)
//   - --pprof-dir: output directory, "pprof" under the user cache directory
//     by default
package cli
