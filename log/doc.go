// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("build started", slog.String("target", "prog"))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithTimeLayout("RFC3339"),
//		log.WithCaller(true))
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// default logger that [Config] reconfigures; the CLI does this while parsing
// its --log-* flags.
//
// # Context
//
// [WithContext] and [FromContext] carry a [Logger] through a
// [context.Context] so that long-running engines log with the caller's
// configuration and attributes.
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace sits below slog's Debug and is
// rendered as "TRACE".
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON]. With [WithPretty] enabled, text
// records are styled for terminals and JSON records are indented.
package log
