package cli

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/abuild/log"
)

// logFormat configures the logger format as a side effect of parsing.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
// Kong calls it while parsing --log-format, early enough to affect the
// errors reported during parsing.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"       enum:"${logLevelEnum}"  help:"Set log level (${enum})."`
	Format     logFormat `default:"text"       enum:"${logFormatEnum}" help:"Set log format (${enum})."`
	TimeLayout string    `default:"${logTime}" help:"Set timestamp format (${logTimeNames} or a Go layout)." name:"time"`
	Caller     bool      `default:"false"      help:"Include caller information."                            negatable:""`
	Pretty     bool      `default:"true"       help:"Enable colorized pretty printing."                      negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  join(log.Levels()),
		"logFormatEnum": join(log.Formats()),
		"logTime":       "kitchen",
		"logTimeNames":  strings.Join(log.TimeLayouts(), ", "),
	}
}

func join(seq iter.Seq[string]) string { return strings.Join(slices.Collect(seq), ",") }

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies every parsed logger setting, including those that have no
// TextUnmarshaler, and returns a function that logs completion.
func (f *logConfig) start(ctx context.Context) (stop func()) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return func() { log.TraceContext(ctx, "logger stopped") }
}

// logFlag applies one scanned logger flag.
type logFlag struct {
	boolean bool
	apply   func(f *logConfig, value string)
}

var logFlags = map[string]logFlag{
	"level":  {apply: func(f *logConfig, v string) { _ = f.Level.UnmarshalText([]byte(v)) }},
	"format": {apply: func(f *logConfig, v string) { _ = f.Format.UnmarshalText([]byte(v)) }},
	"time": {apply: func(f *logConfig, v string) {
		f.TimeLayout = v
		log.Config(log.WithTimeLayout(v))
	}},
	"caller": {boolean: true, apply: func(f *logConfig, v string) {
		f.Caller, _ = strconv.ParseBool(v)
		log.Config(log.WithCaller(f.Caller))
	}},
	"pretty": {boolean: true, apply: func(f *logConfig, v string) {
		f.Pretty, _ = strconv.ParseBool(v)
		log.Config(log.WithPretty(f.Pretty))
	}},
}

// scan applies logger flags before Kong parses the command line, so the
// logger is configured regardless of flag position. Boolean flags never go
// through a TextUnmarshaler, which is why the scan is needed at all.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		negated := strings.HasPrefix(arg, "--no-log-")

		var name string

		switch {
		case negated:
			name = strings.TrimPrefix(arg, "--no-log-")
		case strings.HasPrefix(arg, "--log-"):
			name = strings.TrimPrefix(arg, "--log-")
		default:
			continue
		}

		name, value, assigned := strings.Cut(name, "=")

		flag, ok := logFlags[name]
		if !ok || (negated && !flag.boolean) {
			continue
		}

		switch {
		case flag.boolean && !assigned:
			value = "true"
		case flag.boolean:
			if _, err := strconv.ParseBool(value); err != nil {
				continue
			}
		case !assigned:
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
				continue
			}

			i++
			value = args[i]
		}

		if negated {
			b, _ := strconv.ParseBool(value)
			value = strconv.FormatBool(!b)
		}

		flag.apply(f, value)
	}
}
