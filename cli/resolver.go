package cli

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/abuild/lang"
	"github.com/ardnew/abuild/log"
	"github.com/ardnew/abuild/sema"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written in buildfile syntax.
//
// The file is analyzed like a buildfile with no build types, and every
// string binding becomes a flag value. Dotted names address flags by
// joining their parts with "-", so these are equivalent:
//
//	log.level = "debug"
//	log_level = "debug"
//
// Flags of a subcommand may be qualified by the command name:
//
//	build.jobs = "4"
//	build.keep_going = "true"
//
// Sets are joined with "," for flags that accept lists. A file that does not
// parse or analyze is ignored. Command-line flags override config values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		ast, err := lang.ParseReader(ctx, r, lang.WithLogger(log.Discard()))
		if err != nil {
			log.DebugContext(ctx, "ignoring config", slog.Any("error", err))

			return config{}, nil
		}

		env, err := sema.Analyze(ctx, ast, sema.WithLogger(log.Discard()))
		if err != nil {
			log.DebugContext(ctx, "ignoring config", slog.Any("error", err))

			return config{}, nil
		}

		cfg := config{}
		cfg.flatten("", env.ToMap())

		return cfg, nil
	}
}

// config implements [kong.Resolver] over flattened flag names.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for _, key := range slices.Sorted(maps.Keys(m)) {
		name := normalize(key)
		if prefix != "" {
			name = prefix + "-" + name
		}

		switch v := m[key].(type) {
		case string:
			c[name] = v

		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					items = append(items, s)
				}
			}

			c[name] = strings.Join(items, ",")

		case map[string]any:
			c.flatten(name, v)
		}
	}
}

func normalize(name string) string { return strings.ReplaceAll(name, "_", "-") }

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	name := normalize(flag.Name)

	if parent != nil && parent.Command != nil {
		if v, ok := c[normalize(parent.Command.Name)+"-"+name]; ok {
			return v, nil
		}
	}

	if v, ok := c[name]; ok {
		return v, nil
	}

	return nil, nil //nolint:nilnil
}
