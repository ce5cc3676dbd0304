package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/abuild/build"
	"github.com/ardnew/abuild/lang"
	"github.com/ardnew/abuild/log"
	"github.com/ardnew/abuild/sema"
)

// DefaultBuildfile is the buildfile read when none is named.
const DefaultBuildfile = "buildfile"

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	outputKey struct{}
	envKey    struct{}
)

// WithOutput returns a new context.Context whose commands write their
// results to w instead of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok {
		return w
	}

	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// WithToolEnv returns a new context.Context carrying KEY=VALUE entries for
// the environment of build tools.
func WithToolEnv(ctx context.Context, env []string) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

func toolEnvFrom(ctx context.Context) []string {
	env, _ := ctx.Value(envKey{}).([]string)

	return env
}

// sources caches parsed buildfiles by content.
var sources = lang.NewCache(lang.DefaultCacheSize)

// readBuildfile parses the named buildfile, or standard input for "-".
func readBuildfile(ctx context.Context, path string) (*lang.AST, error) {
	r := io.Reader(os.Stdin)

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, ErrReadBuildfile.Wrap(err).With(slog.String("file", path))
		}
		defer f.Close()

		r = f
	}

	ast, err := sources.ParseReader(ctx, r)
	if err != nil {
		return nil, ErrReadBuildfile.Wrap(err).With(slog.String("file", path))
	}

	return ast, nil
}

// analyze reads and analyzes the named buildfile.
func analyze(ctx context.Context, path string) (*sema.Environment, error) {
	ast, err := readBuildfile(ctx, path)
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).DebugContext(ctx, "analyze",
		slog.String("file", path),
		slog.Int("assignments", len(ast.Assignments)))

	return sema.Analyze(ctx, ast, sema.WithTypes(build.Types))
}
