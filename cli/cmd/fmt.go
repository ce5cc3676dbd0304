package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/abuild/lang"
	"github.com/ardnew/abuild/pkg"
)

// Fmt parses a buildfile and writes it back in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native buildfile syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
}

// Input names the buildfile a format command reads.
type Input struct {
	Indent int `default:"2" help:"Indent width for formatted output" short:"i"`

	Source string `arg:"" default:"${buildfile}" help:"Buildfile to format or '-' for stdin." name:"source"`
}

func (s *Input) format(
	ctx context.Context,
	name string,
	fn func(*lang.AST, context.Context, io.Writer, int) error,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	ast, err := readBuildfile(ctx, s.Source)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("format", name))
	}

	return fn(ast, ctx, outputFrom(ctx), s.Indent)
}

// Native formats input as native buildfile syntax.
type Native struct {
	Input `embed:""`
}

// Run executes the native format command.
func (f *Native) Run(ctx context.Context) error {
	return f.format(ctx, "native", (*lang.AST).Format)
}

// JSON formats input as JSON.
type JSON struct {
	Input `embed:""`
}

// Run executes the json format command.
func (j *JSON) Run(ctx context.Context) error {
	return j.format(ctx, "json", (*lang.AST).FormatJSON)
}

// YAML formats input as YAML.
type YAML struct {
	Input `embed:""`
}

// Run executes the yaml format command.
func (y *YAML) Run(ctx context.Context) error {
	return y.format(ctx, "yaml", (*lang.AST).FormatYAML)
}
