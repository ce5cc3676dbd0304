package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/abuild/build"
	"github.com/ardnew/abuild/log"
	"github.com/ardnew/abuild/sema"
)

// DefaultTarget is built when no target is named and it is bound.
const DefaultTarget = "default"

// Build analyzes a buildfile and brings targets up to date.
type Build struct {
	File      string `default:"${buildfile}"    help:"Buildfile to read or '-' for stdin"                        short:"f"`
	OutputDir string `default:"${outputDir}"    help:"Directory for build outputs"                               short:"o"`
	Jobs      int    `default:"0"               help:"Maximum concurrent actions (0 selects the number of CPUs)" short:"j"`
	KeepGoing bool   `help:"Keep building independent targets after a failure" short:"k"`
	Progress  bool   `help:"Show an interactive progress view" negatable:""`

	Targets []string `arg:"" help:"Targets to build (default: '${defaultTarget}' if bound, else every target)" name:"target" optional:""`
}

// Run executes the build command.
func (b *Build) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	env, err := analyze(ctx, b.File)
	if err != nil {
		return err
	}

	names := b.selectTargets(env)
	if len(names) == 0 {
		return ErrNoTargets.With(slog.String("file", b.File))
	}

	targets := make([]build.Target, len(names))
	for i, name := range names {
		if targets[i], err = build.Lookup(env, name); err != nil {
			return err
		}
	}

	logger := log.FromContext(ctx)

	run := func(ctx context.Context, o build.Observer) error {
		rc, err := build.Prepare(env,
			build.WithOutputDir(b.OutputDir),
			build.WithJobs(b.Jobs),
			build.WithKeepGoing(b.KeepGoing),
			build.WithEnv(toolEnvFrom(ctx)...),
			build.WithObserver(o),
			build.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		logger.DebugContext(ctx, "build",
			slog.Any("targets", names),
			slog.String("output", rc.OutputDir()),
			slog.Int("jobs", rc.Jobs()))

		var errs []error

		for _, t := range targets {
			if err := build.Execute(ctx, rc, t); err != nil {
				errs = append(errs, err)

				if !b.KeepGoing {
					break
				}
			}
		}

		return errors.Join(errs...)
	}

	if b.Progress {
		err = runProgress(ctx, outputFrom(ctx), run)
	} else {
		s := newSummary(outputFrom(ctx))
		err = run(ctx, s)
		s.print()
	}

	if err != nil {
		return ErrBuildFailed.Wrap(err)
	}

	return nil
}

// selectTargets returns the named targets, or the default ones.
func (b *Build) selectTargets(env *sema.Environment) []string {
	if len(b.Targets) > 0 {
		return b.Targets
	}

	if _, ok := env.Target(DefaultTarget); ok {
		return []string{DefaultTarget}
	}

	return env.TargetNames()
}
