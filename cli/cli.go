package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/abuild/build"
	"github.com/ardnew/abuild/cli/cmd"
	"github.com/ardnew/abuild/log"
	"github.com/ardnew/abuild/pkg"
)

// CLI is the top-level command-line interface for abuild.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Directory string   `help:"Change to directory before reading the buildfile" short:"C" type:"existingdir"`
	EnvFile   []string `help:"Read tool environment variables from dotenv file(s)" name:"env-file" short:"e" type:"existingfile"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Build   cmd.Build   `cmd:"" default:"withargs" help:"Build targets"`
	Check   cmd.Check   `cmd:""                    help:"Analyze a buildfile and print its bindings"`
	Targets cmd.Targets `cmd:""                    help:"List the targets of a buildfile"`
	Fmt     cmd.Fmt     `cmd:""                    help:"Format a buildfile"`
}

// Run executes the abuild CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		"version":                   pkg.Name + " " + pkg.Version,
		cmd.BuildfileIdentifier:     cmd.DefaultBuildfile,
		cmd.OutputDirIdentifier:     build.DefaultOutputDir,
		cmd.DefaultTargetIdentifier: cmd.DefaultTarget,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// logged with the requested settings.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	if cli.Directory != "" {
		log.DebugContext(ctx, "chdir", slog.String("dir", cli.Directory))

		if err := os.Chdir(cli.Directory); err != nil {
			return err
		}
	}

	env, err := readEnvFiles(cli.EnvFile...)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithToolEnv(ctx, env)
	ctx = log.WithContext(ctx, log.Default())

	return ktx.Run(ctx, &cli)
}
