package cxx

import (
	"log/slog"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/abuild/build"
	"github.com/ardnew/abuild/pkg"
	"github.com/ardnew/abuild/sema"
)

// Name is the name the plugin is imported by.
const Name = "c++"

// Extensions lists the source file extensions compiled as C++.
var Extensions = []string{".cpp", ".cxx", ".c++", ".cc"}

// ErrCommandFailed is returned when the compiler or linker exits with a
// non-zero status.
var ErrCommandFailed = pkg.NewError("command failed")

func init() { build.RegisterPlugin(Name, Plugin{}) }

// Plugin implements [build.Plugin].
type Plugin struct{}

// InitSemantic registers nothing; C++ sources are built through files.
func (Plugin) InitSemantic(*sema.Context) error { return nil }

// InitRuntime registers the compiler and the linker capability.
func (Plugin) InitRuntime(rc *build.Context, args sema.Value) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	l := &Linker{flags: opts.linkFlags, run: shell}
	capability := &build.LinkerCapability{
		Name:              Name,
		Convenient:        l,
		CompatibleWith:    []string{"c", Name},
		InconvenientFlags: []string{"-lstdc++"},
	}

	c := &Compiler{flags: opts.flags, capability: capability, run: shell}
	for _, ext := range Extensions {
		rc.RegisterCompiler(ext, c)
	}

	rc.RegisterLinker(capability)

	rc.Logger().Debug("c++ toolchain",
		slog.String("flags", opts.flags),
		slog.String("link_flags", opts.linkFlags))

	return nil
}

type options struct {
	flags     string
	linkFlags string
}

// parseOptions reads the optional string properties "flags" and
// "link_flags" of the import arguments.
func parseOptions(args sema.Value) (options, error) {
	var opts options

	ns, ok := sema.Unwrap(args).(*sema.Namespace)
	if !ok {
		return opts, nil
	}

	for name, dst := range map[string]*string{
		"flags":      &opts.flags,
		"link_flags": &opts.linkFlags,
	} {
		v, ok := ns.Get(name)
		if !ok {
			continue
		}

		s, err := sema.As[*sema.String](v)
		if err != nil {
			return opts, pkg.WrapError(err).With(slog.String("option", name))
		}

		*dst = mergeFlags(s.String())
	}

	return opts, nil
}

// mergeFlags splits flag lists on whitespace and joins them with
// duplicates removed, keeping the first occurrence.
func mergeFlags(lists ...string) string {
	var items []string
	for _, l := range lists {
		items = append(items, strings.Fields(l)...)
	}

	if len(items) == 0 {
		return ""
	}

	return mung.Make(
		mung.WithDelim(" "),
		mung.WithPrefixItems(items...),
	).String()
}
