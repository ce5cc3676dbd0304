package build

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// Compiler turns one source file into build outputs.
type Compiler interface {
	// Inputs returns the files the compilation of path reads, including
	// path itself and any discovered headers.
	Inputs(rc *Context, path string) ([]string, error)
	// Outputs returns the files the compilation of path writes.
	Outputs(rc *Context, path string) ([]string, error)
	// NeedsRebuild reports staleness not visible in file times, such as a
	// changed command line.
	NeedsRebuild(rc *Context, path string) (bool, error)
	Compile(ctx context.Context, rc *Context, path string) error
	// Capability returns the linker capability required by the outputs,
	// or nil if they need none.
	Capability() *LinkerCapability
}

// BinaryKind selects the artifact a [Linker] produces.
type BinaryKind int

const (
	Executable BinaryKind = iota
	SharedLibrary
)

func (k BinaryKind) String() string {
	switch k {
	case Executable:
		return "executable"
	case SharedLibrary:
		return "shared_library"
	default:
		return "unknown"
	}
}

// Linker links object files and libraries into a binary.
type Linker interface {
	Link(
		ctx context.Context,
		rc *Context,
		output string,
		kind BinaryKind,
		inputs, flags []string,
	) error
}

// LinkerCapability names a language runtime that linked outputs depend
// on.
//
// Convenient is the linker that supplies the runtime implicitly.
// CompatibleWith lists the capabilities Convenient can also serve, and
// InconvenientFlags are the flags any other linker must pass to supply
// this runtime.
type LinkerCapability struct {
	Name              string
	Convenient        Linker
	CompatibleWith    []string
	InconvenientFlags []string
}

func (c *LinkerCapability) String() string { return c.Name }

// SelectLinker chooses a linker able to serve every capability in caps
// and returns the extra flags it needs.
//
// A single capability selects its convenient linker. Otherwise the first
// registered capability whose CompatibleWith names every requested
// capability supplies the linker.
func (rc *Context) SelectLinker(caps []*LinkerCapability) (Linker, []string, error) {
	var chosen Linker

	switch len(caps) {
	case 0:
		return nil, nil, ErrNoLinker.With(slog.String("reason", "no linker capabilities"))

	case 1:
		chosen = caps[0].Convenient

	default:
		rc.mu.Lock()
		registered := slices.Clone(rc.linkers)
		rc.mu.Unlock()

		for _, c := range registered {
			if compatible(c, caps) {
				chosen = c.Convenient

				break
			}
		}
	}

	if chosen == nil {
		return nil, nil, ErrNoLinker.With(slog.String("capabilities", capabilityNames(caps)))
	}

	var flags []string

	for _, c := range caps {
		if c.Convenient != chosen {
			flags = append(flags, c.InconvenientFlags...)
		}
	}

	return chosen, flags, nil
}

func compatible(c *LinkerCapability, caps []*LinkerCapability) bool {
	for _, want := range caps {
		if !slices.Contains(c.CompatibleWith, want.Name) {
			return false
		}
	}

	return true
}

func capabilityNames(caps []*LinkerCapability) string {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.Name
	}

	return strings.Join(names, ",")
}

// appendCapabilities appends the capabilities in add not already in caps.
func appendCapabilities(caps []*LinkerCapability, add ...*LinkerCapability) []*LinkerCapability {
	for _, c := range add {
		if c != nil && !slices.Contains(caps, c) {
			caps = append(caps, c)
		}
	}

	return caps
}

// capabilitiesOf returns the deduplicated capabilities of the linkable
// targets in deps.
func capabilitiesOf(rc *Context, deps []Target) ([]*LinkerCapability, error) {
	var caps []*LinkerCapability

	for _, dep := range deps {
		l, ok := dep.(Linkable)
		if !ok {
			continue
		}

		c, err := l.Capabilities(rc)
		if err != nil {
			return nil, err
		}

		caps = appendCapabilities(caps, c...)
	}

	return caps, nil
}
