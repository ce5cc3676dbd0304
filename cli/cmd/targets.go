package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/abuild/sema"
)

// Targets lists the targets bound in a buildfile.
type Targets struct {
	File   string `default:"${buildfile}" help:"Buildfile to read or '-' for stdin" short:"f"`
	Filter string `help:"Boolean expression over name, type and value selecting targets" short:"x"`
}

// targetInfo is the environment of a target filter expression.
type targetInfo struct {
	Name  string `expr:"name"`
	Type  string `expr:"type"`
	Value string `expr:"value"`
}

func newTargetInfo(name string, v sema.Value) targetInfo {
	info := targetInfo{Name: name, Type: v.Type().String()}

	if s, ok := sema.Unwrap(v).(fmt.Stringer); ok {
		info.Value = s.String()
	}

	return info
}

// compileFilter compiles a boolean filter expression. An empty expression
// selects every target.
func compileFilter(filter string) (*vm.Program, error) {
	if filter == "" {
		return nil, nil //nolint:nilnil
	}

	prog, err := expr.Compile(filter, expr.Env(targetInfo{}), expr.AsBool())
	if err != nil {
		return nil, ErrFilter.Wrap(err).With(slog.String("filter", filter))
	}

	return prog, nil
}

func (t *Targets) selected(env *sema.Environment) ([]targetInfo, error) {
	prog, err := compileFilter(t.Filter)
	if err != nil {
		return nil, err
	}

	var infos []targetInfo

	for _, name := range env.TargetNames() {
		v, _ := env.Target(name)
		info := newTargetInfo(name, v)

		if prog != nil {
			out, err := expr.Run(prog, info)
			if err != nil {
				return nil, ErrFilter.Wrap(err).
					With(slog.String("filter", t.Filter), slog.String("target", name))
			}

			if ok, _ := out.(bool); !ok {
				continue
			}
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// Run executes the targets command.
func (t *Targets) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	env, err := analyze(ctx, t.File)
	if err != nil {
		return err
	}

	infos, err := t.selected(env)
	if err != nil {
		return err
	}

	width := 0
	for _, info := range infos {
		width = max(width, len(info.Name))
	}

	w := outputFrom(ctx)

	for _, info := range infos {
		_, err = fmt.Fprintf(w, "%s  %s\n",
			targetStyle.Render(fmt.Sprintf("%-*s", width, info.Name)),
			hintStyle.Render(info.Type))
		if err != nil {
			return err
		}
	}

	return nil
}
