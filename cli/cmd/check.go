package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
)

// Check analyzes a buildfile without building and prints the resolved
// global namespace.
type Check struct {
	File   string `default:"${buildfile}" help:"Buildfile to read or '-' for stdin" short:"f"`
	Format string `default:"yaml"         enum:"yaml,json"                         help:"Output format (${enum})" short:"F"`
	Indent int    `default:"2"            help:"Indent width for formatted output" short:"i"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	env, err := analyze(ctx, c.File)
	if err != nil {
		return err
	}

	m := env.ToMap()
	w := outputFrom(ctx)

	switch c.Format {
	case "json":
		var data []byte
		if c.Indent > 0 {
			data, err = json.MarshalIndent(m, "", strings.Repeat(" ", c.Indent))
		} else {
			data, err = json.Marshal(m)
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err).With(slog.String("file", c.File))
		}

		_, err = fmt.Fprintln(w, string(data))

	default:
		opts := []yaml.EncodeOption{yaml.Flow(true)}
		if c.Indent > 0 {
			opts = []yaml.EncodeOption{yaml.Indent(c.Indent)}
		}

		var data []byte

		data, err = yaml.MarshalContext(ctx, m, opts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err).With(slog.String("file", c.File))
		}

		_, err = fmt.Fprint(w, string(data))
	}

	return err
}
