package cxx

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/ardnew/abuild/build"
)

// Shell is the interpreter commands are run with.
const Shell = "/bin/sh"

// runFunc runs script in rc's working directory and environment and
// returns its combined output.
type runFunc func(ctx context.Context, rc *build.Context, script string) ([]byte, error)

func shell(ctx context.Context, rc *build.Context, script string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, Shell, "-c", script)
	cmd.Dir = rc.WorkDir()
	cmd.Env = rc.Environ()

	var out bytes.Buffer

	cmd.Stdout = &out
	cmd.Stderr = &out

	rc.Logger().TraceContext(ctx, "exec", slog.String("script", script))

	if err := cmd.Run(); err != nil {
		return out.Bytes(), ErrCommandFailed.Wrap(err).With(
			slog.String("command", script),
			slog.String("output", strings.TrimSpace(out.String())),
		)
	}

	return out.Bytes(), nil
}

// quote returns s as a single-quoted shell word.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = quote(s)
	}

	return strings.Join(q, " ")
}

// script joins the non-empty parts of a command line.
func script(parts ...string) string {
	var b strings.Builder

	for _, p := range parts {
		if p == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(p)
	}

	return b.String()
}
