package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

// Format writes the AST in native buildfile syntax to the writer.
//
// Each assignment is written on its own line. If indent is greater than
// zero, call arguments that do not fit on one line are broken one per line
// and indented by indent spaces.
func (ast *AST) Format(_ context.Context, w io.Writer, indent int) error {
	for _, a := range ast.Assignments {
		if _, err := fmt.Fprintf(w, "%s %s ", a.Target, a.Op); err != nil {
			return err
		}

		if err := formatExpr(a.Value, w, indent, 0); err != nil {
			return err
		}

		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}

// FormatJSON writes the AST as JSON to the writer.
func (ast *AST) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(ast, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(ast)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the AST as YAML to the writer.
func (ast *AST) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, ast.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// maxInlineArgs is the width above which argument lists are broken across
// lines when formatting with indentation.
const maxInlineArgs = 72

// formatExpr formats an expression in native syntax.
func formatExpr(e *Expr, w io.Writer, indent, depth int) error {
	switch e.Kind {
	case ExprString:
		_, err := fmt.Fprint(w, quote(e.Text))

		return err

	case ExprReference:
		_, err := fmt.Fprint(w, e.ID)

		return err

	case ExprBinary:
		if err := formatExpr(e.LHS, w, indent, depth); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, " %s ", e.Op); err != nil {
			return err
		}

		return formatExpr(e.RHS, w, indent, depth)

	case ExprCall:
		return formatCall(e, w, indent, depth)

	default:
		_, err := fmt.Fprint(w, "<unknown>")

		return err
	}
}

// formatCall formats an instantiation, breaking long argument lists.
func formatCall(e *Expr, w io.Writer, indent, depth int) error {
	var inline strings.Builder

	for i, arg := range e.Args {
		if i > 0 {
			inline.WriteString(", ")
		}

		if err := formatExpr(arg, &inline, 0, 0); err != nil {
			return err
		}
	}

	if indent == 0 || inline.Len() <= maxInlineArgs {
		_, err := fmt.Fprintf(w, "%s(%s)", e.ID, inline.String())

		return err
	}

	if _, err := fmt.Fprintf(w, "%s(\n", e.ID); err != nil {
		return err
	}

	pad := strings.Repeat(" ", (depth+1)*indent)

	for _, arg := range e.Args {
		if _, err := fmt.Fprint(w, pad); err != nil {
			return err
		}

		if err := formatExpr(arg, w, indent, depth+1); err != nil {
			return err
		}

		// Always add comma for easier editing
		if _, err := fmt.Fprintln(w, ","); err != nil {
			return err
		}
	}

	_, err := fmt.Fprint(w, strings.Repeat(" ", depth*indent), ")")

	return err
}

// quote renders s as a buildfile string literal that parses back to the
// same bytes. Invalid UTF-8 is written as \xNN escapes and other
// non-printable runes as \x, \u or \U escapes.
func quote(s string) string {
	var sb strings.Builder

	sb.WriteByte('"')

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])

		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&sb, `\x%02x`, s[i])
		case r == '"':
			sb.WriteString(`\"`)
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\r':
			sb.WriteString(`\r`)
		case strconv.IsPrint(r):
			sb.WriteString(s[i : i+size])
		case r < utf8.RuneSelf:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case r <= 0xFFFF:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			fmt.Fprintf(&sb, `\U%08x`, r)
		}

		i += size
	}

	sb.WriteByte('"')

	return sb.String()
}
