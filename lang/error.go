package lang

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/abuild/pkg"
)

// Predefined errors (sentinel values).
var (
	ErrParse               = pkg.NewError("parse error")
	ErrReadInput           = pkg.NewError("failed to read input")
	ErrUnterminatedString  = pkg.NewError("unterminated string")
	ErrUnterminatedComment = pkg.NewError("unterminated comment")
	ErrInvalidEscape       = pkg.NewError("invalid escape sequence")
)

// ParseError describes a syntax error at a specific source position.
//
// ParseError matches [ErrParse] with errors.Is, and its cause (if any)
// with errors.Unwrap.
type ParseError struct {
	cause    error
	Source   string   // the complete source text
	Expected []string // descriptions of acceptable input
	Found    string   // description of the offending input
	Pos      Position
}

func newParseError(source string, pos Position, found string, expected ...string) *ParseError {
	return &ParseError{
		Source:   source,
		Pos:      pos,
		Found:    found,
		Expected: expected,
	}
}

func (e *ParseError) wrap(err error) *ParseError {
	e.cause = err

	return e
}

// Error formats the position, the offending source line with a caret under
// the error column, and the expected input.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))

	if e.cause != nil {
		buf.WriteString(": ")
		buf.WriteString(e.cause.Error())
	}

	if snippet := e.Snippet(); snippet != "" {
		buf.WriteString(":\n")
		buf.WriteString(snippet)
	}

	if len(e.Expected) > 0 {
		buf.WriteString("\texpected: ")
		buf.WriteString(strings.Join(e.Expected, ", "))

		if e.Found != "" {
			buf.WriteString("; found ")
			buf.WriteString(e.Found)
		}
	}

	return buf.String()
}

// Snippet returns the source line containing the error followed by a line
// with a caret under the error column. It is empty if the position is
// outside the source.
func (e *ParseError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.Pos.Line)

	var src strings.Builder

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(lines[e.Pos.Line-1])
	src.WriteRune('\n')

	// 2 leading spaces + " | "
	padding := strings.Repeat(" ", len(num)+5)
	if e.Pos.Column > 0 {
		padding += strings.Repeat(" ", e.Pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// Is reports whether target is [ErrParse].
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Unwrap returns the underlying cause, if any.
func (e *ParseError) Unwrap() error { return e.cause }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", "parse error"),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
	}

	if len(e.Expected) > 0 {
		attrs = append(attrs, slog.String("expected", strings.Join(e.Expected, ", ")))
	}

	if e.Found != "" {
		attrs = append(attrs, slog.String("found", e.Found))
	}

	if e.cause != nil {
		attrs = append(attrs, slog.String("cause", e.cause.Error()))
	}

	return slog.GroupValue(attrs...)
}
