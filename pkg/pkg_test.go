package pkg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "abuild"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}
}

func TestAuthorStruct(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Expected Author to have at least one entry")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestError_IsMatchesDerivedErrors(t *testing.T) {
	errBase := NewError("base failure")
	errOther := NewError("other failure")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", errBase, true},
		{"with attrs", errBase.With(slog.String("k", "v")), true},
		{"wrapped", errBase.Wrap(errors.New("cause")), true},
		{"chained", errBase.With(slog.Int("n", 1)).Wrap(errOther), true},
		{"fmt wrapped", fmt.Errorf("outer: %w", errBase.With()), true},
		{"different sentinel", errOther.With(slog.String("k", "v")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, errBase); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_MessageAndAttrs(t *testing.T) {
	err := NewError("lookup failed").
		With(slog.String("name", "foo")).
		Wrap(errors.New("not here"))

	if got, want := err.Error(), "lookup failed: not here"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	v, ok := err.Attr("name")
	if !ok || v.String() != "foo" {
		t.Errorf("Attr(name) = %v, %v", v, ok)
	}

	if _, ok := err.Attr("missing"); ok {
		t.Error("expected missing attribute to be absent")
	}

	group := err.LogValue().Group()
	if len(group) != 3 {
		t.Errorf("expected 3 attrs in log value, got %d", len(group))
	}
}

func TestWrapError_ReturnsExisting(t *testing.T) {
	base := NewError("base")
	wrapped := fmt.Errorf("ctx: %w", base)

	if got := WrapError(wrapped); got != base {
		t.Errorf("WrapError did not return the embedded Error")
	}

	plain := errors.New("plain")
	if got := WrapError(plain); !errors.Is(got, plain) {
		t.Errorf("WrapError lost the plain cause")
	}
}
