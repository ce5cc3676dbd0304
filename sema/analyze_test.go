package sema

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/ardnew/abuild/lang"
	"github.com/ardnew/abuild/log"
	"github.com/ardnew/abuild/pkg"
)

func pkgAttr(err error, key string) (string, bool) {
	var pe *pkg.Error
	if !errors.As(err, &pe) {
		return "", false
	}

	v, ok := pe.Attr(key)

	return v.String(), ok
}

func analyze(t *testing.T, src string, opts ...Option) (*Environment, error) {
	t.Helper()

	ast, err := lang.ParseString(context.Background(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	opts = append([]Option{WithLogger(log.Discard())}, opts...)

	return Analyze(context.Background(), ast, opts...)
}

func lookupString(t *testing.T, env *Environment, name string) string {
	t.Helper()

	v, err := env.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}

	s, err := As[*String](v)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}

	return s.String()
}

func TestAnalyze_ForwardReference(t *testing.T) {
	env, err := analyze(t, "a = b + c\nb = \"foo\"\nc = \"bar\"")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := lookupString(t, env, "a"); got != "foobar" {
		t.Errorf("a = %q, want %q", got, "foobar")
	}
}

func TestAnalyze_ReferenceChain(t *testing.T) {
	env, err := analyze(t, "a = b\nb = c\nc = d\nd = e + \"!\"\ne = \"x\"")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	for _, name := range []string{"a", "b", "c", "d"} {
		if got := lookupString(t, env, name); got != "x!" {
			t.Errorf("%s = %q, want %q", name, got, "x!")
		}
	}
}

func TestAnalyze_Circular(t *testing.T) {
	tests := []struct {
		name string
		src  string
		at   string
	}{
		{"self", `a = a`, "1:5"},
		{"pair", "a = b\nb = a", "1:5"},
		{"through operator", "a = b + \"x\"\nb = a", "1:5"},
		{"missing", "a = \"x\"\nb = nowhere", "2:5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyze(t, tt.src)
			if !errors.Is(err, ErrUnresolvedReferences) {
				t.Fatalf("expected ErrUnresolvedReferences, got %v", err)
			}

			if at, _ := pkgAttr(err, "at"); at != tt.at {
				t.Errorf("at = %q, want %q", at, tt.at)
			}
		})
	}
}

func TestAnalyze_CompoundAssignment(t *testing.T) {
	env, err := analyze(t, "x = \"a\"\nx += \"b\"\nx += y\ny = \"c\"")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := lookupString(t, env, "x"); got != "abc" {
		t.Errorf("x = %q, want %q", got, "abc")
	}

	_, err = analyze(t, `z -= "q"`)
	if !errors.Is(err, ErrPropertyNotFound) {
		t.Errorf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestAnalyze_SetOperations(t *testing.T) {
	env, err := analyze(t, "a = \"1\"\nb = \"2\"\ns = set(a, b)\ns -= set(b)\ns += set(a, c)\nc = \"3\"")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	v, _ := env.Lookup("s")

	s, err := As[*Set](v)
	if err != nil {
		t.Fatalf("As: %v", err)
	}

	var got []string
	for _, item := range s.Items() {
		got = append(got, item.(*String).String())
	}

	if !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("s = %v", got)
	}
}

func TestAnalyze_Namespaces(t *testing.T) {
	env, err := analyze(t, "ns = namespace()\nns.x = \"1\"\nns.y.z = \"2\"\np.q = ns.y.z")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := lookupString(t, env, "ns.y.z"); got != "2" {
		t.Errorf("ns.y.z = %q", got)
	}

	if got := lookupString(t, env, "p.q"); got != "2" {
		t.Errorf("p.q = %q", got)
	}

	_, err = analyze(t, "a = \"x\"\na.b = \"y\"")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestAnalyze_TypeLookup(t *testing.T) {
	env, err := analyze(t, "x = alias(\"a\", \"b\")\nalias = string")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := lookupString(t, env, "x"); got != "ab" {
		t.Errorf("x = %q", got)
	}

	_, err = analyze(t, "x = notype(\"a\")\nnotype = \"str\"")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}

	_, err = analyze(t, "s = \"str\"\nx = s()")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestAnalyze_UnsupportedOperator(t *testing.T) {
	_, err := analyze(t, `a = "x" - "y"`)
	if !errors.Is(err, ErrUnsupportedOperator) {
		t.Fatalf("expected ErrUnsupportedOperator, got %v", err)
	}

	// Deferred operations fail the same way once resolved.
	_, err = analyze(t, "a = b - \"y\"\nb = \"x\"")
	if !errors.Is(err, ErrUnsupportedOperator) {
		t.Fatalf("expected ErrUnsupportedOperator, got %v", err)
	}
}

func TestAnalyze_ConstructorErrors(t *testing.T) {
	_, err := analyze(t, `n = namespace("x")`)
	if !errors.Is(err, ErrUnexpectedArgumentType) {
		t.Errorf("expected ErrUnexpectedArgumentType, got %v", err)
	}

	_, err = analyze(t, "n = namespace(later)\nlater = \"x\"")
	if !errors.Is(err, ErrUnexpectedArgumentType) {
		t.Errorf("expected deferred ErrUnexpectedArgumentType, got %v", err)
	}
}

var testTargetType = NewTypeID("test_target")

func targetTypes(sc *Context) error {
	_, err := sc.RegisterType("test_target", "test", testTargetType,
		Checked(map[TypeID]Arity{TypeString: Exactly(1)},
			func(_ *Context, _ *TypeDescriptor, args []Value) (Value, error) {
				return &fakeValue{
					name: args[0].(*String).String(),
					id:   testTargetType,
					kind: KindTarget,
				}, nil
			}))

	return err
}

func TestAnalyze_TargetIndex(t *testing.T) {
	src := "a = test_target(\"a\")\nns.b = test_target(n)\nn = \"b\"\ns = \"not a target\"\nc = a\nc = \"rebound\""

	env, err := analyze(t, src, WithTypes(targetTypes))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := env.TargetNames(); !slices.Equal(got, []string{"a", "ns.b"}) {
		t.Errorf("TargetNames() = %v", got)
	}

	v, ok := env.Target("ns.b")
	if !ok {
		t.Fatal("ns.b not indexed")
	}

	if v.(*fakeValue).name != "b" {
		t.Errorf("ns.b = %v", v)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	src := "a = b + c\nb = \"foo\"\nc = \"bar\"\nns.s = set(a, b)\nt = test_target(a)"

	first, err := analyze(t, src, WithTypes(targetTypes))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	second, err := analyze(t, src, WithTypes(targetTypes))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !reflect.DeepEqual(first.ToMap(), second.ToMap()) {
		t.Errorf("environments differ:\n%v\n%v", first.ToMap(), second.ToMap())
	}

	if !slices.Equal(first.TargetNames(), second.TargetNames()) {
		t.Errorf("target names differ")
	}

	m := first.ToMap()
	if _, ok := m["string"]; ok {
		t.Error("ToMap includes builtin types")
	}

	if m["a"] != "foobar" {
		t.Errorf("a = %v", m["a"])
	}
}

func TestResolve_SweepsBoundedByChain(t *testing.T) {
	sc := NewContext(log.Discard())

	// d3 -> d2 -> d1 -> root.x, registered in reverse dependency order.
	d3 := NewReference([]string{"y3"})
	d2 := NewReference([]string{"y2"})
	d1 := NewReference([]string{"x"})

	sc.Defer(d3, lang.Range{})
	sc.Defer(d2, lang.Range{})
	sc.Defer(d1, lang.Range{})

	sc.Root().Set("y3", d2)
	sc.Root().Set("y2", d1)
	sc.Root().Set("x", NewString("v"))

	if err := sc.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	for _, d := range []*Delayed{d1, d2, d3} {
		if s, err := As[*String](d); err != nil || s.String() != "v" {
			t.Errorf("placeholder not resolved: %v", err)
		}
	}

	if sc.Pending() != 0 {
		t.Errorf("pending = %d", sc.Pending())
	}
}

func TestResolve_Canceled(t *testing.T) {
	sc := NewContext(log.Discard())
	sc.Defer(NewReference([]string{"x"}), lang.Range{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sc.Resolve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
