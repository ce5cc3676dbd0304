package sema

import "strings"

func init() {
	RegisterOperator(Add, TypeString, TypeString, concatStrings)
	RegisterOperator(Add, TypeSet, TypeSet, unionSets)
	RegisterOperator(Sub, TypeSet, TypeSet, differenceSets)
}

// registerBuiltins binds the builtin types into the root namespace of a
// fresh context, where registration cannot fail.
func registerBuiltins(sc *Context) {
	for _, b := range []struct {
		name string
		id   TypeID
		ctor Constructor
	}{
		{"string", TypeString, Checked(map[TypeID]Arity{TypeString: Any()}, newString)},
		{"namespace", TypeNamespace, Checked(map[TypeID]Arity{}, newNamespace)},
		{"set", TypeSet, newSet},
	} {
		if _, err := sc.RegisterType(b.name, BuiltinSource, b.id, b.ctor); err != nil {
			panic(err)
		}
	}
}

// newString concatenates its string arguments.
func newString(_ *Context, _ *TypeDescriptor, args []Value) (Value, error) {
	var sb strings.Builder

	for _, arg := range args {
		sb.WriteString(arg.(*String).value)
	}

	return NewString(sb.String()), nil
}

func newNamespace(*Context, *TypeDescriptor, []Value) (Value, error) {
	return NewNamespace(), nil
}

// newSet accepts arguments of any type.
func newSet(_ *Context, t *TypeDescriptor, args []Value) (Value, error) {
	if !allResolved(args) {
		return NewInstantiation(t, args), nil
	}

	return NewSet(args...), nil
}
