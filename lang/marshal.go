package lang

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for AST.
func (ast *AST) MarshalJSON() ([]byte, error) {
	return json.Marshal(ast.ToMap())
}

// ToMap converts the AST to a native Go map structure.
//
// Assignments are kept in source order under the "assignments" key because
// a name may be bound more than once.
func (ast *AST) ToMap() map[string]any {
	list := make([]any, len(ast.Assignments))

	for i, a := range ast.Assignments {
		list[i] = map[string]any{
			"target": a.Target.String(),
			"op":     a.Op.String(),
			"value":  a.Value.ToNative(),
			"line":   a.Range.Start.Line,
		}
	}

	return map[string]any{"assignments": list}
}

// ToNative converts an expression to native Go values.
//
// A string literal becomes a string; every other kind becomes a map keyed
// by its role.
func (e *Expr) ToNative() any {
	switch e.Kind {
	case ExprString:
		return e.Text

	case ExprReference:
		return map[string]any{"ref": e.ID.String()}

	case ExprCall:
		args := make([]any, len(e.Args))
		for i, arg := range e.Args {
			args[i] = arg.ToNative()
		}

		return map[string]any{"call": e.ID.String(), "args": args}

	case ExprBinary:
		return map[string]any{
			"op":  e.Op.String(),
			"lhs": e.LHS.ToNative(),
			"rhs": e.RHS.ToNative(),
		}

	default:
		return nil
	}
}
