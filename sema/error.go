package sema

import "github.com/ardnew/abuild/pkg"

// Predefined errors (sentinel values).
var (
	ErrUnresolvedReferences   = pkg.NewError("unresolved references")
	ErrDuplicateTypeName      = pkg.NewError("duplicate type name")
	ErrArgumentCountMismatch  = pkg.NewError("argument count mismatch")
	ErrUnexpectedArgumentType = pkg.NewError("unexpected argument type")
	ErrTypeMismatch           = pkg.NewError("type mismatch")
	ErrPropertyNotFound       = pkg.NewError("property not found")
	ErrUnsupportedOperator    = pkg.NewError("unsupported operator")
	ErrNotConstructible       = pkg.NewError("type is not constructible")
	ErrInvalidName            = pkg.NewError("invalid name")
)
