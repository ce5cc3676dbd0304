package sema

import (
	"log/slog"
	"sync"
)

// Op is a binary operator.
type Op rune

const (
	Add Op = '+'
	Sub Op = '-'
)

// String returns the operator's source text.
func (op Op) String() string { return string(rune(op)) }

// Handler implements an operator for a specific pair of operand types.
// Operands are passed unwrapped, in the order the handler was registered.
type Handler func(lhs, rhs Value) (Value, error)

type operatorKey struct {
	op       Op
	lhs, rhs TypeID
}

var operators = struct {
	sync.RWMutex
	table map[operatorKey]Handler
}{table: make(map[operatorKey]Handler)}

// RegisterOperator installs h as the handler of lhs op rhs, replacing any
// previous handler for the same triple.
func RegisterOperator(op Op, lhs, rhs TypeID, h Handler) {
	if lhs == NoType || rhs == NoType {
		panic("sema: operator registered for unresolved type")
	}

	operators.Lock()
	defer operators.Unlock()

	operators.table[operatorKey{op, lhs, rhs}] = h
}

func lookupOperator(op Op, lhs, rhs TypeID) (Handler, bool) {
	operators.RLock()
	defer operators.RUnlock()

	h, ok := operators.table[operatorKey{op, lhs, rhs}]

	return h, ok
}

// Apply evaluates a op b.
//
// The handler registered for (a, b) is preferred. Otherwise a handler
// registered for (b, a) is called with the operands swapped into its
// expected order. If no handler exists and either operand is unresolved,
// Apply returns a pending [Delayed] binary operation for the caller to
// register with [Context.Defer].
func Apply(op Op, a, b Value) (Value, error) {
	at, bt := a.Type(), b.Type()

	if h, ok := lookupOperator(op, at, bt); ok {
		return h(Unwrap(a), Unwrap(b))
	}

	if h, ok := lookupOperator(op, bt, at); ok {
		return h(Unwrap(b), Unwrap(a))
	}

	if at == NoType || bt == NoType {
		return NewBinaryOp(op, a, b), nil
	}

	return nil, ErrUnsupportedOperator.With(
		slog.String("op", op.String()),
		slog.String("lhs", at.String()),
		slog.String("rhs", bt.String()),
	)
}
