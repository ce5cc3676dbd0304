package lang

import (
	"iter"
	"strconv"
	"strings"

	"github.com/ardnew/abuild/log"
)

// Position identifies a location in source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, counted in runes
}

// String returns the position formatted as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether p refers to an actual source location.
func (p Position) IsValid() bool { return p.Line > 0 }

// Range is a half-open span of source text.
type Range struct {
	Start Position
	End   Position
}

// String returns the range formatted as "line:column-line:column".
func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// AST is the syntax tree of a single buildfile.
type AST struct {
	Assignments []*Assignment
	logger      log.Logger
}

// All returns an iterator over the assignments in source order.
func (ast *AST) All() iter.Seq[*Assignment] {
	return func(yield func(*Assignment) bool) {
		for _, a := range ast.Assignments {
			if !yield(a) {
				return
			}
		}
	}
}

// Logger returns the logger configured when the AST was parsed.
func (ast *AST) Logger() log.Logger { return ast.logger }

// AssignOp is the operator of an assignment.
type AssignOp int

const (
	// Assign binds the value ("=").
	Assign AssignOp = iota
	// AppendAssign binds the current value plus the expression ("+=").
	AppendAssign
	// RemoveAssign binds the current value minus the expression ("-=").
	RemoveAssign
)

// String returns the operator's source text.
func (op AssignOp) String() string {
	switch op {
	case Assign:
		return "="
	case AppendAssign:
		return "+="
	case RemoveAssign:
		return "-="
	default:
		return "?="
	}
}

// Binary returns the binary operator applied by a compound assignment.
// ok is false for plain assignment.
func (op AssignOp) Binary() (bin BinaryOp, ok bool) {
	switch op {
	case AppendAssign:
		return Add, true
	case RemoveAssign:
		return Sub, true
	default:
		return 0, false
	}
}

// Assignment binds the expression Value to the dotted name Target.
type Assignment struct {
	Target *IDExpr
	Value  *Expr
	Op     AssignOp
	Range  Range
}

// IDExpr is a dotted identifier path such as "a.b.c".
type IDExpr struct {
	Path  []string
	Range Range
}

// String returns the dotted form of the path.
func (id *IDExpr) String() string { return strings.Join(id.Path, ".") }

// BinaryOp is an infix expression operator.
type BinaryOp rune

const (
	Add BinaryOp = '+'
	Sub BinaryOp = '-'
)

// String returns the operator's source text.
func (op BinaryOp) String() string { return string(rune(op)) }

// ExprKind discriminates the variants of [Expr].
type ExprKind int

const (
	// ExprString is a string literal. Text holds the decoded value.
	ExprString ExprKind = iota
	// ExprReference is a dotted name. ID holds the path.
	ExprReference
	// ExprCall is an instantiation "f(args)". ID names the type.
	ExprCall
	// ExprBinary is "LHS op RHS".
	ExprBinary
)

// String returns a readable name for the kind.
func (k ExprKind) String() string {
	switch k {
	case ExprString:
		return "string"
	case ExprReference:
		return "reference"
	case ExprCall:
		return "call"
	case ExprBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Expr is an expression node. Exactly the fields relevant to Kind are set.
type Expr struct {
	ID    *IDExpr
	LHS   *Expr
	RHS   *Expr
	Text  string
	Args  []*Expr
	Kind  ExprKind
	Op    BinaryOp
	Range Range
}

// Option configures parsing.
type Option func(*AST)

// WithLogger sets the logger used while parsing.
func WithLogger(logger log.Logger) Option {
	return func(ast *AST) { ast.logger = logger }
}
