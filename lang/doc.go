// Package lang parses buildfiles into an abstract syntax tree.
//
// A buildfile is an ordered list of assignments. Each assignment binds a
// dotted name to an expression built from string literals, references to
// other names, type instantiations, and the binary operators + and -.
//
// # Grammar
//
// Informal EBNF:
//
//	Buildfile   → Assignment* EOF
//	Assignment  → IdExpr ('=' | '+=' | '-=') Expression ';'?
//	Expression  → Simple (('+' | '-') Simple)*
//	Simple      → String | IdExpr ('(' Args? ')')?
//	Args        → Expression (',' Expression)* ','?
//	IdExpr      → Identifier ('.' Identifier)*
//	Identifier  → (Letter | '_') (Letter | Digit | '_')*
//	String      → '"' (Char | Escape)* '"'
//
// Whitespace is insignificant. Comments begin with '#' or '//' and run to the
// end of the line, or are enclosed in '/*' and '*/'.
//
// Strings accept the escapes \n \t \r \" \\ and \xNN (one raw byte),
// \uNNNN and \UNNNNNNNN (a UTF-8 encoded code point). A backslash before a
// newline continues the string; any other escape is kept as written. Other
// bytes are taken verbatim, so strings need not be valid UTF-8.
//
// # Example
//
//	opts = namespace()
//	opts.flags = "-O2 -Wall"
//	cxx = import("c++", opts)
//
//	sources = files("main.cpp", "util.cpp")
//	sources += glob("src/**/*.cpp")
//	sources -= files("src/broken.cpp")
//
//	app = executable("app", sources)
//
// Names are not resolved here. The parser records only structure and source
// ranges; binding and evaluation happen in package sema.
//
// # Output
//
// An [AST] can be written back out in native syntax with [AST.Format], or
// as a data document with [AST.FormatJSON] and [AST.FormatYAML].
//
// # Caching
//
// [Cache] memoizes parsed trees by content hash, so repeated loads of an
// unchanged buildfile skip the parser entirely.
package lang
