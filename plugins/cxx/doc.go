// Package cxx registers the "c++" plugin, which compiles C++ sources and
// links them with the system C++ compiler driver.
//
// Importing the plugin from a buildfile registers a compiler for the
// .cpp, .cxx, .c++ and .cc extensions and a "c++" linker capability:
//
//	opts = namespace()
//	opts.flags = "-O2 -Wall"
//	opts.link_flags = "-pthread"
//	cxx = import("c++", opts)
//
// Commands run through /bin/sh so that ${CXX} (default c++) and
// ${CXXFLAGS} are expanded from the build environment. The object for
// src/a.cpp is written to <outdir>/src/a.cpp.o, next to two sidecars:
// a make-style dependency file (.deps) listing the headers it read, and
// the command line it was built with (.command). A changed command line
// makes the object stale.
//
// Programs use the plugin by importing it for its side effect:
//
//	import _ "github.com/ardnew/abuild/plugins/cxx"
package cxx
