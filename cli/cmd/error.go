package cmd

import "github.com/ardnew/abuild/pkg"

var (
	ErrReadBuildfile = pkg.NewError("read buildfile")
	ErrJSONMarshal   = pkg.NewError("marshal JSON")
	ErrYAMLMarshal   = pkg.NewError("marshal YAML")
	ErrFilter        = pkg.NewError("invalid target filter")
	ErrNoTargets     = pkg.NewError("no targets to build")
	ErrBuildFailed   = pkg.NewError("build failed")
)
