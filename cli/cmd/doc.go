// Package cmd implements the abuild subcommands.
//
// Commands read the buildfile named by their --file flag, or standard input
// for "-", and write results to the writer set with [WithOutput].
package cmd

// Kong variable identifiers that the CLI must define for the defaults and
// help text of the commands in this package.
const (
	BuildfileIdentifier     = "buildfile"
	OutputDirIdentifier     = "outputDir"
	DefaultTargetIdentifier = "defaultTarget"
)
