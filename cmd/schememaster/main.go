// Package main provides the entry point for the schememaster CLI tool.
package main

import (
	"github.com/openfolio/schememaster/cmd/schememaster/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
