// Package main is the entry point for the registrar CLI.
//
// registrar provisions a senior-living community and its caretaker staff
// across the data backend and the identity provider from a single Excel
// workbook. It is stateless: the workbook is both the input and the record
// of what a run accomplished.
//
// Commands: register, sample, version.
//
// For detailed usage information, run:
//
//	registrar --help
package main

import (
	"fmt"
	"os"

	"github.com/owlback/registrar/cmd/registrar/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
