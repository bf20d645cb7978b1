// Package main implements the fortflow CLI.
// It parses Fortran sources and prints the derived analysis relations:
// unique names, call maps, basic blocks and the dataflow report.
package main

import (
	"os"

	"github.com/fortlab/fortflow/cmd/fortflow/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
