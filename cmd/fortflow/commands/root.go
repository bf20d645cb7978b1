// Package commands provides the CLI commands for the fortflow tool.
package commands

import (
	"fmt"
	"os"

	"github.com/fortlab/fortflow/internal/blocks"
	"github.com/fortlab/fortflow/internal/config"
	"github.com/fortlab/fortflow/internal/log"
	"github.com/fortlab/fortflow/internal/parser"
	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
	"github.com/fortlab/fortflow/pkg/rename"
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "fortflow",
	Short: "fortflow - Fortran dataflow analysis",
	Long: `fortflow parses Fortran source files and derives the relations the
analysis core computes: unique names, basic blocks, live variables,
reaching definitions, def-use chains and the call map.

Commands:
  report      Full dataflow report per program unit
  rename      Unique names for units and variables
  calls       Call map
  cfg         Basic blocks and edges of one program unit
  init        Write a .fortflow.yaml configuration interactively

Use "fortflow [command] --help" for more information about a command.`,
}

func init() {
	RootCmd.AddCommand(reportCmd)
	RootCmd.AddCommand(renameCmd)
	RootCmd.AddCommand(callsCmd)
	RootCmd.AddCommand(cfgCmd)
	RootCmd.AddCommand(initCmd)
}

// loadConfig loads the project configuration and applies it to the
// default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		log.Default().SetLevel(log.DebugLevel)
	}
	log.Default().SetJSONOutput(cfg.JSONLogs)
	return cfg, nil
}

// analyzeFile runs the whole pipeline over one source file: parse, wrap
// annotations, label AST-blocks, rename, partition into basic blocks.
func analyzeFile(path string) (*ast.ProgramFile, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("path is a directory, expected a file: %s", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading file: %w", err)
	}
	pf, err := parser.Parse(string(src))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	analysis.InitAnalysis(pf)
	blocks.Label(pf)
	pf, _ = rename.Rename(pf)
	blocks.Build(pf)
	return pf, src, nil
}
