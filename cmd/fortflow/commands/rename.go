package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <file>",
	Short: "Print unique names for program units and variables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return runRename(args[0], jsonOutput)
	},
}

type unitBindings struct {
	Unit     string            `json:"unit"`
	Bindings map[string]string `json:"bindings"`
}

func runRename(path string, jsonOutput bool) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	pf, _, err := analyzeFile(path)
	if err != nil {
		return err
	}

	var units []unitBindings
	var walk func(pu ast.ProgramUnit)
	walk = func(pu ast.ProgramUnit) {
		ub := unitBindings{Unit: analysis.PUName(pu), Bindings: map[string]string{}}
		record := func(n ast.Node) {
			for _, v := range ast.Vars(n) {
				if a := analysis.Of(v); a != nil && a.UniqueName != "" {
					ub.Bindings[v.Name] = a.UniqueName
				}
			}
		}
		switch u := pu.(type) {
		case *ast.Module:
			for _, d := range u.Decls {
				record(d)
			}
		case *ast.Subroutine:
			for _, p := range u.Params {
				record(p)
			}
		case *ast.Function:
			for _, p := range u.Params {
				record(p)
			}
		}
		for _, b := range pu.Body() {
			record(b)
		}
		units = append(units, ub)
		if m, ok := pu.(*ast.Module); ok {
			for _, inner := range m.Units {
				walk(inner)
			}
		}
	}
	for _, pu := range pf.Units {
		walk(pu)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(units, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, ub := range units {
		fmt.Printf("== %s ==\n", ub.Unit)
		names := make([]string, 0, len(ub.Bindings))
		for n := range ub.Bindings {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Printf("  %s -> %s\n", n, ub.Bindings[n])
		}
	}
	return nil
}

func init() {
	renameCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}
