package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
	"github.com/fortlab/fortflow/pkg/report"
	"github.com/spf13/cobra"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg <file> <unit>",
	Short: "Print the basic blocks and edges of one program unit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return runCfg(args[0], args[1], jsonOutput)
	},
}

type cfgBlock struct {
	Node       int      `json:"node"`
	Labels     []int    `json:"labels"`
	Statements []string `json:"statements"`
}

type cfgInfo struct {
	Unit   string     `json:"unit"`
	Blocks []cfgBlock `json:"blocks"`
	Edges  [][2]int   `json:"edges"`
}

func runCfg(path, unit string, jsonOutput bool) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	pf, _, err := analyzeFile(path)
	if err != nil {
		return err
	}

	pu, bbgr := findUnit(pf, unit)
	if bbgr == nil {
		return fmt.Errorf("program unit %q not found in %s (or has no body)", unit, path)
	}

	info := cfgInfo{Unit: analysis.PUName(pu), Edges: bbgr.Graph.Edges()}
	for _, n := range bbgr.Graph.Nodes() {
		cb := cfgBlock{Node: n}
		for _, b := range bbgr.Blocks[n] {
			cb.Labels = append(cb.Labels, analysis.MustOf(b).InsLabel)
			cb.Statements = append(cb.Statements, report.DescribeBlock(b))
		}
		info.Blocks = append(info.Blocks, cb)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("== %s ==\n", info.Unit)
	for _, cb := range info.Blocks {
		fmt.Printf("block %d:\n", cb.Node)
		for i, s := range cb.Statements {
			fmt.Printf("  [%d] %s\n", cb.Labels[i], s)
		}
	}
	fmt.Println("edges:")
	for _, e := range info.Edges {
		fmt.Printf("  %d -> %d\n", e[0], e[1])
	}
	return nil
}

// findUnit locates a unit by source name, descending into modules.
func findUnit(pf *ast.ProgramFile, name string) (ast.ProgramUnit, *analysis.BBGr) {
	var found ast.ProgramUnit
	var bbgr *analysis.BBGr
	var walk func(pu ast.ProgramUnit)
	walk = func(pu ast.ProgramUnit) {
		if found == nil && pu.UnitName().String() == name {
			if a := analysis.Of(pu); a != nil && a.BBlocks != nil {
				found, bbgr = pu, a.BBlocks
			}
		}
		if m, ok := pu.(*ast.Module); ok {
			for _, inner := range m.Units {
				walk(inner)
			}
		}
	}
	for _, pu := range pf.Units {
		walk(pu)
	}
	return found, bbgr
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}
