package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fortlab/fortflow/pkg/dataflow"
	"github.com/spf13/cobra"
)

var callsCmd = &cobra.Command{
	Use:   "calls <file>",
	Short: "Print the call map of a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return runCalls(args[0], jsonOutput)
	},
}

func runCalls(path string, jsonOutput bool) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	pf, _, err := analyzeFile(path)
	if err != nil {
		return err
	}
	cm := dataflow.GenCallMap(pf)

	if jsonOutput {
		data, err := json.MarshalIndent(callMapJSON(cm), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	units := make([]string, 0, len(cm))
	for unit := range cm {
		units = append(units, unit)
	}
	sort.Strings(units)
	for _, unit := range units {
		fmt.Printf("%s:\n", unit)
		for _, callee := range cm[unit].Sorted() {
			fmt.Printf("  -> %s\n", callee)
		}
	}
	return nil
}

func init() {
	callsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}
