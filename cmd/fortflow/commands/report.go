package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fortlab/fortflow/internal/log"
	"github.com/fortlab/fortflow/pkg/cache"
	"github.com/fortlab/fortflow/pkg/dataflow"
	"github.com/fortlab/fortflow/pkg/report"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Print the dataflow report for every program unit",
	Long: `Runs the full analysis pipeline and prints, per program unit, the
derived relations: call map, traversal orders, dominators, live
variables, reaching definitions, back edges, loops, def-use chains and
the flows-to graph.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		useCache, _ := cmd.Flags().GetBool("cache")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return runReport(args[0], useCache, jsonOutput)
	},
}

func runReport(path string, useCache, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sections := cfg.Sections
	if len(sections) == 0 {
		sections = report.Sections
	}

	var store *cache.Cache
	var key string
	if useCache && !jsonOutput {
		store, err = cache.LoadFile(cfg.CachePath)
		if err != nil {
			return err
		}
	}

	pf, src, err := analyzeFile(path)
	if err != nil {
		return err
	}

	if store != nil {
		key = cache.Key(src)
		if cached, ok := store.Get(key); ok {
			log.Default().Debug("report served from cache", "path", path)
			fmt.Print(cached)
			return nil
		}
	}

	if jsonOutput {
		bm := dataflow.GenBlockMap(pf)
		out := map[string]any{
			"callMap": callMapJSON(dataflow.GenCallMap(pf)),
			"defMap":  defMapJSON(dataflow.GenDefMap(bm)),
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	text := report.Show(pf, sections)
	fmt.Print(text)

	if store != nil {
		store.Set(key, text)
		if err := store.SaveFile(cfg.CachePath); err != nil {
			log.Default().Warn("saving cache failed", "error", err)
		}
	}
	return nil
}

func callMapJSON(cm dataflow.CallMap) map[string][]string {
	out := make(map[string][]string, len(cm))
	for unit, callees := range cm {
		out[unit] = callees.Sorted()
	}
	return out
}

func defMapJSON(dm dataflow.DefMap) map[string][]int {
	out := make(map[string][]int, len(dm))
	for name, labels := range dm {
		out[name] = labels.Sorted()
	}
	return out
}

func init() {
	reportCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	reportCmd.Flags().Bool("cache", false, "Use the analysis cache")
}
