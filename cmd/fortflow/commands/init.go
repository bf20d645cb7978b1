package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/fortlab/fortflow/internal/config"
	"github.com/fortlab/fortflow/pkg/report"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize fortflow configuration interactively",
	Long: `Guides you through setting up fortflow configuration step by step.
Creates a .fortflow.yaml with the report sections and logging options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	cfg := config.DefaultConfig()

	var sections []string
	var sectionOpts []huh.Option[string]
	for _, s := range report.Sections {
		sectionOpts = append(sectionOpts, huh.NewOption(s, s).Selected(true))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Report sections").
				Description("Relations the report command prints").
				Options(sectionOpts...).
				Value(&sections),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	if len(sections) < len(report.Sections) {
		cfg.Sections = sections
	}

	cachePath := cfg.CachePath
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Analysis cache path").
				Placeholder(cfg.CachePath).
				Value(&cachePath),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	if cachePath != "" {
		cfg.CachePath = cachePath
	}

	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Verbose logging?").
				Value(&cfg.Verbose),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	if _, err := os.Stat(config.ConfigFileName); err == nil {
		overwrite := false
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(config.ConfigFileName + " exists, overwrite?").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := cfg.Save(config.ConfigFileName); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", config.ConfigFileName)
	return nil
}
