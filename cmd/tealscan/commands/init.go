package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tealscan/tealscan/internal/config"
	"github.com/tealscan/tealscan/pkg/detectors"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a tealscan configuration interactively",
	Long: `Guides you through setting up tealscan configuration step by step.
Creates a config file with the detector set, output format, and cache
settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	// === SECTION 1: Detectors ===
	var detectorOptions []huh.Option[string]
	for _, d := range detectors.All() {
		detectorOptions = append(detectorOptions,
			huh.NewOption(fmt.Sprintf("%s - %s", d.Name(), d.Description()), d.Name()).Selected(true))
	}

	var selectedDetectors []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Detectors").
				Description("Select the detectors to run by default").
				Options(detectorOptions...).
				Value(&selectedDetectors),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	if len(selectedDetectors) == 0 {
		return fmt.Errorf("at least one detector must be selected")
	}

	// === SECTION 2: Output ===
	var formatChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output Format").
				Description("How should results be rendered?").
				Options(
					huh.NewOption("Text (colored, for terminals)", "text"),
					huh.NewOption("JSON", "json"),
				).
				Value(&formatChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 3: Cache ===
	var cacheEnabled bool
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Result Cache").
				Description("Cache analysis results so unchanged files are not re-analyzed?").
				Affirmative("Enable").
				Negative("Disable").
				Value(&cacheEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 4: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.tealscan/config.yaml)", "global"),
					huh.NewOption("Project (./.tealscan.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	var configPath string
	if saveLocationChoice == "global" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		configPath = filepath.Join(home, ".tealscan", "config.yaml")
	} else {
		configPath = ".tealscan.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// === Build config struct ===
	cfg := config.DefaultConfig()
	if len(selectedDetectors) < len(detectors.All()) {
		cfg.Detectors = selectedDetectors
	}
	cfg.Format = config.OutputFormat(formatChoice)
	cfg.CacheEnabled = cacheEnabled

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	if len(cfg.Detectors) == 0 {
		fmt.Println("Detectors: all")
	} else {
		fmt.Printf("Detectors: %v\n", cfg.Detectors)
	}
	fmt.Printf("Format: %s\n", cfg.Format)
	fmt.Printf("Cache: %v\n", cfg.CacheEnabled)
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
