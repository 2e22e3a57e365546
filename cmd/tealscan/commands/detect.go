package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tealscan/tealscan/internal/config"
	"github.com/tealscan/tealscan/internal/log"
	"github.com/tealscan/tealscan/internal/scanner"
	"github.com/tealscan/tealscan/pkg/cache"
	"github.com/tealscan/tealscan/pkg/detectors"
	"github.com/tealscan/tealscan/pkg/report"
	"github.com/tealscan/tealscan/pkg/teal"
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect [path]",
	Short: "Run detectors over TEAL files",
	Long: `Parses the TEAL file (or every .teal file under the directory) and runs
the configured vulnerability detectors. Exits with status 2 when any
detector reports a path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		return runDetect(cmd, path)
	},
}

func runDetect(cmd *cobra.Command, path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cmd, cfg)

	logger := log.Default()
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	selected := cfg.SelectedDetectors()
	if len(selected) == 0 {
		return fmt.Errorf("no detectors selected")
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store, err = cache.Open(cfg.CacheDir)
		if err != nil {
			logger.Warn("cache disabled", "error", err)
			store = nil
		}
	}

	files, err := collectFiles(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no TEAL files found under %s", path)
	}

	vulnerable := false
	for _, file := range files {
		r, err := analyzeFile(file, cfg, selected, store, logger)
		if err != nil {
			// Parse errors are per-file: report and keep scanning.
			if _, ok := err.(*teal.ParseError); ok {
				logger.Error("parse failed", "file", file, "error", err)
				continue
			}
			return err
		}
		if r.Vulnerable() {
			vulnerable = true
		}
		if err := writeResult(cfg, r); err != nil {
			return err
		}
	}

	if vulnerable {
		os.Exit(2)
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("format") {
		v, _ := cmd.Flags().GetString("format")
		cfg.Format = config.OutputFormat(v)
	}
	if cmd.Flags().Changed("detectors") {
		cfg.Detectors, _ = cmd.Flags().GetStringSlice("detectors")
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
	}
	if cmd.Flags().Changed("teal-version") {
		cfg.Version, _ = cmd.Flags().GetInt("teal-version")
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.CacheEnabled = false
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Verbose = true
	}
}

func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	found, err := scanner.Scan(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	files := make([]string, len(found))
	for i, f := range found {
		files[i] = f.FullPath
	}
	return files, nil
}

func analyzeFile(file string, cfg *config.Config, selected []detectors.Detector, store *cache.Store, logger log.Logger) (*report.Result, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	names := make([]string, len(selected))
	for i, d := range selected {
		names[i] = d.Name()
	}
	key := cache.Key(src, cfg.Version, names)

	if store != nil {
		if r, ok := store.Get(key); ok {
			logger.Debug("cache hit", "file", file)
			return r, nil
		}
	}

	var prog *teal.Program
	if cfg.Version > 0 {
		prog, err = teal.ParseWithVersion(string(src), cfg.Version)
	} else {
		prog, err = teal.Parse(string(src))
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed", "file", file, "blocks", len(prog.Blocks()))

	r := report.Run(file, prog, selected)
	if store != nil {
		if err := store.Put(key, r); err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}
	return r, nil
}

func writeResult(cfg *config.Config, r *report.Result) error {
	switch cfg.Format {
	case config.FormatJSON:
		return report.WriteJSON(os.Stdout, r)
	default:
		return report.WriteText(os.Stdout, r)
	}
}

// detectorsCmd lists the registered detectors
var detectorsCmd = &cobra.Command{
	Use:   "detectors",
	Short: "List available detectors",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range detectors.All() {
			fmt.Printf("%-28s %s\n", d.Name(), d.Description())
		}
		return nil
	},
}

func init() {
	detectCmd.Flags().String("format", "", "Output format (text or json)")
	detectCmd.Flags().StringSlice("detectors", nil, "Detectors to run (default: all)")
	detectCmd.Flags().StringSlice("exclude", nil, "Detectors to skip")
	detectCmd.Flags().Int("teal-version", 0, "Override the program's #pragma version")
	detectCmd.Flags().Bool("no-cache", false, "Disable the result cache")
	detectCmd.Flags().BoolP("verbose", "v", false, "Verbose logging")

	RootCmd.AddCommand(detectCmd)
	RootCmd.AddCommand(detectorsCmd)
}
