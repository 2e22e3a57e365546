package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tealscan/tealscan/pkg/report"
	"github.com/tealscan/tealscan/pkg/teal"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file>",
	Short: "Export the control flow graph of a TEAL program",
	Long: `Parses the TEAL file and writes its control flow graph as a Graphviz
digraph to stdout, or to the file given with --output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		info, err := os.Stat(filePath)
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s", filePath)
		}

		src, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filePath, err)
		}

		prog, err := teal.Parse(string(src))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", filePath, err)
		}

		name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

		out := os.Stdout
		if output, _ := cmd.Flags().GetString("output"); output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			out = f
		}

		return report.WriteDot(out, name, prog)
	},
}

func init() {
	cfgCmd.Flags().StringP("output", "o", "", "Write the graph to a file instead of stdout")
	RootCmd.AddCommand(cfgCmd)
}
