// Package commands provides the CLI commands for the tealscan tool.
package commands

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "tealscan",
	Short: "tealscan - Static analyzer for TEAL smart contracts",
	Long: `tealscan parses TEAL programs, builds their control flow graphs, and
runs vulnerability detectors over them.

Commands:
  detect      Run detectors over TEAL files
  detectors   List available detectors
  cfg         Export the control flow graph of a program
  init        Create a tealscan configuration interactively

Use "tealscan [command] --help" for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}
