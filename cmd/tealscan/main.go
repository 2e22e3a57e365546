// Package main implements the tealscan CLI.
// It provides commands for running vulnerability detectors over TEAL
// programs and exporting their control flow graphs.
package main

import (
	"os"

	"github.com/tealscan/tealscan/cmd/tealscan/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	commands.RootCmd.SetVersionTemplate(`tealscan version {{.Version}}
`)

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
