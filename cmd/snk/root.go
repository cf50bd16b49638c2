package main

import (
	"os"

	"github.com/aretw0/snk/internal/cli"
	"github.com/aretw0/snk/internal/presentation/tui"
)

var (
	options = cli.DefaultOptions()
	rootCmd = cli.NewRootCommand(options)
)

// Execute runs the command tree and exits with the resulting status.
func Execute() {
	err := rootCmd.Execute()
	os.Exit(cli.ExitCode(tui.NewPrinter(options.Stdout, options.Stderr), err))
}
