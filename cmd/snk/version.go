package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/snk"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of snk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "snk version %s\n", strings.TrimSpace(snk.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
