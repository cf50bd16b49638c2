package cli

import (
	"github.com/spf13/cobra"
)

// loader builds the App for the workflow selected by the command's flags.
type loader func(cmd *cobra.Command) (*App, error)

// NewRootCommand assembles the snk command tree. Version and other process-level
// commands are attached by the binary.
func NewRootCommand(opts Options) *cobra.Command {
	opts = opts.withDefaults()

	root := &cobra.Command{
		Use:           "snk",
		Short:         "snk manages the conda environments of a workflow",
		Long:          `snk lists, creates, activates and removes the conda environments, profiles and scripts shipped with a workflow.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringP("dir", "d", ".", "Root directory of the workflow")
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")

	load := func(cmd *cobra.Command) (*App, error) {
		dir, _ := cmd.Flags().GetString("dir")
		debug, _ := cmd.Flags().GetBool("debug")
		return NewApp(opts, dir, debug)
	}

	root.AddCommand(
		newEnvCommand(load),
		newProfileCommand(load),
		newScriptCommand(load),
	)
	return root
}
