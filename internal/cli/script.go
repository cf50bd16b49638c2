package cli

import (
	"fmt"
	"os"

	"github.com/aretw0/snk/internal/presentation/tui"
	"github.com/aretw0/snk/pkg/ports"
	"github.com/spf13/cobra"
)

func newScriptCommand(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Access the scripts of the workflow",
	}
	cmd.AddCommand(
		newScriptListCommand(load),
		newScriptShowCommand(load),
		newScriptRunCommand(load),
	)
	return cmd
}

func newScriptListCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the scripts in the workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			var rows [][]string
			for _, s := range app.Location.Scripts() {
				rows = append(rows, []string{s.Name, s.Path})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.Table([]string{"Name", "Path"}, rows))
			return nil
		},
	}
}

func newScriptShowCommand(load loader) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the contents of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			script, err := app.Location.Script(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(script.Path)
			if err != nil {
				return fmt.Errorf("failed to read script %s: %w", script.Name, err)
			}
			if pretty {
				return tui.Highlight(cmd.OutOrStdout(), string(data), script.Name)
			}
			return printSource(cmd.OutOrStdout(), string(data), "", false)
		},
	}
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Pretty print the script")
	return cmd
}

func newScriptRunCommand(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <name> [args]...",
		Short: "Run a script from the workflow",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			script, err := app.Location.Script(args[0])
			if err != nil {
				return err
			}

			c := ports.Command{Name: script.Path, Args: args[1:]}
			if interp := script.Interpreter(); interp != "" {
				c = ports.Command{Name: interp, Args: append([]string{script.Path}, args[1:]...)}
			}
			app.Logger.Debug("running script", "script", script.Name, "cmd", c.Name)
			return app.Runner.Attach(cmd.Context(), c)
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
