package cli

import (
	"fmt"
	"os"

	"github.com/aretw0/snk/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newProfileCommand(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Access the profiles of the workflow",
	}
	cmd.AddCommand(newProfileListCommand(load), newProfileShowCommand(load))
	return cmd
}

func newProfileListCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the profiles in the workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			var rows [][]string
			for _, p := range app.Location.Profiles() {
				rows = append(rows, []string{p.Name, p.Settings.Executor, p.Path})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.Table([]string{"Name", "Executor", "Path"}, rows))
			return nil
		},
	}
}

func newProfileShowCommand(load loader) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the config of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			profile, err := app.Location.Profile(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(profile.ConfigPath())
			if err != nil {
				return fmt.Errorf("failed to read profile %s: %w", profile.Name, err)
			}
			return printSource(cmd.OutOrStdout(), string(data), "yaml", pretty)
		},
	}
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Pretty print the profile")
	return cmd
}
