package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/snk/internal/metrics"
	"github.com/aretw0/snk/internal/presentation/tui"
	"github.com/aretw0/snk/pkg/envs"
	"github.com/spf13/cobra"
)

func newEnvCommand(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage the conda environments of the workflow",
	}
	cmd.AddCommand(
		newEnvListCommand(load),
		newEnvShowCommand(load),
		newEnvRunCommand(load),
		newEnvActivateCommand(load),
		newEnvRemoveCommand(load),
		newEnvCreateCommand(load),
	)
	return cmd
}

func newEnvListCommand(load loader) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the environments in the workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, mgr, closer, err := openManager(cmd, load, nil)
			if err != nil {
				return err
			}
			defer closer()

			var rows [][]string
			for _, r := range mgr.List(verbose) {
				address := r.Address
				if r.Created && !verbose {
					address = app.Printer.Highlight(address)
				}
				rows = append(rows, []string{r.Name, r.Command, address})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.Table([]string{"Name", "CMD", "Env"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show conda paths")
	return cmd
}

func newEnvShowCommand(load loader) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the contents of an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, closer, err := openManager(cmd, load, nil)
			if err != nil {
				return err
			}
			defer closer()

			text, err := mgr.Show(args[0])
			if err != nil {
				return err
			}
			return printSource(cmd.OutOrStdout(), text, "yaml", pretty)
		},
	}
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Pretty print the environment")
	return cmd
}

func newEnvRunCommand(load loader) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "run <name> <cmd>...",
		Short: "Run a command in one of the workflow environments",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := NewSignalContext(cmd.Context())
			defer sc.Cancel()

			_, mgr, closer, err := openManager(cmd, load, nil)
			if err != nil {
				return err
			}
			defer closer()

			return mgr.Run(sc, args[0], args[1:], verbose)
		},
	}
	// Flags after the environment name belong to the command being run.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the command to run")
	return cmd
}

func newEnvActivateCommand(load loader) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "activate <name>",
		Short: "Activate a workflow conda environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := NewSignalContext(cmd.Context())
			defer sc.Cancel()

			_, mgr, closer, err := openManager(cmd, load, nil)
			if err != nil {
				return err
			}
			defer closer()

			return mgr.Activate(sc, args[0], verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the activation command")
	return cmd
}

func newEnvRemoveCommand(load loader) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove conda environments",
		Long:  `Remove the named environment. Without a name, every environment of the workflow is deleted.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, mgr, closer, err := openManager(cmd, load, nil)
			if err != nil {
				return err
			}
			defer closer()

			var name string
			if len(args) == 1 {
				name = args[0]
			}
			path, err := mgr.Remove(name, force, app.Confirm())
			if err != nil {
				return err
			}
			if path != "" {
				app.Printer.Success("Deleted %s!", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Force deletion of the environments")
	return cmd
}

func newEnvCreateCommand(load loader) *cobra.Command {
	var (
		workers     int
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "create [name]...",
		Short: "Create conda environments",
		Long:  `Create the named environments, or all of them when no name is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := NewSignalContext(cmd.Context())
			defer sc.Cancel()

			rec := metrics.New()
			app, mgr, closer, err := openManager(cmd, load, rec)
			if err != nil {
				return err
			}
			defer closer()

			if !cmd.Flags().Changed("workers") {
				workers = app.Config.Workers
			}

			batch, err := mgr.Create(sc, args, workers)
			if metricsFile != "" && len(batch.Results) > 0 {
				if werr := rec.WriteTextfile(metricsFile); werr != nil {
					app.Logger.Warn("failed to write metrics", "path", metricsFile, "error", werr)
				}
			}
			if sig := sc.Signal(); sig != nil {
				app.Logger.Debug("creation interrupted", "signal", sig)
			}
			if err != nil {
				return err
			}

			if batch.Failed() {
				for _, r := range batch.Failures() {
					app.Printer.Error("%s", r.Err)
				}
				app.Printer.Error("%s", envs.CreateFailureMessage)
				return errReported
			}
			app.Printer.Success("%s", envs.CreateMessage(args))
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Max number of envs to create in parallel (defaults to the configured workers)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write creation metrics to this file in the prometheus text format")
	return cmd
}

// openManager loads the workflow and builds its environment orchestrator.
func openManager(cmd *cobra.Command, load loader, rec *metrics.Recorder) (*App, *envs.Manager, func(), error) {
	app, err := load(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	mgr, closer, err := app.Manager(cmd.Context(), rec)
	if err != nil {
		return nil, nil, nil, err
	}
	return app, mgr, closer, nil
}

// printSource writes text raw, or rendered as a highlighted block of language.
func printSource(w io.Writer, text, language string, pretty bool) error {
	if pretty {
		out, err := tui.RenderCode(language, text)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, out)
		return err
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := fmt.Fprint(w, text)
	return err
}
