package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/snk/internal/config"
	"github.com/aretw0/snk/internal/logging"
	"github.com/aretw0/snk/internal/metrics"
	"github.com/aretw0/snk/internal/presentation/tui"
	"github.com/aretw0/snk/pkg/adapters/process"
	"github.com/aretw0/snk/pkg/adapters/redis"
	"github.com/aretw0/snk/pkg/conda"
	"github.com/aretw0/snk/pkg/envs"
	"github.com/aretw0/snk/pkg/ports"
	"github.com/aretw0/snk/pkg/workflow"
)

// Options carries process-level dependencies so commands can be driven from tests.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Runner executes external programs. Defaults to a process.Runner on Stdio.
	Runner ports.CommandRunner
	// Probe overrides editable-install detection.
	Probe workflow.EditableProbe
	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// DefaultOptions wires the real terminal.
func DefaultOptions() Options {
	return Options{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Stdin == nil {
		o.Stdin = d.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = d.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = d.Stderr
	}
	if o.Getenv == nil {
		o.Getenv = d.Getenv
	}
	return o
}

// App is the per-invocation state shared by commands.
type App struct {
	Config   config.Config
	Location *workflow.Location
	Runner   ports.CommandRunner
	Printer  *tui.Printer
	Logger   *slog.Logger

	opts Options
}

// NewApp resolves the workflow at dir and loads its configuration.
func NewApp(opts Options, dir string, debug bool) (*App, error) {
	opts = opts.withDefaults()

	cfg, err := config.Load(dir, opts.Getenv)
	if err != nil {
		return nil, err
	}
	debug = debug || cfg.Debug

	logger := logging.ForCLI(opts.Stderr, debug)

	runner := opts.Runner
	if runner == nil {
		runner = process.NewRunner(
			process.WithStdio(opts.Stdin, opts.Stdout, opts.Stderr),
			process.WithLogger(logger),
		)
	}

	locOpts := []workflow.Option{workflow.WithLogger(logger)}
	if opts.Probe != nil {
		locOpts = append(locOpts, workflow.WithProbe(opts.Probe))
	} else {
		locOpts = append(locOpts, workflow.WithProbe(workflow.NewPythonProbe(runner)))
	}
	loc, err := workflow.Resolve(dir, locOpts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("workflow resolved", "root", loc.Root, "editable", loc.Editable(),
		"prefix", loc.EnvironmentPrefixDir())

	return &App{
		Config:   cfg,
		Location: loc,
		Runner:   runner,
		Printer:  tui.NewPrinter(opts.Stdout, opts.Stderr),
		Logger:   logger,
		opts:     opts,
	}, nil
}

// Confirm prompts on the app's terminal.
func (a *App) Confirm() envs.Confirm {
	return envs.PromptConfirm(a.opts.Stdin, a.opts.Stderr)
}

// Manager builds the environment orchestrator. The returned closer releases the
// lock backend, if one is configured.
func (a *App) Manager(ctx context.Context, rec *metrics.Recorder) (*envs.Manager, func(), error) {
	factory := conda.NewFactory(ctx,
		conda.WithRunner(a.Runner),
		conda.WithLogger(a.Logger),
		conda.WithEngineVersion(a.Config.EngineVersion),
		conda.WithFrontend(a.Config.Conda.Frontend),
	)

	opts := []envs.Option{
		envs.WithLogger(a.Logger),
		envs.WithLogOutput(a.opts.Stderr),
		envs.WithUserShell(a.Config.Shell),
		envs.WithPrefixDir(a.Config.Conda.Prefix),
		envs.WithMetrics(rec),
	}

	closer := func() {}
	if url := a.Config.Lock.RedisURL; url != "" {
		locker, err := redis.NewFromURL(url)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to configure environment lock: %w", err)
		}
		opts = append(opts, envs.WithLocker(locker, a.Config.Lock.TTL))
		closer = func() {
			if err := locker.Close(); err != nil {
				a.Logger.Debug("failed to close lock client", "error", err)
			}
		}
	}

	return envs.NewManager(a.Location, factory, a.Runner, opts...), closer, nil
}
