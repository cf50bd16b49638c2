package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/aretw0/snk/internal/logging"
	"github.com/aretw0/snk/pkg/ports"
)

// Runner implements ports.CommandRunner on top of os/exec.
type Runner struct {
	baseDir string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithBaseDir sets the default working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithStdio overrides the streams attached processes inherit.
// Defaults to os.Stdin/os.Stdout/os.Stderr.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) RunnerOption {
	return func(r *Runner) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithLogger sets the logger used for debug tracing of spawned commands.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.CommandRunner = (*Runner)(nil)

func (r *Runner) command(ctx context.Context, c ports.Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = r.baseDir
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	// Inherit the caller's environment; extra entries win on conflict.
	cmd.Env = append(cmd.Environ(), c.Env...)
	r.logger.Debug("exec", "cmd", c.Name, "args", c.Args, "dir", cmd.Dir)
	return cmd
}

// Output runs the command and returns its combined output.
func (r *Runner) Output(ctx context.Context, c ports.Command) ([]byte, error) {
	cmd := r.command(ctx, c)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.Bytes(), fmt.Errorf("%s: %w", c.Name, err)
	}
	return out.Bytes(), nil
}

// Attach runs the command wired to the runner's stdio streams.
func (r *Runner) Attach(ctx context.Context, c ports.Command) error {
	cmd := r.command(ctx, c)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	return cmd.Run()
}

// LookPath resolves an executable on PATH.
func (r *Runner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
