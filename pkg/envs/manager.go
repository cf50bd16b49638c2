package envs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/aretw0/snk/internal/config"
	"github.com/aretw0/snk/internal/logging"
	"github.com/aretw0/snk/internal/metrics"
	"github.com/aretw0/snk/pkg/conda"
	"github.com/aretw0/snk/pkg/domain"
	"github.com/aretw0/snk/pkg/ports"
	"github.com/aretw0/snk/pkg/workflow"
)

// HandleFactory produces environment handles.
type HandleFactory interface {
	NewEnv(definitionPath, prefixDir string) (*conda.Env, error)
}

// Manager exposes the environment operations used by the CLI.
type Manager struct {
	location  *workflow.Location
	factory   HandleFactory
	runner    ports.CommandRunner
	shell     *conda.Shell
	prefixDir string
	userShell string
	goos      string
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	locks     *addressLocks
	metrics   *metrics.Recorder
	logger    *slog.Logger
	log       io.Writer
}

// Option configures a Manager.
type Option func(*Manager)

// WithPrefixDir overrides the location's environment prefix directory.
func WithPrefixDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.prefixDir = dir
		}
	}
}

// WithUserShell sets the shell used by Run and Activate.
func WithUserShell(shell string) Option {
	return func(m *Manager) {
		m.userShell = shell
	}
}

// WithCondaShell sets the activation command builder.
func WithCondaShell(s *conda.Shell) Option {
	return func(m *Manager) {
		m.shell = s
	}
}

// WithGOOS overrides the platform used to pick the shell invocation.
func WithGOOS(goos string) Option {
	return func(m *Manager) {
		m.goos = goos
	}
}

// WithLocker serializes creation of the same environment across invocations.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(m *Manager) {
		m.locker = locker
		m.lockTTL = ttl
	}
}

// WithMetrics records creation metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Manager) {
		m.metrics = r
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLogOutput sets where user-facing progress lines go (stderr by default).
func WithLogOutput(w io.Writer) Option {
	return func(m *Manager) {
		m.log = w
	}
}

// NewManager wires a Manager for the workflow at location.
func NewManager(location *workflow.Location, factory HandleFactory, runner ports.CommandRunner, opts ...Option) *Manager {
	m := &Manager{
		location:  location,
		factory:   factory,
		runner:    runner,
		prefixDir: location.EnvironmentPrefixDir(),
		userShell: config.DefaultShell,
		goos:      runtime.GOOS,
		lockTTL:   time.Hour,
		logger:    logging.NewNop(),
		log:       os.Stderr,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.shell == nil {
		m.shell = conda.NewShell(runner, conda.WithGOOS(m.goos))
	}
	m.locks = newAddressLocks(m.locker, m.lockTTL, m.logger)
	return m
}

// PrefixDir is the directory holding every materialized environment.
func (m *Manager) PrefixDir() string {
	return m.prefixDir
}

// Workflow is the name of the managed workflow.
func (m *Manager) Workflow() string {
	return m.location.Name
}

// Definitions lists the discovered environment definitions.
func (m *Manager) Definitions() []domain.EnvironmentDefinition {
	return m.location.Environments()
}

// Resolve finds the definition called name.
func (m *Manager) Resolve(name string) (domain.EnvironmentDefinition, error) {
	var matches []domain.EnvironmentDefinition
	for _, def := range m.Definitions() {
		if def.Name == name {
			matches = append(matches, def)
		}
	}
	switch len(matches) {
	case 0:
		return domain.EnvironmentDefinition{}, fmt.Errorf("environment %s %w", name, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		paths := make([]string, len(matches))
		for i, d := range matches {
			paths[i] = filepath.Base(d.Path)
		}
		return domain.EnvironmentDefinition{}, fmt.Errorf("environment %s: %w (%s)", name, domain.ErrAmbiguous, strings.Join(paths, ", "))
	}
}

// Row is one line of List output.
type Row struct {
	Name    string
	Command string
	Address string
	Created bool
}

// List reports every definition and whether it is materialized. It never fails:
// a definition whose handle cannot be built is shown as not created.
func (m *Manager) List(verbose bool) []Row {
	defs := m.Definitions()
	rows := make([]Row, 0, len(defs))
	for _, def := range defs {
		row := Row{
			Name:    def.Name,
			Command: fmt.Sprintf("%s env create %s", m.location.Name, def.Name),
		}
		env, err := m.factory.NewEnv(def.Path, m.prefixDir)
		if err != nil {
			m.logger.Debug("cannot build environment handle", "env", def.Name, "error", err)
		} else if env.Exists() {
			row.Created = true
			row.Command = fmt.Sprintf("%s env activate %s", m.location.Name, def.Name)
			row.Address = filepath.Base(env.Address())
			if verbose {
				row.Address = env.Address()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Show returns the raw definition text.
func (m *Manager) Show(name string) (string, error) {
	def, err := m.Resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(def.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read environment %s: %w", name, err)
	}
	return string(data), nil
}

// ensure returns a handle on def, creating the environment when needed.
func (m *Manager) ensure(ctx context.Context, def domain.EnvironmentDefinition) (*conda.Env, error) {
	env, err := m.factory.NewEnv(def.Path, m.prefixDir)
	if err != nil {
		return nil, err
	}
	if env.SetupDone() {
		return env, nil
	}

	// Create is a no-op once a previous lock holder finished the environment.
	err = m.locks.withLock(ctx, env.Address(), env.Create)
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (m *Manager) logf(format string, args ...any) {
	fmt.Fprintf(m.log, format+"\n", args...)
}

// shellCommand wraps line for the user's shell.
func (m *Manager) shellCommand(line string) ports.Command {
	if m.goos == "windows" {
		return ports.Command{Name: "cmd", Args: []string{"/C", line}}
	}
	return ports.Command{Name: m.userShell, Args: []string{"-c", line}}
}

// attach runs line in the user's shell on the terminal. The child owns terminal
// signals from here on, so it is not killed when ctx is cancelled by SIGINT.
func (m *Manager) attach(ctx context.Context, line string) error {
	return m.runner.Attach(context.WithoutCancel(ctx), m.shellCommand(line))
}

// Run executes tokens inside the named environment, creating it first if needed.
// The returned error wraps *exec.ExitError when the command exits non-zero.
func (m *Manager) Run(ctx context.Context, name string, tokens []string, verbose bool) error {
	def, err := m.Resolve(name)
	if err != nil {
		return err
	}
	env, err := m.ensure(ctx, def)
	if err != nil {
		return err
	}
	line, err := m.shell.Command(ctx, env.Address(), strings.Join(tokens, " "))
	if err != nil {
		return err
	}
	if verbose {
		m.logf("%s", line)
	}
	return m.attach(ctx, line)
}

// Activate opens an interactive shell inside the named environment.
func (m *Manager) Activate(ctx context.Context, name string, verbose bool) error {
	def, err := m.Resolve(name)
	if err != nil {
		return err
	}
	m.logf("Activating %s environment... (type 'exit' to deactivate)", name)
	env, err := m.ensure(ctx, def)
	if err != nil {
		return err
	}
	line, err := m.shell.Command(ctx, env.Address(), m.userShell)
	if err != nil {
		return err
	}
	if verbose {
		m.logf("%s", line)
	}
	err = m.attach(ctx, line)
	m.logf("Exiting %s environment...", name)
	// The exit status of an interactive session is the user's last command.
	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// Confirm asks the user a yes/no question.
type Confirm func(prompt string) (bool, error)

// Remove deletes the named environment, or every environment when name is
// empty. Without force, confirm is consulted first. It returns the deleted path,
// or "" when the user declined.
func (m *Manager) Remove(name string, force bool, confirm Confirm) (string, error) {
	var path, copyPath string
	if name != "" {
		def, err := m.Resolve(name)
		if err != nil {
			return "", err
		}
		env, err := m.factory.NewEnv(def.Path, m.prefixDir)
		if err != nil {
			return "", err
		}
		if !env.Exists() {
			return "", fmt.Errorf("environment %s: %w", name, domain.ErrNotCreated)
		}
		path = env.Address()
		copyPath = path + filepath.Ext(def.Path)
	} else {
		path = m.prefixDir
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("no environments in %s: %w", path, domain.ErrNotCreated)
		}
	}

	if !force {
		ok, err := confirm(fmt.Sprintf("Delete %s? [y/N] ", path))
		if err != nil {
			return "", err
		}
		if !ok {
			return "", nil
		}
	}

	if err := os.RemoveAll(path); err != nil {
		return "", fmt.Errorf("failed to delete %s: %w", path, err)
	}
	if copyPath != "" {
		_ = os.Remove(copyPath)
	}
	m.logger.Info("environment removed", "path", path)
	return path, nil
}
