package conda

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aretw0/snk/pkg/ports"
)

// Shell builds activation command lines for materialized environments.
type Shell struct {
	runner ports.CommandRunner
	goos   string
	base   string
}

// ShellOption configures a Shell.
type ShellOption func(*Shell)

// WithGOOS overrides the target platform (defaults to runtime.GOOS).
func WithGOOS(goos string) ShellOption {
	return func(s *Shell) {
		s.goos = goos
	}
}

// WithCondaBase sets the conda installation root instead of asking conda.
func WithCondaBase(base string) ShellOption {
	return func(s *Shell) {
		s.base = base
	}
}

// NewShell returns a Shell that resolves the conda root through runner.
func NewShell(runner ports.CommandRunner, opts ...ShellOption) *Shell {
	s := &Shell{runner: runner, goos: runtime.GOOS}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Command returns a shell line that activates the environment at address and
// then runs cmd.
func (s *Shell) Command(ctx context.Context, address, cmd string) (string, error) {
	base, err := s.condaBase(ctx)
	if err != nil {
		return "", err
	}
	if s.goos == "windows" {
		activate := base + `\Scripts\activate.bat`
		return fmt.Sprintf("%s %s&&%s", activate, address, cmd), nil
	}
	activate := filepath.ToSlash(filepath.Join(base, "bin", "activate"))
	return fmt.Sprintf("source %s '%s'; %s", activate, address, cmd), nil
}

type condaInfo struct {
	CondaPrefix string `json:"conda_prefix"`
}

func (s *Shell) condaBase(ctx context.Context) (string, error) {
	if s.base != "" {
		return s.base, nil
	}
	out, err := s.runner.Output(ctx, ports.Command{Name: FrontendConda, Args: []string{"info", "--json"}})
	if err != nil {
		return "", fmt.Errorf("failed to locate conda installation: %w", err)
	}
	var info condaInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return "", fmt.Errorf("failed to parse conda info: %w", err)
	}
	if strings.TrimSpace(info.CondaPrefix) == "" {
		return "", fmt.Errorf("conda info did not report conda_prefix")
	}
	s.base = info.CondaPrefix
	return s.base, nil
}
