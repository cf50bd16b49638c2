package testutils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/snk/pkg/ports"
)

// FakeCondaBase is the conda root reported by FakeRunner for "conda info --json".
const FakeCondaBase = "/opt/conda"

// FakeRunner is an in-memory ports.CommandRunner that emulates the conda
// frontend and the workflow engine.
type FakeRunner struct {
	// EngineVersion is reported by "snakemake --version". Empty means not installed.
	EngineVersion string
	// Executables are the names LookPath resolves.
	Executables []string
	// Fail lists environment names whose creation fails.
	Fail map[string]bool
	// Panic lists environment names whose creation panics.
	Panic map[string]bool
	// AttachErr is returned by Attach.
	AttachErr error

	mu       sync.Mutex
	outputs  []ports.Command
	attached []ports.Command
}

var _ ports.CommandRunner = (*FakeRunner)(nil)

// Output emulates the programs snk shells out to.
func (f *FakeRunner) Output(ctx context.Context, cmd ports.Command) ([]byte, error) {
	f.mu.Lock()
	f.outputs = append(f.outputs, cmd)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case cmd.Name == "snakemake" && len(cmd.Args) == 1 && cmd.Args[0] == "--version":
		if f.EngineVersion == "" {
			return nil, errors.New("executable file not found")
		}
		return []byte(f.EngineVersion + "\n"), nil
	case cmd.Name == "conda" && len(cmd.Args) == 2 && cmd.Args[0] == "info":
		return []byte(fmt.Sprintf(`{"conda_prefix": %q}`, FakeCondaBase)), nil
	case len(cmd.Args) >= 2 && cmd.Args[0] == "env" && cmd.Args[1] == "create":
		return f.create(cmd)
	}
	return nil, fmt.Errorf("unexpected command %s %v", cmd.Name, cmd.Args)
}

func (f *FakeRunner) create(cmd ports.Command) ([]byte, error) {
	file, prefix := flagValue(cmd.Args, "--file"), flagValue(cmd.Args, "--prefix")
	base := filepath.Base(file)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	// The frontend is handed a copy named after the address, so look the
	// definition name up in the copy's content header.
	if data, err := os.ReadFile(file); err == nil {
		if first, _, ok := strings.Cut(string(data), "\n"); ok && strings.HasPrefix(first, "name: ") {
			name = strings.TrimPrefix(first, "name: ")
		}
	}

	if f.Panic[name] {
		panic("frontend crashed for " + name)
	}
	if f.Fail[name] {
		return []byte("CondaValueError: could not solve " + name), exitStatusOne()
	}
	if err := os.MkdirAll(filepath.Join(prefix, "bin"), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(prefix, "bin", "python"), nil, 0o755); err != nil {
		return nil, err
	}
	return []byte("done"), nil
}

// Attach records the command and returns AttachErr.
func (f *FakeRunner) Attach(_ context.Context, cmd ports.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached = append(f.attached, cmd)
	return f.AttachErr
}

// LookPath resolves names listed in Executables.
func (f *FakeRunner) LookPath(name string) (string, error) {
	for _, e := range f.Executables {
		if e == name {
			return "/usr/bin/" + name, nil
		}
	}
	if name == "snakemake" && f.EngineVersion != "" {
		return "/usr/bin/snakemake", nil
	}
	return "", fmt.Errorf("%s: executable file not found in $PATH", name)
}

// Creations returns the "env create" invocations seen so far.
func (f *FakeRunner) Creations() []ports.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ports.Command
	for _, c := range f.outputs {
		if len(c.Args) >= 2 && c.Args[0] == "env" && c.Args[1] == "create" {
			out = append(out, c)
		}
	}
	return out
}

// Attached returns the commands run through Attach.
func (f *FakeRunner) Attached() []ports.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.Command(nil), f.attached...)
}

// exitStatusOne returns the error a real frontend exiting with status 1 produces.
func exitStatusOne() error {
	err := exec.Command("sh", "-c", "exit 1").Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return errors.New("exit status 1")
}

func flagValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
