package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/snk/pkg/adapters/process"
	"github.com/aretw0/snk/pkg/ports"
)

// findSpecScript prints where the interpreter would import the package from,
// together with the site-packages entries of sys.path.
const findSpecScript = `import importlib.util, json, sys
spec = importlib.util.find_spec(sys.argv[1])
print(json.dumps({
    "origin": spec.origin if spec is not None else None,
    "site_packages": [p for p in sys.path if "site-packages" in p],
}))`

const probeTimeout = 15 * time.Second

// PythonProbe detects development-mode (pip -e) installs through the python
// interpreter that owns the workflow package.
type PythonProbe struct {
	runner      ports.CommandRunner
	interpreter string
}

// NewPythonProbe returns a probe using runner (a process.Runner when nil).
func NewPythonProbe(runner ports.CommandRunner) *PythonProbe {
	if runner == nil {
		runner = process.NewRunner()
	}
	return &PythonProbe{runner: runner}
}

type packageInfo struct {
	Origin       *string  `json:"origin"`
	SitePackages []string `json:"site_packages"`
}

// IsEditableInstall reports whether package name is installed outside
// site-packages, or inside it through a <name>.egg-link development marker.
func (p *PythonProbe) IsEditableInstall(name string) (bool, error) {
	interpreter, err := p.findInterpreter()
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := p.runner.Output(ctx, ports.Command{
		Name: interpreter,
		Args: []string{"-c", findSpecScript, name},
	})
	if err != nil {
		return false, fmt.Errorf("package lookup failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	var info packageInfo
	if err := json.Unmarshal(lastLine(out), &info); err != nil {
		return false, fmt.Errorf("unexpected interpreter output: %w", err)
	}
	return classify(name, info), nil
}

func (p *PythonProbe) findInterpreter() (string, error) {
	if p.interpreter != "" {
		return p.interpreter, nil
	}
	for _, candidate := range []string{"python3", "python"} {
		if path, err := p.runner.LookPath(candidate); err == nil {
			p.interpreter = path
			return path, nil
		}
	}
	return "", errors.New("no python interpreter on PATH")
}

func classify(name string, info packageInfo) bool {
	if info.Origin == nil {
		return false
	}
	origin := *info.Origin

	inside := false
	for _, sp := range info.SitePackages {
		if strings.HasPrefix(origin, sp) {
			inside = true
			break
		}
	}
	if !inside {
		return true
	}

	for _, sp := range info.SitePackages {
		if fi, err := os.Stat(filepath.Join(sp, name+".egg-link")); err == nil && fi.Mode().IsRegular() {
			return true
		}
	}
	return false
}

func lastLine(out []byte) []byte {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return []byte(lines[len(lines)-1])
}
