package conda

import "github.com/aretw0/snk/pkg/ports"

// Frontends in order of preference.
const (
	FrontendMamba = "mamba"
	FrontendConda = "conda"
)

// DetectFrontend prefers mamba when it is on PATH and falls back to conda.
func DetectFrontend(runner ports.CommandRunner) string {
	if _, err := runner.LookPath(FrontendMamba); err == nil {
		return FrontendMamba
	}
	return FrontendConda
}
