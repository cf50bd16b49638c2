package conda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/snk/pkg/ports"
)

// EngineBinary is the workflow engine executable probed for its version.
const EngineBinary = "snakemake"

const versionTimeout = 30 * time.Second

// ProbeEngineVersion asks the engine for its version ("7.32.4").
func ProbeEngineVersion(ctx context.Context, runner ports.CommandRunner) (string, error) {
	if _, err := runner.LookPath(EngineBinary); err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", EngineBinary, err)
	}

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := runner.Output(ctx, ports.Command{Name: EngineBinary, Args: []string{"--version"}})
	if err != nil {
		return "", fmt.Errorf("failed to query %s version: %w", EngineBinary, err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty %s version output", EngineBinary)
	}
	return fields[len(fields)-1], nil
}
