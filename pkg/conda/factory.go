package conda

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/snk/internal/logging"
	"github.com/aretw0/snk/pkg/adapters/process"
	"github.com/aretw0/snk/pkg/ports"
)

// Factory creates Env handles. The protocol and frontend are chosen once,
// when the factory is built.
type Factory struct {
	protocol Protocol
	frontend string
	runner   ports.CommandRunner
	logger   *slog.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithProtocol skips the engine version probe.
func WithProtocol(p Protocol) Option {
	return func(f *Factory) {
		f.protocol = p
	}
}

// WithEngineVersion selects the protocol for a known engine version.
func WithEngineVersion(version string) Option {
	return func(f *Factory) {
		if version != "" {
			f.protocol = SelectProtocol(version)
		}
	}
}

// WithFrontend forces the conda frontend instead of detecting it.
func WithFrontend(frontend string) Option {
	return func(f *Factory) {
		f.frontend = frontend
	}
}

// WithRunner sets the runner used for probes and for the frontend.
func WithRunner(r ports.CommandRunner) Option {
	return func(f *Factory) {
		f.runner = r
	}
}

// WithLogger sets the factory logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory builds a Factory. Without WithProtocol/WithEngineVersion the engine
// is probed; an engine that cannot be queried is treated as legacy.
func NewFactory(ctx context.Context, opts ...Option) *Factory {
	f := &Factory{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	if f.runner == nil {
		f.runner = process.NewRunner(process.WithLogger(f.logger))
	}
	if f.protocol == nil {
		version, err := ProbeEngineVersion(ctx, f.runner)
		if err != nil {
			f.logger.Debug("engine version probe failed, using legacy protocol", "error", err)
		}
		f.protocol = SelectProtocol(version)
	}
	if f.frontend == "" {
		f.frontend = DetectFrontend(f.runner)
	}
	f.logger.Debug("conda factory ready", "protocol", f.protocol.Name(), "frontend", f.frontend)
	return f
}

// Protocol returns the selected construction protocol.
func (f *Factory) Protocol() Protocol {
	return f.protocol
}

// Frontend returns the selected conda frontend.
func (f *Factory) Frontend() string {
	return f.frontend
}

// NewEnv returns a fresh handle for the definition file bound to prefixDir.
func (f *Factory) NewEnv(definitionPath, prefixDir string) (*Env, error) {
	ctx, err := f.protocol.NewContext(prefixDir)
	if err != nil {
		return nil, err
	}

	file, err := filepath.Abs(definitionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve environment file %q: %w", definitionPath, err)
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment file: %w", err)
	}

	return &Env{
		File:     file,
		Context:  ctx,
		Frontend: f.frontend,
		content:  content,
		runner:   f.runner,
		logger:   f.logger,
	}, nil
}
