package conda

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/snk/pkg/domain"
	"github.com/aretw0/snk/pkg/ports"
)

// Markers written inside an environment around the frontend run. A directory
// with the start marker but no done marker was interrupted mid-creation.
const (
	setupStartMarker = "env_setup_start"
	setupDoneMarker  = "env_setup_done"
)

// Env is a handle on one environment definition bound to a prefix directory.
// Handles are cheap and are built fresh for every operation.
type Env struct {
	File     string
	Context  Context
	Frontend string

	content []byte
	runner  ports.CommandRunner
	logger  *slog.Logger
}

// Name is the definition file name without extension.
func (e *Env) Name() string {
	return domain.NewEnvironmentDefinition(e.File).Name
}

// Hash identifies the environment by its prefix location and definition content.
// Moving the prefix invalidates every environment, since conda binaries can embed
// absolute paths.
func (e *Env) Hash() string {
	prefix := realPath(e.Context.PrefixDir)
	h := md5.New()
	h.Write([]byte(prefix))
	h.Write(e.content)
	return hex.EncodeToString(h.Sum(nil))
}

// realPath resolves symlinks in the longest existing ancestor of path, so the
// result is the same before and after the directory is created.
func realPath(path string) string {
	var rest []string
	for dir := path; ; dir = filepath.Dir(dir) {
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(append([]string{real}, rest...)...)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return path
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
	}
}

// Address is the directory the environment is (or will be) materialized in.
func (e *Env) Address() string {
	return filepath.Join(e.Context.PrefixDir, e.Hash()[:8])
}

// Exists reports whether the environment address is present on disk.
func (e *Env) Exists() bool {
	fi, err := os.Stat(e.Address())
	return err == nil && fi.IsDir()
}

// Ready reports whether the environment is usable: it exists and was not left
// half-built. Environments without markers are taken as complete, since older
// engine releases did not write them.
func (e *Env) Ready() bool {
	return e.Exists() && !e.incomplete()
}

// SetupDone reports whether a Create finished successfully. Unlike Ready it
// never trusts an unmarked directory, which may belong to a creation in progress.
func (e *Env) SetupDone() bool {
	return hasMarker(e.Address(), setupDoneMarker)
}

func (e *Env) incomplete() bool {
	address := e.Address()
	return hasMarker(address, setupStartMarker) && !hasMarker(address, setupDoneMarker)
}

func hasMarker(address, name string) bool {
	_, err := os.Stat(filepath.Join(address, name))
	return err == nil
}

// Create materializes the environment. It is a no-op when the environment is
// already built; a half-built directory from an interrupted run is discarded.
func (e *Env) Create(ctx context.Context) error {
	address := e.Address()
	if e.Exists() && e.incomplete() {
		e.logger.Debug("removing incomplete environment", "address", address)
		if err := os.RemoveAll(address); err != nil {
			return fmt.Errorf("failed to remove incomplete environment %s: %w", address, err)
		}
	}
	if e.Ready() {
		e.logger.Debug("environment already created", "env", e.Name(), "address", address)
		return nil
	}

	if err := os.MkdirAll(e.Context.PrefixDir, 0o755); err != nil {
		return fmt.Errorf("failed to create conda prefix: %w", err)
	}
	if err := e.mark(address, setupStartMarker); err != nil {
		return fmt.Errorf("failed to mark environment %s: %w", address, err)
	}

	// The engine builds from a copy kept next to the environment.
	target := address + filepath.Ext(e.File)
	if err := os.WriteFile(target, e.content, 0o644); err != nil {
		return fmt.Errorf("failed to copy environment file: %w", err)
	}

	e.logger.Info("creating conda environment", "env", e.Name(), "frontend", e.Frontend, "address", address)

	out, err := e.runner.Output(ctx, ports.Command{
		Name: e.Frontend,
		Args: []string{"env", "create", "--quiet", "--file", target, "--prefix", address},
	})
	if err == nil {
		err = e.mark(address, setupDoneMarker)
	}
	if err != nil {
		_ = os.RemoveAll(address)
		_ = os.Remove(target)
		return &CreateError{Env: e.Name(), Output: strings.TrimSpace(string(out)), Err: err}
	}
	return nil
}

func (e *Env) mark(address, marker string) error {
	if err := os.MkdirAll(address, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(address, marker), nil, 0o644)
}

// CreateError describes a failed materialization. It matches
// domain.ErrCreationFailed with errors.Is.
type CreateError struct {
	Env    string
	Output string
	Err    error
}

func (e *CreateError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", domain.ErrCreationFailed, e.Env, e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *CreateError) Unwrap() []error {
	return []error{domain.ErrCreationFailed, e.Err}
}

// IsCreateError reports whether err is a materialization failure.
func IsCreateError(err error) bool {
	return errors.Is(err, domain.ErrCreationFailed)
}
