package conda

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/snk/pkg/domain"
	"golang.org/x/mod/semver"
)

// ArchiveDir is where the legacy engine keeps environment archives.
// It is passed through to handles but never managed by snk.
var ArchiveDir = filepath.Join(".snakemake", "conda-archive")

// Context is the minimal engine state an environment handle needs.
type Context struct {
	// PrefixDir is the absolute directory environments are created under.
	PrefixDir string
	// ArchiveDir is the engine's environment archive location.
	ArchiveDir string
}

// Protocol builds the engine context for one engine generation.
type Protocol interface {
	Name() string
	NewContext(prefixDir string) (Context, error)
}

// LegacyProtocol drives engines before major version 8.
type LegacyProtocol struct{}

func (LegacyProtocol) Name() string { return "legacy" }

// NewContext resolves prefixDir to an absolute path.
func (LegacyProtocol) NewContext(prefixDir string) (Context, error) {
	var ctx Context
	if prefixDir != "" {
		abs, err := filepath.Abs(prefixDir)
		if err != nil {
			return ctx, fmt.Errorf("failed to resolve conda prefix %q: %w", prefixDir, err)
		}
		ctx.PrefixDir = abs
	}
	ctx.ArchiveDir = ArchiveDir
	return ctx, nil
}

// CurrentProtocol is the construction protocol of engine 8 and later.
type CurrentProtocol struct{}

func (CurrentProtocol) Name() string { return "current" }

// NewContext always fails: this engine generation is not supported yet.
func (CurrentProtocol) NewContext(string) (Context, error) {
	return Context{}, fmt.Errorf("environment handles for engine >= 8: %w", domain.ErrUnimplemented)
}

// currentMajor is the first engine version using CurrentProtocol.
const currentMajor = "v8"

// SelectProtocol picks the protocol for an engine version such as "7.32.4".
// Versions that cannot be parsed use the legacy protocol.
func SelectProtocol(version string) Protocol {
	v := normalizeVersion(version)
	if semver.IsValid(v) && semver.Compare(semver.Major(v), currentMajor) >= 0 {
		return CurrentProtocol{}
	}
	return LegacyProtocol{}
}

func normalizeVersion(version string) string {
	v := strings.TrimSpace(version)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
