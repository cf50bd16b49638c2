package workflow

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aretw0/snk/internal/logging"
	"github.com/aretw0/snk/pkg/domain"
)

const (
	envsFolder     = "envs"
	profilesFolder = "profiles"
	scriptsFolder  = "scripts"
)

// EditableProbe reports whether a package is installed in development mode.
type EditableProbe interface {
	IsEditableInstall(name string) (bool, error)
}

// EditableProbeFunc adapts a function to EditableProbe.
type EditableProbeFunc func(name string) (bool, error)

// IsEditableInstall calls f(name).
func (f EditableProbeFunc) IsEditableInstall(name string) (bool, error) {
	return f(name)
}

// Location is the resolved layout of one workflow.
// Editable is computed once in Resolve and never changes afterwards.
type Location struct {
	Root string
	Name string

	editable bool
	logger   *slog.Logger
}

// Option configures Resolve.
type Option func(*resolveConfig)

type resolveConfig struct {
	probe  EditableProbe
	logger *slog.Logger
}

// WithProbe replaces the editable-install probe (defaults to PythonProbe).
func WithProbe(p EditableProbe) Option {
	return func(c *resolveConfig) {
		c.probe = p
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *resolveConfig) {
		c.logger = logger
	}
}

// Resolve builds a Location for the workflow rooted at path.
func Resolve(path string, opts ...Option) (*Location, error) {
	cfg := resolveConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.probe == nil {
		cfg.probe = NewPythonProbe(nil)
	}

	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workflow path %q: %w", path, err)
	}

	l := &Location{
		Root:   root,
		Name:   filepath.Base(root),
		logger: cfg.logger,
	}
	l.editable = l.detectEditable(cfg.probe)
	return l, nil
}

// detectEditable never fails: any probe error resolves to "not editable".
func (l *Location) detectEditable(probe EditableProbe) bool {
	if fi, err := os.Lstat(l.Root); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return true
	}
	editable, err := probe.IsEditableInstall(l.Name)
	if err != nil {
		l.logger.Debug("editable install detection failed, assuming installed copy",
			"workflow", l.Name, "error", err)
		return false
	}
	return editable
}

// Editable reports whether the workflow runs from a development checkout.
func (l *Location) Editable() bool {
	return l.editable
}

// EnvironmentPrefixDir is where materialized conda environments live.
// Editable workflows share .snakemake/conda in the current directory; installed
// workflows keep a private .conda next to their files.
func (l *Location) EnvironmentPrefixDir() string {
	if l.editable {
		return filepath.Join(".snakemake", "conda")
	}
	return filepath.Join(l.Root, ".conda")
}

// SingularityPrefixDir is where singularity images live. It is absent when the
// workflow root contains a space, which singularity cannot address.
func (l *Location) SingularityPrefixDir() (string, bool) {
	if strings.Contains(l.Root, " ") {
		return "", false
	}
	if l.editable {
		return filepath.Join(".snakemake", "singularity"), true
	}
	return filepath.Join(l.Root, ".singularity"), true
}

// Executable is the launcher installed for the workflow (<prefix>/bin/<name>).
func (l *Location) Executable() string {
	name := l.Name
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(filepath.Dir(l.Root)), "bin", name)
}

// FindFolder looks for <root>/workflow/<name> then <root>/<name>.
func (l *Location) FindFolder(name string) (string, bool) {
	candidates := []string{
		filepath.Join(l.Root, "workflow", name),
		filepath.Join(l.Root, name),
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && fi.IsDir() {
			return c, true
		}
	}
	return "", false
}

// Environments lists the *.yaml then *.yml definitions in the envs folder.
func (l *Location) Environments() []domain.EnvironmentDefinition {
	dir, ok := l.FindFolder(envsFolder)
	if !ok {
		return nil
	}
	var defs []domain.EnvironmentDefinition
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		for _, m := range matches {
			if fi, err := os.Stat(m); err != nil || fi.IsDir() {
				continue
			}
			defs = append(defs, domain.NewEnvironmentDefinition(m))
		}
	}
	return defs
}

// Profiles lists subdirectories of the profiles folder that hold a config.yaml.
func (l *Location) Profiles() []domain.Profile {
	dir, ok := l.FindFolder(profilesFolder)
	if !ok {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.logger.Debug("failed to read profiles folder", "dir", dir, "error", err)
		return nil
	}
	var profiles []domain.Profile
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if fi, err := os.Stat(path); err != nil || !fi.IsDir() {
			continue
		}
		p := domain.Profile{Name: e.Name(), Path: path}
		if _, err := os.Stat(p.ConfigPath()); err != nil {
			continue
		}
		settings, err := LoadProfileSettings(p.ConfigPath())
		if err != nil {
			l.logger.Debug("failed to decode profile config", "profile", p.Name, "error", err)
		}
		p.Settings = settings
		profiles = append(profiles, p)
	}
	return profiles
}

// Scripts lists the regular files in the scripts folder.
func (l *Location) Scripts() []domain.Script {
	dir, ok := l.FindFolder(scriptsFolder)
	if !ok {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.logger.Debug("failed to read scripts folder", "dir", dir, "error", err)
		return nil
	}
	var scripts []domain.Script
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		scripts = append(scripts, domain.Script{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	return scripts
}

// Profile looks up a profile by directory name.
func (l *Location) Profile(name string) (domain.Profile, error) {
	for _, p := range l.Profiles() {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Profile{}, fmt.Errorf("profile %s %w", name, domain.ErrNotFound)
}

// Script looks up a script by file name.
func (l *Location) Script(name string) (domain.Script, error) {
	for _, s := range l.Scripts() {
		if s.Name == name {
			return s, nil
		}
	}
	return domain.Script{}, fmt.Errorf("script %s %w", name, domain.ErrNotFound)
}
