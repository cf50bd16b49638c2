package domain

import (
	"path/filepath"
	"strings"
)

// Profile is a cluster/executor profile: a directory holding a config.yaml.
type Profile struct {
	Name     string
	Path     string
	Settings ProfileSettings
}

// ConfigPath returns the location of the profile's config.yaml.
func (p Profile) ConfigPath() string {
	return filepath.Join(p.Path, "config.yaml")
}

// ProfileSettings holds the well-known keys of a profile config.
// Everything else is kept in Extra.
type ProfileSettings struct {
	Executor string         `mapstructure:"executor"`
	Cluster  string         `mapstructure:"cluster"`
	Jobs     int            `mapstructure:"jobs"`
	UseConda bool           `mapstructure:"use-conda"`
	Extra    map[string]any `mapstructure:",remain"`
}

// Script is a helper script shipped in the workflow's scripts folder.
type Script struct {
	Name string
	Path string
}

// Interpreter returns the program used to run the script, or "" when the
// script should be executed directly.
func (s Script) Interpreter() string {
	switch strings.ToLower(filepath.Ext(s.Name)) {
	case ".py":
		return "python"
	case ".r":
		return "Rscript"
	case ".sh", ".bash":
		return "bash"
	case ".pl":
		return "perl"
	default:
		return ""
	}
}
