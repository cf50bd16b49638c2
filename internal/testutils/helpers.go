package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// PythonEnv is a minimal environment definition used across tests.
const PythonEnv = `name: python
channels:
  - conda-forge
dependencies:
  - python=3.11
`

// EnvDefinition returns an environment file whose first line names it, so that
// FakeRunner can recognise it after the engine copied it.
func EnvDefinition(name string, deps ...string) string {
	out := "name: " + name + "\nchannels:\n  - conda-forge\ndependencies:\n"
	for _, d := range deps {
		out += "  - " + d + "\n"
	}
	return out
}

// Workflow describes the files of a fixture workflow, keyed by path relative
// to the workflow root.
type Workflow map[string]string

// SetupWorkflow creates a temporary workflow directory named name holding files.
// It returns the absolute workflow root and fails the test immediately on error.
func SetupWorkflow(t *testing.T, name string, files Workflow) string {
	t.Helper()

	base, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	root := filepath.Join(base, name)
	require.NoError(t, os.MkdirAll(root, 0o755))

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", rel)
	}
	return root
}

// Chdir switches the working directory for the duration of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(prev)
	})
}
