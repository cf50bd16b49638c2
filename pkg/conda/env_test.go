package conda

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/snk/internal/testutils"
	"github.com/aretw0/snk/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFactory(runner *testutils.FakeRunner, opts ...Option) *Factory {
	opts = append([]Option{WithRunner(runner)}, opts...)
	return NewFactory(context.Background(), opts...)
}

func TestNewFactory_ProbesEngineAndFrontend(t *testing.T) {
	t.Run("Legacy Engine With Mamba", func(t *testing.T) {
		f := newTestFactory(&testutils.FakeRunner{EngineVersion: "7.32.4", Executables: []string{"mamba"}})
		assert.Equal(t, "legacy", f.Protocol().Name())
		assert.Equal(t, FrontendMamba, f.Frontend())
	})

	t.Run("Current Engine Falls Back To Conda", func(t *testing.T) {
		f := newTestFactory(&testutils.FakeRunner{EngineVersion: "8.1.0"})
		assert.Equal(t, "current", f.Protocol().Name())
		assert.Equal(t, FrontendConda, f.Frontend())
	})

	t.Run("Missing Engine Uses Legacy", func(t *testing.T) {
		f := newTestFactory(&testutils.FakeRunner{})
		assert.Equal(t, "legacy", f.Protocol().Name())
	})

	t.Run("Explicit Overrides", func(t *testing.T) {
		f := newTestFactory(&testutils.FakeRunner{EngineVersion: "8.1.0"},
			WithEngineVersion("7.0.0"), WithFrontend("micromamba"))
		assert.Equal(t, "legacy", f.Protocol().Name())
		assert.Equal(t, "micromamba", f.Frontend())
	})
}

func TestFactory_NewEnv(t *testing.T) {
	root := testutils.SetupWorkflow(t, "wf", testutils.Workflow{
		"envs/python.yaml": testutils.PythonEnv,
	})
	prefix := filepath.Join(root, ".conda")
	definition := filepath.Join(root, "envs", "python.yaml")

	t.Run("Legacy Handle", func(t *testing.T) {
		f := newTestFactory(&testutils.FakeRunner{}, WithProtocol(LegacyProtocol{}))
		env, err := f.NewEnv(definition, prefix)
		require.NoError(t, err)

		assert.Equal(t, "python", env.Name())
		assert.Equal(t, definition, env.File)
		assert.Equal(t, prefix, env.Context.PrefixDir)
		assert.Equal(t, prefix, filepath.Dir(env.Address()))
		assert.Len(t, filepath.Base(env.Address()), 8)
		assert.False(t, env.Exists())
	})

	t.Run("Current Handle Fails Loudly", func(t *testing.T) {
		f := newTestFactory(&testutils.FakeRunner{}, WithProtocol(CurrentProtocol{}))
		_, err := f.NewEnv(definition, prefix)
		assert.ErrorIs(t, err, domain.ErrUnimplemented)
	})

	t.Run("Missing Definition", func(t *testing.T) {
		f := newTestFactory(&testutils.FakeRunner{}, WithProtocol(LegacyProtocol{}))
		_, err := f.NewEnv(filepath.Join(root, "envs", "nope.yaml"), prefix)
		assert.Error(t, err)
	})
}

func TestEnv_AddressDependsOnContentAndPrefix(t *testing.T) {
	root := testutils.SetupWorkflow(t, "wf", testutils.Workflow{
		"envs/a.yaml": testutils.EnvDefinition("a", "python"),
		"envs/b.yaml": testutils.EnvDefinition("b", "python"),
	})
	f := newTestFactory(&testutils.FakeRunner{}, WithProtocol(LegacyProtocol{}))

	a1, err := f.NewEnv(filepath.Join(root, "envs", "a.yaml"), filepath.Join(root, ".conda"))
	require.NoError(t, err)
	a2, err := f.NewEnv(filepath.Join(root, "envs", "a.yaml"), filepath.Join(root, ".conda"))
	require.NoError(t, err)
	b, err := f.NewEnv(filepath.Join(root, "envs", "b.yaml"), filepath.Join(root, ".conda"))
	require.NoError(t, err)
	moved, err := f.NewEnv(filepath.Join(root, "envs", "a.yaml"), filepath.Join(root, "elsewhere"))
	require.NoError(t, err)

	assert.Equal(t, a1.Address(), a2.Address())
	assert.NotEqual(t, a1.Address(), b.Address())
	assert.NotEqual(t, filepath.Base(a1.Address()), filepath.Base(moved.Address()))
}

func TestEnv_Create(t *testing.T) {
	root := testutils.SetupWorkflow(t, "wf", testutils.Workflow{
		"envs/python.yaml": testutils.PythonEnv,
		"envs/broken.yaml": testutils.EnvDefinition("broken", "does-not-exist"),
	})
	prefix := filepath.Join(root, ".conda")

	t.Run("Materializes Once", func(t *testing.T) {
		runner := &testutils.FakeRunner{Fail: map[string]bool{"broken": true}}
		f := newTestFactory(runner, WithProtocol(LegacyProtocol{}), WithFrontend(FrontendMamba))
		env, err := f.NewEnv(filepath.Join(root, "envs", "python.yaml"), prefix)
		require.NoError(t, err)

		require.NoError(t, env.Create(context.Background()))
		assert.True(t, env.Exists())
		assert.True(t, env.Ready())
		assert.FileExists(t, filepath.Join(env.Address(), "bin", "python"))
		assert.FileExists(t, env.Address()+".yaml")
		assert.FileExists(t, filepath.Join(env.Address(), setupStartMarker))
		assert.FileExists(t, filepath.Join(env.Address(), setupDoneMarker))

		creations := runner.Creations()
		require.Len(t, creations, 1)
		assert.Equal(t, FrontendMamba, creations[0].Name)
		assert.Contains(t, creations[0].Args, "--prefix")
		assert.Contains(t, creations[0].Args, env.Address())

		// Second call is a no-op.
		require.NoError(t, env.Create(context.Background()))
		assert.Len(t, runner.Creations(), 1)
	})

	t.Run("Failure Is A CreateError", func(t *testing.T) {
		runner := &testutils.FakeRunner{Fail: map[string]bool{"broken": true}}
		f := newTestFactory(runner, WithProtocol(LegacyProtocol{}))
		env, err := f.NewEnv(filepath.Join(root, "envs", "broken.yaml"), prefix)
		require.NoError(t, err)

		err = env.Create(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCreationFailed)
		assert.True(t, IsCreateError(err))

		var createErr *CreateError
		require.True(t, errors.As(err, &createErr))
		assert.Equal(t, "broken", createErr.Env)
		assert.Contains(t, err.Error(), "could not solve broken")
		assert.False(t, env.Exists())
		assert.NoFileExists(t, env.Address()+".yaml")
	})

	t.Run("Discards Incomplete Environment", func(t *testing.T) {
		runner := &testutils.FakeRunner{}
		f := newTestFactory(runner, WithProtocol(LegacyProtocol{}))
		env, err := f.NewEnv(filepath.Join(root, "envs", "python.yaml"), filepath.Join(root, ".partial"))
		require.NoError(t, err)

		stale := filepath.Join(env.Address(), "stale")
		require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
		require.NoError(t, os.WriteFile(stale, nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(env.Address(), setupStartMarker), nil, 0o644))
		assert.False(t, env.Ready())

		require.NoError(t, env.Create(context.Background()))
		assert.NoFileExists(t, stale)
		assert.True(t, env.Ready())
		assert.True(t, env.SetupDone())
		assert.Len(t, runner.Creations(), 1)
	})

	t.Run("Keeps Unmarked Environment", func(t *testing.T) {
		runner := &testutils.FakeRunner{}
		f := newTestFactory(runner, WithProtocol(LegacyProtocol{}))
		env, err := f.NewEnv(filepath.Join(root, "envs", "python.yaml"), filepath.Join(root, ".engine-built"))
		require.NoError(t, err)

		// Built by an engine release that wrote no markers.
		python := filepath.Join(env.Address(), "bin", "python")
		require.NoError(t, os.MkdirAll(filepath.Dir(python), 0o755))
		require.NoError(t, os.WriteFile(python, nil, 0o755))
		assert.True(t, env.Ready())
		assert.False(t, env.SetupDone())

		require.NoError(t, env.Create(context.Background()))
		assert.FileExists(t, python)
		assert.Empty(t, runner.Creations())
	})

	t.Run("Canceled Context", func(t *testing.T) {
		runner := &testutils.FakeRunner{}
		f := newTestFactory(runner, WithProtocol(LegacyProtocol{}))
		env, err := f.NewEnv(filepath.Join(root, "envs", "python.yaml"), filepath.Join(root, ".canceled"))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = env.Create(ctx)
		assert.ErrorIs(t, err, domain.ErrCreationFailed)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRealPath_StableAcrossCreation(t *testing.T) {
	base := t.TempDir()
	prefix := filepath.Join(base, "later", "conda")

	before := realPath(prefix)
	require.NoError(t, os.MkdirAll(prefix, 0o755))
	after := realPath(prefix)

	assert.Equal(t, after, before)
}
