package session

import (
	"testing"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/enginetest"
	"github.com/onnxgo/ort/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine installs a fresh engine double and clears the process-wide
// environment slot so each test commits against its own engine.
func newTestEngine(t *testing.T) *enginetest.Engine {
	t.Helper()
	eng := enginetest.New()
	api.Set(eng)
	envMu.Lock()
	currentEnv = nil
	envMu.Unlock()
	return eng
}

func TestInitCommit(t *testing.T) {
	newTestEngine(t)

	env, err := Init().
		WithName("test-env").
		WithLogLevel(api.LogInfo).
		Commit()
	require.NoError(t, err)

	assert.Equal(t, "test-env", env.Name())
	assert.Empty(t, env.Defaults())
}

func TestDefaultCommitsOnce(t *testing.T) {
	newTestEngine(t)

	first, err := Default()
	require.NoError(t, err)
	second, err := Default()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "ort", first.Name())
}

func TestCommitReplacesForFutureSessions(t *testing.T) {
	newTestEngine(t)

	old, err := Init().WithName("old").Commit()
	require.NoError(t, err)

	replacement, err := Init().WithName("new").Commit()
	require.NoError(t, err)

	current, err := Default()
	require.NoError(t, err)
	assert.Same(t, replacement, current)

	// The replaced environment stays valid for sessions already bound to it.
	assert.Equal(t, "old", old.Name())
	_, err = old.AvailableProviders()
	assert.NoError(t, err)
}

func TestEnvironmentDefaultsAreCopied(t *testing.T) {
	newTestEngine(t)

	cpu := provider.CPU().MustBuild()
	env, err := Init().WithExecutionProviders(cpu).Commit()
	require.NoError(t, err)

	defaults := env.Defaults()
	require.Len(t, defaults, 1)
	defaults[0] = provider.CUDA().MustBuild()
	assert.Equal(t, provider.NameCPU, env.Defaults()[0].Name())
}

func TestEnvironmentQueries(t *testing.T) {
	eng := newTestEngine(t)
	eng.Providers = []string{provider.NameCPU, provider.NameCUDA}

	env, err := Default()
	require.NoError(t, err)

	providers, err := env.AvailableProviders()
	require.NoError(t, err)
	assert.Equal(t, []string{provider.NameCPU, provider.NameCUDA}, providers)
	assert.NotEmpty(t, env.BuildInfo())
}

func TestBuilderRejectsEmptyName(t *testing.T) {
	newTestEngine(t)

	_, err := Init().WithName("").Commit()
	assert.ErrorContains(t, err, "name is empty")
}

func TestCommitWithoutEngine(t *testing.T) {
	api.Set(nil)
	envMu.Lock()
	currentEnv = nil
	envMu.Unlock()

	_, err := Init().Commit()
	assert.ErrorIs(t, err, api.ErrNotLoaded)
}
