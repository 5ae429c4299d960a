package provider

import (
	"testing"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/enginetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOptions(t *testing.T, eng *enginetest.Engine) api.SessionOptions {
	t.Helper()
	opts, st := eng.CreateSessionOptions()
	require.Equal(t, api.StatusOK, st)
	t.Cleanup(func() { eng.ReleaseSessionOptions(opts) })
	return opts
}

func TestRegisterAllFallsThroughSilently(t *testing.T) {
	eng := enginetest.New()
	eng.Providers = []string{NameCPU, NameCoreML}
	opts := newOptions(t, eng)

	chain := []Descriptor{
		CUDA().MustBuild(),   // not in this build
		CoreML().MustBuild(), // available
		CPU().MustBuild(),    // available
	}
	results, err := RegisterAll(eng, opts, chain)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, StateUnavailable, results[0].State)
	assert.Error(t, results[0].Err)
	assert.Equal(t, StateRegistered, results[1].State)
	assert.Equal(t, StateRegistered, results[2].State)

	// Registration order is chain order, minus the fallen-through provider.
	assert.Equal(t, []string{NameCoreML, NameCPU}, eng.AppendedProviders(opts))
}

func TestRegisterAllAbortsOnStrictFailure(t *testing.T) {
	eng := enginetest.New()
	eng.Providers = []string{NameCPU}
	opts := newOptions(t, eng)

	chain := []Descriptor{
		CUDA().ErrorOnFailure().MustBuild(),
		CPU().MustBuild(),
	}
	results, err := RegisterAll(eng, opts, chain)

	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, NameCUDA, regErr.Provider)

	// The chain stopped before the CPU provider.
	require.Len(t, results, 1)
	assert.Empty(t, eng.AppendedProviders(opts))
}

func TestRegisterAllReportsEngineRejection(t *testing.T) {
	eng := enginetest.New()
	eng.Providers = []string{NameCPU, NameCUDA}
	eng.FailProvider[NameCUDA] = "driver version too old"
	opts := newOptions(t, eng)

	results, err := RegisterAll(eng, opts, []Descriptor{
		CUDA().MustBuild(),
		CPU().MustBuild(),
	})
	require.NoError(t, err)
	assert.Equal(t, StateFailed, results[0].State)
	assert.ErrorContains(t, results[0].Err, "driver version too old")
	assert.Equal(t, []string{NameCPU}, eng.AppendedProviders(opts))
}

func TestRegisterAllDeduplicatesByName(t *testing.T) {
	eng := enginetest.New()
	eng.Providers = []string{NameCPU, NameCUDA}
	opts := newOptions(t, eng)

	first := CUDA().WithDeviceID(0).MustBuild()
	second := CUDA().WithDeviceID(1).MustBuild()
	results, err := RegisterAll(eng, opts, []Descriptor{first, second, CPU().MustBuild()})
	require.NoError(t, err)

	assert.Equal(t, StateRegistered, results[0].State)
	assert.Equal(t, StateSkipped, results[1].State)
	assert.Equal(t, StateRegistered, results[2].State)
	assert.Equal(t, []string{NameCUDA, NameCPU}, eng.AppendedProviders(opts))
}

func TestIsAvailable(t *testing.T) {
	eng := enginetest.New()
	eng.Providers = []string{NameCPU, NameDirectML}

	ok, err := IsAvailable(eng, NameDirectML)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsAvailable(eng, NameTensorRT)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterSingleHonorsPolicy(t *testing.T) {
	eng := enginetest.New()
	eng.Providers = []string{NameCPU}
	eng.FailProvider[NameCUDA] = "no device"
	opts := newOptions(t, eng)

	// Silent fallback swallows the failure.
	require.NoError(t, Register(eng, opts, CUDA().MustBuild()))

	// Strict policy surfaces it.
	var regErr *RegistrationError
	err := Register(eng, opts, CUDA().ErrorOnFailure().MustBuild())
	require.ErrorAs(t, err, &regErr)
}
