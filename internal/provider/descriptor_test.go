package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBuildsDescriptor(t *testing.T) {
	d, err := CUDA().
		WithDeviceID(1).
		With("arena_extend_strategy", "kNextPowerOfTwo").
		ErrorOnFailure().
		Build()
	require.NoError(t, err)

	assert.Equal(t, NameCUDA, d.Name())
	assert.Equal(t, ErrorOnFailure, d.Policy())

	keys, vals := d.Options()
	require.Equal(t, []string{"device_id", "arena_extend_strategy"}, keys)
	require.Equal(t, []string{"1", "kNextPowerOfTwo"}, vals)
}

func TestBuilderDefaultsToSilentFallback(t *testing.T) {
	d, err := CPU().Build()
	require.NoError(t, err)
	assert.Equal(t, SilentFallback, d.Policy())
}

func TestBuilderRejectsDuplicateOptions(t *testing.T) {
	_, err := TensorRT().
		WithDeviceID(0).
		WithDeviceID(1).
		Build()
	assert.ErrorContains(t, err, "duplicate option")
}

func TestBuilderRejectsEmptyKeyAndName(t *testing.T) {
	_, err := CoreML().With("", "x").Build()
	assert.ErrorContains(t, err, "empty option key")

	_, err = Custom("").Build()
	assert.ErrorContains(t, err, "name is empty")
}

func TestDescriptorOptionsAreCopies(t *testing.T) {
	d, err := DirectML().WithDeviceID(0).Build()
	require.NoError(t, err)

	keys, _ := d.Options()
	keys[0] = "mutated"
	fresh, _ := d.Options()
	assert.Equal(t, "device_id", fresh[0])
}

func TestMustBuildPanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { Custom("").MustBuild() })
	assert.NotPanics(t, func() { CANN().MustBuild() })
}
