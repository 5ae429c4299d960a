// Copyright 2025 The onnxgo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package value_test

import (
	"errors"
	"testing"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/enginetest"
	"github.com/onnxgo/ort/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *enginetest.Engine {
	t.Helper()
	eng := enginetest.New()
	api.Set(eng)
	return eng
}

// The round trip a heterogeneous store goes through: specialize, erase,
// recover with a checked downcast.
func TestEraseAndRecover(t *testing.T) {
	eng := newTestEngine(t)

	tensor, err := value.NewTensor(value.Shape{2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	defer tensor.Close()

	erased := tensor.Erase()
	assert.Equal(t, api.KindTensor, erased.Kind())

	// Wrong element type: the downcast reports, the value stays usable.
	_, err = value.DowncastValue[int32](erased)
	var mismatch *value.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "tensor<int32>", mismatch.Want)
	assert.Equal(t, "tensor<float32>", mismatch.Got)

	back, err := value.DowncastValue[float32](erased)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, back.Extract())

	shape, err := back.Shape()
	require.NoError(t, err)
	assert.Equal(t, value.Shape{2, 2}, shape)

	// Facades share one native value.
	assert.Equal(t, 1, eng.LiveValues())
}

func TestTryExtractValue(t *testing.T) {
	newTestEngine(t)

	tensor, err := value.NewTensor(value.Shape{3}, []int64{10, 20, 30})
	require.NoError(t, err)
	defer tensor.Close()

	got, err := value.TryExtractValue[int64](tensor.Erase())
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, got)

	_, err = value.TryExtractValue[float64](tensor.Erase())
	var mismatch *value.TypeMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestSequenceOfMaps(t *testing.T) {
	newTestEngine(t)

	probs, err := value.NewMap([]int64{0, 1}, []float32{0.3, 0.7})
	require.NoError(t, err)
	defer probs.Close()

	seq, err := value.NewSequence(probs)
	require.NoError(t, err)
	defer seq.Close()

	n, err := seq.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	member, err := seq.At(0)
	require.NoError(t, err)
	defer member.Close()

	dyn, err := member.AsMap()
	require.NoError(t, err)

	m, err := value.DowncastMap[int64, float32](dyn)
	require.NoError(t, err)

	entries, err := m.Extract()
	require.NoError(t, err)
	assert.Equal(t, map[int64]float32{0: 0.3, 1: 0.7}, entries)
}

func TestViewDiscipline(t *testing.T) {
	newTestEngine(t)

	tensor, err := value.NewTensor(value.Shape{2}, []float32{1, 2})
	require.NoError(t, err)
	defer tensor.Close()

	mut, err := tensor.ViewMut()
	require.NoError(t, err)
	mut.Set(42, 0)

	_, err = tensor.View()
	assert.True(t, errors.Is(err, value.ErrViewHeld))

	mut.Close()

	view, err := tensor.View()
	require.NoError(t, err)
	defer view.Close()
	assert.Equal(t, float32(42), view.At(0))
}
