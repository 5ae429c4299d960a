package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/enginetest"
	"github.com/onnxgo/ort/internal/memory"
	"github.com/onnxgo/ort/internal/provider"
	"github.com/onnxgo/ort/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitFromFileAndRun(t *testing.T) {
	newTestEngine(t)

	s, err := NewBuilder().
		WithIntraOpThreads(2).
		WithOptimizationLevel(OptAll).
		WithMemoryPattern(true).
		CommitFromFile("model.onnx")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{"input"}, s.InputNames())
	assert.Equal(t, []string{"output"}, s.OutputNames())

	in := value.NewInputs()
	value.AddTensor(in, "input", value.Shape{2, 2}, []float32{1, 2, 3, 4})
	defer in.Close()

	out, err := s.Run(in)
	require.NoError(t, err)
	defer out.Close()

	require.Equal(t, 1, out.Len())
	v, ok := out.Get("output")
	require.True(t, ok)

	got, err := value.TryExtractValue[float32](v)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, got)
}

func TestRunResolvesPositionalInputs(t *testing.T) {
	eng := newTestEngine(t)
	eng.ModelInputs = []string{"a", "b"}
	eng.ModelOutputs = []string{"sum"}

	s, err := NewBuilder().CommitFromBytes([]byte{1, 2, 3})
	require.NoError(t, err)
	defer s.Close()

	ta, err := value.NewTensor(value.Shape{1}, []float32{1})
	require.NoError(t, err)
	defer ta.Close()
	tb, err := value.NewTensor(value.Shape{1}, []float32{2})
	require.NoError(t, err)
	defer tb.Close()

	in := value.NewInputs().AddPositional(ta).AddPositional(tb)
	out, err := s.Run(in)
	require.NoError(t, err)
	out.Close()
}

func TestRunRejectsUnknownNames(t *testing.T) {
	newTestEngine(t)

	s, err := NewBuilder().CommitFromFile("model.onnx")
	require.NoError(t, err)
	defer s.Close()

	tensor, err := value.NewTensor(value.Shape{1}, []float32{1})
	require.NoError(t, err)
	defer tensor.Close()

	_, err = s.Run(value.NewInputs().Add("nonexistent", tensor))
	assert.ErrorContains(t, err, `no input "nonexistent"`)

	_, err = s.RunSelected(value.NewInputs().Add("input", tensor), []string{"nope"})
	assert.ErrorContains(t, err, `no output "nope"`)
}

func TestRunSurfacesBundleErrors(t *testing.T) {
	newTestEngine(t)

	s, err := NewBuilder().CommitFromFile("model.onnx")
	require.NoError(t, err)
	defer s.Close()

	in := value.NewInputs()
	value.AddTensor(in, "input", value.Shape{3}, []float32{1}) // length mismatch
	_, err = s.Run(in)
	assert.Error(t, err)
}

func TestBuilderConsumedOnce(t *testing.T) {
	newTestEngine(t)

	b := NewBuilder()
	s, err := b.CommitFromFile("model.onnx")
	require.NoError(t, err)
	defer s.Close()

	_, err = b.CommitFromFile("model.onnx")
	assert.ErrorContains(t, err, "already committed")
}

func TestBuilderRejectsNegativeThreads(t *testing.T) {
	newTestEngine(t)

	_, err := NewBuilder().WithIntraOpThreads(-1).CommitFromFile("model.onnx")
	assert.ErrorContains(t, err, "non-negative")
}

func TestCommitRegistersProviderChain(t *testing.T) {
	eng := newTestEngine(t)
	eng.Providers = []string{provider.NameCPU}

	// CUDA is absent from the build: silent fallback lets the commit
	// proceed on CPU.
	_, err := Init().
		WithExecutionProviders(provider.CUDA().MustBuild()).
		Commit()
	require.NoError(t, err)

	s, err := NewBuilder().
		WithExecutionProviders(provider.CPU().MustBuild()).
		CommitFromFile("model.onnx")
	require.NoError(t, err)
	s.Close()

	// A strict provider aborts the commit instead.
	_, err = Init().
		WithExecutionProviders(provider.CUDA().ErrorOnFailure().MustBuild()).
		Commit()
	require.NoError(t, err)

	var regErr *provider.RegistrationError
	_, err = NewBuilder().CommitFromFile("model.onnx")
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, provider.NameCUDA, regErr.Provider)
}

func TestOutputsTakeTransfersOwnership(t *testing.T) {
	eng := newTestEngine(t)

	s, err := NewBuilder().CommitFromFile("model.onnx")
	require.NoError(t, err)
	defer s.Close()

	in := value.NewInputs()
	value.AddTensor(in, "input", value.Shape{1}, []float32{7})
	defer in.Close()

	out, err := s.Run(in)
	require.NoError(t, err)

	kept := out.Take(0)
	out.Close()

	// The taken value survives the result set.
	got, err := value.TryExtractValue[float32](kept)
	require.NoError(t, err)
	assert.Equal(t, []float32{7}, got)

	kept.Close()
	in.Close()
	assert.Equal(t, 0, eng.LiveValues())
}

func TestSessionAllocator(t *testing.T) {
	newTestEngine(t)

	s, err := NewBuilder().CommitFromFile("model.onnx")
	require.NoError(t, err)
	defer s.Close()

	info, err := memory.NewCPUInfo()
	require.NoError(t, err)
	defer info.Close()

	alloc, err := s.Allocator(info)
	require.NoError(t, err)
	defer alloc.Close()

	tensor, err := value.NewTensorAllocated[float32](alloc, value.Shape{4})
	require.NoError(t, err)
	tensor.Close()
}

func TestPortIntrospection(t *testing.T) {
	eng := newTestEngine(t)
	eng.ModelInputs = []string{"tokens"}
	eng.ModelOutputs = []string{"logits"}
	eng.ModelInputInfo = map[string]enginetest.PortInfo{
		"tokens": {Elem: api.ElementInt64, Shape: []int64{1, -1}},
	}

	s, err := NewBuilder().CommitFromFile("model.onnx")
	require.NoError(t, err)
	defer s.Close()

	in, err := s.InputInfo(0)
	require.NoError(t, err)
	assert.Equal(t, "tokens", in.Name)
	assert.Equal(t, value.Int64, in.Type)
	assert.Equal(t, value.Shape{1, -1}, in.Shape)

	// Unconfigured ports report float32 with one dynamic dimension.
	out, err := s.OutputInfo(0)
	require.NoError(t, err)
	assert.Equal(t, "logits", out.Name)
	assert.Equal(t, value.Float32, out.Type)
	assert.Equal(t, value.Shape{-1}, out.Shape)

	_, err = s.InputInfo(1)
	assert.ErrorContains(t, err, "out of range")
}

func TestCommitFromMappedFile(t *testing.T) {
	newTestEngine(t)

	path := filepath.Join(t.TempDir(), "model.onnx")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))

	s, err := NewBuilder().CommitFromMappedFile(path)
	require.NoError(t, err)

	in := value.NewInputs()
	value.AddTensor(in, "input", value.Shape{1}, []float32{5})
	defer in.Close()

	out, err := s.Run(in)
	require.NoError(t, err)
	out.Close()

	s.Close()
	s.Close() // mapping release is idempotent too
}

func TestCommitFromMappedFileMissing(t *testing.T) {
	newTestEngine(t)

	b := NewBuilder()
	_, err := b.CommitFromMappedFile(filepath.Join(t.TempDir(), "missing.onnx"))
	assert.Error(t, err)

	// The failed commit still consumes the builder.
	_, err = b.CommitFromBytes([]byte{1})
	assert.ErrorContains(t, err, "already committed")
}

func TestCommitFailsOnMissingModel(t *testing.T) {
	newTestEngine(t)

	_, err := NewBuilder().CommitFromFile("")
	assert.Error(t, err)

	_, err = NewBuilder().CommitFromBytes(nil)
	assert.Error(t, err)
}
