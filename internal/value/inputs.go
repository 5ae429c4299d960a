package value

import (
	"fmt"

	"github.com/onnxgo/ort/internal/api"
)

// Inputs is an ordered, possibly named bundle of values for one session
// run. It type-checks and converts a heterogeneous set of inputs in one
// place: facades of any specialization are borrowed as-is, and raw Go
// slices are converted into bundle-owned tensors.
type Inputs struct {
	names []string
	cores []*Core
	owned []bool
	err   error
}

// NewInputs returns an empty bundle.
func NewInputs() *Inputs {
	return &Inputs{}
}

// Add appends a named value. The bundle borrows it; the caller remains
// responsible for closing it. Duplicate names are rejected at Err time.
func (in *Inputs) Add(name string, v Facade) *Inputs {
	in.append(name, v.coreRef(), false)
	return in
}

// AddPositional appends an unnamed value; the session resolves its name
// from the model's input order.
func (in *Inputs) AddPositional(v Facade) *Inputs {
	in.append("", v.coreRef(), false)
	return in
}

// AddTensor converts a raw (shape, buffer) pair into a bundle-owned tensor
// and appends it under name. The bundle closes owned tensors on Close.
func AddTensor[T Scalar](in *Inputs, name string, shape Shape, data []T) *Inputs {
	t, err := NewTensor(shape, data)
	if err != nil {
		if in.err == nil {
			in.err = fmt.Errorf("input %q: %w", name, err)
		}
		return in
	}
	in.append(name, t.core, true)
	return in
}

func (in *Inputs) append(name string, c *Core, owned bool) {
	if in.err == nil && name != "" {
		for _, existing := range in.names {
			if existing == name {
				in.err = fmt.Errorf("duplicate input name %q", name)
				break
			}
		}
	}
	in.names = append(in.names, name)
	in.cores = append(in.cores, c)
	in.owned = append(in.owned, owned)
}

// Err returns the first error recorded while assembling the bundle.
func (in *Inputs) Err() error { return in.err }

// Len returns the number of bundled values.
func (in *Inputs) Len() int { return len(in.cores) }

// Names returns the bundled names in order; empty entries are positional.
func (in *Inputs) Names() []string {
	return append([]string(nil), in.names...)
}

// Handles returns the native handles in order, for the session run call.
func (in *Inputs) Handles() []api.Value {
	raws := make([]api.Value, len(in.cores))
	for i, c := range in.cores {
		raws[i] = c.Raw()
	}
	return raws
}

// Close releases the bundle-owned values. Borrowed values are untouched.
// Idempotent.
func (in *Inputs) Close() {
	for i, c := range in.cores {
		if in.owned[i] {
			c.Close()
		}
	}
}
