// Package provider describes execution providers and registers them
// against session options, honoring per-provider failure policies.
package provider

import (
	"fmt"
	"strconv"
)

// Canonical provider names as the engine reports them.
const (
	NameCPU      = "CPUExecutionProvider"
	NameCUDA     = "CUDAExecutionProvider"
	NameTensorRT = "TensorrtExecutionProvider"
	NameCoreML   = "CoreMLExecutionProvider"
	NameDirectML = "DmlExecutionProvider"
	NameCANN     = "CANNExecutionProvider"
)

// FailurePolicy selects what happens when a descriptor cannot be
// registered: fall through to the next provider in the chain, or abort.
type FailurePolicy int

const (
	// SilentFallback skips an unavailable or failing provider and lets the
	// chain continue. The skip is logged, never surfaced as an error.
	SilentFallback FailurePolicy = iota
	// ErrorOnFailure aborts registration with a RegistrationError instead
	// of falling through.
	ErrorOnFailure
)

func (p FailurePolicy) String() string {
	switch p {
	case SilentFallback:
		return "silent-fallback"
	case ErrorOnFailure:
		return "error-on-failure"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// Descriptor is a validated, immutable request to register one execution
// provider. Build one through a Builder.
type Descriptor struct {
	name   string
	keys   []string
	vals   []string
	policy FailurePolicy
}

// Name returns the canonical provider name.
func (d Descriptor) Name() string { return d.name }

// Policy returns the descriptor's failure policy.
func (d Descriptor) Policy() FailurePolicy { return d.policy }

// Options returns the provider options as insertion-ordered key/value
// slices. The returned slices are copies.
func (d Descriptor) Options() (keys, vals []string) {
	return append([]string(nil), d.keys...), append([]string(nil), d.vals...)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s[%s]", d.name, d.policy)
}

// Builder accumulates provider options fluently. Option values are not
// validated until Build; the first recorded error wins and is reported
// there.
type Builder struct {
	name   string
	keys   []string
	vals   []string
	policy FailurePolicy
	err    error
}

// Custom starts a builder for a provider the library has no shorthand
// for; name must be the engine's canonical provider name.
func Custom(name string) *Builder {
	return &Builder{name: name}
}

// CPU starts a builder for the CPU provider.
func CPU() *Builder { return Custom(NameCPU) }

// CUDA starts a builder for the CUDA provider.
func CUDA() *Builder { return Custom(NameCUDA) }

// TensorRT starts a builder for the TensorRT provider.
func TensorRT() *Builder { return Custom(NameTensorRT) }

// CoreML starts a builder for the CoreML provider.
func CoreML() *Builder { return Custom(NameCoreML) }

// DirectML starts a builder for the DirectML provider.
func DirectML() *Builder { return Custom(NameDirectML) }

// CANN starts a builder for the CANN provider.
func CANN() *Builder { return Custom(NameCANN) }

// With records one provider option.
func (b *Builder) With(key, value string) *Builder {
	if key == "" && b.err == nil {
		b.err = fmt.Errorf("provider %s: empty option key", b.name)
	}
	b.keys = append(b.keys, key)
	b.vals = append(b.vals, value)
	return b
}

// WithDeviceID selects the device the provider binds to.
func (b *Builder) WithDeviceID(id int) *Builder {
	return b.With("device_id", strconv.Itoa(id))
}

// ErrorOnFailure makes a registration failure abort the chain instead of
// falling through.
func (b *Builder) ErrorOnFailure() *Builder {
	b.policy = ErrorOnFailure
	return b
}

// Build validates the accumulated configuration and freezes it into a
// Descriptor.
func (b *Builder) Build() (Descriptor, error) {
	if b.err != nil {
		return Descriptor{}, b.err
	}
	if b.name == "" {
		return Descriptor{}, fmt.Errorf("provider name is empty")
	}
	seen := make(map[string]struct{}, len(b.keys))
	for _, k := range b.keys {
		if _, dup := seen[k]; dup {
			return Descriptor{}, fmt.Errorf("provider %s: duplicate option %q", b.name, k)
		}
		seen[k] = struct{}{}
	}
	return Descriptor{
		name:   b.name,
		keys:   append([]string(nil), b.keys...),
		vals:   append([]string(nil), b.vals...),
		policy: b.policy,
	}, nil
}

// MustBuild is Build for statically known configurations; it panics on a
// validation error.
func (b *Builder) MustBuild() Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
