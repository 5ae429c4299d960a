// Copyright 2025 The onnxgo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package provider provides the public API for execution provider
// configuration. Descriptors are built fluently and validated at Build;
// chains of descriptors are registered in priority order, with
// per-provider control over whether a failure falls through to the next
// provider or aborts.
//
// Example:
//
//	cuda := provider.CUDA().WithDeviceID(0).MustBuild()
//	cpu := provider.CPU().MustBuild()
//	s, err := session.NewBuilder().
//		WithExecutionProviders(cuda, cpu).
//		CommitFromFile("model.onnx")
package provider

import "github.com/onnxgo/ort/internal/provider"

// Canonical provider names as the engine reports them.
const (
	NameCPU      = provider.NameCPU
	NameCUDA     = provider.NameCUDA
	NameTensorRT = provider.NameTensorRT
	NameCoreML   = provider.NameCoreML
	NameDirectML = provider.NameDirectML
	NameCANN     = provider.NameCANN
)

// FailurePolicy selects what happens when a descriptor cannot be
// registered.
type FailurePolicy = provider.FailurePolicy

// Failure policies.
const (
	SilentFallback FailurePolicy = provider.SilentFallback
	ErrorOnFailure FailurePolicy = provider.ErrorOnFailure
)

// Descriptor is a validated, immutable request to register one execution
// provider.
type Descriptor = provider.Descriptor

// Builder accumulates provider options fluently.
type Builder = provider.Builder

// State records the outcome of one descriptor in a registration chain.
type State = provider.State

// Registration outcomes.
const (
	StateRegistered  State = provider.StateRegistered
	StateSkipped     State = provider.StateSkipped
	StateUnavailable State = provider.StateUnavailable
	StateFailed      State = provider.StateFailed
)

// Result is the per-descriptor outcome of a registration chain.
type Result = provider.Result

// RegistrationError aborts a chain when an ErrorOnFailure provider cannot
// be registered.
type RegistrationError = provider.RegistrationError

// Custom starts a builder for a provider the library has no shorthand for.
func Custom(name string) *Builder { return provider.Custom(name) }

// CPU starts a builder for the CPU provider.
func CPU() *Builder { return provider.CPU() }

// CUDA starts a builder for the CUDA provider.
func CUDA() *Builder { return provider.CUDA() }

// TensorRT starts a builder for the TensorRT provider.
func TensorRT() *Builder { return provider.TensorRT() }

// CoreML starts a builder for the CoreML provider.
func CoreML() *Builder { return provider.CoreML() }

// DirectML starts a builder for the DirectML provider.
func DirectML() *Builder { return provider.DirectML() }

// CANN starts a builder for the CANN provider.
func CANN() *Builder { return provider.CANN() }
