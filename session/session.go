// Copyright 2025 The onnxgo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package session provides the public API for loading the native engine,
// configuring the process-wide environment, and committing and running
// inference sessions.
//
// Example:
//
//	if err := session.LoadDefault(); err != nil {
//		log.Fatal(err)
//	}
//	s, err := session.NewBuilder().
//		WithIntraOpThreads(4).
//		CommitFromFile("model.onnx")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	in := value.NewInputs()
//	value.AddTensor(in, "input", value.Shape{1, 3}, []float32{1, 2, 3})
//	out, err := s.Run(in)
package session

import (
	"go.uber.org/zap"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/ffi"
	"github.com/onnxgo/ort/internal/logging"
	"github.com/onnxgo/ort/internal/session"
)

// LoggingLevel is the engine's logging verbosity.
type LoggingLevel = api.LoggingLevel

// Engine logging levels, most to least verbose.
const (
	LogVerbose LoggingLevel = api.LogVerbose
	LogInfo    LoggingLevel = api.LogInfo
	LogWarning LoggingLevel = api.LogWarning
	LogError   LoggingLevel = api.LogError
	LogFatal   LoggingLevel = api.LogFatal
)

// Graph optimization levels.
const (
	OptDisable  = session.OptDisable
	OptBasic    = session.OptBasic
	OptExtended = session.OptExtended
	OptAll      = session.OptAll
)

// Environment is a committed engine environment.
type Environment = session.Environment

// EnvBuilder accumulates environment configuration.
type EnvBuilder = session.EnvBuilder

// Builder accumulates session configuration.
type Builder = session.Builder

// Session is a committed, runnable model.
type Session = session.Session

// Outputs is the owned result set of one run.
type Outputs = session.Outputs

// PortInfo is the declared metadata of one model input or output.
type PortInfo = session.PortInfo

// ErrNotLoaded is returned when no engine library has been loaded.
var ErrNotLoaded = api.ErrNotLoaded

// Load opens the engine shared library at path and makes it the process
// engine. It must be called (or LoadDefault) before any other operation.
func Load(path string) error {
	rt, err := ffi.Load(path)
	if err != nil {
		return err
	}
	api.Set(rt)
	return nil
}

// LoadDefault loads the engine library named by the ORT_DYLIB_PATH
// environment variable, falling back to the platform default name.
func LoadDefault() error {
	rt, err := ffi.LoadDefault()
	if err != nil {
		return err
	}
	api.Set(rt)
	return nil
}

// SetLogger installs the logger used across the library. Passing nil
// restores the nop default.
func SetLogger(l *zap.Logger) { logging.SetLogger(l) }

// Init starts an environment builder with the library defaults.
func Init() *EnvBuilder { return session.Init() }

// Default returns the process-wide environment, committing one with the
// library defaults on first access.
func Default() (*Environment, error) { return session.Default() }

// NewBuilder starts a session builder with the engine defaults.
func NewBuilder() *Builder { return session.NewBuilder() }
