// Package session manages the process-wide engine environment and the
// sessions committed against it.
package session

import (
	"fmt"
	"sync"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/handle"
	"github.com/onnxgo/ort/internal/logging"
	"github.com/onnxgo/ort/internal/provider"
	"go.uber.org/zap"
)

// Environment is a committed engine environment: the root object every
// session is created against. It carries the default execution provider
// chain new sessions start from.
type Environment struct {
	h        *handle.Ref[api.Env]
	eng      api.Engine
	name     string
	level    api.LoggingLevel
	defaults []provider.Descriptor
}

// The process-wide environment slot. Committing a new environment
// replaces the slot for future sessions only: sessions already created
// keep the environment they were built against, which is why a replaced
// environment is not released here.
var (
	envMu      sync.Mutex
	currentEnv *Environment
)

// EnvBuilder accumulates environment configuration fluently and freezes
// it with Commit.
type EnvBuilder struct {
	name     string
	level    api.LoggingLevel
	defaults []provider.Descriptor
	err      error
}

// Init starts an environment builder with the library defaults: warning
// log level, no default execution providers.
func Init() *EnvBuilder {
	return &EnvBuilder{name: "ort", level: api.LogWarning}
}

// WithName sets the environment's log identifier.
func (b *EnvBuilder) WithName(name string) *EnvBuilder {
	if name == "" && b.err == nil {
		b.err = fmt.Errorf("environment name is empty")
	}
	b.name = name
	return b
}

// WithLogLevel sets the engine's logging verbosity.
func (b *EnvBuilder) WithLogLevel(level api.LoggingLevel) *EnvBuilder {
	b.level = level
	return b
}

// WithLogger installs the Go logger used across the library. Passing nil
// restores the nop default.
func (b *EnvBuilder) WithLogger(l *zap.Logger) *EnvBuilder {
	logging.SetLogger(l)
	return b
}

// WithExecutionProviders sets the default provider chain inherited by
// every session built against the committed environment. Per-session
// providers are appended after these.
func (b *EnvBuilder) WithExecutionProviders(descs ...provider.Descriptor) *EnvBuilder {
	b.defaults = append(b.defaults, descs...)
	return b
}

// Commit creates the native environment and installs it as the
// process-wide environment. Sessions created before the commit keep the
// environment they were built against.
func (b *EnvBuilder) Commit() (*Environment, error) {
	if b.err != nil {
		return nil, b.err
	}
	eng, err := api.Active()
	if err != nil {
		return nil, err
	}
	raw, st := eng.CreateEnv(b.level, b.name)
	if err := api.AsError(eng, st); err != nil {
		return nil, fmt.Errorf("session: create environment: %w", err)
	}
	env := &Environment{
		h:        handle.Own(raw, eng.ReleaseEnv),
		eng:      eng,
		name:     b.name,
		level:    b.level,
		defaults: append([]provider.Descriptor(nil), b.defaults...),
	}

	envMu.Lock()
	replaced := currentEnv
	currentEnv = env
	envMu.Unlock()

	if replaced != nil {
		logging.L().Info("environment replaced for future sessions",
			zap.String("name", b.name))
	} else {
		logging.L().Debug("environment committed", zap.String("name", b.name))
	}
	return env, nil
}

// Default returns the process-wide environment, committing one with the
// library defaults on first access.
func Default() (*Environment, error) {
	envMu.Lock()
	env := currentEnv
	envMu.Unlock()
	if env != nil {
		return env, nil
	}
	return Init().Commit()
}

// Name returns the environment's log identifier.
func (e *Environment) Name() string { return e.name }

// Defaults returns the default execution provider chain. The returned
// slice is a copy.
func (e *Environment) Defaults() []provider.Descriptor {
	return append([]provider.Descriptor(nil), e.defaults...)
}

// BuildInfo returns the engine's build description string.
func (e *Environment) BuildInfo() string { return e.eng.BuildInfo() }

// AvailableProviders returns the execution providers compiled into the
// engine build.
func (e *Environment) AvailableProviders() ([]string, error) {
	names, st := e.eng.AvailableProviders()
	if err := api.AsError(e.eng, st); err != nil {
		return nil, fmt.Errorf("session: query providers: %w", err)
	}
	return names, nil
}

// Close releases the native environment. Only call it on environments
// that no longer back any session; the process-wide slot is never closed
// by the library.
func (e *Environment) Close() { e.h.Close() }
