package api

import (
	"errors"
	"sync"
)

// ErrNotLoaded is returned when a call needs the native engine but no
// implementation has been installed yet (neither a loaded shared library
// nor a test double).
var ErrNotLoaded = errors.New("ort: native engine not loaded")

var (
	activeMu sync.RWMutex
	active   Engine
)

// Set installs the process-wide engine implementation. Installing replaces
// any previous implementation for subsequent calls; handles created through
// the old one remain bound to it.
func Set(eng Engine) {
	activeMu.Lock()
	defer activeMu.Unlock()
	active = eng
}

// Active returns the installed engine implementation.
func Active() (Engine, error) {
	activeMu.RLock()
	defer activeMu.RUnlock()
	if active == nil {
		return nil, ErrNotLoaded
	}
	return active, nil
}
