package provider

import (
	"fmt"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/logging"
	"go.uber.org/zap"
)

// State records the outcome of one descriptor in a registration chain.
type State int

const (
	// StateRegistered means the engine accepted the provider.
	StateRegistered State = iota
	// StateSkipped means an earlier descriptor already claimed the name;
	// the first occurrence wins.
	StateSkipped
	// StateUnavailable means the engine build does not include the
	// provider.
	StateUnavailable
	// StateFailed means the engine rejected the registration call.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateSkipped:
		return "skipped"
	case StateUnavailable:
		return "unavailable"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the per-descriptor outcome of RegisterAll.
type Result struct {
	Descriptor Descriptor
	State      State
	Err        error
}

// RegistrationError aborts a chain when a provider with the
// ErrorOnFailure policy cannot be registered.
type RegistrationError struct {
	Provider string
	Err      error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register execution provider %s: %v", e.Provider, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// IsAvailable reports whether the engine build includes the named
// provider.
func IsAvailable(eng api.Engine, name string) (bool, error) {
	avail, st := eng.AvailableProviders()
	if err := api.AsError(eng, st); err != nil {
		return false, fmt.Errorf("query available providers: %w", err)
	}
	for _, a := range avail {
		if a == name {
			return true, nil
		}
	}
	return false, nil
}

// Register binds a single descriptor to the session options, applying its
// failure policy. A silent-fallback failure returns nil.
func Register(eng api.Engine, opts api.SessionOptions, d Descriptor) error {
	res := registerOne(eng, opts, d, nil)
	if res.State == StateRegistered || d.Policy() == SilentFallback {
		return nil
	}
	return &RegistrationError{Provider: d.Name(), Err: res.Err}
}

// RegisterAll binds a chain of descriptors to the session options in
// priority order. Duplicate names are registered once, first occurrence
// wins. Descriptors with SilentFallback that cannot be registered are
// logged and skipped; a failing ErrorOnFailure descriptor aborts the
// chain. The returned results cover every descriptor processed, the
// aborting one included.
func RegisterAll(eng api.Engine, opts api.SessionOptions, descs []Descriptor) ([]Result, error) {
	avail, st := eng.AvailableProviders()
	if err := api.AsError(eng, st); err != nil {
		return nil, fmt.Errorf("query available providers: %w", err)
	}
	availSet := make(map[string]struct{}, len(avail))
	for _, a := range avail {
		availSet[a] = struct{}{}
	}

	results := make([]Result, 0, len(descs))
	claimed := make(map[string]struct{}, len(descs))
	for _, d := range descs {
		if _, dup := claimed[d.Name()]; dup {
			logging.L().Debug("execution provider already claimed, skipping",
				zap.String("provider", d.Name()))
			results = append(results, Result{Descriptor: d, State: StateSkipped})
			continue
		}
		claimed[d.Name()] = struct{}{}

		res := registerOne(eng, opts, d, availSet)
		results = append(results, res)
		if res.State == StateRegistered {
			continue
		}
		if d.Policy() == ErrorOnFailure {
			return results, &RegistrationError{Provider: d.Name(), Err: res.Err}
		}
		logging.L().Warn("execution provider unavailable, falling back",
			zap.String("provider", d.Name()),
			zap.String("state", res.State.String()),
			zap.Error(res.Err))
	}
	return results, nil
}

// registerOne probes availability (when a probe set is supplied) and
// appends the provider to the session options.
func registerOne(eng api.Engine, opts api.SessionOptions, d Descriptor, avail map[string]struct{}) Result {
	if avail != nil {
		if _, ok := avail[d.Name()]; !ok {
			return Result{
				Descriptor: d,
				State:      StateUnavailable,
				Err:        fmt.Errorf("provider %s not present in this engine build", d.Name()),
			}
		}
	}
	keys, vals := d.Options()
	if err := api.AsError(eng, eng.AppendProvider(opts, d.Name(), keys, vals)); err != nil {
		return Result{Descriptor: d, State: StateFailed, Err: err}
	}
	logging.L().Debug("execution provider registered", zap.String("provider", d.Name()))
	return Result{Descriptor: d, State: StateRegistered}
}
