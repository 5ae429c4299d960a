package session

import (
	"fmt"

	"github.com/onnxgo/ort/internal/api"
	"github.com/onnxgo/ort/internal/handle"
	"github.com/onnxgo/ort/internal/logging"
	"github.com/onnxgo/ort/internal/modelfile"
	"github.com/onnxgo/ort/internal/provider"
	"go.uber.org/zap"
)

// Graph optimization levels, pass-throughs to the engine.
const (
	OptDisable  = 0
	OptBasic    = 1
	OptExtended = 2
	OptAll      = 99
)

// Builder accumulates session configuration fluently. Commit freezes the
// configuration into a runnable session and consumes the builder; a
// consumed builder rejects further commits.
type Builder struct {
	intraOp   int
	interOp   int
	optLevel  int
	hasOpt    bool
	memPat    *bool
	arena     *bool
	providers []provider.Descriptor
	committed bool
	err       error
}

// NewBuilder starts a session builder with the engine defaults.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithIntraOpThreads sets the thread count for intra-operator parallelism.
func (b *Builder) WithIntraOpThreads(n int) *Builder {
	if n < 0 && b.err == nil {
		b.err = fmt.Errorf("intra-op threads must be non-negative, got %d", n)
	}
	b.intraOp = n
	return b
}

// WithInterOpThreads sets the thread count for inter-operator parallelism.
func (b *Builder) WithInterOpThreads(n int) *Builder {
	if n < 0 && b.err == nil {
		b.err = fmt.Errorf("inter-op threads must be non-negative, got %d", n)
	}
	b.interOp = n
	return b
}

// WithOptimizationLevel sets the graph optimization level.
func (b *Builder) WithOptimizationLevel(level int) *Builder {
	b.optLevel = level
	b.hasOpt = true
	return b
}

// WithMemoryPattern toggles the engine's memory pattern optimization.
func (b *Builder) WithMemoryPattern(on bool) *Builder {
	b.memPat = &on
	return b
}

// WithCPUMemArena toggles the CPU memory arena.
func (b *Builder) WithCPUMemArena(on bool) *Builder {
	b.arena = &on
	return b
}

// WithExecutionProviders appends providers for this session. They are
// registered after the environment's default chain.
func (b *Builder) WithExecutionProviders(descs ...provider.Descriptor) *Builder {
	b.providers = append(b.providers, descs...)
	return b
}

// CommitFromFile freezes the configuration into a session over the model
// at path. The builder is consumed.
func (b *Builder) CommitFromFile(path string) (*Session, error) {
	return b.commit(func(eng api.Engine, env api.Env, opts api.SessionOptions) (api.Session, api.Status) {
		return eng.CreateSession(env, path, opts)
	}, path)
}

// CommitFromBytes freezes the configuration into a session over an
// in-memory model. The builder is consumed.
func (b *Builder) CommitFromBytes(model []byte) (*Session, error) {
	return b.commit(func(eng api.Engine, env api.Env, opts api.SessionOptions) (api.Session, api.Status) {
		return eng.CreateSessionFromBytes(env, model, opts)
	}, "<bytes>")
}

// CommitFromMappedFile memory-maps the model at path and commits a session
// over the mapped bytes, avoiding a heap copy of the model. The mapping is
// held by the session and released on Session.Close. The builder is
// consumed.
func (b *Builder) CommitFromMappedFile(path string) (*Session, error) {
	m, err := modelfile.Open(path)
	if err != nil {
		b.committed = true
		return nil, fmt.Errorf("session: %w", err)
	}
	s, err := b.commit(func(eng api.Engine, env api.Env, opts api.SessionOptions) (api.Session, api.Status) {
		return eng.CreateSessionFromBytes(env, m.Bytes(), opts)
	}, path)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	s.mapped = m
	return s, nil
}

func (b *Builder) commit(create func(api.Engine, api.Env, api.SessionOptions) (api.Session, api.Status), source string) (*Session, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.committed {
		return nil, fmt.Errorf("session: builder already committed")
	}
	b.committed = true

	env, err := Default()
	if err != nil {
		return nil, err
	}
	eng := env.eng

	raw, st := eng.CreateSessionOptions()
	if err := api.AsError(eng, st); err != nil {
		return nil, fmt.Errorf("session: create options: %w", err)
	}
	opts := handle.Own(raw, eng.ReleaseSessionOptions)
	defer opts.Close()

	if err := b.applyOptions(eng, raw); err != nil {
		return nil, err
	}

	// Environment defaults first, session providers after: the default
	// chain keeps priority, per-session additions extend it.
	chain := append(env.Defaults(), b.providers...)
	if _, err := provider.RegisterAll(eng, raw, chain); err != nil {
		return nil, err
	}

	sraw, st := create(eng, env.h.Raw(), raw)
	if err := api.AsError(eng, st); err != nil {
		return nil, fmt.Errorf("session: commit %s: %w", source, err)
	}
	s := &Session{
		h:   handle.Own(sraw, eng.ReleaseSession),
		eng: eng,
		env: env,
	}
	if err := s.loadNames(); err != nil {
		s.Close()
		return nil, err
	}
	logging.L().Debug("session committed",
		zap.String("model", source),
		zap.Int("inputs", len(s.inputNames)),
		zap.Int("outputs", len(s.outputNames)))
	return s, nil
}

func (b *Builder) applyOptions(eng api.Engine, opts api.SessionOptions) error {
	if b.intraOp > 0 {
		if err := api.AsError(eng, eng.SetIntraOpThreads(opts, b.intraOp)); err != nil {
			return fmt.Errorf("session: intra-op threads: %w", err)
		}
	}
	if b.interOp > 0 {
		if err := api.AsError(eng, eng.SetInterOpThreads(opts, b.interOp)); err != nil {
			return fmt.Errorf("session: inter-op threads: %w", err)
		}
	}
	if b.hasOpt {
		if err := api.AsError(eng, eng.SetGraphOptimization(opts, b.optLevel)); err != nil {
			return fmt.Errorf("session: optimization level: %w", err)
		}
	}
	if b.memPat != nil {
		if err := api.AsError(eng, eng.SetMemoryPattern(opts, *b.memPat)); err != nil {
			return fmt.Errorf("session: memory pattern: %w", err)
		}
	}
	if b.arena != nil {
		if err := api.AsError(eng, eng.SetCPUMemArena(opts, *b.arena)); err != nil {
			return fmt.Errorf("session: cpu arena: %w", err)
		}
	}
	return nil
}
