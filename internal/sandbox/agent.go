// Package sandbox runs untrusted player agents compiled to WebAssembly.
//
// Each agent gets its own wazero runtime. Every Decide call instantiates a
// fresh module instance, copies the board snapshot into guest memory, calls
// make_move and throws the instance away, so nothing a guest does survives
// the call and no guest memory is shared with the host.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

const (
	exportMemory   = "memory"
	exportAlloc    = "alloc"
	exportMakeMove = "make_move"
	startFunction  = "_initialize"
)

var (
	// ErrAgentFault marks anything that went wrong inside a Decide call.
	ErrAgentFault = errors.New("agent fault")
	// ErrLoad marks an artifact that could not be turned into an agent.
	ErrLoad = errors.New("agent failed to load")
)

// Limits bound a single Decide call.
type Limits struct {
	Timeout     time.Duration
	MemoryPages uint32 // 64 KiB each
}

var DefaultLimits = Limits{Timeout: 2 * time.Second, MemoryPages: 256}

// WithDefaults fills in DefaultLimits for any unset or non-positive bound.
// A guest is never run without a time limit.
func (l Limits) WithDefaults() Limits {
	if l.Timeout <= 0 {
		l.Timeout = DefaultLimits.Timeout
	}
	if l.MemoryPages == 0 {
		l.MemoryPages = DefaultLimits.MemoryPages
	}
	return l
}

// FaultError is returned by Decide. It matches ErrAgentFault with errors.Is.
type FaultError struct {
	Agent string
	Op    string
	Err   error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("agent %q: %s: %v", e.Agent, e.Op, e.Err)
}

func (e *FaultError) Unwrap() []error {
	return []error{ErrAgentFault, e.Err}
}

type Agent struct {
	name     string
	limits   Limits
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	logger   *zap.Logger
}

type Option func(*options)

type options struct {
	cache  wazero.CompilationCache
	logger *zap.Logger
}

// WithCompilationCache shares compiled code between runtimes loading the same
// artifact.
func WithCompilationCache(cache wazero.CompilationCache) Option {
	return func(o *options) { o.cache = cache }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Load compiles wasm into a new isolated runtime and checks it against the
// calling convention by instantiating it once. Any error here means the
// match cannot start.
func Load(ctx context.Context, name string, wasm []byte, limits Limits, opts ...Option) (*Agent, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	limits = limits.WithDefaults()

	cfg := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true).
		WithMemoryLimitPages(limits.MemoryPages)
	if o.cache != nil {
		cfg = cfg.WithCompilationCache(o.cache)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: %s: wasi: %v", ErrLoad, name, err)
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: %s: compile: %v", ErrLoad, name, err)
	}
	if err := checkExports(compiled); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, name, err)
	}

	a := &Agent{
		name:     name,
		limits:   limits,
		runtime:  rt,
		compiled: compiled,
		logger:   o.logger.With(zap.String("agent", name)),
	}

	mod, err := rt.InstantiateModule(ctx, compiled, a.moduleConfig())
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: %s: instantiate: %v", ErrLoad, name, err)
	}
	mod.Close(ctx)

	a.logger.Debug("agent loaded", zap.Int("bytes", len(wasm)), zap.Uint32("memory_pages", limits.MemoryPages))
	return a, nil
}

// Validate reports whether wasm would load as an agent.
func Validate(ctx context.Context, wasm []byte, limits Limits) error {
	a, err := Load(ctx, "validate", wasm, limits)
	if err != nil {
		return err
	}
	return a.Close(ctx)
}

func checkExports(compiled wazero.CompiledModule) error {
	if _, ok := compiled.ExportedMemories()[exportMemory]; !ok {
		return fmt.Errorf("missing export %q", exportMemory)
	}
	fns := compiled.ExportedFunctions()
	want := map[string][]api.ValueType{
		exportAlloc:    {api.ValueTypeI32},
		exportMakeMove: {api.ValueTypeI32, api.ValueTypeI32},
	}
	for name, params := range want {
		def, ok := fns[name]
		if !ok {
			return fmt.Errorf("missing export %q", name)
		}
		if !sameTypes(def.ParamTypes(), params) || !sameTypes(def.ResultTypes(), []api.ValueType{api.ValueTypeI32}) {
			return fmt.Errorf("export %q has signature %v -> %v", name, def.ParamTypes(), def.ResultTypes())
		}
	}
	return nil
}

func sameTypes(got, want []api.ValueType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func (a *Agent) moduleConfig() wazero.ModuleConfig {
	// anonymous so the same compiled module can be instantiated per call;
	// no args, env, filesystem or stdio are configured
	return wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions(startFunction)
}

func (a *Agent) Name() string { return a.name }

// Decide asks the guest for a column. The returned column is unchecked; any
// failure inside the guest comes back as a *FaultError.
func (a *Agent) Decide(ctx context.Context, snap domain.Snapshot) (column int, err error) {
	ctx, cancel := context.WithTimeout(ctx, a.limits.Timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = a.fault("call", fmt.Errorf("panic: %v", r))
		}
	}()

	mod, err := a.runtime.InstantiateModule(ctx, a.compiled, a.moduleConfig())
	if err != nil {
		return 0, a.fault("instantiate", err)
	}
	defer mod.Close(context.Background())

	payload := snap.Encode()
	res, err := mod.ExportedFunction(exportAlloc).Call(ctx, api.EncodeI32(int32(len(payload))))
	if err != nil {
		return 0, a.fault(exportAlloc, err)
	}
	ptr := api.DecodeU32(res[0])
	if !mod.Memory().Write(ptr, payload) {
		return 0, a.fault(exportAlloc, fmt.Errorf("offset %d for %d bytes is outside guest memory", ptr, len(payload)))
	}

	start := time.Now()
	res, err = mod.ExportedFunction(exportMakeMove).Call(ctx, api.EncodeU32(ptr), api.EncodeI32(int32(len(payload))))
	if err != nil {
		return 0, a.fault(exportMakeMove, err)
	}
	if len(res) != 1 {
		return 0, a.fault(exportMakeMove, fmt.Errorf("returned %d values", len(res)))
	}

	column = int(api.DecodeI32(res[0]))
	a.logger.Debug("agent decided", zap.Int("column", column), zap.Duration("elapsed", time.Since(start)))
	return column, nil
}

func (a *Agent) fault(op string, err error) error {
	a.logger.Warn("agent fault", zap.String("op", op), zap.Error(err))
	return &FaultError{Agent: a.name, Op: op, Err: err}
}

// Close tears down the runtime and every instance still attached to it.
func (a *Agent) Close(ctx context.Context) error {
	return a.runtime.Close(ctx)
}
