package runtime

import (
	goruntime "runtime"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-jit-runtime/errors"
	"github.com/wippyai/wasm-jit-runtime/wasm"
)

// Runtime is the live state of an instantiated module: linear memory, raw
// global slots and native import cells, plus the ABI surface generated code
// calls into.
//
// A Runtime has a single logical owner. Nothing here takes a lock; callers
// sharing one across goroutines must synchronize externally.
type Runtime struct {
	cfg     Config
	module  *wasm.Module
	memory  []byte
	globals []int64
	natives []nativeCell

	resolver writeOnce[NativeResolver]
	compiler writeOnce[LazyCompiler]

	abi     *ABIInfo
	pins    *pins
	cleanup goruntime.Cleanup
	closed  bool

	log     *zap.Logger
	metrics *Metrics
}

// Option configures a Runtime during New.
type Option func(*Runtime)

// WithMetrics reports memory, native call and fault counters to m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// WithLogger overrides the package logger for one runtime.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		r.log = l
	}
}

// WithNativeResolver attaches res during construction. It counts as the one
// allowed SetNativeResolver call.
func WithNativeResolver(res NativeResolver) Option {
	return func(r *Runtime) {
		r.SetNativeResolver(res)
	}
}

// New instantiates a private copy of m, so the caller may keep changing m
// afterwards. It faults when cfg is invalid, when m does not validate, or
// when a data segment does not fit in cfg.MemDefault.
func New(cfg Config, m *wasm.Module, opts ...Option) *Runtime {
	r := &Runtime{
		cfg: cfg,
		log: Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := cfg.Validate(); err != nil {
		r.fault(asError(errors.PhaseConfig, errors.KindInvalidConfig, err, "validate config"))
	}
	if m == nil {
		r.fault(errors.InvalidInput(errors.PhaseLoad, "nil module"))
	}
	m = m.Clone()
	r.module = m
	if err := m.Validate(); err != nil {
		r.fault(asError(errors.PhaseValidate, errors.KindInvalidData, err, "validate module"))
	}

	r.memory = make([]byte, cfg.MemDefault)
	for i, seg := range m.DataSegments {
		end := uint64(seg.Offset) + uint64(len(seg.Data))
		if end > uint64(len(r.memory)) {
			r.fault(errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
				Path("data_segments", strconv.Itoa(i)).
				Detail("segment [%d, %d) exceeds default memory size %d", seg.Offset, end, len(r.memory)).
				Build())
		}
		copy(r.memory[seg.Offset:], seg.Data)
	}

	r.globals = make([]int64, len(m.Globals))
	for i, g := range m.Globals {
		r.globals[i] = g.Value.ReinterpretAsI64()
	}

	r.natives = make([]nativeCell, len(m.Natives))
	for i, n := range m.Natives {
		r.natives[i] = nativeCell{module: n.Module, field: n.Field, typeIdx: n.TypeIdx}
	}

	r.abi = new(ABIInfo)
	r.pins = new(pins)
	r.pins.fixed.Pin(r.abi)
	if len(r.globals) > 0 {
		r.pins.fixed.Pin(&r.globals[0])
	}
	r.pins.memory.Pin(&r.memory[0])
	r.cleanup = goruntime.AddCleanup(r, func(p *pins) { p.release() }, r.pins)
	r.publish()

	r.metrics.addMemory(len(r.memory))
	r.log.Debug("runtime instantiated",
		zap.Int("mem_default", cfg.MemDefault),
		zap.Int("mem_max", cfg.MemMax),
		zap.Int("globals", len(r.globals)),
		zap.Int("natives", len(r.natives)),
		zap.Int("data_segments", len(m.DataSegments)))
	return r
}

// Close releases the pins on memory, globals and the info block. Addresses
// handed out earlier must not be used afterwards.
func (r *Runtime) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.cleanup.Stop()
	r.pins.release()
	r.metrics.addMemory(-len(r.memory))
}

// Module returns the runtime's own copy of the module it was built from.
func (r *Runtime) Module() *wasm.Module {
	return r.module
}

func (r *Runtime) Config() Config {
	return r.cfg
}

func (r *Runtime) fault(err *errors.Error) {
	r.log.Error("runtime fault",
		zap.String("phase", string(err.Phase)),
		zap.String("kind", string(err.Kind)),
		zap.Error(err))
	r.metrics.fault(string(err.Kind))
	Throw(err)
}

// Memory returns the current linear memory. The slice is invalidated by
// GrowMemory.
func (r *Runtime) Memory() []byte {
	return r.memory
}

func (r *Runtime) MemoryLen() int {
	return len(r.memory)
}

func (r *Runtime) MemoryMax() int {
	return r.cfg.MemMax
}

// GrowMemory appends lenInc zero bytes to linear memory and returns the
// previous length. The buffer may move; the info block is rewritten before
// returning. Growing past MemMax faults and leaves memory unchanged.
func (r *Runtime) GrowMemory(lenInc int) int {
	prev := len(r.memory)
	if lenInc < 0 {
		r.fault(errors.InvalidInput(errors.PhaseRuntime, "negative memory growth "+strconv.Itoa(lenInc)))
	}
	// prev <= MemMax always holds, so this cannot overflow.
	if lenInc > r.cfg.MemMax-prev {
		r.fault(errors.New(errors.PhaseRuntime, errors.KindMemoryLimit).
			Value(lenInc).
			Detail("growing %d bytes by %d exceeds mem_max %d", prev, lenInc, r.cfg.MemMax).
			Build())
	}

	grown := make([]byte, prev+lenInc)
	copy(grown, r.memory)

	r.pins.memory.Unpin()
	r.memory = grown
	r.pins.memory.Pin(&r.memory[0])
	r.publish()

	r.metrics.grew(lenInc)
	r.log.Debug("memory grown",
		zap.Int("prev_len", prev),
		zap.Int("new_len", len(r.memory)))
	return prev
}

// Globals returns the raw global slots. The slice shares its backing array
// with the address published as GlobalBase.
func (r *Runtime) Globals() []int64 {
	return r.globals
}

// Global decodes slot idx with the kind of its initializer.
func (r *Runtime) Global(idx int) wasm.Value {
	if idx < 0 || idx >= len(r.globals) {
		r.fault(errors.OutOfBounds(errors.PhaseRuntime, []string{"globals"}, idx, len(r.globals)))
	}
	return wasm.ReinterpretFromI64(r.globals[idx], r.module.Globals[idx].Value.Kind)
}

// SetGlobal writes v into slot idx. v must have the declared kind.
func (r *Runtime) SetGlobal(idx int, v wasm.Value) error {
	if idx < 0 || idx >= len(r.globals) {
		return errors.OutOfBounds(errors.PhaseRuntime, []string{"globals"}, idx, len(r.globals))
	}
	want := r.module.Globals[idx].Value.Kind
	if v.Kind != want {
		return errors.TypeMismatch(errors.PhaseRuntime, []string{"globals", strconv.Itoa(idx)}, want.String(), v.Kind.String())
	}
	r.globals[idx] = v.ReinterpretAsI64()
	return nil
}

// LazyCompiler produces native entry points for bytecode functions,
// compiling on first request. Repeated calls for one id return the same
// address.
type LazyCompiler interface {
	FunctionAddr(id uint32) uintptr
}

// SetLazyCompiler attaches c. A second call faults.
func (r *Runtime) SetLazyCompiler(c LazyCompiler) {
	if !r.compiler.Set(c) {
		r.fault(errors.AlreadyInitialized(errors.PhaseRuntime, "lazy compiler"))
	}
	r.log.Debug("lazy compiler attached")
}

// FunctionAddr returns the native entry point of function id through the
// lazy compiler. It faults when no compiler is attached.
func (r *Runtime) FunctionAddr(id int) uintptr {
	c, ok := r.compiler.Get()
	if !ok {
		r.fault(errors.NotInitialized(errors.PhaseRuntime, "lazy compiler"))
	}
	if id < 0 || id >= len(r.module.Functions) {
		r.fault(errors.OutOfBounds(errors.PhaseRuntime, []string{"functions"}, id, len(r.module.Functions)))
	}
	return c.FunctionAddr(uint32(id))
}

// IndirectFunctionAddr resolves entry idInTable of table 0. An empty entry
// faults with a null table entry.
func (r *Runtime) IndirectFunctionAddr(idInTable int) uintptr {
	if len(r.module.Tables) == 0 {
		r.fault(errors.OutOfBounds(errors.PhaseRuntime, []string{"tables"}, 0, 0))
	}
	elems := r.module.Tables[0].Elements
	if idInTable < 0 || idInTable >= len(elems) {
		r.fault(errors.OutOfBounds(errors.PhaseRuntime, []string{"tables", "0"}, idInTable, len(elems)))
	}
	fn := elems[idInTable]
	if fn == nil {
		r.fault(errors.New(errors.PhaseRuntime, errors.KindNullTableEntry).
			Path("tables", "0", strconv.Itoa(idInTable)).
			Detail("call to null table entry").
			Build())
	}
	return r.FunctionAddr(int(*fn))
}
