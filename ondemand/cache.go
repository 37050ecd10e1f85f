// Package ondemand compiles bytecode functions to native entry points the
// first time a runtime asks for them.
package ondemand

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-jit-runtime/errors"
	"github.com/wippyai/wasm-jit-runtime/runtime"
	"github.com/wippyai/wasm-jit-runtime/wasm"
)

var _ runtime.LazyCompiler = (*Cache)(nil)

// CompileFunc turns function id into a native entry point. It may ask the
// cache for other functions, for example to emit direct calls, but must not
// ask for id itself.
type CompileFunc func(id uint32, fn *wasm.Function) (uintptr, error)

// Cache compiles each function of a module at most once and remembers the
// address. It is safe for concurrent use, so several runtimes built from
// the same module can share one.
type Cache struct {
	module  *wasm.Module
	compile CompileFunc
	log     *zap.Logger

	mu       sync.Mutex
	addrs    []uintptr
	done     []bool
	inflight map[uint32]chan struct{}
	compiled int
}

type Option func(*Cache)

func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		c.log = l
	}
}

func New(m *wasm.Module, compile CompileFunc, opts ...Option) *Cache {
	c := &Cache{
		module:   m,
		compile:  compile,
		log:      runtime.Logger(),
		addrs:    make([]uintptr, len(m.Functions)),
		done:     make([]bool, len(m.Functions)),
		inflight: make(map[uint32]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FunctionAddr returns the entry point of function id, compiling it on the
// first call. An unknown id or a compile error faults. Callers racing on
// the same id wait for the compile in progress.
func (c *Cache) FunctionAddr(id uint32) uintptr {
	for {
		c.mu.Lock()
		if int(id) >= len(c.addrs) {
			n := len(c.addrs)
			c.mu.Unlock()
			c.fault(errors.OutOfBounds(errors.PhaseCompile, []string{"functions"}, int(id), n))
		}
		if c.done[id] {
			addr := c.addrs[id]
			c.mu.Unlock()
			return addr
		}
		if wait, ok := c.inflight[id]; ok {
			c.mu.Unlock()
			<-wait
			continue
		}
		wait := make(chan struct{})
		c.inflight[id] = wait
		c.mu.Unlock()
		return c.compileOne(id, wait)
	}
}

// compileOne runs the compiler without holding mu and publishes the result.
// On a fault the slot is left empty and waiters retry.
func (c *Cache) compileOne(id uint32, wait chan struct{}) uintptr {
	var (
		addr uintptr
		ok   bool
	)
	defer func() {
		c.mu.Lock()
		if ok {
			c.addrs[id], c.done[id] = addr, true
			c.compiled++
		}
		delete(c.inflight, id)
		c.mu.Unlock()
		close(wait)
	}()

	fn := &c.module.Functions[id]
	addr, err := c.compile(id, fn)
	if err != nil {
		c.fault(errors.New(errors.PhaseCompile, errors.KindInvalidData).
			Path("functions", strconv.Itoa(int(id))).
			Detail("compile function %d", id).
			Cause(err).
			Build())
	}
	ok = true
	c.log.Debug("function compiled",
		zap.Uint32("id", id),
		zap.Uintptr("addr", addr),
		zap.Int("body_len", len(fn.Body)))
	return addr
}

// Addr returns the address of id if it has been compiled.
func (c *Cache) Addr(id uint32) (uintptr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(id) >= len(c.addrs) || !c.done[id] {
		return 0, false
	}
	return c.addrs[id], true
}

// Compiled returns how many functions have been compiled so far.
func (c *Cache) Compiled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compiled
}

func (c *Cache) fault(err *errors.Error) {
	c.log.Error("compile fault", zap.Error(err))
	runtime.Throw(err)
}
