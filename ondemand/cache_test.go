package ondemand

import (
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/wippyai/wasm-jit-runtime/errors"
	"github.com/wippyai/wasm-jit-runtime/runtime"
	"github.com/wippyai/wasm-jit-runtime/wasm"
)

func testModule() *wasm.Module {
	return &wasm.Module{
		Types: []wasm.FuncType{{}},
		Functions: []wasm.Function{
			{Body: []wasm.Instruction{wasm.Op(wasm.OpNop)}},
			{Body: []wasm.Instruction{wasm.Op(wasm.OpNop), wasm.Op(wasm.OpReturn)}},
			{},
		},
		Tables: []wasm.Table{{Elements: []*uint32{nil, wasm.Elem(2)}}},
	}
}

type counter struct {
	mu    sync.Mutex
	calls map[uint32]int
}

func (c *counter) compile(id uint32, fn *wasm.Function) (uintptr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[id]++
	return 0x4000 + uintptr(id)*0x10 + uintptr(len(fn.Body)), nil
}

func catch(fn func()) (err error) {
	defer runtime.Capture(&err)
	fn()
	return nil
}

func TestCache_CompilesOnce(t *testing.T) {
	cnt := &counter{calls: make(map[uint32]int)}
	c := New(testModule(), cnt.compile, WithLogger(zaptest.NewLogger(t)))

	if _, ok := c.Addr(1); ok {
		t.Error("nothing should be compiled yet")
	}

	first := c.FunctionAddr(1)
	second := c.FunctionAddr(1)
	if first != second || first != 0x4012 {
		t.Errorf("addresses = %#x, %#x", first, second)
	}
	if cnt.calls[1] != 1 {
		t.Errorf("compiled %d times", cnt.calls[1])
	}
	if addr, ok := c.Addr(1); !ok || addr != first {
		t.Errorf("Addr(1) = %#x, %v", addr, ok)
	}
	if c.Compiled() != 1 {
		t.Errorf("Compiled() = %d", c.Compiled())
	}
}

func TestCache_Concurrent(t *testing.T) {
	cnt := &counter{calls: make(map[uint32]int)}
	c := New(testModule(), cnt.compile)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.FunctionAddr(uint32(i % 3))
		}(i)
	}
	wg.Wait()

	for id := uint32(0); id < 3; id++ {
		if cnt.calls[id] != 1 {
			t.Errorf("function %d compiled %d times", id, cnt.calls[id])
		}
	}
	if c.Compiled() != 3 {
		t.Errorf("Compiled() = %d", c.Compiled())
	}
}

func TestCache_CompileRequestsCallee(t *testing.T) {
	var c *Cache
	c = New(testModule(), func(id uint32, _ *wasm.Function) (uintptr, error) {
		if id == 0 {
			return c.FunctionAddr(1) + 0x100, nil
		}
		return 0x2000 + uintptr(id), nil
	})

	done := make(chan uintptr)
	go func() { done <- c.FunctionAddr(0) }()

	select {
	case addr := <-done:
		if addr != 0x2101 {
			t.Errorf("FunctionAddr(0) = %#x", addr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("compiling a caller that asks for its callee did not finish")
	}
	if c.Compiled() != 2 {
		t.Errorf("Compiled() = %d", c.Compiled())
	}
}

func TestCache_Faults(t *testing.T) {
	boom := stderrors.New("register allocation failed")
	c := New(testModule(), func(id uint32, _ *wasm.Function) (uintptr, error) {
		if id == 2 {
			return 0, boom
		}
		return 0x10, nil
	})

	err := catch(func() { c.FunctionAddr(7) })
	if !runtime.IsFault(err) || !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCompile, Kind: errors.KindOutOfBounds}) {
		t.Errorf("unknown id: %v", err)
	}

	err = catch(func() { c.FunctionAddr(2) })
	if !runtime.IsFault(err) || !stderrors.Is(err, boom) {
		t.Errorf("compile error: %v", err)
	}
	if _, ok := c.Addr(2); ok {
		t.Error("failed compile should not be cached")
	}
	if c.FunctionAddr(0) != 0x10 {
		t.Error("cache unusable after a fault")
	}
}

func TestCache_AsLazyCompiler(t *testing.T) {
	m := testModule()
	cnt := &counter{calls: make(map[uint32]int)}
	cache := New(m, cnt.compile)

	rt := runtime.New(runtime.Config{MemDefault: 16, MemMax: 16}, m)
	defer rt.Close()
	rt.SetLazyCompiler(cache)

	direct := rt.FunctionAddr(2)
	if indirect := rt.IndirectFunctionAddr(1); indirect != direct {
		t.Errorf("indirect %#x != direct %#x", indirect, direct)
	}
	if cnt.calls[2] != 1 {
		t.Errorf("function 2 compiled %d times", cnt.calls[2])
	}

	err := catch(func() { rt.IndirectFunctionAddr(0) })
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNullTableEntry}) {
		t.Errorf("null entry: %v", err)
	}
}
