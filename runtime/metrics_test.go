package runtime

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wippyai/wasm-jit-runtime/errors"
	"github.com/wippyai/wasm-jit-runtime/wasm"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "jit")
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	rt := New(smallConfig(), nativeModule(), WithMetrics(m),
		WithNativeResolver(MapResolver{"env.add": addNative}))

	if got := testutil.ToFloat64(m.memoryBytes); got != 16 {
		t.Errorf("memory_bytes = %v, want 16", got)
	}

	rt.GrowMemory(8)
	if got := testutil.ToFloat64(m.memoryBytes); got != 24 {
		t.Errorf("memory_bytes after grow = %v, want 24", got)
	}
	if got := testutil.ToFloat64(m.memoryGrows); got != 1 {
		t.Errorf("memory_grow_total = %v", got)
	}

	invoke(rt, 0, 1, 2)
	invoke(rt, 0, 3, 4)
	if got := testutil.ToFloat64(m.nativeCalls.WithLabelValues("env", "add")); got != 2 {
		t.Errorf("native_calls_total{env,add} = %v", got)
	}

	expectFault(t, errors.KindMemoryLimit, func() { rt.GrowMemory(1 << 20) })
	if got := testutil.ToFloat64(m.faults.WithLabelValues(string(errors.KindMemoryLimit))); got != 1 {
		t.Errorf("faults_total{memory_limit} = %v", got)
	}

	rt2 := New(smallConfig(), &wasm.Module{}, WithMetrics(m))
	if got := testutil.ToFloat64(m.memoryBytes); got != 40 {
		t.Errorf("memory_bytes with two runtimes = %v, want 40", got)
	}
	rt.Close()
	rt2.Close()
	if got := testutil.ToFloat64(m.memoryBytes); got != 0 {
		t.Errorf("memory_bytes after close = %v, want 0", got)
	}

	if n, err := testutil.GatherAndCount(reg, "jit_memory_grow_total"); err != nil || n != 1 {
		t.Errorf("gathered jit_memory_grow_total: %d, %v", n, err)
	}
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg, "jit"); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMetrics(reg, "jit"); err == nil {
		t.Error("second registration in the same namespace should fail")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.addMemory(1)
	m.grew(1)
	m.nativeCall("env", "f")
	m.fault("x")
}
