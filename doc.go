// Package jitruntime is the host side of a bytecode VM whose functions are
// compiled to native code elsewhere. It owns the live state of an
// instantiated program and the ABI generated code uses to reach it.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	jitruntime/          Root package with the Memory interface
//	├── wasm/            Module, instruction set, Value and its slot encoding
//	├── runtime/         Live instance: memory, globals, natives, ABI block
//	├── ondemand/        Lazy compiler cache for function entry points
//	├── wazerohost/      Native imports served by wasm modules under wazero
//	├── errors/          Structured error types for debugging
//	└── cmd/jitrt/       Command line inspector and native invoker
//
// # Quick Start
//
//	mod, ok := wasm.Deserialize(blob)
//	if !ok {
//	    log.Fatal("bad module")
//	}
//
//	rt := runtime.New(runtime.DefaultConfig(), mod,
//	    runtime.WithNativeResolver(runtime.MapResolver{
//	        "env.add": add,
//	    }))
//	defer rt.Close()
//
//	rt.SetLazyCompiler(ondemand.New(mod, compile))
//	info := rt.ABIInfoAddr() // handed to generated code
//
// # Faults
//
// Integration errors such as a bad config, double attachment, growth past
// mem_max or an arity mismatch at a native call site panic with a
// *runtime.Fault. Embedders that must survive them defer runtime.Capture.
// Value accessors and module decoding report ordinary errors instead.
//
// # Thread Safety
//
// A Runtime has a single logical owner and takes no locks. A Module is
// immutable once instantiated and may back any number of runtimes.
//
// # Memory Model
//
// Linear memory only grows. Growth may move the buffer, so generated code
// reloads the base address from the ABI info block after any call that can
// grow memory. The block's own address never changes.
package jitruntime
