// Package runtime holds the live state of an instantiated module and the
// ABI that externally generated native code uses to reach it.
//
// # Quick Start
//
//	cfg, err := runtime.LoadConfig("runtime.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rt := runtime.New(cfg, mod)
//	defer rt.Close()
//
//	rt.SetNativeResolver(runtime.MapResolver{
//	    "env.add": func(ctx *runtime.InvokeContext, args []wasm.Value) (wasm.Value, error) {
//	        a, _ := args[0].GetI32()
//	        b, _ := args[1].GetI32()
//	        return wasm.I32(a + b), nil
//	    },
//	})
//
// # ABI Info Block
//
// ABIInfoAddr returns the stable address of an ABIInfo record:
//
//	offset OffsetMemBase     memory base address
//	offset OffsetMemLen      memory length in bytes
//	offset OffsetGlobalBase  first global slot, 0 without globals
//
// Memory, globals and the block are pinned while published. GrowMemory may
// move memory and rewrites the block before it returns.
//
// # Native Calls
//
// Generated code calls an import in three steps:
//
//	req := rt.BeginInvoke(2)
//	req.Push(10)
//	req.Push(20)
//	raw := rt.CompleteInvoke(req, id)
//
// Every slot is a raw 64-bit pattern (see wasm.Value.ReinterpretAsI64).
// CompleteInvoke checks the arity, decodes the slots with the declared
// kinds, resolves the import on first use and encodes the result.
//
// # Faults
//
// Operations that cannot continue panic with a *Fault. The error inside is
// an *errors.Error whose Kind names the cause. Capture turns a Fault back
// into an error:
//
//	func run(rt *runtime.Runtime) (err error) {
//	    defer runtime.Capture(&err)
//	    rt.GrowMemory(1 << 30)
//	    return nil
//	}
package runtime
