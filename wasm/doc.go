// Package wasm defines the program image consumed by the runtime: the
// Module, its instruction set, and the tagged Value with its raw 64-bit slot
// encoding.
//
// # Module Structure
//
//	module.Types        []FuncType    // Function signatures
//	module.Functions    []Function    // Type index, locals and body
//	module.DataSegments []DataSegment // Initial linear memory contents
//	module.Globals      []Global      // Initial global values
//	module.Natives      []Native      // Native function imports
//	module.Tables       []Table       // Optional function indices
//
// A Module is immutable once instantiated and may be shared read-only by
// several runtimes. Clone returns an independent deep copy.
//
// # Encoding
//
// Encode and DecodeModule round-trip a module through a private byte
// encoding. Serialize and Deserialize wrap them for callers that only need
// to know whether the conversion succeeded:
//
//	data, ok := module.Serialize()
//	copy, ok := wasm.Deserialize(data)
//
// # Values and Slots
//
// Native code sees every value as a raw 64-bit slot. ReinterpretAsI64 and
// ReinterpretFromI64 convert between a Value and its slot without numeric
// conversion:
//
//	raw := wasm.F32(1.5).ReinterpretAsI64()   // bits of float64(1.5)
//	v := wasm.ReinterpretFromI64(raw, wasm.ValF32)
//
// F32 is widened to f64 by value before the bits are taken, so globals and
// native-call arguments always hold a double pattern for float kinds.
// CastToI64 is a different operation: a numeric conversion that truncates
// floats and yields 0 when the result is not representable.
//
// # Validation
//
// Validate checks type, local, global, function, native and table indices
// and jump targets. Data segment bounds depend on the configured memory
// size and are checked when a runtime is created.
package wasm
