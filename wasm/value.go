package wasm

import (
	"fmt"
	"math"

	"github.com/wippyai/wasm-jit-runtime/errors"
)

// Value is a tagged runtime scalar. The zero Value is Undefined.
//
// Bits holds the canonical bit pattern of the payload: I32 as its uint32
// pattern, I64 as two's complement, F32 and F64 as their IEEE-754 bits.
// Construct values through I32, I64, F32 and F64 rather than by hand.
type Value struct {
	_ struct{} `cbor:",toarray"`

	Kind ValType
	Bits uint64
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{} }

// I32 returns an i32 value.
func I32(v int32) Value { return Value{Kind: ValI32, Bits: uint64(uint32(v))} }

// I64 returns an i64 value.
func I64(v int64) Value { return Value{Kind: ValI64, Bits: uint64(v)} }

// F32 returns an f32 value.
func F32(v float32) Value { return Value{Kind: ValF32, Bits: uint64(math.Float32bits(v))} }

// F64 returns an f64 value.
func F64(v float64) Value { return Value{Kind: ValF64, Bits: math.Float64bits(v)} }

// Type returns the kind of the value; 0 for Undefined.
func (v Value) Type() ValType { return v.Kind }

// IsUndefined reports whether v carries no value.
func (v Value) IsUndefined() bool { return v.Kind == 0 }

// GetI32 returns the i32 payload. Undefined coerces to 0.
func (v Value) GetI32() (int32, error) {
	switch v.Kind {
	case 0:
		return 0, nil
	case ValI32:
		return int32(uint32(v.Bits)), nil
	default:
		return 0, v.mismatch(ValI32, "int32")
	}
}

// GetI64 returns the i64 payload. Undefined coerces to 0.
func (v Value) GetI64() (int64, error) {
	switch v.Kind {
	case 0:
		return 0, nil
	case ValI64:
		return int64(v.Bits), nil
	default:
		return 0, v.mismatch(ValI64, "int64")
	}
}

// GetF32 returns the f32 payload. Undefined coerces to +0.
func (v Value) GetF32() (float32, error) {
	switch v.Kind {
	case 0:
		return 0, nil
	case ValF32:
		return math.Float32frombits(uint32(v.Bits)), nil
	default:
		return 0, v.mismatch(ValF32, "float32")
	}
}

// GetF64 returns the f64 payload. Undefined coerces to +0.
func (v Value) GetF64() (float64, error) {
	switch v.Kind {
	case 0:
		return 0, nil
	case ValF64:
		return math.Float64frombits(v.Bits), nil
	default:
		return 0, v.mismatch(ValF64, "float64")
	}
}

func (v Value) mismatch(want ValType, goType string) *errors.Error {
	return errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
		GoType(goType).
		VMType(v.Kind.String()).
		Value(v).
		Detail("expected %s", want).
		Build()
}

// CastToI64 converts the value numerically to an i64. Floats truncate toward
// zero; NaN and values outside the i64 range produce 0.
func (v Value) CastToI64() int64 {
	switch v.Kind {
	case ValI32:
		return int64(int32(uint32(v.Bits)))
	case ValI64:
		return int64(v.Bits)
	case ValF32:
		n, _ := TruncF32ToI64S(math.Float32frombits(uint32(v.Bits)))
		return n
	case ValF64:
		n, _ := TruncF64ToI64S(math.Float64frombits(v.Bits))
		return n
	default:
		return 0
	}
}

// ReinterpretAsI64 returns the raw 64-bit slot encoding of v, without
// numeric conversion. I32 is zero-extended. F32 is widened to f64 by value
// and then reinterpreted, so every float slot holds a double bit pattern.
func (v Value) ReinterpretAsI64() int64 {
	switch v.Kind {
	case ValI32:
		return int64(uint64(uint32(v.Bits)))
	case ValI64:
		return int64(v.Bits)
	case ValF32:
		return int64(math.Float64bits(float64(math.Float32frombits(uint32(v.Bits)))))
	case ValF64:
		return int64(v.Bits)
	default:
		return 0
	}
}

// ReinterpretFromI64 decodes a raw slot produced by ReinterpretAsI64 back into
// a value of kind t. Unknown kinds yield Undefined.
func ReinterpretFromI64(raw int64, t ValType) Value {
	switch t {
	case ValI32:
		return I32(int32(uint32(raw)))
	case ValI64:
		return I64(raw)
	case ValF32:
		return F32(float32(math.Float64frombits(uint64(raw))))
	case ValF64:
		return Value{Kind: ValF64, Bits: uint64(raw)}
	default:
		return Value{}
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValI32:
		return fmt.Sprintf("i32:%d", int32(uint32(v.Bits)))
	case ValI64:
		return fmt.Sprintf("i64:%d", int64(v.Bits))
	case ValF32:
		return fmt.Sprintf("f32:%g", math.Float32frombits(uint32(v.Bits)))
	case ValF64:
		return fmt.Sprintf("f64:%g", math.Float64frombits(v.Bits))
	default:
		return "undef"
	}
}
