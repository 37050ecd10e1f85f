package wasm

import "math"

// Float to integer conversions with truncation toward zero. ok is false for
// NaN and for results outside the target range; the returned integer is 0
// in that case.

// TruncF64ToI64S converts f to a signed 64-bit integer.
func TruncF64ToI64S(f float64) (int64, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	t := math.Trunc(f)
	if t < -9223372036854775808.0 || t >= 9223372036854775808.0 {
		return 0, false
	}
	return int64(t), true
}

// TruncF32ToI64S converts f to a signed 64-bit integer.
func TruncF32ToI64S(f float32) (int64, bool) {
	return TruncF64ToI64S(float64(f))
}
