package wasm

// ValType is a runtime value kind. The zero ValType marks an undefined value
// and is never a valid parameter, result or local kind.
type ValType byte

// Value kinds, using the WebAssembly binary format encodings.
const (
	ValI32 ValType = 0x7F // 32-bit integer
	ValI64 ValType = 0x7E // 64-bit integer
	ValF32 ValType = 0x7D // 32-bit float
	ValF64 ValType = 0x7C // 64-bit float
)

// Valid reports whether v is one of the four value kinds.
func (v ValType) Valid() bool {
	switch v {
	case ValI32, ValI64, ValF32, ValF64:
		return true
	}
	return false
}

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case 0:
		return "undef"
	default:
		return "unknown"
	}
}

// ParseValType maps a textual kind name back to its ValType.
func ParseValType(s string) (ValType, bool) {
	switch s {
	case "i32":
		return ValI32, true
	case "i64":
		return ValI64, true
	case "f32":
		return ValF32, true
	case "f64":
		return ValF64, true
	}
	return 0, false
}
