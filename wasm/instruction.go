package wasm

import "fmt"

// Opcode identifies an operation of the bytecode instruction set.
type Opcode uint16

// Parametric, variable, memory and control operations.
const (
	OpDrop Opcode = iota
	OpSelect

	OpGetLocal  // Index: local
	OpSetLocal  // Index: local
	OpTeeLocal  // Index: local
	OpGetGlobal // Index: global
	OpSetGlobal // Index: global

	OpCurrentMemory
	OpGrowMemory

	OpNop
	OpUnreachable
	OpReturn
	OpCall         // Index: function
	OpCallIndirect // Index: type
	OpNativeInvoke // Index: native import

	OpI32Const // Const

	OpI32Clz
	OpI32Ctz
	OpI32Popcnt

	OpI32Add
	OpI32Sub
	OpI32Mul
	OpI32DivU
	OpI32DivS
	OpI32RemU
	OpI32RemS
	OpI32And
	OpI32Or
	OpI32Xor
	OpI32Shl
	OpI32ShrU
	OpI32ShrS
	OpI32Rotl
	OpI32Rotr

	OpI32Eqz

	OpI32Eq
	OpI32Ne
	OpI32LtU
	OpI32LtS
	OpI32LeU
	OpI32LeS
	OpI32GtU
	OpI32GtS
	OpI32GeU
	OpI32GeS

	OpI32WrapI64

	OpI32Load // Mem
	OpI32Store
	OpI32Load8U
	OpI32Load8S
	OpI32Load16U
	OpI32Load16S
	OpI32Store8
	OpI32Store16

	OpI64Const // Const

	OpI64Clz
	OpI64Ctz
	OpI64Popcnt

	OpI64Add
	OpI64Sub
	OpI64Mul
	OpI64DivU
	OpI64DivS
	OpI64RemU
	OpI64RemS
	OpI64And
	OpI64Or
	OpI64Xor
	OpI64Shl
	OpI64ShrU
	OpI64ShrS
	OpI64Rotl
	OpI64Rotr

	OpI64Eqz

	OpI64Eq
	OpI64Ne
	OpI64LtU
	OpI64LtS
	OpI64LeU
	OpI64LeS
	OpI64GtU
	OpI64GtS
	OpI64GeU
	OpI64GeS

	OpI64ExtendI32U
	OpI64ExtendI32S

	OpI64Load // Mem
	OpI64Store
	OpI64Load8U
	OpI64Load8S
	OpI64Load16U
	OpI64Load16S
	OpI64Load32U
	OpI64Load32S
	OpI64Store8
	OpI64Store16
	OpI64Store32

	// Resolved control flow produced by the front-end. Targets are absolute
	// instruction indices within the function body.
	OpJmp      // Index: target
	OpJmpIf    // Index: target
	OpJmpTable // Targets, Index: default target

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpDrop: "drop", OpSelect: "select",
	OpGetLocal: "get_local", OpSetLocal: "set_local", OpTeeLocal: "tee_local",
	OpGetGlobal: "get_global", OpSetGlobal: "set_global",
	OpCurrentMemory: "current_memory", OpGrowMemory: "grow_memory",
	OpNop: "nop", OpUnreachable: "unreachable", OpReturn: "return",
	OpCall: "call", OpCallIndirect: "call_indirect", OpNativeInvoke: "native_invoke",

	OpI32Const: "i32.const",
	OpI32Clz:   "i32.clz", OpI32Ctz: "i32.ctz", OpI32Popcnt: "i32.popcnt",
	OpI32Add: "i32.add", OpI32Sub: "i32.sub", OpI32Mul: "i32.mul",
	OpI32DivU: "i32.div_u", OpI32DivS: "i32.div_s", OpI32RemU: "i32.rem_u", OpI32RemS: "i32.rem_s",
	OpI32And: "i32.and", OpI32Or: "i32.or", OpI32Xor: "i32.xor",
	OpI32Shl: "i32.shl", OpI32ShrU: "i32.shr_u", OpI32ShrS: "i32.shr_s",
	OpI32Rotl: "i32.rotl", OpI32Rotr: "i32.rotr",
	OpI32Eqz: "i32.eqz",
	OpI32Eq:  "i32.eq", OpI32Ne: "i32.ne",
	OpI32LtU: "i32.lt_u", OpI32LtS: "i32.lt_s", OpI32LeU: "i32.le_u", OpI32LeS: "i32.le_s",
	OpI32GtU: "i32.gt_u", OpI32GtS: "i32.gt_s", OpI32GeU: "i32.ge_u", OpI32GeS: "i32.ge_s",
	OpI32WrapI64: "i32.wrap/i64",
	OpI32Load:    "i32.load", OpI32Store: "i32.store",
	OpI32Load8U: "i32.load8_u", OpI32Load8S: "i32.load8_s",
	OpI32Load16U: "i32.load16_u", OpI32Load16S: "i32.load16_s",
	OpI32Store8: "i32.store8", OpI32Store16: "i32.store16",

	OpI64Const: "i64.const",
	OpI64Clz:   "i64.clz", OpI64Ctz: "i64.ctz", OpI64Popcnt: "i64.popcnt",
	OpI64Add: "i64.add", OpI64Sub: "i64.sub", OpI64Mul: "i64.mul",
	OpI64DivU: "i64.div_u", OpI64DivS: "i64.div_s", OpI64RemU: "i64.rem_u", OpI64RemS: "i64.rem_s",
	OpI64And: "i64.and", OpI64Or: "i64.or", OpI64Xor: "i64.xor",
	OpI64Shl: "i64.shl", OpI64ShrU: "i64.shr_u", OpI64ShrS: "i64.shr_s",
	OpI64Rotl: "i64.rotl", OpI64Rotr: "i64.rotr",
	OpI64Eqz: "i64.eqz",
	OpI64Eq:  "i64.eq", OpI64Ne: "i64.ne",
	OpI64LtU: "i64.lt_u", OpI64LtS: "i64.lt_s", OpI64LeU: "i64.le_u", OpI64LeS: "i64.le_s",
	OpI64GtU: "i64.gt_u", OpI64GtS: "i64.gt_s", OpI64GeU: "i64.ge_u", OpI64GeS: "i64.ge_s",
	OpI64ExtendI32U: "i64.extend_u/i32", OpI64ExtendI32S: "i64.extend_s/i32",
	OpI64Load: "i64.load", OpI64Store: "i64.store",
	OpI64Load8U: "i64.load8_u", OpI64Load8S: "i64.load8_s",
	OpI64Load16U: "i64.load16_u", OpI64Load16S: "i64.load16_s",
	OpI64Load32U: "i64.load32_u", OpI64Load32S: "i64.load32_s",
	OpI64Store8: "i64.store8", OpI64Store16: "i64.store16", OpI64Store32: "i64.store32",

	OpJmp: "jmp", OpJmpIf: "jmp_if", OpJmpTable: "jmp_table",
}

func (op Opcode) String() string {
	if op < opcodeCount {
		return opcodeNames[op]
	}
	return fmt.Sprintf("opcode(%d)", uint16(op))
}

// Valid reports whether op belongs to the instruction set.
func (op Opcode) Valid() bool { return op < opcodeCount }

// HasMemarg reports whether op is a load or store.
func (op Opcode) HasMemarg() bool {
	return (op >= OpI32Load && op <= OpI32Store16) || (op >= OpI64Load && op <= OpI64Store32)
}

// IsBranch reports whether op transfers control to an absolute target.
func (op Opcode) IsBranch() bool {
	return op == OpJmp || op == OpJmpIf || op == OpJmpTable
}

// MemoryWidth returns the number of bytes a load or store touches, or 0.
func (op Opcode) MemoryWidth() uint32 {
	switch op {
	case OpI32Load8U, OpI32Load8S, OpI32Store8,
		OpI64Load8U, OpI64Load8S, OpI64Store8:
		return 1
	case OpI32Load16U, OpI32Load16S, OpI32Store16,
		OpI64Load16U, OpI64Load16S, OpI64Store16:
		return 2
	case OpI32Load, OpI32Store,
		OpI64Load32U, OpI64Load32S, OpI64Store32:
		return 4
	case OpI64Load, OpI64Store:
		return 8
	}
	return 0
}

// Memarg holds the static offset and alignment hint of a memory access.
// Align is the log2 of the expected alignment.
type Memarg struct {
	_ struct{} `cbor:",toarray"`

	Offset uint32
	Align  uint32
}

// Instruction is one operation of a function body. Which immediate fields
// are meaningful depends on Op: Index for local/global/function/type/native
// indices and jump targets, Const for i32/i64 constants, Mem for loads and
// stores, Targets for jmp_table.
type Instruction struct {
	_ struct{} `cbor:",toarray"`

	Op      Opcode
	Index   uint32
	Const   int64
	Mem     Memarg
	Targets []uint32
}

// Op returns an instruction without immediates.
func Op(op Opcode) Instruction { return Instruction{Op: op} }

// GetLocal returns get_local idx.
func GetLocal(idx uint32) Instruction { return Instruction{Op: OpGetLocal, Index: idx} }

// SetLocal returns set_local idx.
func SetLocal(idx uint32) Instruction { return Instruction{Op: OpSetLocal, Index: idx} }

// TeeLocal returns tee_local idx.
func TeeLocal(idx uint32) Instruction { return Instruction{Op: OpTeeLocal, Index: idx} }

// GetGlobal returns get_global idx.
func GetGlobal(idx uint32) Instruction { return Instruction{Op: OpGetGlobal, Index: idx} }

// SetGlobal returns set_global idx.
func SetGlobal(idx uint32) Instruction { return Instruction{Op: OpSetGlobal, Index: idx} }

// Call returns a direct call to function idx.
func Call(funcIdx uint32) Instruction { return Instruction{Op: OpCall, Index: funcIdx} }

// CallIndirect returns an indirect call through table 0 expecting type typeIdx.
func CallIndirect(typeIdx uint32) Instruction {
	return Instruction{Op: OpCallIndirect, Index: typeIdx}
}

// NativeInvoke returns a call to native import id.
func NativeInvoke(id uint32) Instruction { return Instruction{Op: OpNativeInvoke, Index: id} }

// I32Const returns i32.const v.
func I32Const(v int32) Instruction { return Instruction{Op: OpI32Const, Const: int64(v)} }

// I64Const returns i64.const v.
func I64Const(v int64) Instruction { return Instruction{Op: OpI64Const, Const: v} }

// Mem returns a load or store with the given offset and alignment.
func Mem(op Opcode, offset, align uint32) Instruction {
	return Instruction{Op: op, Mem: Memarg{Offset: offset, Align: align}}
}

// Jmp returns an unconditional jump to target.
func Jmp(target uint32) Instruction { return Instruction{Op: OpJmp, Index: target} }

// JmpIf returns a conditional jump to target.
func JmpIf(target uint32) Instruction { return Instruction{Op: OpJmpIf, Index: target} }

// JmpTable returns a computed jump over targets with a default target.
func JmpTable(targets []uint32, def uint32) Instruction {
	return Instruction{Op: OpJmpTable, Targets: targets, Index: def}
}

func (in Instruction) String() string {
	switch {
	case in.Op == OpI32Const || in.Op == OpI64Const:
		return fmt.Sprintf("%s %d", in.Op, in.Const)
	case in.Op.HasMemarg():
		return fmt.Sprintf("%s offset=%d align=%d", in.Op, in.Mem.Offset, in.Mem.Align)
	case in.Op == OpJmpTable:
		return fmt.Sprintf("%s %v default=%d", in.Op, in.Targets, in.Index)
	case in.hasIndex():
		return fmt.Sprintf("%s %d", in.Op, in.Index)
	default:
		return in.Op.String()
	}
}

func (in Instruction) hasIndex() bool {
	switch in.Op {
	case OpGetLocal, OpSetLocal, OpTeeLocal, OpGetGlobal, OpSetGlobal,
		OpCall, OpCallIndirect, OpNativeInvoke, OpJmp, OpJmpIf:
		return true
	}
	return false
}
