package wasm

import "testing"

func TestOpcode_Names(t *testing.T) {
	seen := make(map[string]Opcode)
	for op := Opcode(0); op < opcodeCount; op++ {
		name := op.String()
		if name == "" {
			t.Errorf("opcode %d has no name", uint16(op))
			continue
		}
		if prev, dup := seen[name]; dup {
			t.Errorf("name %q used by %d and %d", name, uint16(prev), uint16(op))
		}
		seen[name] = op
	}

	if opcodeCount.Valid() {
		t.Error("opcodeCount should not be valid")
	}
	if Opcode(0xFFFF).Valid() {
		t.Error("0xffff should not be valid")
	}
	if got := Opcode(0xFFFF).String(); got != "opcode(65535)" {
		t.Errorf("String() = %q", got)
	}
}

func TestOpcode_MemoryWidth(t *testing.T) {
	tests := []struct {
		op   Opcode
		want uint32
	}{
		{OpI32Load, 4},
		{OpI32Store, 4},
		{OpI32Load8S, 1},
		{OpI32Store16, 2},
		{OpI64Load, 8},
		{OpI64Store, 8},
		{OpI64Load32U, 4},
		{OpI64Store8, 1},
		{OpI64Load16S, 2},
		{OpI32Add, 0},
		{OpGrowMemory, 0},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			if got := tt.op.MemoryWidth(); got != tt.want {
				t.Errorf("MemoryWidth() = %d, want %d", got, tt.want)
			}
			if got := tt.op.HasMemarg(); got != (tt.want != 0) {
				t.Errorf("HasMemarg() = %v", got)
			}
		})
	}
}

func TestOpcode_IsBranch(t *testing.T) {
	for _, op := range []Opcode{OpJmp, OpJmpIf, OpJmpTable} {
		if !op.IsBranch() {
			t.Errorf("%v should be a branch", op)
		}
	}
	for _, op := range []Opcode{OpCall, OpReturn, OpCallIndirect} {
		if op.IsBranch() {
			t.Errorf("%v should not be a branch", op)
		}
	}
}

func TestInstruction_String(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{Op(OpI32Add), "i32.add"},
		{I32Const(-3), "i32.const -3"},
		{I64Const(1 << 40), "i64.const 1099511627776"},
		{GetLocal(2), "get_local 2"},
		{NativeInvoke(0), "native_invoke 0"},
		{Mem(OpI64Load32S, 8, 2), "i64.load32_s offset=8 align=2"},
		{JmpTable([]uint32{1, 4}, 7), "jmp_table [1 4] default=7"},
		{JmpIf(3), "jmp_if 3"},
		{Op(OpCurrentMemory), "current_memory"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
