package wasm

import (
	"math"
	"reflect"
	"testing"
)

func sampleModule() *Module {
	return &Module{
		Types: []FuncType{
			{Params: []ValType{ValI32, ValI32}, Results: []ValType{ValI32}},
			{Params: []ValType{ValF64}},
		},
		Functions: []Function{
			{
				TypeIdx: 0,
				Locals:  []ValType{ValI64},
				Body: []Instruction{
					GetLocal(0),
					GetLocal(1),
					Op(OpI32Add),
					TeeLocal(0),
					Mem(OpI32Store, 16, 2),
					I64Const(math.MinInt64),
					SetLocal(2),
					JmpTable([]uint32{0, 9}, 10),
					NativeInvoke(0),
					Op(OpReturn),
				},
			},
			{
				TypeIdx: 1,
				Body:    []Instruction{I32Const(-1), JmpIf(0), CallIndirect(0), Call(0)},
			},
		},
		DataSegments: []DataSegment{
			{Offset: 4, Data: []byte{9, 9}},
		},
		Globals: []Global{
			{Value: I32(-3)},
			{Value: F32(0.5)},
			{Value: F64(math.NaN())},
			{Value: I64(1 << 50)},
		},
		Natives: []Native{
			{Module: "env", Field: "add", TypeIdx: 0},
		},
		Tables: []Table{
			{Elements: []*uint32{Elem(1), nil, Elem(0)}},
		},
	}
}

func TestModule_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    *Module
	}{
		{"empty", &Module{}},
		{"sample", sampleModule()},
		{"types only", &Module{Types: []FuncType{{Results: []ValType{ValF32}}}}},
		{"sparse table", &Module{
			Types:     []FuncType{{}},
			Functions: []Function{{Body: []Instruction{Op(OpNop)}}},
			Tables:    []Table{{Elements: []*uint32{nil, nil, nil, nil}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ok := tt.m.Serialize()
			if !ok {
				t.Fatal("Serialize failed")
			}
			got, ok := Deserialize(data)
			if !ok {
				t.Fatal("Deserialize failed")
			}
			if !reflect.DeepEqual(got, tt.m) {
				t.Errorf("round trip mismatch\n got: %#v\nwant: %#v", got, tt.m)
			}
		})
	}
}

func TestModule_EncodeDeterministic(t *testing.T) {
	a, err := sampleModule().Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := sampleModule().Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(a) != string(b) {
		t.Error("encoding should be deterministic")
	}
}

func TestDeserialize_Malformed(t *testing.T) {
	valid, ok := sampleModule().Serialize()
	if !ok {
		t.Fatal("Serialize failed")
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"garbage", []byte{0xff, 0x00, 0x13, 0x37}},
		{"truncated", valid[:len(valid)/2]},
		{"wrong shape", []byte{0x82, 0x01, 0x02}}, // [1, 2]
		{"text string", []byte{0x63, 'a', 'b', 'c'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Deserialize(tt.data)
			if ok || m != nil {
				t.Errorf("Deserialize(%x) = %v, %v; want absent", tt.data, m, ok)
			}
			if _, err := DecodeModule(tt.data); err == nil {
				t.Error("DecodeModule should report an error")
			}
		})
	}
}

func TestModule_Clone(t *testing.T) {
	orig := sampleModule()
	c := orig.Clone()
	if !reflect.DeepEqual(orig, c) {
		t.Fatal("clone should equal original")
	}

	c.Types[0].Params[0] = ValF64
	c.Functions[0].Body[7].Targets[0] = 5
	c.DataSegments[0].Data[0] = 1
	*c.Tables[0].Elements[0] = 0
	c.Globals[0] = Global{Value: I32(0)}

	if orig.Types[0].Params[0] != ValI32 {
		t.Error("type params shared with clone")
	}
	if orig.Functions[0].Body[7].Targets[0] != 0 {
		t.Error("jump targets shared with clone")
	}
	if orig.DataSegments[0].Data[0] != 9 {
		t.Error("data shared with clone")
	}
	if *orig.Tables[0].Elements[0] != 1 {
		t.Error("table elements shared with clone")
	}
	if orig.Globals[0].Value != I32(-3) {
		t.Error("globals shared with clone")
	}
}

func TestModule_Signatures(t *testing.T) {
	m := sampleModule()

	sig, ok := m.Signature(1)
	if !ok || len(sig.Params) != 1 || sig.Params[0] != ValF64 {
		t.Errorf("Signature(1) = %v, %v", sig, ok)
	}
	if _, ok := sig.Result(); ok {
		t.Error("void signature should have no result")
	}
	if _, ok := m.Signature(2); ok {
		t.Error("Signature(2) should be out of range")
	}

	nt, ok := m.NativeType(0)
	if !ok {
		t.Fatal("NativeType(0) missing")
	}
	if r, ok := nt.Result(); !ok || r != ValI32 {
		t.Errorf("native result = %v, %v", r, ok)
	}
	if got := nt.String(); got != "(i32, i32) -> (i32)" {
		t.Errorf("String() = %q", got)
	}
	if _, ok := m.NativeType(1); ok {
		t.Error("NativeType(1) should be out of range")
	}
}
