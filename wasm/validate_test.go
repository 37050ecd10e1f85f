package wasm

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/wasm-jit-runtime/errors"
)

func TestValidate_Valid(t *testing.T) {
	if err := sampleModule().Validate(); err != nil {
		t.Fatalf("sample module should validate: %v", err)
	}
	if err := (&Module{}).Validate(); err != nil {
		t.Fatalf("empty module should validate: %v", err)
	}
}

func TestValidate_JumpToEnd(t *testing.T) {
	m := &Module{
		Types: []FuncType{{}},
		Functions: []Function{{Body: []Instruction{
			I32Const(1),
			JmpIf(3),
			Jmp(3),
		}}},
	}
	if err := m.Validate(); err != nil {
		t.Errorf("jump to body length should be allowed: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m *Module)
		kind     errors.Kind
		wantPath string
	}{
		{
			name:     "bad param kind",
			mutate:   func(m *Module) { m.Types[0].Params[1] = 0x40 },
			kind:     errors.KindInvalidData,
			wantPath: "types.0.params.1",
		},
		{
			name:     "bad result kind",
			mutate:   func(m *Module) { m.Types[1].Results = []ValType{0} },
			kind:     errors.KindInvalidData,
			wantPath: "types.1.results.0",
		},
		{
			name:     "native type out of range",
			mutate:   func(m *Module) { m.Natives[0].TypeIdx = 9 },
			kind:     errors.KindOutOfBounds,
			wantPath: "natives.0.type",
		},
		{
			name:     "untyped global",
			mutate:   func(m *Module) { m.Globals[2] = Global{} },
			kind:     errors.KindInvalidData,
			wantPath: "globals.2",
		},
		{
			name:     "table element out of range",
			mutate:   func(m *Module) { m.Tables[0].Elements[1] = Elem(2) },
			kind:     errors.KindOutOfBounds,
			wantPath: "tables.0.elements.1",
		},
		{
			name:     "function type out of range",
			mutate:   func(m *Module) { m.Functions[1].TypeIdx = 2 },
			kind:     errors.KindOutOfBounds,
			wantPath: "functions.1.type",
		},
		{
			name:     "bad local kind",
			mutate:   func(m *Module) { m.Functions[0].Locals[0] = 0x7B },
			kind:     errors.KindInvalidData,
			wantPath: "functions.0.locals.0",
		},
		{
			name:     "local out of range",
			mutate:   func(m *Module) { m.Functions[0].Body[6] = SetLocal(3) },
			kind:     errors.KindOutOfBounds,
			wantPath: "functions.0.body.6",
		},
		{
			name:     "global out of range",
			mutate:   func(m *Module) { m.Functions[1].Body[0] = GetGlobal(4) },
			kind:     errors.KindOutOfBounds,
			wantPath: "functions.1.body.0",
		},
		{
			name:     "call out of range",
			mutate:   func(m *Module) { m.Functions[1].Body[3] = Call(2) },
			kind:     errors.KindOutOfBounds,
			wantPath: "functions.1.body.3",
		},
		{
			name:     "call_indirect without table",
			mutate:   func(m *Module) { m.Tables = nil },
			kind:     errors.KindInvalidData,
			wantPath: "functions.1.body.2",
		},
		{
			name:     "call_indirect type out of range",
			mutate:   func(m *Module) { m.Functions[1].Body[2] = CallIndirect(5) },
			kind:     errors.KindOutOfBounds,
			wantPath: "functions.1.body.2",
		},
		{
			name:     "native out of range",
			mutate:   func(m *Module) { m.Functions[0].Body[8] = NativeInvoke(1) },
			kind:     errors.KindOutOfBounds,
			wantPath: "functions.0.body.8",
		},
		{
			name:     "jump past end",
			mutate:   func(m *Module) { m.Functions[1].Body[1] = JmpIf(5) },
			kind:     errors.KindOutOfBounds,
			wantPath: "functions.1.body.1",
		},
		{
			name:     "jump table target past end",
			mutate:   func(m *Module) { m.Functions[0].Body[7].Targets[1] = 11 },
			kind:     errors.KindOutOfBounds,
			wantPath: "functions.0.body.7",
		},
		{
			name:     "jump table default past end",
			mutate:   func(m *Module) { m.Functions[0].Body[7].Index = 11 },
			kind:     errors.KindOutOfBounds,
			wantPath: "functions.0.body.7",
		},
		{
			name:     "i32 constant overflow",
			mutate:   func(m *Module) { m.Functions[1].Body[0] = Instruction{Op: OpI32Const, Const: 1 << 31} },
			kind:     errors.KindOverflow,
			wantPath: "functions.1.body.0",
		},
		{
			name:     "unknown opcode",
			mutate:   func(m *Module) { m.Functions[0].Body[9] = Op(opcodeCount + 3) },
			kind:     errors.KindInvalidData,
			wantPath: "functions.0.body.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleModule()
			tt.mutate(m)

			err := m.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseValidate, Kind: tt.kind}) {
				t.Errorf("error = %v, want kind %s", err, tt.kind)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error is %T, want *errors.Error", err)
			}
			if got := strings.Join(e.Path, "."); got != tt.wantPath {
				t.Errorf("path = %q, want %q", got, tt.wantPath)
			}
		})
	}
}
