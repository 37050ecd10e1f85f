package wasm

import (
	"strconv"

	"github.com/wippyai/wasm-jit-runtime/errors"
)

// Validate checks that every index the module references is in range.
// Data segment bounds depend on the memory size and are checked at
// instantiation instead.
func (m *Module) Validate() error {
	if err := m.validateTypes(); err != nil {
		return err
	}
	if err := m.validateNatives(); err != nil {
		return err
	}
	if err := m.validateGlobals(); err != nil {
		return err
	}
	if err := m.validateTables(); err != nil {
		return err
	}
	return m.validateFunctions()
}

func path(parts ...any) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case string:
			out[i] = v
		case int:
			out[i] = strconv.Itoa(v)
		}
	}
	return out
}

func (m *Module) validateTypes() error {
	for i, t := range m.Types {
		for j, p := range t.Params {
			if !p.Valid() {
				return errors.InvalidData(errors.PhaseValidate, path("types", i, "params", j),
					"invalid value kind "+p.String())
			}
		}
		for j, r := range t.Results {
			if !r.Valid() {
				return errors.InvalidData(errors.PhaseValidate, path("types", i, "results", j),
					"invalid value kind "+r.String())
			}
		}
	}
	return nil
}

func (m *Module) validateNatives() error {
	for i, n := range m.Natives {
		if int(n.TypeIdx) >= len(m.Types) {
			return errors.OutOfBounds(errors.PhaseValidate, path("natives", i, "type"), int(n.TypeIdx), len(m.Types))
		}
	}
	return nil
}

func (m *Module) validateGlobals() error {
	for i, g := range m.Globals {
		if !g.Value.Kind.Valid() {
			return errors.InvalidData(errors.PhaseValidate, path("globals", i),
				"global initializer must be typed, got "+g.Value.Kind.String())
		}
	}
	return nil
}

func (m *Module) validateTables() error {
	for i, t := range m.Tables {
		for j, e := range t.Elements {
			if e != nil && int(*e) >= len(m.Functions) {
				return errors.OutOfBounds(errors.PhaseValidate, path("tables", i, "elements", j), int(*e), len(m.Functions))
			}
		}
	}
	return nil
}

func (m *Module) validateFunctions() error {
	for i := range m.Functions {
		f := &m.Functions[i]
		if int(f.TypeIdx) >= len(m.Types) {
			return errors.OutOfBounds(errors.PhaseValidate, path("functions", i, "type"), int(f.TypeIdx), len(m.Types))
		}
		for j, l := range f.Locals {
			if !l.Valid() {
				return errors.InvalidData(errors.PhaseValidate, path("functions", i, "locals", j),
					"invalid value kind "+l.String())
			}
		}
		numLocals := len(m.Types[f.TypeIdx].Params) + len(f.Locals)
		for pc, in := range f.Body {
			if err := m.validateInstruction(in, numLocals, len(f.Body)); err != nil {
				err.Path = path("functions", i, "body", pc)
				return err
			}
		}
	}
	return nil
}

func (m *Module) validateInstruction(in Instruction, numLocals, bodyLen int) *errors.Error {
	idx := int(in.Index)
	bound := func(limit int) *errors.Error {
		if idx >= limit {
			return errors.OutOfBounds(errors.PhaseValidate, nil, idx, limit)
		}
		return nil
	}

	switch in.Op {
	case OpGetLocal, OpSetLocal, OpTeeLocal:
		return bound(numLocals)
	case OpGetGlobal, OpSetGlobal:
		return bound(len(m.Globals))
	case OpCall:
		return bound(len(m.Functions))
	case OpCallIndirect:
		if len(m.Tables) == 0 {
			return errors.InvalidData(errors.PhaseValidate, nil, "call_indirect without a table")
		}
		return bound(len(m.Types))
	case OpNativeInvoke:
		return bound(len(m.Natives))
	case OpJmp, OpJmpIf:
		// A target equal to the body length falls off the end.
		return bound(bodyLen + 1)
	case OpJmpTable:
		for _, t := range in.Targets {
			if int(t) > bodyLen {
				return errors.OutOfBounds(errors.PhaseValidate, nil, int(t), bodyLen+1)
			}
		}
		return bound(bodyLen + 1)
	case OpI32Const:
		if in.Const < -1<<31 || in.Const > 1<<31-1 {
			return errors.Overflow(errors.PhaseValidate, nil, in.Const, "i32")
		}
	}
	if !in.Op.Valid() {
		return errors.InvalidData(errors.PhaseValidate, nil, "unknown "+in.Op.String())
	}
	return nil
}
