package wasm

// Module is an immutable program image: everything a Runtime needs to build
// live state. A Module must not be mutated once handed to a Runtime; use
// Clone to derive an independent copy.
type Module struct {
	_ struct{} `cbor:",toarray"`

	Types        []FuncType
	Functions    []Function
	DataSegments []DataSegment
	Globals      []Global
	Natives      []Native
	Tables       []Table
}

// FuncType is a function signature. Only the first result is used by the
// current calling convention; Results stays a slice for forward compatibility.
type FuncType struct {
	_ struct{} `cbor:",toarray"`

	Params  []ValType
	Results []ValType
}

// Function is a bytecode function body with its typed local declarations.
// Locals excludes the parameters, which come from the function's type.
type Function struct {
	_ struct{} `cbor:",toarray"`

	TypeIdx uint32
	Locals  []ValType
	Body    []Instruction
}

// DataSegment pre-populates linear memory at instantiation.
type DataSegment struct {
	_ struct{} `cbor:",toarray"`

	Offset uint32
	Data   []byte
}

// Global holds the initial value of a module-level variable. The kind of
// the initializer is the declared kind of the global.
type Global struct {
	_ struct{} `cbor:",toarray"`

	Value Value
}

// Native declares an imported native function.
type Native struct {
	_ struct{} `cbor:",toarray"`

	Module  string
	Field   string
	TypeIdx uint32
}

// Table is an ordered list of optional function indices used by indirect calls.
type Table struct {
	_ struct{} `cbor:",toarray"`

	Elements []*uint32
}

// Elem returns a pointer suitable for a Table element.
func Elem(funcIdx uint32) *uint32 {
	return &funcIdx
}

// Signature returns the signature of function idx.
func (m *Module) Signature(idx uint32) (*FuncType, bool) {
	if int(idx) >= len(m.Functions) {
		return nil, false
	}
	return m.typeAt(m.Functions[idx].TypeIdx)
}

// NativeType returns the declared signature of native import id.
func (m *Module) NativeType(id uint32) (*FuncType, bool) {
	if int(id) >= len(m.Natives) {
		return nil, false
	}
	return m.typeAt(m.Natives[id].TypeIdx)
}

func (m *Module) typeAt(idx uint32) (*FuncType, bool) {
	if int(idx) >= len(m.Types) {
		return nil, false
	}
	return &m.Types[idx], true
}

// Result returns the single used result kind, or false for a void signature.
func (t *FuncType) Result() (ValType, bool) {
	if len(t.Results) == 0 {
		return 0, false
	}
	return t.Results[0], true
}

func (t FuncType) String() string {
	b := make([]byte, 0, 32)
	b = append(b, '(')
	for i, p := range t.Params {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, p.String()...)
	}
	b = append(b, ") -> ("...)
	for i, r := range t.Results {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, r.String()...)
	}
	b = append(b, ')')
	return string(b)
}

// Clone returns a deep copy of the module.
func (m *Module) Clone() *Module {
	c := &Module{
		Types:        cloneSlice(m.Types),
		Functions:    cloneSlice(m.Functions),
		DataSegments: cloneSlice(m.DataSegments),
		Globals:      cloneSlice(m.Globals),
		Natives:      cloneSlice(m.Natives),
		Tables:       cloneSlice(m.Tables),
	}
	for i := range c.Types {
		t := &c.Types[i]
		t.Params = cloneSlice(t.Params)
		t.Results = cloneSlice(t.Results)
	}
	for i := range c.Functions {
		f := &c.Functions[i]
		f.Locals = cloneSlice(f.Locals)
		f.Body = cloneSlice(f.Body)
		for j := range f.Body {
			f.Body[j].Targets = cloneSlice(f.Body[j].Targets)
		}
	}
	for i := range c.DataSegments {
		c.DataSegments[i].Data = cloneSlice(c.DataSegments[i].Data)
	}
	for i := range c.Tables {
		elems := cloneSlice(c.Tables[i].Elements)
		for j, e := range elems {
			if e != nil {
				elems[j] = Elem(*e)
			}
		}
		c.Tables[i].Elements = elems
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
