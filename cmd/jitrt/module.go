package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-jit-runtime/errors"
	"github.com/wippyai/wasm-jit-runtime/runtime"
	"github.com/wippyai/wasm-jit-runtime/wasm"
)

func loadModule(path string) (*wasm.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	m, ok := wasm.Deserialize(data)
	if !ok {
		return nil, fmt.Errorf("%s is not a valid module encoding", path)
	}
	return m, nil
}

// findNative accepts either a numeric import id or "module.field".
func findNative(m *wasm.Module, ref string) (int, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		if id < 0 || id >= len(m.Natives) {
			return 0, fmt.Errorf("native id %d out of range (%d imports)", id, len(m.Natives))
		}
		return id, nil
	}
	mod, field, ok := strings.Cut(ref, ".")
	if !ok {
		return 0, fmt.Errorf("native %q: want an id or module.field", ref)
	}
	for i, n := range m.Natives {
		if n.Module == mod && n.Field == field {
			return i, nil
		}
	}
	return 0, errors.NotFound(errors.PhaseLoad, "native import", ref)
}

func parseArg(s string, t wasm.ValType) (wasm.Value, error) {
	s = strings.TrimSpace(s)
	switch t {
	case wasm.ValI32:
		v, err := strconv.ParseInt(s, 0, 32)
		return wasm.I32(int32(v)), err
	case wasm.ValI64:
		v, err := strconv.ParseInt(s, 0, 64)
		return wasm.I64(v), err
	case wasm.ValF32:
		v, err := strconv.ParseFloat(s, 32)
		return wasm.F32(float32(v)), err
	case wasm.ValF64:
		v, err := strconv.ParseFloat(s, 64)
		return wasm.F64(v), err
	}
	return wasm.Value{}, fmt.Errorf("unsupported argument kind %s", t)
}

func parseArgs(raw []string, sig *wasm.FuncType) ([]wasm.Value, error) {
	if len(raw) != len(sig.Params) {
		return nil, fmt.Errorf("signature %s takes %d arguments, got %d", sig, len(sig.Params), len(raw))
	}
	args := make([]wasm.Value, len(raw))
	for i, s := range raw {
		v, err := parseArg(s, sig.Params[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, sig.Params[i], err)
		}
		args[i] = v
	}
	return args, nil
}

// callNative runs import id through the trampoline the way generated code
// would and decodes the result slot.
func callNative(rt *runtime.Runtime, id int, args []wasm.Value) (res wasm.Value, err error) {
	defer runtime.Capture(&err)

	req := rt.BeginInvoke(len(args))
	for _, a := range args {
		req.Push(a.ReinterpretAsI64())
	}
	raw := rt.CompleteInvoke(req, id)

	sig, _ := rt.Module().NativeType(uint32(id))
	if kind, ok := sig.Result(); ok {
		return wasm.ReinterpretFromI64(raw, kind), nil
	}
	return wasm.Undefined(), nil
}
