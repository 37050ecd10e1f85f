// Package wazerohost serves native imports from WebAssembly modules
// executed by wazero. A module instantiated under a name answers imports
// declared with that module name, one exported function per field.
package wazerohost

import (
	"context"
	"fmt"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-jit-runtime/errors"
	"github.com/wippyai/wasm-jit-runtime/runtime"
	"github.com/wippyai/wasm-jit-runtime/wasm"
)

var _ runtime.NativeResolver = (*Host)(nil)

// Config holds configuration for the underlying wazero runtime.
type Config struct {
	// MemoryLimitPages caps each host module's memory in 64KiB pages.
	// 0 keeps wazero's default.
	MemoryLimitPages uint32
}

// Host owns a wazero runtime and the modules instantiated in it.
// It is not safe for concurrent Instantiate calls.
type Host struct {
	ctx     context.Context
	rt      wazero.Runtime
	modules map[string]api.Module
	log     *zap.Logger
}

// New creates a host with the default configuration. ctx is also used for
// every call made through a resolved native.
func New(ctx context.Context) *Host {
	return NewWithConfig(ctx, Config{})
}

func NewWithConfig(ctx context.Context, cfg Config) *Host {
	rc := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Host{
		ctx:     ctx,
		rt:      wazero.NewRuntimeWithConfig(ctx, rc),
		modules: make(map[string]api.Module),
		log:     runtime.Logger(),
	}
}

// SetLogger overrides the package logger for this host.
func (h *Host) SetLogger(l *zap.Logger) {
	h.log = l
}

// Instantiate compiles wasmBytes and registers it under name.
func (h *Host) Instantiate(ctx context.Context, name string, wasmBytes []byte) error {
	if _, exists := h.modules[name]; exists {
		return errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("host module %q already instantiated", name))
	}

	compiled, err := h.rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return errors.Load("compile host module "+name, err)
	}
	mod, err := h.rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInstantiation, err, "instantiate host module "+name)
	}
	h.modules[name] = mod

	h.log.Debug("host module instantiated",
		zap.String("name", name),
		zap.Int("exports", len(compiled.ExportedFunctions())))
	return nil
}

// Modules returns the sorted names of the instantiated host modules.
func (h *Host) Modules() []string {
	names := make([]string, 0, len(h.modules))
	for name := range h.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve returns a native that calls export field of host module module.
// Functions with more than one result are not resolvable.
func (h *Host) Resolve(module, field string) (runtime.NativeFunc, bool) {
	mod, ok := h.modules[module]
	if !ok {
		return nil, false
	}
	fn := mod.ExportedFunction(field)
	if fn == nil {
		return nil, false
	}
	def := fn.Definition()
	params, results := def.ParamTypes(), def.ResultTypes()
	if len(results) > 1 {
		h.log.Warn("host export has multiple results",
			zap.String("module", module),
			zap.String("field", field),
			zap.Int("results", len(results)))
		return nil, false
	}

	return func(_ *runtime.InvokeContext, args []wasm.Value) (wasm.Value, error) {
		if len(args) != len(params) {
			return wasm.Value{}, errors.New(errors.PhaseHost, errors.KindArityMismatch).
				Path(module, field).
				Detail("expects %d arguments, got %d", len(params), len(args)).
				Build()
		}
		stack := make([]uint64, len(params))
		for i, arg := range args {
			raw, err := encode(arg, params[i])
			if err != nil {
				err.Path = []string{module, field, fmt.Sprintf("arg%d", i)}
				return wasm.Value{}, err
			}
			stack[i] = raw
		}

		out, err := fn.Call(h.ctx, stack...)
		if err != nil {
			return wasm.Value{}, errors.Wrap(errors.PhaseHost, errors.KindNativeFailure, err, module+"."+field)
		}
		if len(results) == 0 {
			return wasm.Undefined(), nil
		}
		return decode(out[0], results[0])
	}, true
}

// Close closes every host module and the wazero runtime.
func (h *Host) Close(ctx context.Context) error {
	h.modules = make(map[string]api.Module)
	return h.rt.Close(ctx)
}

func encode(v wasm.Value, t api.ValueType) (uint64, *errors.Error) {
	want := valType(t)
	if want == 0 {
		return 0, errors.Unsupported(errors.PhaseHost, "wasm value type "+api.ValueTypeName(t))
	}
	if v.Kind != want {
		return 0, errors.TypeMismatch(errors.PhaseHost, nil, want.String(), v.Kind.String())
	}
	switch t {
	case api.ValueTypeI32:
		n, _ := v.GetI32()
		return api.EncodeI32(n), nil
	case api.ValueTypeI64:
		n, _ := v.GetI64()
		return api.EncodeI64(n), nil
	case api.ValueTypeF32:
		f, _ := v.GetF32()
		return api.EncodeF32(f), nil
	case api.ValueTypeF64:
		f, _ := v.GetF64()
		return api.EncodeF64(f), nil
	}
	return 0, errors.Unsupported(errors.PhaseHost, "wasm value type "+api.ValueTypeName(t))
}

func decode(raw uint64, t api.ValueType) (wasm.Value, error) {
	switch t {
	case api.ValueTypeI32:
		return wasm.I32(api.DecodeI32(raw)), nil
	case api.ValueTypeI64:
		return wasm.I64(int64(raw)), nil
	case api.ValueTypeF32:
		return wasm.F32(api.DecodeF32(raw)), nil
	case api.ValueTypeF64:
		return wasm.F64(api.DecodeF64(raw)), nil
	}
	return wasm.Value{}, errors.Unsupported(errors.PhaseHost, "wasm value type "+api.ValueTypeName(t))
}

func valType(t api.ValueType) wasm.ValType {
	switch t {
	case api.ValueTypeI32:
		return wasm.ValI32
	case api.ValueTypeI64:
		return wasm.ValI64
	case api.ValueTypeF32:
		return wasm.ValF32
	case api.ValueTypeF64:
		return wasm.ValF64
	}
	return 0
}
