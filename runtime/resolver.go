package runtime

import (
	"github.com/wippyai/wasm-jit-runtime/wasm"
)

// NativeFunc implements a native import. args are already decoded with the
// import's declared parameter kinds. A function with no result returns
// wasm.Undefined(). A non-nil error faults the caller.
type NativeFunc func(ctx *InvokeContext, args []wasm.Value) (wasm.Value, error)

// A NativeResolver binds native imports by module and field name.
type NativeResolver interface {
	Resolve(module, field string) (NativeFunc, bool)
}

// ResolverFunc adapts a function to NativeResolver.
type ResolverFunc func(module, field string) (NativeFunc, bool)

func (f ResolverFunc) Resolve(module, field string) (NativeFunc, bool) {
	return f(module, field)
}

// MapResolver resolves from a map keyed by "module.field".
type MapResolver map[string]NativeFunc

func (m MapResolver) Resolve(module, field string) (NativeFunc, bool) {
	fn, ok := m[module+"."+field]
	return fn, ok && fn != nil
}

// MultiResolver chains resolvers in order. The first match wins.
type MultiResolver []NativeResolver

func NewMultiResolver(resolvers ...NativeResolver) MultiResolver {
	return resolvers
}

func (m MultiResolver) Resolve(module, field string) (NativeFunc, bool) {
	for _, r := range m {
		if fn, ok := r.Resolve(module, field); ok {
			return fn, true
		}
	}
	return nil, false
}
