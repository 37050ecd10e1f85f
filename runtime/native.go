package runtime

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-jit-runtime/errors"
	"github.com/wippyai/wasm-jit-runtime/wasm"
)

// nativeCell is one import slot. fn stays nil until the first call or
// ResolveNatives binds it.
type nativeCell struct {
	module  string
	field   string
	typeIdx uint32
	fn      NativeFunc
}

func (c *nativeCell) key() string {
	return c.module + "." + c.field
}

// SetNativeResolver attaches res. A second call faults.
func (r *Runtime) SetNativeResolver(res NativeResolver) {
	if !r.resolver.Set(res) {
		r.fault(errors.AlreadyInitialized(errors.PhaseHost, "native resolver"))
	}
	r.log.Debug("native resolver attached")
}

// ResolveNatives binds every import that is still unresolved. It returns a
// *errors.MissingImportsError naming the ones the resolver does not know,
// so an embedder can fail before running anything.
func (r *Runtime) ResolveNatives() error {
	res, ok := r.resolver.Get()
	if !ok {
		return errors.NotInitialized(errors.PhaseHost, "native resolver")
	}

	var missing []string
	for i := range r.natives {
		cell := &r.natives[i]
		if cell.fn != nil {
			continue
		}
		fn, ok := res.Resolve(cell.module, cell.field)
		if !ok {
			missing = append(missing, cell.key())
			continue
		}
		cell.fn = fn
	}
	if len(missing) > 0 {
		r.log.Warn("unresolved native imports", zap.Strings("imports", missing))
		return errors.NewMissingImportsError(missing)
	}
	return nil
}

// InvokeRequest collects raw argument slots for one native call.
type InvokeRequest struct {
	args []int64
}

// BeginInvoke starts a native call expecting nArgs arguments.
func (r *Runtime) BeginInvoke(nArgs int) *InvokeRequest {
	return &InvokeRequest{args: make([]int64, 0, max(nArgs, 0))}
}

// Push appends one raw argument slot. Arguments go in declaration order.
func (q *InvokeRequest) Push(arg int64) {
	q.args = append(q.args, arg)
}

// Len returns the number of slots pushed so far.
func (q *InvokeRequest) Len() int {
	return len(q.args)
}

// CompleteInvoke calls native import id with the pushed arguments and
// returns the result as a raw slot, 0 when there is none.
//
// The pushed count must equal the import's arity. Arguments are decoded
// with the declared kinds, and the import is resolved on first use. Every
// failure along the way faults.
func (r *Runtime) CompleteInvoke(req *InvokeRequest, id int) int64 {
	if id < 0 || id >= len(r.natives) {
		r.fault(errors.OutOfBounds(errors.PhaseHost, []string{"natives"}, id, len(r.natives)))
	}
	cell := &r.natives[id]
	sig := &r.module.Types[cell.typeIdx]

	if len(req.args) != len(sig.Params) {
		r.fault(errors.New(errors.PhaseHost, errors.KindArityMismatch).
			Path("natives", strconv.Itoa(id)).
			Detail("%s expects %d arguments, got %d", cell.key(), len(sig.Params), len(req.args)).
			Build())
	}

	args := make([]wasm.Value, len(req.args))
	for i, raw := range req.args {
		args[i] = wasm.ReinterpretFromI64(raw, sig.Params[i])
	}

	fn := r.nativeFunc(id)
	ret, err := fn(&InvokeContext{rt: r}, args)
	if err != nil {
		r.fault(errors.New(errors.PhaseHost, errors.KindNativeFailure).
			Path("natives", strconv.Itoa(id)).
			Detail("%s failed", cell.key()).
			Cause(err).
			Build())
	}
	if want, ok := sig.Result(); ok && !ret.IsUndefined() && ret.Kind != want {
		r.fault(errors.TypeMismatch(errors.PhaseHost, []string{"natives", strconv.Itoa(id), "result"},
			want.String(), ret.Kind.String()))
	}

	r.metrics.nativeCall(cell.module, cell.field)
	return ret.ReinterpretAsI64()
}

// nativeFunc returns the bound function for import id, resolving it first
// when needed.
func (r *Runtime) nativeFunc(id int) NativeFunc {
	cell := &r.natives[id]
	if cell.fn != nil {
		return cell.fn
	}

	res, ok := r.resolver.Get()
	if !ok {
		r.fault(errors.NotInitialized(errors.PhaseHost, "native resolver"))
	}
	fn, ok := res.Resolve(cell.module, cell.field)
	if !ok {
		r.fault(errors.New(errors.PhaseHost, errors.KindMissingImport).
			Path("natives", strconv.Itoa(id)).
			Detail("%s can't be resolved", cell.key()).
			Build())
	}
	cell.fn = fn
	r.log.Debug("native import resolved",
		zap.Int("id", id),
		zap.String("module", cell.module),
		zap.String("field", cell.field))
	return fn
}
