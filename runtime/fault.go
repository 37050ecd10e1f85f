package runtime

import (
	stderrors "errors"

	"github.com/wippyai/wasm-jit-runtime/errors"
)

// Fault is the panic value raised by operations that cannot continue:
// bad configuration, double attachment, memory limit, arity mismatch,
// null table entries, unresolved imports and failing natives.
//
// Faults terminate the current execution context. Embedders that want to
// survive one wrap the call with Capture.
type Fault struct {
	Err *errors.Error
}

func (f *Fault) Error() string {
	return "fault: " + f.Err.Error()
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Throw raises err as a Fault.
func Throw(err *errors.Error) {
	panic(&Fault{Err: err})
}

// Capture recovers a Fault into *err. Any other panic is re-raised.
// It must be deferred directly:
//
//	defer runtime.Capture(&err)
func Capture(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if f, ok := r.(*Fault); ok {
		*err = f
		return
	}
	panic(r)
}

// IsFault reports whether err carries a Fault.
func IsFault(err error) bool {
	var f *Fault
	return stderrors.As(err, &f)
}

// asError converts err into a structured error, keeping it when it already is one.
func asError(phase errors.Phase, kind errors.Kind, err error, detail string) *errors.Error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e
	}
	return errors.Wrap(phase, kind, err, detail)
}
