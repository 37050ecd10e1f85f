// Package errors provides structured error types for the runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries context: a dotted path into the module, the Go and
// VM value kinds involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseHost, errors.KindTypeMismatch).
//		Path("natives", "3").
//		VMType("f64").
//		Detail("native returned %s, declared %s", "f64", "i32").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseRuntime, []string{"tables", "0"}, 7, 4)
//	err := errors.AlreadyInitialized(errors.PhaseRuntime, "native resolver")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
