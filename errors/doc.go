// Package errors provides structured error types for the duk-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the property path, Go and script type names, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		Path("config", "depth").
//		GoType("int").
//		ScriptType("string").
//		Detail("cannot read string as integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseConvert, path, "int", "string")
//	err := errors.InvalidUTF8(errors.PhaseEncode, path, raw)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
