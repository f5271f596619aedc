package engine

import "github.com/wippyai/duk-runtime/value"

// NoData is the user data type of plain native functions.
type NoData struct{}

// Invocation carries the context of one native call.
type Invocation[T any] struct {
	// Engine is a secondary handle onto the calling heap, valid for the
	// duration of the call.
	Engine *Engine

	// Args holds the call arguments, left to right. Arguments without a
	// value representation appear as absent.
	Args []value.Value

	// Data is the per-instance user data of constructed objects and nil for
	// plain functions.
	Data *T
}

// Arg returns the i-th argument, or absent when fewer were passed.
func (inv *Invocation[T]) Arg(i int) value.Value {
	if i < 0 || i >= len(inv.Args) {
		return value.Absent()
	}
	return inv.Args[i]
}

// Func is a native function callable from script code.
type Func func(inv *Invocation[NoData]) (value.Value, error)

// Constructor initializes the user data of a new instance.
type Constructor[T any] func(inv *Invocation[T])

// Method is a native method bound to instances of a registered object.
type Method[T any] func(inv *Invocation[T]) (value.Value, error)

// Type-erased forms stored in the resource table.
type (
	boundFunc   func(e *Engine, args []value.Value) (value.Value, error)
	boundCtor   func(e *Engine, args []value.Value) any
	boundMethod func(e *Engine, args []value.Value, inst any) (value.Value, error)
)
