// Package engine embeds the Duktape ECMAScript engine.
//
// An Engine owns one Duktape heap. It moves value.Value trees across the
// heap boundary, evaluates script code, and exposes Go functions and objects
// as script globals.
//
// # Values
//
// PushValue and PopValue translate between value.Value and the engine's
// value stack:
//
//	Value kind     Script value
//	──────────────────────────────────────
//	Absent         undefined
//	Boolean        boolean
//	Number         number
//	String         string (transcoded to CESU-8)
//	Array          array, rebuilt element by element
//	Map            plain object, own enumerable properties
//
// null, functions, buffers and pointers have no Value form. Reading them
// reports false; nested inside a container they read as Absent. Strings may
// contain NUL characters in both directions.
//
// Objects are copied by a script helper under a protected call before they
// are read, so getters and proxy traps run before any native code sees the
// value. A getter that throws makes the read report false, fails the native
// call whose argument it was, or turns into the *ScriptError of EvalValue.
// Containers deeper than Config.MaxDepth and arrays longer than
// Config.MaxArrayLength read as Absent.
//
// # Native functions
//
//	err := e.RegisterFunc("square", func(inv *engine.Invocation[engine.NoData]) (value.Value, error) {
//		n := inv.Arg(0).Float()
//		return value.Number(n * n), nil
//	})
//
// A returned error raises a script error. Its class follows the error kind:
// type_mismatch raises TypeError, out_of_bounds and overflow raise
// RangeError, anything else raises Error. The host error is available as the
// Cause of the *ScriptError returned by the enclosing Eval.
//
// RegisterNamespace groups functions under one global object, for example
// fs.read and fs.write.
//
// # Native objects
//
//	counter := engine.NewObjectBuilder[Counter]().
//		WithConstructor(newCounter).
//		WithMethod("inc", inc).
//		Build()
//	err := engine.RegisterObject(e, "Counter", counter)
//
// Every instance created with new gets its own zero-valued *Counter.
//
// # Lifetimes
//
// Closures and instance data are boxed in a resource table; the heap only
// stores their handles in hidden properties. A finalizer releases each
// handle when its owner is collected. Close releases the rest before it
// destroys the heap.
//
// # Fatal errors
//
// A panic inside a native callback is fatal. The engine logs it, writes
// "fatal error from duktape: <message>" to stderr and calls
// Config.FatalHandler, which exits the process by default.
package engine
