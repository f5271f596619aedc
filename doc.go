// Package dukruntime embeds the Duktape script engine in Go programs.
//
// Scripts exchange data with the host through a closed set of tagged values,
// call native Go functions and construct native objects whose state lives on
// the Go side.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	dukruntime/
//	├── value/      Tagged values exchanged with scripts
//	├── cesu8/      CESU-8 transcoding between Go strings and the heap
//	├── errors/     Structured error types for debugging
//	├── resource/   Handle table boxing native closures and instance state
//	├── engine/     Heap ownership, stack marshalling, globals and native bridges
//	├── builtins/   print, assert and console host functions
//	├── runtime/    High-level host registry, TOML config and script files
//	└── cmd/run/    Script runner and interactive REPL
//
// # Quick Start
//
//	e, err := engine.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Close()
//
//	e.RegisterFunc("square", func(inv *engine.Invocation[engine.NoData]) (value.Value, error) {
//	    n := inv.Arg(0).Float()
//	    return value.Number(n * n), nil
//	})
//
//	v, err := e.EvalValue("square(4)") // Number(16)
//
// # Native Objects
//
// Objects are described with a builder and registered as constructors:
//
//	counter := engine.NewObjectBuilder[Counter]().
//	    WithConstructor(initCounter).
//	    WithMethod("inc", inc).
//	    Build()
//	engine.RegisterObject(e, "Counter", counter)
//
// Every instance gets its own zero-initialized Counter, released when the
// script object is collected.
//
// # Errors
//
// A native function returning an error raises a script error that scripts
// may catch. A panic inside a native function is fatal: it is logged,
// reported on stderr and, by default, terminates the process.
//
// # Thread Safety
//
// An Engine must only be used from one goroutine at a time. Native
// callbacks run on the goroutine that called Eval.
package dukruntime
