// Package resource boxes Go values behind integer handles.
//
// Script engines cannot hold Go pointers, so every native closure, method and
// per-instance payload handed to the heap is stored here and the heap keeps
// only the handle, as a number in a hidden property. When the engine collects
// the owning object, its finalizer removes the handle again.
//
//	table := resource.NewTable()
//	h := table.Insert(resource.KindFunction, fn)
//
//	// in the trampoline
//	fn, ok := resource.Lookup[func()](table, h, resource.KindFunction)
//
//	// in the finalizer
//	table.Remove(h)
//
// Handles grow monotonically and are never reused, so a handle that outlives
// its value resolves to nothing rather than to an unrelated closure.
//
// # Observers
//
// Observers see every insert and removal:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//		log.Printf("%s %s handle=%d", e.Kind, e.Type, e.Handle)
//	}))
//
// A Table is not safe for concurrent use. It belongs to one engine heap, and
// a heap is only ever driven from one goroutine at a time.
package resource
