package engine

import (
	"gopkg.in/olebedev/go-duktape.v3"

	"github.com/wippyai/duk-runtime/resource"
)

// Hidden symbol keys. A leading 0xFF byte keeps them out of reach of script
// code and out of property enumeration.
const (
	hiddenHandle    = "\xff" + "dukRuntimeHandle"
	hiddenInstance  = "\xff" + "dukRuntimeInstance"
	hiddenCarrier   = "\xff" + "dukRuntimeCarrier"
	hiddenFinalizer = "\xff" + "dukRuntimeFinalizer"
	hiddenHelpers   = "\xff" + "dukRuntimeHelpers"
)

// putHandle stores h under key on the object at the absolute index obj.
func putHandle(ctx *duktape.Context, obj int, key string, h resource.Handle) {
	ctx.PushNumber(float64(h))
	ctx.PutPropString(obj, key)
}

// getHandle reads the handle stored under key on the object at idx.
// Non-objects and missing keys yield 0.
func getHandle(ctx *duktape.Context, idx int, key string) resource.Handle {
	if !ctx.IsObject(idx) {
		return 0
	}
	ctx.GetPropString(idx, key)
	defer ctx.Pop()
	if !ctx.IsNumber(-1) {
		return 0
	}
	return resource.Handle(ctx.GetNumber(-1))
}

// installFinalizer stores the one native finalizer shared by every carrier
// of the heap in the heap stash. The binding would normally give the function
// a finalizer of its own that unregisters it; that finalizer is removed so
// the function stays callable while heap destruction finalizes carriers in
// arbitrary order. Close unregisters it once the heap is gone.
func (h *heapState) installFinalizer(ctx *duktape.Context) {
	ctx.PushHeapStash()
	ctx.PushGoFunction(h.finalize)
	ctx.PushUndefined()
	ctx.SetFinalizer(-2)
	ctx.PutPropString(-2, hiddenFinalizer)
	ctx.Pop()
}

// attachCarrier ties the lifetime of h to the object at the absolute index
// obj. The carrier is a plain object referenced only by obj, so its
// finalizer runs once obj is collected or the heap is destroyed.
func (e *Engine) attachCarrier(obj int, h resource.Handle) {
	e.ensureStack(3)
	e.ctx.PushObject()
	carrier := e.ctx.GetTopIndex()
	putHandle(e.ctx, carrier, hiddenHandle, h)
	e.ctx.PushHeapStash()
	e.ctx.GetPropString(-1, hiddenFinalizer)
	e.ctx.Remove(-2)
	e.ctx.SetFinalizer(carrier)
	e.ctx.PutPropString(obj, hiddenCarrier)
}

// finalize runs as the carrier finalizer and releases its boxed value. During
// Close the table is already empty and nothing is left to release.
func (h *heapState) finalize(ctx *duktape.Context) int {
	if h.closed {
		return 0
	}
	handle := getHandle(ctx, 0, hiddenHandle)
	_ = h.guard("finalizer", func() error {
		h.table.Remove(handle)
		return nil
	})
	return 0
}
