package engine

import (
	"maps"
	"slices"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/olebedev/go-duktape.v3"

	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/resource"
	"github.com/wippyai/duk-runtime/value"
)

// RegisterFunc exposes fn as the global function name. Registering the same
// name again replaces the previous function; its closure is released once
// the engine collects the old function object.
func (e *Engine) RegisterFunc(name string, fn Func) error {
	if fn == nil {
		return errors.Registration("function", name, errors.NilPointer(errors.PhaseRegister, nil, "engine.Func"))
	}
	if e.heap.closed {
		return errors.Closed(errors.PhaseRegister)
	}
	key, err := globalKey(name)
	if err != nil {
		return errors.Registration("function", name, err)
	}

	bound := boundFunc(func(ce *Engine, args []value.Value) (value.Value, error) {
		return fn(&Invocation[NoData]{Engine: ce, Args: args})
	})
	h, err := e.box(resource.KindFunction, name, bound)
	if err != nil {
		return err
	}

	e.pushTrampoline(h, e.heap.callFunction)
	e.ctx.PutGlobalString(key)
	e.heap.log.Debug("function registered", zap.String("name", name), zap.Uint32("handle", uint32(h)))
	return nil
}

// box stores v in the resource table.
func (e *Engine) box(kind resource.Kind, name string, v any) (resource.Handle, error) {
	h := e.heap.table.Insert(kind, v)
	if h == 0 {
		return 0, errors.Registration(kind.String(), name,
			errors.New(errors.PhaseRegister, errors.KindOutOfBounds).Detail("no handle available").Build())
	}
	return h, nil
}

// pushTrampoline pushes a native function that dispatches to the boxed value
// h through call, and returns its absolute stack index.
func (e *Engine) pushTrampoline(h resource.Handle, call func(*duktape.Context) int) int {
	e.ensureStack(2)
	e.ctx.PushGoFunction(call)
	fn := e.ctx.GetTopIndex()
	putHandle(e.ctx, fn, hiddenHandle, h)
	e.attachCarrier(fn, h)
	return fn
}

// drainArgs reads every call argument and clears the stack. An argument
// whose accessors throw while being read fails the whole call.
func (e *Engine) drainArgs() ([]value.Value, error) {
	n := e.ctx.GetTop()
	args := make([]value.Value, n)
	for i := range args {
		v, ok, err := e.readSlot(i)
		if err != nil {
			e.ctx.SetTop(0)
			return nil, errors.InvalidData(errors.PhaseDecode, []string{strconv.Itoa(i)}, err.Error())
		}
		if ok {
			args[i] = v
		}
	}
	e.ctx.SetTop(0)
	return args, nil
}

// calleeHandle returns the handle stored on the running native function.
func (e *Engine) calleeHandle() resource.Handle {
	e.ensureStack(2)
	e.ctx.PushCurrentFunction()
	defer e.ctx.Pop()
	return getHandle(e.ctx, -1, hiddenHandle)
}

// callFunction is the trampoline of every registered function.
func (h *heapState) callFunction(ctx *duktape.Context) int {
	e := h.secondary(ctx)
	h.pending = nil

	handle := e.calleeHandle()
	fn, ok := resource.Lookup[boundFunc](h.table, handle, resource.KindFunction)
	if !ok {
		return h.fail("function", errors.NotFound(errors.PhaseHost, "native function", strconv.FormatUint(uint64(handle), 10)))
	}

	err := h.guard("function", func() error {
		args, err := e.drainArgs()
		if err != nil {
			return err
		}
		result, err := fn(e, args)
		if err != nil {
			return err
		}
		e.pushValue(result)
		return nil
	})
	if err != nil {
		ctx.SetTop(0)
		return h.fail("function", err)
	}
	return 1
}

// RegisterNamespace exposes funcs as function properties of the global object
// name, creating it when absent. Functions already present on an existing
// object are replaced by name.
func (e *Engine) RegisterNamespace(name string, funcs map[string]Func) error {
	if e.heap.closed {
		return errors.Closed(errors.PhaseRegister)
	}
	key, err := globalKey(name)
	if err != nil {
		return errors.Registration("namespace", name, err)
	}
	names := slices.Sorted(maps.Keys(funcs))
	keys := make([]string, len(names))
	for i, n := range names {
		if funcs[n] == nil {
			return errors.Registration("function", name+"."+n, errors.NilPointer(errors.PhaseRegister, nil, "engine.Func"))
		}
		if keys[i], err = encodeKey(n); err != nil {
			return errors.Registration("function", name+"."+n, err)
		}
	}

	top := e.ctx.GetTop()
	defer e.ctx.SetTop(top)

	e.ensureStack(1)
	e.ctx.GetGlobalString(key)
	if !e.ctx.IsObject(-1) || e.ctx.IsFunction(-1) {
		e.ctx.Pop()
		e.ctx.PushObject()
	}
	ns := e.ctx.GetTopIndex()

	for i, n := range names {
		fn := funcs[n]
		h, err := e.box(resource.KindFunction, name+"."+n, boundFunc(func(ce *Engine, args []value.Value) (value.Value, error) {
			return fn(&Invocation[NoData]{Engine: ce, Args: args})
		}))
		if err != nil {
			return err
		}
		e.pushTrampoline(h, e.heap.callFunction)
		e.ctx.PutPropString(ns, keys[i])
	}
	e.ctx.PutGlobalString(key)

	e.heap.log.Debug("namespace registered", zap.String("name", name), zap.Strings("functions", names))
	return nil
}
