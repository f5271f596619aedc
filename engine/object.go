package engine

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/olebedev/go-duktape.v3"

	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/resource"
	"github.com/wippyai/duk-runtime/value"
)

// RegisterObject exposes obj as the global constructor name. Each method is
// installed on the constructor's prototype. Instances created with new get a
// fresh *T, passed to the constructor and to every method call on that
// instance. An Object can be registered once.
func RegisterObject[T any](e *Engine, name string, obj *Object[T]) error {
	if obj == nil {
		return errors.Registration("object", name, errors.NilPointer(errors.PhaseRegister, nil, "*engine.Object"))
	}
	if obj.consumed {
		return errors.Registration("object", name,
			errors.InvalidInput(errors.PhaseRegister, "object template already registered"))
	}
	if e.heap.closed {
		return errors.Closed(errors.PhaseRegister)
	}

	key, err := globalKey(name)
	if err != nil {
		return errors.Registration("object", name, err)
	}
	methods := obj.Methods()
	methodKeys := make([]string, len(methods))
	for i, m := range methods {
		if obj.methods[m] == nil {
			return errors.Registration("method", name+"."+m, errors.NilPointer(errors.PhaseRegister, nil, "engine.Method"))
		}
		if methodKeys[i], err = encodeKey(m); err != nil {
			return errors.Registration("method", name+"."+m, err)
		}
	}
	obj.consumed = true

	top := e.ctx.GetTop()
	defer e.ctx.SetTop(top)

	ctor := obj.ctor
	ch, err := e.box(resource.KindConstructor, name, boundCtor(func(ce *Engine, args []value.Value) any {
		inv := &Invocation[T]{Engine: ce, Args: args, Data: new(T)}
		if ctor != nil {
			ctor(inv)
		}
		// the call handle is only valid during the constructor call
		inv.Engine = nil
		inv.Args = nil
		return inv
	}))
	if err != nil {
		return err
	}
	fn := e.pushTrampoline(ch, e.heap.callConstructor)

	e.ensureStack(1)
	e.ctx.PushObject()
	proto := e.ctx.GetTopIndex()
	for i, m := range methods {
		method := obj.methods[m]
		mh, err := e.box(resource.KindMethod, name+"."+m, boundMethod(func(ce *Engine, args []value.Value, inst any) (value.Value, error) {
			inv, ok := inst.(*Invocation[T])
			if !ok {
				return value.Value{}, errors.TypeMismatch(errors.PhaseHost, []string{name, m},
					fmt.Sprintf("*engine.Invocation[%T]", *new(T)), "foreign instance")
			}
			// methods may re-enter each other on the same instance
			prevEngine, prevArgs := inv.Engine, inv.Args
			inv.Engine, inv.Args = ce, args
			defer func() {
				inv.Engine, inv.Args = prevEngine, prevArgs
			}()
			return method(inv)
		}))
		if err != nil {
			return err
		}
		e.pushTrampoline(mh, e.heap.callMethod)
		e.ctx.PutPropString(proto, methodKeys[i])
	}
	e.ctx.PutPropString(fn, "prototype")
	e.ctx.PutGlobalString(key)

	e.heap.log.Debug("object registered",
		zap.String("name", name),
		zap.Bool("constructor", ctor != nil),
		zap.Strings("methods", methods))
	return nil
}

// callConstructor is the trampoline of every registered object constructor.
func (h *heapState) callConstructor(ctx *duktape.Context) int {
	e := h.secondary(ctx)
	h.pending = nil

	if !ctx.IsConstructorCall() {
		fe := h.fatal("native constructor called without new")
		return h.fail("constructor", fe)
	}

	handle := e.calleeHandle()
	ctor, ok := resource.Lookup[boundCtor](h.table, handle, resource.KindConstructor)
	if !ok {
		return h.fail("constructor", errors.NotFound(errors.PhaseHost, "native constructor", strconv.FormatUint(uint64(handle), 10)))
	}

	var inst any
	err := h.guard("constructor", func() error {
		args, err := e.drainArgs()
		if err != nil {
			return err
		}
		inst = ctor(e, args)
		return nil
	})
	if err != nil {
		ctx.SetTop(0)
		return h.fail("constructor", err)
	}

	ih, err := e.box(resource.KindInstance, "instance", inst)
	if err != nil {
		return h.fail("constructor", err)
	}
	e.ensureStack(1)
	ctx.PushThis()
	this := ctx.GetTopIndex()
	putHandle(ctx, this, hiddenInstance, ih)
	e.attachCarrier(this, ih)
	ctx.Pop()
	return 0
}

// callMethod is the trampoline of every registered object method.
func (h *heapState) callMethod(ctx *duktape.Context) int {
	e := h.secondary(ctx)
	h.pending = nil

	handle := e.calleeHandle()
	method, ok := resource.Lookup[boundMethod](h.table, handle, resource.KindMethod)
	if !ok {
		return h.fail("method", errors.NotFound(errors.PhaseHost, "native method", strconv.FormatUint(uint64(handle), 10)))
	}

	e.ensureStack(1)
	ctx.PushThis()
	ih := getHandle(ctx, -1, hiddenInstance)
	this := typeName(ctx, -1)
	ctx.Pop()
	inst, ok := h.table.GetTyped(ih, resource.KindInstance)
	if !ok {
		return h.fail("method", errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			ScriptType(this).
			Detail("method called without its instance").
			Build())
	}

	err := h.guard("method", func() error {
		args, err := e.drainArgs()
		if err != nil {
			return err
		}
		result, err := method(e, args, inst)
		if err != nil {
			return err
		}
		e.pushValue(result)
		return nil
	})
	if err != nil {
		ctx.SetTop(0)
		return h.fail("method", err)
	}
	return 1
}
