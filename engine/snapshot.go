package engine

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/olebedev/go-duktape.v3"

	"github.com/wippyai/duk-runtime/errors"
)

// helperSource evaluates to a factory for the script helpers the engine keeps
// in the heap stash. It runs before any user code, so the builtins it
// captures are the original ones.
//
// snapshot(v) returns [copy, notes]: copy is v rebuilt from plain arrays and
// prototype-less objects holding own enumerable data only. Getters and proxy
// traps run here, inside a protected call, instead of during the native read.
// Buffers become null. notes has bit 1 set when a container was cut at the
// depth limit and bit 2 when an array was over the length limit.
//
// describe(err) returns [name, message, fileName, lineNumber] for a thrown
// value without letting a throwing accessor escape.
const helperSource = `(function (maxDepth, maxLength) {
	var keys = Object.keys, create = Object.create, isArray = Array.isArray;
	var isView = ArrayBuffer.isView, AB = ArrayBuffer, U8 = Uint8Array;

	function snapshot(v) {
		var notes = 0;
		function copy(v, depth) {
			var out, i, n, k;
			if (v === null || typeof v !== 'object') {
				return v;
			}
			if (v instanceof AB || v instanceof U8 || isView(v)) {
				return null;
			}
			if (depth >= maxDepth) {
				notes |= 1;
				return undefined;
			}
			if (isArray(v)) {
				n = v.length;
				if (n > maxLength) {
					notes |= 2;
					return undefined;
				}
				out = [];
				for (i = 0; i < n; i++) {
					out[i] = copy(v[i], depth + 1);
				}
				return out;
			}
			out = create(null);
			k = keys(v);
			for (i = 0; i < k.length; i++) {
				out[k[i]] = copy(v[k[i]], depth + 1);
			}
			return out;
		}
		var c = copy(v, 0);
		return [c, notes];
	}

	function field(err, key) {
		try {
			return err[key];
		} catch (e) {
			return undefined;
		}
	}

	function describe(err) {
		var d = ['', '', '', 0], v;
		if (err !== null && (typeof err === 'object' || typeof err === 'function')) {
			v = field(err, 'name');
			if (typeof v === 'string') d[0] = v;
			v = field(err, 'message');
			if (typeof v === 'string') d[1] = v;
			v = field(err, 'fileName');
			if (typeof v === 'string') d[2] = v;
			v = field(err, 'lineNumber');
			if (typeof v === 'number' && v === v) d[3] = v;
		}
		if (d[0] === '' && d[1] === '') {
			try {
				d[1] = String(err);
			} catch (e) {
				d[1] = 'unprintable error value';
			}
		}
		return d;
	}

	return { snapshot: snapshot, describe: describe };
})`

// Bits of the notes slot returned by the snapshot helper.
const (
	noteDepth  = 1
	noteLength = 2
)

// installHelpers compiles the script helpers and stores them in the heap
// stash.
func (h *heapState) installHelpers(ctx *duktape.Context) error {
	ctx.PushHeapStash()
	ctx.PushString(helperSource)
	ctx.PushString("helpers")
	if err := ctx.Pcompile(0); err != nil {
		ctx.SetTop(0)
		return errors.Wrap(errors.PhaseRuntime, errors.KindNotInitialized, err, "compiling engine helpers")
	}
	if rc := ctx.Pcall(0); rc != duktape.ExecSuccess {
		msg := ctx.SafeToString(-1)
		ctx.SetTop(0)
		return errors.New(errors.PhaseRuntime, errors.KindNotInitialized).
			Detail("loading engine helpers: %s", msg).
			Build()
	}
	ctx.PushNumber(float64(h.cfg.MaxDepth))
	ctx.PushNumber(float64(h.cfg.MaxArrayLength))
	if rc := ctx.Pcall(2); rc != duktape.ExecSuccess {
		msg := ctx.SafeToString(-1)
		ctx.SetTop(0)
		return errors.New(errors.PhaseRuntime, errors.KindNotInitialized).
			Detail("creating engine helpers: %s", msg).
			Build()
	}
	ctx.PutPropString(-2, hiddenHelpers)
	ctx.Pop()
	return nil
}

// pushHelper pushes the stash helper function name.
func (e *Engine) pushHelper(name string) {
	e.ensureStack(3)
	e.ctx.PushHeapStash()
	e.ctx.GetPropString(-1, hiddenHelpers)
	e.ctx.GetPropString(-1, name)
	e.ctx.Remove(-2)
	e.ctx.Remove(-2)
}

// snapshot pushes a plain copy of the object at the absolute index idx. If
// building the copy throws, nothing is pushed and the thrown value is
// returned as a *ScriptError.
func (e *Engine) snapshot(idx int) error {
	e.pushHelper("snapshot")
	e.ctx.Dup(idx)
	if rc := e.ctx.Pcall(1); rc != duktape.ExecSuccess {
		err := e.scriptError("")
		e.ctx.Pop()
		return err
	}

	e.ensureStack(1)
	e.ctx.GetPropIndex(-1, 1)
	notes := int(e.ctx.GetNumber(-1))
	e.ctx.Pop()
	if notes&noteDepth != 0 {
		e.heap.log.Warn("container nested too deep, reading as absent",
			zap.Int("max_depth", e.heap.cfg.MaxDepth))
	}
	if notes&noteLength != 0 {
		e.heap.log.Warn("array too long, reading as absent",
			zap.Int("max_array_length", e.heap.cfg.MaxArrayLength))
	}

	e.ctx.GetPropIndex(-1, 0)
	e.ctx.Remove(-2)
	return nil
}

// describe extracts the error fields of the thrown value at idx.
func (e *Engine) describe(idx int, se *ScriptError) {
	abs := e.ctx.NormalizeIndex(idx)
	e.pushHelper("describe")
	e.ctx.Dup(abs)
	if rc := e.ctx.Pcall(1); rc != duktape.ExecSuccess {
		e.ctx.Pop()
		se.Message = fmt.Sprintf("unreadable %s thrown", typeName(e.ctx, abs))
		return
	}
	defer e.ctx.Pop()

	e.ensureStack(1)
	str := func(i uint) string {
		e.ctx.GetPropIndex(-1, i)
		defer e.ctx.Pop()
		return e.readString(-1)
	}
	se.Name = str(0)
	se.Message = str(1)
	if f := str(2); f != "" {
		se.FileName = f
	}
	e.ctx.GetPropIndex(-1, 3)
	se.Line = int(e.ctx.GetNumber(-1))
	e.ctx.Pop()
}

// typeName names the script type of the slot at idx.
func typeName(ctx *duktape.Context, idx int) string {
	switch ctx.GetType(idx) {
	case duktape.TypeNone:
		return "nothing"
	case duktape.TypeUndefined:
		return "undefined"
	case duktape.TypeNull:
		return "null"
	case duktape.TypeBoolean:
		return "boolean"
	case duktape.TypeNumber:
		return "number"
	case duktape.TypeString:
		return "string"
	case duktape.TypeBuffer:
		return "buffer"
	case duktape.TypePointer:
		return "pointer"
	case duktape.TypeLightFunc:
		return "function"
	}
	if ctx.IsFunction(idx) {
		return "function"
	}
	return "object"
}
