package engine

import (
	"unsafe"

	"go.uber.org/zap"
	"gopkg.in/olebedev/go-duktape.v3"

	"github.com/wippyai/duk-runtime/cesu8"
	"github.com/wippyai/duk-runtime/value"
)

// PushValue pushes v onto the value stack. Arrays and maps are rebuilt
// recursively as script arrays and plain objects.
func (e *Engine) PushValue(v value.Value) {
	e.pushValue(v)
}

func (e *Engine) pushValue(v value.Value) {
	if !e.ctx.CheckStack(1) {
		e.heap.fatalPanic("value stack exhausted at depth %d", e.ctx.GetTop())
	}

	switch v.Kind() {
	case value.KindBoolean:
		e.ctx.PushBoolean(v.Bool())
	case value.KindNumber:
		e.ctx.PushNumber(v.Float())
	case value.KindString:
		e.pushString(v.Text())
	case value.KindArray:
		e.ctx.PushArray()
		arr := e.ctx.GetTopIndex()
		for i, item := range v.Slice() {
			e.pushValue(item)
			e.ctx.PutPropIndex(arr, uint(i))
		}
	case value.KindMap:
		e.ctx.PushObject()
		obj := e.ctx.GetTopIndex()
		for _, k := range v.Keys() {
			key, err := encodeKey(k)
			if err != nil {
				e.heap.fatalPanic("cannot push property %q: %v", k, err)
			}
			item, _ := v.Get(k)
			e.pushValue(item)
			e.ctx.PutPropString(obj, key)
		}
	default:
		e.ctx.PushUndefined()
	}
}

// pushString pushes s transcoded for the heap. Strings that cannot be
// transcoded are pushed empty.
func (e *Engine) pushString(s string) {
	enc, err := cesu8.EncodeString(s)
	if err != nil {
		e.heap.log.Warn("pushing empty string in place of invalid text", zap.Error(err))
		enc = ""
	}
	e.ctx.PushLstring(enc, len(enc))
}

// PopValue removes the top stack slot and returns its value.
func (e *Engine) PopValue() (value.Value, bool) {
	return e.PopValueAt(-1)
}

// PopValueAt removes the slot at idx and returns its value. The result is
// false for values without a representation (null, functions, buffers,
// pointers) and for objects whose getters throw while being read; the slot is
// removed regardless. An index with no slot returns false and leaves the
// stack untouched.
func (e *Engine) PopValueAt(idx int) (value.Value, bool) {
	if e.ctx.GetType(idx) == duktape.TypeNone {
		return value.Value{}, false
	}
	abs := e.ctx.NormalizeIndex(idx)
	v, ok, err := e.readSlot(abs)
	e.ctx.Remove(abs)
	if err != nil {
		e.heap.log.Warn("value could not be read", zap.Error(err))
		return value.Value{}, false
	}
	return v, ok
}

// readSlot reads the slot at the absolute index idx without removing it.
// Objects are read from a plain copy built under a protected call, so script
// errors raised by accessors come back as an error instead of unwinding
// through native frames.
func (e *Engine) readSlot(idx int) (value.Value, bool, error) {
	if e.ctx.GetType(idx) != duktape.TypeObject || e.ctx.IsFunction(idx) {
		v, ok := e.readValue(idx, 0)
		return v, ok, nil
	}
	if err := e.snapshot(idx); err != nil {
		return value.Value{}, false, err
	}
	v, ok := e.readValue(e.ctx.GetTopIndex(), 0)
	e.ctx.Pop()
	return v, ok, nil
}

// readValue converts the slot at the absolute index idx. Containers are
// expected to be snapshot copies, which hold plain data only.
func (e *Engine) readValue(idx, depth int) (value.Value, bool) {
	switch e.ctx.GetType(idx) {
	case duktape.TypeUndefined:
		return value.Absent(), true
	case duktape.TypeBoolean:
		return value.Bool(e.ctx.GetBoolean(idx)), true
	case duktape.TypeNumber:
		return value.Number(e.ctx.GetNumber(idx)), true
	case duktape.TypeString:
		return value.String(e.readString(idx)), true
	case duktape.TypeObject:
		if e.ctx.IsFunction(idx) {
			return value.Value{}, false
		}
		if depth >= e.heap.cfg.MaxDepth {
			e.heap.log.Warn("container nested too deep, reading as absent",
				zap.Int("max_depth", e.heap.cfg.MaxDepth))
			return value.Absent(), true
		}
		if e.ctx.IsArray(idx) {
			return e.readArray(idx, depth), true
		}
		return e.readMap(idx, depth), true
	}
	return value.Value{}, false
}

func (e *Engine) readArray(idx, depth int) value.Value {
	n := e.ctx.GetLength(idx)
	items := make([]value.Value, n)
	for i := range items {
		e.ensureStack(1)
		e.ctx.GetPropIndex(idx, uint(i))
		if v, ok := e.readValue(e.ctx.GetTopIndex(), depth+1); ok {
			items[i] = v
		}
		e.ctx.Pop()
	}
	return value.Array(items...)
}

func (e *Engine) readMap(idx, depth int) value.Value {
	e.ensureStack(3)
	entries := make(map[string]value.Value)
	e.ctx.Enum(idx, duktape.EnumOwnPropertiesOnly)
	enum := e.ctx.GetTopIndex()
	for e.ctx.Next(enum, true) {
		key := e.readString(enum + 1)
		v, ok := e.readValue(enum+2, depth+1)
		if !ok {
			v = value.Absent()
		}
		entries[key] = v
		e.ctx.Pop2()
	}
	e.ctx.Pop()
	return value.Map(entries)
}

// readString decodes the string at idx. Malformed text is repaired with
// replacement characters rather than rejected.
func (e *Engine) readString(idx int) string {
	s, ok := cesu8.DecodeLenient(e.rawString(idx))
	if !ok {
		e.heap.log.Warn("replaced malformed text read from the heap")
	}
	return s
}

// rawString returns the bytes of the string at idx, embedded NULs included.
func (e *Engine) rawString(idx int) string {
	e.ensureStack(1)
	e.ctx.Dup(idx)
	defer e.ctx.Pop()
	ptr, n := e.ctx.ToBuffer(-1)
	if n == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}

func (e *Engine) ensureStack(n int) {
	if !e.ctx.CheckStack(n) {
		e.heap.fatalPanic("value stack exhausted at depth %d", e.ctx.GetTop())
	}
}

// encodeKey validates a property name and transcodes it for the heap.
func encodeKey(k string) (string, error) {
	if err := cesu8.ValidateKey(k); err != nil {
		return "", err
	}
	return cesu8.EncodeString(k)
}
