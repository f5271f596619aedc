package engine

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/value"
)

// SetGlobal assigns v to the global name. The name and every nested map key
// are validated before anything touches the heap.
func (e *Engine) SetGlobal(name string, v value.Value) error {
	if e.heap.closed {
		return errors.Closed(errors.PhaseEncode)
	}
	key, err := globalKey(name)
	if err != nil {
		return err
	}
	if err := validateKeys(v, []string{name}); err != nil {
		return err
	}

	e.pushValue(v)
	e.ctx.PutGlobalString(key)
	e.heap.log.Debug("global set", zap.String("name", name), zap.Stringer("kind", v.Kind()))
	return nil
}

// GetGlobal reads the global name. It reports false when the global is
// missing, undefined or has no value representation.
func (e *Engine) GetGlobal(name string) (value.Value, bool) {
	if e.heap.closed {
		return value.Value{}, false
	}
	key, err := globalKey(name)
	if err != nil {
		return value.Value{}, false
	}

	e.ensureStack(1)
	e.ctx.GetGlobalString(key)
	v, ok := e.PopValue()
	if !ok || v.IsAbsent() {
		return value.Value{}, false
	}
	return v, true
}

func globalKey(name string) (string, error) {
	if name == "" {
		return "", errors.InvalidInput(errors.PhaseEncode, "global name is empty")
	}
	return encodeKey(name)
}

// validateKeys walks v and rejects map keys that cannot become property names.
func validateKeys(v value.Value, path []string) error {
	switch v.Kind() {
	case value.KindArray:
		for i, item := range v.Slice() {
			if err := validateKeys(item, append(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
	case value.KindMap:
		for _, k := range v.Keys() {
			if _, err := encodeKey(k); err != nil {
				if ee, ok := err.(*errors.Error); ok {
					ee.Path = append(append([]string(nil), path...), ee.Path...)
				}
				return err
			}
			item, _ := v.Get(k)
			if err := validateKeys(item, append(path, k)); err != nil {
				return err
			}
		}
	}
	return nil
}
