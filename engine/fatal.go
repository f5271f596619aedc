package engine

import (
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/duk-runtime/errors"
)

// Return codes understood by the engine's native call wrapper. A negative
// result makes the engine throw an error of the matching class.
const (
	retError      = -1
	retRangeError = -3
	retTypeError  = -6
)

// FatalError is reported when a native callback panics or the heap reaches a
// state it cannot recover from.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string {
	return "fatal error from duktape: " + e.Message
}

// fatal reports msg on every channel and runs the configured handler. It only
// returns when a custom handler does.
func (h *heapState) fatal(msg string) *FatalError {
	h.log.Error("fatal engine error", zap.String("message", msg), zap.Stack("stack"))
	fmt.Fprintf(h.cfg.Stderr, "fatal error from duktape: %s\n", msg)
	h.cfg.FatalHandler(msg)
	return &FatalError{Message: msg}
}

// fatalPanic is for call sites that cannot leave the stack consistent.
// Inside a native call the panic is caught by guard without a second report.
func (h *heapState) fatalPanic(format string, args ...any) {
	panic(h.fatal(fmt.Sprintf(format, args...)))
}

// guard runs fn and turns any panic into a reported fatal error.
func (h *heapState) guard(name string, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if fe, ok := r.(*FatalError); ok {
			err = fe
			return
		}
		err = h.fatal(fmt.Sprintf("panic in native %s: %v", name, r))
	}()
	return fn()
}

// fail records err for the enclosing Eval and picks the script error class.
func (h *heapState) fail(name string, err error) int {
	h.pending = err
	h.log.Debug("native call failed", zap.String("name", name), zap.Error(err))
	return errorCode(err)
}

func errorCode(err error) int {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return retError
	}
	switch e.Kind {
	case errors.KindTypeMismatch:
		return retTypeError
	case errors.KindOutOfBounds, errors.KindOverflow:
		return retRangeError
	}
	return retError
}
