package engine

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/olebedev/go-duktape.v3"

	"github.com/wippyai/duk-runtime/cesu8"
	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/value"
)

// DefaultFilename names evaluated code in script error locations.
const DefaultFilename = "input"

// EvalOptions configures a single evaluation.
type EvalOptions struct {
	// Filename is reported in error locations and stack traces.
	Filename string
}

// ScriptError is a failure raised while compiling or running script code.
type ScriptError struct {
	// Cause is the host error returned by the native callback that raised
	// the script error, if any.
	Cause    error
	Name     string
	Message  string
	FileName string
	Line     int
}

func (e *ScriptError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg = e.Name + ": " + msg
	}
	if e.FileName != "" {
		msg = fmt.Sprintf("%s (%s:%d)", msg, e.FileName, e.Line)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// Eval compiles and runs src as global code.
func (e *Engine) Eval(src string) error {
	_, err := e.eval(src, nil, false)
	return err
}

// EvalWithOptions compiles and runs src as global code.
func (e *Engine) EvalWithOptions(src string, opts *EvalOptions) error {
	_, err := e.eval(src, opts, false)
	return err
}

// EvalValue compiles and runs src and returns its completion value. Values
// without a representation come back as absent.
func (e *Engine) EvalValue(src string) (value.Value, error) {
	return e.eval(src, nil, true)
}

func (e *Engine) eval(src string, opts *EvalOptions, keep bool) (value.Value, error) {
	if e.heap.closed {
		return value.Value{}, errors.Closed(errors.PhaseEval)
	}

	filename := DefaultFilename
	if opts != nil && opts.Filename != "" {
		filename = opts.Filename
	}

	code, err := cesu8.EncodeString(src)
	if err != nil {
		return value.Value{}, errors.Wrap(errors.PhaseEval, errors.KindInvalidUTF8, err, "source of "+filename)
	}
	name, err := encodeKey(filename)
	if err != nil {
		return value.Value{}, errors.Wrap(errors.PhaseEval, errors.KindInvalidInput, err, "filename")
	}

	top := e.ctx.GetTop()
	defer e.ctx.SetTop(top)
	e.heap.pending = nil

	e.ensureStack(2)
	e.ctx.PushLstring(code, len(code))
	e.ctx.PushString(name)
	if err := e.ctx.Pcompile(0); err != nil {
		return value.Value{}, e.scriptError(filename)
	}
	if rc := e.ctx.Pcall(0); rc != duktape.ExecSuccess {
		return value.Value{}, e.scriptError(filename)
	}

	if !keep {
		return value.Value{}, nil
	}
	v, ok, err := e.readSlot(e.ctx.GetTopIndex())
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		return value.Absent(), nil
	}
	return v, nil
}

// scriptError converts the thrown value on top of the stack. Compile errors
// arrive the same way.
func (e *Engine) scriptError(filename string) *ScriptError {
	se := &ScriptError{FileName: filename}
	e.describe(-1, se)

	se.Cause = e.heap.pending
	e.heap.pending = nil

	e.heap.log.Debug("script error",
		zap.String("name", se.Name),
		zap.String("message", se.Message),
		zap.String("file", se.FileName),
		zap.Int("line", se.Line),
		zap.NamedError("cause", se.Cause))
	return se
}
