package builtins

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/duk-runtime/engine"
	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/value"
)

// Names of the installable builtins.
const (
	NamePrint   = "print"
	NameAssert  = "assert"
	NameConsole = "console"
)

// All lists every builtin in installation order.
var All = []string{NamePrint, NameAssert, NameConsole}

// Options selects and configures builtins. A nil *Options installs All,
// printing to os.Stdout and logging through the engine logger.
type Options struct {
	// Names restricts installation to the listed builtins. Empty means All.
	Names []string

	// Stdout receives print output.
	Stdout io.Writer

	// Logger receives console output.
	Logger *zap.Logger
}

// Install registers the selected builtins as globals of e.
func Install(e *engine.Engine, opts *Options) error {
	var o Options
	if opts != nil {
		o = *opts
	}
	if len(o.Names) == 0 {
		o.Names = All
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = e.Logger()
	}

	for _, name := range o.Names {
		var err error
		switch name {
		case NamePrint:
			err = e.RegisterFunc(NamePrint, Print(o.Stdout))
		case NameAssert:
			err = e.RegisterFunc(NameAssert, Assert())
		case NameConsole:
			err = InstallConsole(e, o.Logger)
		default:
			err = errors.NotFound(errors.PhaseRegister, "builtin", name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Print returns a function writing its arguments, coerced to strings and
// separated by spaces, as one line to out. It returns true.
func Print(out io.Writer) engine.Func {
	return func(inv *engine.Invocation[engine.NoData]) (value.Value, error) {
		if _, err := io.WriteString(out, joinArgs(inv.Args)+"\n"); err != nil {
			return value.Absent(), errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "print")
		}
		return value.Bool(true), nil
	}
}

// Assert returns a function that fails unless its first argument is true.
// The last argument, coerced to a string, becomes the failure message.
func Assert() engine.Func {
	return func(inv *engine.Invocation[engine.NoData]) (value.Value, error) {
		ok, isBool := inv.Arg(0).AsBoolean()
		if !isBool {
			return value.Absent(), errors.TypeMismatch(errors.PhaseHost, []string{"assert", "0"}, "bool", inv.Arg(0).Kind().String())
		}
		if !ok {
			msg := "assertion failed"
			if len(inv.Args) > 1 {
				msg = inv.Args[len(inv.Args)-1].CoerceString()
			}
			return value.Absent(), errors.New(errors.PhaseHost, errors.KindScript).Detail("%s", msg).Build()
		}
		return value.Bool(true), nil
	}
}

func joinArgs(args []value.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.CoerceString()
	}
	return strings.Join(parts, " ")
}
