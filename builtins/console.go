package builtins

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/duk-runtime/engine"
	"github.com/wippyai/duk-runtime/value"
)

// consoleClass is the constructor name behind the console global.
const consoleClass = "Console"

type console struct {
	log *zap.Logger
}

var consoleLevels = map[string]zapcore.Level{
	"log":   zapcore.InfoLevel,
	"info":  zapcore.InfoLevel,
	"debug": zapcore.DebugLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// InstallConsole registers a Console object whose methods forward their
// arguments to log, and binds one instance to the global console.
func InstallConsole(e *engine.Engine, log *zap.Logger) error {
	log = log.Named("console")

	b := engine.NewObjectBuilder[console]().
		WithConstructor(func(inv *engine.Invocation[console]) {
			inv.Data.log = log
		})
	for name, level := range consoleLevels {
		b.WithMethod(name, consoleMethod(level))
	}

	if err := engine.RegisterObject(e, consoleClass, b.Build()); err != nil {
		return err
	}
	return e.Eval("var " + NameConsole + " = new " + consoleClass + "();")
}

func consoleMethod(level zapcore.Level) engine.Method[console] {
	return func(inv *engine.Invocation[console]) (value.Value, error) {
		if ce := inv.Data.log.Check(level, joinArgs(inv.Args)); ce != nil {
			ce.Write()
		}
		return value.Absent(), nil
	}
}
