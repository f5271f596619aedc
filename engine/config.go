package engine

import (
	"io"
	"os"

	"go.uber.org/zap"
)

// DefaultMaxDepth bounds how deep nested script containers are read.
const DefaultMaxDepth = 32

// DefaultMaxArrayLength bounds the length of script arrays that are read.
const DefaultMaxArrayLength = 1 << 20

// FatalExitCode is the process status used by the default fatal handler.
const FatalExitCode = 134

// Config controls an engine heap. A nil *Config selects the defaults.
type Config struct {
	// Logger receives engine diagnostics. Defaults to the package Logger.
	Logger *zap.Logger

	// FatalHandler runs after a fatal error was reported. The default exits
	// the process with FatalExitCode. A handler that returns makes the
	// failing native call raise a script error instead.
	FatalHandler func(msg string)

	// Stderr receives the fatal diagnostic line. Defaults to os.Stderr.
	Stderr io.Writer

	// MaxDepth limits container nesting when reading values off the stack.
	// Deeper containers read as absent. Zero selects DefaultMaxDepth.
	MaxDepth int

	// MaxArrayLength limits the length of arrays read off the stack. Longer
	// arrays, sparse ones included, read as absent. Zero selects
	// DefaultMaxArrayLength.
	MaxArrayLength int
}

func (c *Config) withDefaults() Config {
	var out Config
	if c != nil {
		out = *c
	}
	if out.Logger == nil {
		out.Logger = Logger()
	}
	if out.FatalHandler == nil {
		out.FatalHandler = func(string) { os.Exit(FatalExitCode) }
	}
	if out.Stderr == nil {
		out.Stderr = os.Stderr
	}
	if out.MaxDepth <= 0 {
		out.MaxDepth = DefaultMaxDepth
	}
	if out.MaxArrayLength <= 0 {
		out.MaxArrayLength = DefaultMaxArrayLength
	}
	return out
}
