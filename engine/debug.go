package engine

import (
	"go.uber.org/zap"
)

// DumpStack logs a summary of the current value stack at debug level.
func (e *Engine) DumpStack(label string) {
	if e.heap.closed || !e.heap.log.Core().Enabled(zap.DebugLevel) {
		return
	}
	e.ensureStack(1)
	e.ctx.PushContextDump()
	dump := e.readString(-1)
	e.ctx.Pop()

	e.heap.log.Debug("value stack",
		zap.String("label", label),
		zap.Int("top", e.ctx.GetTop()),
		zap.String("dump", dump))
}
