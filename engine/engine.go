package engine

import (
	"go.uber.org/zap"
	"gopkg.in/olebedev/go-duktape.v3"

	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/resource"
)

// Engine is a handle to a Duktape heap.
//
// The Engine returned by New owns its heap and destroys it on Close. Native
// callbacks receive a secondary Engine for the same heap; it shares all state
// but never destroys anything. An Engine must only be used from one goroutine
// at a time.
type Engine struct {
	ctx   *duktape.Context
	heap  *heapState
	owned bool
}

// heapState is shared by every Engine handle of one heap.
type heapState struct {
	table   *resource.Table
	log     *zap.Logger
	pending error
	cfg     Config
	closed  bool
}

// New creates an engine with a fresh heap and default configuration.
func New() (*Engine, error) {
	return NewWithConfig(nil)
}

// NewWithConfig creates an engine with a fresh heap.
func NewWithConfig(cfg *Config) (*Engine, error) {
	ctx := duktape.New()
	if ctx == nil {
		return nil, errors.New(errors.PhaseRuntime, errors.KindNotInitialized).
			Detail("duktape heap allocation failed").
			Build()
	}

	c := cfg.withDefaults()
	h := &heapState{
		table: resource.NewTable(),
		log:   c.Logger,
		cfg:   c,
	}
	h.table.Subscribe(h)

	h.installFinalizer(ctx)
	if err := h.installHelpers(ctx); err != nil {
		ctx.DestroyHeap()
		ctx.Destroy()
		return nil, err
	}

	h.log.Debug("heap created",
		zap.Int("max_depth", c.MaxDepth),
		zap.Int("max_array_length", c.MaxArrayLength))
	return &Engine{ctx: ctx, heap: h, owned: true}, nil
}

// secondary wraps the context passed to a native callback.
func (h *heapState) secondary(ctx *duktape.Context) *Engine {
	return &Engine{ctx: ctx, heap: h}
}

// OnResourceEvent logs boxed callback lifecycle events.
func (h *heapState) OnResourceEvent(e resource.Event) {
	h.log.Debug("boxed callback "+e.Type.String(),
		zap.Stringer("kind", e.Kind),
		zap.Uint32("handle", uint32(e.Handle)))
}

// Owned reports whether this handle owns the heap.
func (e *Engine) Owned() bool {
	return e.owned
}

// Logger returns the logger this engine reports to.
func (e *Engine) Logger() *zap.Logger {
	return e.heap.log
}

// Handles returns the number of boxed callbacks and instances still alive.
func (e *Engine) Handles() int {
	return e.heap.table.Len()
}

// GC runs a full garbage collection, giving finalizers a chance to run.
func (e *Engine) GC() {
	if e.heap.closed {
		return
	}
	// the second pass frees objects whose finalizers ran in the first
	e.ctx.Gc(0)
	e.ctx.Gc(0)
}

// StackTop returns the current value stack depth.
func (e *Engine) StackTop() int {
	return e.ctx.GetTop()
}

// Close releases every boxed callback and destroys the heap. It is a no-op
// for secondary handles and on repeated calls.
//
// The table is emptied first, so finalizers that run while the heap is torn
// down find nothing left to release.
func (e *Engine) Close() error {
	if !e.owned || e.heap.closed {
		return nil
	}

	live := e.heap.table.Len()
	e.heap.closed = true
	err := e.heap.table.Close()
	e.ctx.DestroyHeap()
	e.ctx.Destroy()

	e.heap.log.Debug("heap destroyed", zap.Int("released", live))
	return err
}
