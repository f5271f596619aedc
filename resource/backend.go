package resource

import (
	"errors"
	"maps"
	"slices"
)

var (
	ErrClosed    = errors.New("resource backend closed")
	ErrExhausted = errors.New("resource handle space exhausted")
)

// LocalBackend is an in-memory store keyed by monotonically increasing
// handles. A dropped handle is never handed out again, so a stale handle
// left behind in a collected script object cannot resolve to a newer value.
type LocalBackend struct {
	entries map[Handle]entry
	next    Handle
	closed  bool
}

type entry struct {
	value any
	kind  Kind
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries: make(map[Handle]entry, 16),
		next:    1,
	}
}

// Create stores a value and returns its handle.
func (b *LocalBackend) Create(kind Kind, value any) (Handle, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if b.next == 0 {
		return 0, ErrExhausted
	}

	h := b.next
	b.next++
	b.entries[h] = entry{kind: kind, value: value}
	return h, nil
}

// Get retrieves a value by handle.
func (b *LocalBackend) Get(handle Handle) (any, bool) {
	e, ok := b.entries[handle]
	return e.value, ok
}

// Kind returns the kind a handle was created with.
func (b *LocalBackend) Kind(handle Handle) (Kind, bool) {
	e, ok := b.entries[handle]
	return e.kind, ok
}

// Drop removes a value and returns it.
func (b *LocalBackend) Drop(handle Handle) (any, bool) {
	e, ok := b.entries[handle]
	if !ok {
		return nil, false
	}
	delete(b.entries, handle)
	return e.value, true
}

// Close drops every remaining value, calling Drop on those implementing Dropper.
func (b *LocalBackend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	for _, e := range b.entries {
		if d, ok := e.value.(Dropper); ok {
			d.Drop()
		}
	}
	b.entries = nil
	return nil
}

// Len returns the number of live values.
func (b *LocalBackend) Len() int {
	return len(b.entries)
}

// Each iterates over live values in handle order.
func (b *LocalBackend) Each(fn func(Handle, Kind, any) bool) {
	for _, h := range slices.Sorted(maps.Keys(b.entries)) {
		e := b.entries[h]
		if !fn(h, e.kind, e.value) {
			return
		}
	}
}
