package resource

// Table boxes Go values behind integer handles and reports lifecycle events.
type Table struct {
	backend   *LocalBackend
	observers []Observer
	closed    bool
}

// NewTable creates a new table with a LocalBackend.
func NewTable() *Table {
	return &Table{
		backend: NewLocalBackend(),
	}
}

// Insert adds a value and returns its handle, or 0 once the table is closed.
func (t *Table) Insert(kind Kind, value any) Handle {
	if t.closed {
		return 0
	}

	handle, err := t.backend.Create(kind, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		Kind:   kind,
		Value:  value,
	})

	return handle
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// GetTyped retrieves a value only if it was inserted with the expected kind.
func (t *Table) GetTyped(handle Handle, kind Kind) (any, bool) {
	actual, ok := t.backend.Kind(handle)
	if !ok || actual != kind {
		return nil, false
	}
	return t.backend.Get(handle)
}

// Remove drops a value and returns (value, true) if found.
func (t *Table) Remove(handle Handle) (any, bool) {
	kind, _ := t.backend.Kind(handle)
	value, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		Kind:   kind,
		Value:  value,
	})

	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live values.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Clear drops all values.
func (t *Table) Clear() {
	var handles []Handle
	t.backend.Each(func(h Handle, _ Kind, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close drops all values and stops accepting inserts.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.Clear()
	t.closed = true
	return t.backend.Close()
}

func (t *Table) notify(e Event) {
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}

// Lookup retrieves a value of the given kind and asserts its Go type.
func Lookup[T any](t *Table, handle Handle, kind Kind) (T, bool) {
	var zero T
	v, ok := t.GetTyped(handle, kind)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
