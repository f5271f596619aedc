package resource

import (
	"errors"
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(KindFunction, "test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok || val != "test" {
		t.Fatalf("Get = %v, %v", val, ok)
	}

	if _, ok = table.GetTyped(h, KindFunction); !ok {
		t.Fatal("GetTyped with correct kind failed")
	}
	if _, ok = table.GetTyped(h, KindInstance); ok {
		t.Fatal("GetTyped with wrong kind should fail")
	}

	val, ok = table.Remove(h)
	if !ok || val != "test" {
		t.Fatalf("Remove = %v, %v", val, ok)
	}
	if _, ok = table.Remove(h); ok {
		t.Fatal("second Remove should fail")
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
}

func TestTable_HandlesNotReused(t *testing.T) {
	table := NewTable()

	first := table.Insert(KindMethod, "old")
	table.Remove(first)
	second := table.Insert(KindMethod, "new")

	if second == first {
		t.Fatalf("handle %d was reused", first)
	}
	if _, ok := table.Get(first); ok {
		t.Fatal("stale handle resolved to a value")
	}
}

func TestTable_Lookup(t *testing.T) {
	table := NewTable()
	called := 0
	h := table.Insert(KindFunction, func() { called++ })

	fn, ok := Lookup[func()](table, h, KindFunction)
	if !ok {
		t.Fatal("Lookup failed")
	}
	fn()
	if called != 1 {
		t.Fatalf("called = %d", called)
	}

	if _, ok := Lookup[string](table, h, KindFunction); ok {
		t.Fatal("Lookup with wrong Go type should fail")
	}
	if _, ok := Lookup[func()](table, h, KindConstructor); ok {
		t.Fatal("Lookup with wrong kind should fail")
	}
	if _, ok := Lookup[func()](table, 0, KindFunction); ok {
		t.Fatal("handle 0 should never resolve")
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(KindInstance, "test")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventCreated || obs.events[0].Handle != h || obs.events[0].Kind != KindInstance {
		t.Fatalf("unexpected event %+v", obs.events[0])
	}

	table.Remove(h)
	if len(obs.events) != 2 || obs.events[1].Type != EventDropped {
		t.Fatalf("Expected EventDropped, got %+v", obs.events)
	}

	table.Unsubscribe(obs)
	table.Insert(KindInstance, "test2")
	if len(obs.events) != 2 {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

func TestTable_ObserverFunc(t *testing.T) {
	table := NewTable()
	var kinds []Kind
	table.Subscribe(ObserverFunc(func(e Event) {
		kinds = append(kinds, e.Kind)
	}))

	table.Insert(KindConstructor, 1)
	table.Insert(KindMethod, 2)

	if len(kinds) != 2 || kinds[0] != KindConstructor || kinds[1] != KindMethod {
		t.Fatalf("kinds = %v", kinds)
	}
}

func TestTable_Clear(t *testing.T) {
	table := NewTable()

	table.Insert(KindFunction, "a")
	table.Insert(KindFunction, "b")
	table.Insert(KindFunction, "c")

	if table.Len() != 3 {
		t.Fatal("Expected Len() == 3")
	}

	table.Clear()

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Clear")
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	table.Insert(KindFunction, "a")
	table.Insert(KindFunction, "b")

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := table.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	dropped := 0
	for _, e := range obs.events {
		if e.Type == EventDropped {
			dropped++
		}
	}
	if dropped != 2 {
		t.Fatalf("Close reported %d drops, want 2", dropped)
	}

	if h := table.Insert(KindFunction, "c"); h != 0 {
		t.Fatal("Expected Insert to fail after Close")
	}
}

type dropCounter struct {
	count int
}

func (d *dropCounter) Drop() {
	d.count++
}

func TestTable_DropperInterface(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}

	h := table.Insert(KindInstance, d)
	table.Remove(h)

	if d.count != 1 {
		t.Fatalf("Expected Drop() to be called once, called %d times", d.count)
	}
}

func TestLocalBackend(t *testing.T) {
	b := NewLocalBackend()

	h, err := b.Create(KindFunction, "v")
	if err != nil || h != 1 {
		t.Fatalf("Create = %d, %v", h, err)
	}
	if k, ok := b.Kind(h); !ok || k != KindFunction {
		t.Fatalf("Kind = %v, %v", k, ok)
	}

	b.next = 0
	if _, err := b.Create(KindFunction, "w"); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}

	d := &dropCounter{}
	b.next = 2
	b.Create(KindInstance, d)
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if d.count != 1 {
		t.Fatal("Close should drop remaining values")
	}
	if _, err := b.Create(KindFunction, "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestLocalBackend_EachOrder(t *testing.T) {
	b := NewLocalBackend()
	for i := range 5 {
		b.Create(KindFunction, i)
	}
	b.Drop(3)

	var seen []Handle
	b.Each(func(h Handle, _ Kind, _ any) bool {
		seen = append(seen, h)
		return len(seen) < 3
	})
	want := []Handle{1, 2, 4}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}
