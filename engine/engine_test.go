package engine

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/duk-runtime/value"
)

func TestCloseWithLiveCallbacks(t *testing.T) {
	// finalizer order during heap destruction is not fixed, so repeat
	for range 20 {
		core, logs := observer.New(zap.DebugLevel)
		e, err := NewWithConfig(&Config{Logger: zap.New(core)})
		if err != nil {
			t.Fatal(err)
		}

		if err := e.RegisterFunc("square", square); err != nil {
			t.Fatal(err)
		}
		if err := e.RegisterNamespace("ns", map[string]Func{"sq": square}); err != nil {
			t.Fatal(err)
		}
		if err := RegisterObject(e, "Counter", newCounterObject()); err != nil {
			t.Fatal(err)
		}
		mustEval(t, e, `
			var kept = new Counter(1);
			kept.inc();
			var lost = new Counter(2);
			lost = undefined;
			var r = square(3) + ns.sq(2);
		`)
		// five registered callbacks plus at least the kept instance
		if e.Handles() < 6 {
			t.Fatalf("Handles() = %d before Close, want at least 6", e.Handles())
		}

		if err := e.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if n := e.Handles(); n != 0 {
			t.Errorf("Handles() = %d after Close, want 0", n)
		}
		created := logs.FilterMessage("boxed callback created").Len()
		dropped := logs.FilterMessage("boxed callback dropped").Len()
		if created != 7 || dropped != 7 {
			t.Errorf("created=%d dropped=%d, want 7 each", created, dropped)
		}
		if _, ok := e.GetGlobal("r"); ok {
			t.Error("closed engine should not read globals")
		}
	}
}

func TestCloseAfterReRegistration(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	for i := range 5 {
		n := float64(i)
		err := e.RegisterFunc("f", func(*Invocation[NoData]) (value.Value, error) {
			return value.Number(n), nil
		})
		if err != nil {
			t.Fatal(err)
		}
		mustEval(t, e, `f();`)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if e.Handles() != 0 {
		t.Errorf("Handles() = %d after Close", e.Handles())
	}
}
