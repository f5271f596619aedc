package engine

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/value"
)

type counter struct {
	value int
}

func newCounterObject() *Object[counter] {
	return NewObjectBuilder[counter]().
		WithConstructor(func(inv *Invocation[counter]) {
			if n, ok := inv.Arg(0).AsNumber(); ok {
				inv.Data.value = int(n)
			}
		}).
		WithMethod("inc", func(inv *Invocation[counter]) (value.Value, error) {
			step := 1
			if n, ok := inv.Arg(0).AsNumber(); ok {
				step = int(n)
			}
			inv.Data.value += step
			return value.Int(inv.Data.value), nil
		}).
		WithMethod("get", func(inv *Invocation[counter]) (value.Value, error) {
			return value.Int(inv.Data.value), nil
		}).
		Build()
}

func TestObjectCounter(t *testing.T) {
	e := newTestEngine(t, nil)

	if err := RegisterObject(e, "Counter", newCounterObject()); err != nil {
		t.Fatal(err)
	}
	mustEval(t, e, `
		var counter = new Counter(5);
		var first = counter.inc();
		var second = counter.inc();
		var jump = new Counter(2).inc(8);
		var zero = new Counter().get();
	`)

	for name, want := range map[string]int{"first": 6, "second": 7, "jump": 10, "zero": 0} {
		if got := mustGlobal(t, e, name); !got.Equal(value.Int(want)) {
			t.Errorf("%s = %v, want %d", name, got, want)
		}
	}
	if e.StackTop() != 0 {
		t.Errorf("stack top = %d", e.StackTop())
	}
}

func TestObjectInstanceIsolation(t *testing.T) {
	e := newTestEngine(t, nil)

	if err := RegisterObject(e, "Counter", newCounterObject()); err != nil {
		t.Fatal(err)
	}
	got, err := e.EvalValue(`
		var a = new Counter(1);
		var b = new Counter(10);
		a.inc(); a.inc(); b.inc();
		[a.get(), b.get(), a instanceof Counter, typeof a.inc];
	`)
	if err != nil {
		t.Fatal(err)
	}
	want := value.Array(value.Int(3), value.Int(11), value.Bool(true), value.String("function"))
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestObjectInstanceFinalized(t *testing.T) {
	e := newTestEngine(t, nil)

	if err := RegisterObject(e, "Counter", newCounterObject()); err != nil {
		t.Fatal(err)
	}
	// constructor plus two methods
	base := e.Handles()
	if base != 3 {
		t.Fatalf("Handles() = %d after registration, want 3", base)
	}

	mustEval(t, e, `var tmp = new Counter(1); var tmp2 = new Counter(2);`)
	if e.Handles() != base+2 {
		t.Fatalf("Handles() = %d with two instances, want %d", e.Handles(), base+2)
	}

	mustEval(t, e, `tmp = undefined; tmp2 = undefined;`)
	e.GC()
	if e.Handles() != base {
		t.Errorf("Handles() = %d after GC, want %d", e.Handles(), base)
	}
}

func TestObjectMethodWithoutInstance(t *testing.T) {
	e := newTestEngine(t, nil)

	if err := RegisterObject(e, "Counter", newCounterObject()); err != nil {
		t.Fatal(err)
	}
	got, err := e.EvalValue(`
		var detached = new Counter(1).inc;
		var cls;
		try { detached(); } catch (e) { cls = e.name; }
		cls;
	`)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(value.String("TypeError")) {
		t.Errorf("detached call raised %v", got)
	}
}

func TestObjectMethodWrongReceiver(t *testing.T) {
	e := newTestEngine(t, nil)

	if err := RegisterObject(e, "Counter", newCounterObject()); err != nil {
		t.Fatal(err)
	}
	_, err := e.EvalValue(`new Counter(1).inc.call(5)`)
	var he *errors.Error
	if !stderrors.As(err, &he) {
		t.Fatalf("expected host error cause, got %v", err)
	}
	if he.Kind != errors.KindTypeMismatch || he.ScriptType != "number" {
		t.Errorf("cause = %v, want type mismatch on a number receiver", he)
	}
}

func TestObjectForeignInstance(t *testing.T) {
	e := newTestEngine(t, nil)

	type other struct{ name string }
	named := NewObjectBuilder[other]().
		WithMethod("name", func(inv *Invocation[other]) (value.Value, error) {
			return value.String(inv.Data.name), nil
		}).
		Build()

	if err := RegisterObject(e, "Counter", newCounterObject()); err != nil {
		t.Fatal(err)
	}
	if err := RegisterObject(e, "Named", named); err != nil {
		t.Fatal(err)
	}

	got, err := e.EvalValue(`
		var cls;
		try { Named.prototype.name.call(new Counter(1)); } catch (e) { cls = e.name; }
		cls;
	`)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(value.String("TypeError")) {
		t.Errorf("foreign instance raised %v", got)
	}
}

func TestObjectWithoutConstructor(t *testing.T) {
	e := newTestEngine(t, nil)

	greeter := NewObjectBuilder[struct{ calls int }]().
		WithMethod("hello", func(inv *Invocation[struct{ calls int }]) (value.Value, error) {
			inv.Data.calls++
			return value.String("hello " + inv.Arg(0).CoerceString()), nil
		}).
		Build()
	if greeter.HasConstructor() {
		t.Fatal("builder reported a constructor that was never set")
	}
	if err := RegisterObject(e, "Greeter", greeter); err != nil {
		t.Fatal(err)
	}

	got, err := e.EvalValue(`new Greeter().hello("world")`)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(value.String("hello world")) {
		t.Errorf("hello = %v", got)
	}
}

func TestObjectMethodReentry(t *testing.T) {
	e := newTestEngine(t, nil)

	obj := NewObjectBuilder[counter]().
		WithMethod("twice", func(inv *Invocation[counter]) (value.Value, error) {
			inv.Data.value++
			if _, err := inv.Engine.EvalValue("shared.bump()"); err != nil {
				return value.Value{}, err
			}
			// the outer call still sees its own arguments
			return value.Array(value.Int(inv.Data.value), inv.Arg(0)), nil
		}).
		WithMethod("bump", func(inv *Invocation[counter]) (value.Value, error) {
			inv.Data.value += 10
			return value.Absent(), nil
		}).
		Build()
	if err := RegisterObject(e, "Box", obj); err != nil {
		t.Fatal(err)
	}

	got, err := e.EvalValue(`var shared = new Box(); shared.twice("arg");`)
	if err != nil {
		t.Fatal(err)
	}
	want := value.Array(value.Int(11), value.String("arg"))
	if !got.Equal(want) {
		t.Errorf("twice = %v, want %v", got, want)
	}
}

func TestRegisterObjectOnce(t *testing.T) {
	e := newTestEngine(t, nil)

	obj := newCounterObject()
	if err := RegisterObject(e, "Counter", obj); err != nil {
		t.Fatal(err)
	}
	before := e.Handles()
	if err := RegisterObject(e, "Counter2", obj); err == nil {
		t.Fatal("second registration of the same template should fail")
	}
	if e.Handles() != before {
		t.Errorf("failed registration boxed %d callbacks", e.Handles()-before)
	}
	if err := RegisterObject[counter](e, "Nil", nil); err == nil {
		t.Fatal("nil template should fail")
	}
	if err := RegisterObject(e, "", newCounterObject()); err == nil {
		t.Fatal("empty name should fail")
	}
}

func TestConstructorWithoutNew(t *testing.T) {
	var stderr bytes.Buffer
	var reported string
	e := newTestEngine(t, &Config{
		Stderr:       &stderr,
		FatalHandler: func(msg string) { reported = msg },
	})

	if err := RegisterObject(e, "Counter", newCounterObject()); err != nil {
		t.Fatal(err)
	}
	if err := e.Eval("Counter(1)"); err == nil {
		t.Fatal("calling a constructor without new should fail")
	}
	if !strings.Contains(reported, "without new") {
		t.Errorf("handler got %q", reported)
	}
	if !strings.Contains(stderr.String(), "fatal error from duktape") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestObjectBuilder(t *testing.T) {
	b := NewObjectBuilder[counter]()
	noop := func(*Invocation[counter]) (value.Value, error) { return value.Absent(), nil }

	obj := b.WithConstructor(func(*Invocation[counter]) {}).
		WithMethod("zeta", noop).
		WithMethod("alpha", noop).
		Build()

	if !obj.HasConstructor() {
		t.Error("HasConstructor() = false")
	}
	if !obj.HasMethod("alpha") || obj.HasMethod("missing") {
		t.Error("HasMethod mismatch")
	}
	methods := obj.Methods()
	if len(methods) != 2 || methods[0] != "alpha" || methods[1] != "zeta" {
		t.Errorf("Methods() = %v", methods)
	}

	// Build moves everything out, leaving an empty reusable builder
	empty := b.Build()
	if empty.HasConstructor() || len(empty.Methods()) != 0 {
		t.Error("builder was not reset by Build")
	}
	again := b.WithMethod("only", noop).Build()
	if len(again.Methods()) != 1 || obj.HasMethod("only") {
		t.Error("reused builder leaked into an earlier Object")
	}
}
