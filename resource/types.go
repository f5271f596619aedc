package resource

import "strconv"

// Handle is an opaque reference to a boxed value in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Kind tags what a boxed value is used for.
type Kind uint8

const (
	KindFunction Kind = iota + 1
	KindMethod
	KindConstructor
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindInstance:
		return "instance"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// EventType distinguishes lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	if t == EventCreated {
		return "created"
	}
	return "dropped"
}

// Event represents a boxed value lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Dropper is optionally implemented by boxed values that need cleanup.
type Dropper interface {
	Drop()
}
