package engine

import (
	"maps"
	"slices"
)

// Object is a native object template: an optional constructor plus named
// methods shared by every instance. It is consumed by RegisterObject.
type Object[T any] struct {
	ctor     Constructor[T]
	methods  map[string]Method[T]
	consumed bool
}

// HasConstructor reports whether a constructor was set.
func (o *Object[T]) HasConstructor() bool {
	return o.ctor != nil
}

// HasMethod reports whether a method called name exists.
func (o *Object[T]) HasMethod(name string) bool {
	_, ok := o.methods[name]
	return ok
}

// Methods returns the method names in sorted order.
func (o *Object[T]) Methods() []string {
	return slices.Sorted(maps.Keys(o.methods))
}

// ObjectBuilder assembles an Object.
//
//	counter := engine.NewObjectBuilder[Counter]().
//		WithConstructor(func(inv *engine.Invocation[Counter]) { inv.Data.n = inv.Arg(0).Int() }).
//		WithMethod("inc", inc).
//		Build()
type ObjectBuilder[T any] struct {
	ctor    Constructor[T]
	methods map[string]Method[T]
}

// NewObjectBuilder returns an empty builder.
func NewObjectBuilder[T any]() *ObjectBuilder[T] {
	return &ObjectBuilder[T]{methods: make(map[string]Method[T])}
}

// WithConstructor sets the constructor, replacing any earlier one.
func (b *ObjectBuilder[T]) WithConstructor(ctor Constructor[T]) *ObjectBuilder[T] {
	b.ctor = ctor
	return b
}

// WithMethod adds a method, replacing any earlier one with the same name.
func (b *ObjectBuilder[T]) WithMethod(name string, m Method[T]) *ObjectBuilder[T] {
	b.methods[name] = m
	return b
}

// Build moves the collected parts into a new Object and resets the builder.
func (b *ObjectBuilder[T]) Build() *Object[T] {
	obj := &Object[T]{ctor: b.ctor, methods: b.methods}
	b.ctor = nil
	b.methods = make(map[string]Method[T])
	return obj
}
