// Package value defines the tagged value exchanged between Go and script code.
//
// A Value is one of Absent, Boolean, Number, String, Array or Map. The zero
// Value is Absent. Values are immutable: constructors and accessors copy the
// container they are given, so a Value never aliases caller-owned memory.
//
//	v := value.Map(map[string]value.Value{
//		"name": value.String("counter"),
//		"hits": value.Int(3),
//	})
//	s := v.CoerceString() // "[object Object]"
//
// Reading a payload comes in two flavors. The As* accessors report a kind
// mismatch through their second result. The Bool, Float, Int, Text, Slice and
// Entries methods are for callers that already know the kind; they panic with
// a *errors.Error of kind type_mismatch when the kind differs.
package value
