package value

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindMap
)

var kindNames = [...]string{
	KindAbsent:  "absent",
	KindBoolean: "boolean",
	KindNumber:  "number",
	KindString:  "string",
	KindArray:   "array",
	KindMap:     "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged union of the script value shapes the bridge can carry.
type Value struct {
	arr  []Value
	m    map[string]Value
	s    string
	n    float64
	kind Kind
	b    bool
}

// Absent returns the value representing "no value" (script undefined).
func Absent() Value {
	return Value{}
}

// Bool returns a Boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBoolean, b: b}
}

// Number returns a Number value.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// String returns a String value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Array returns an Array value holding a copy of items.
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(items)}
}

// Map returns a Map value holding a copy of entries.
func Map(entries map[string]Value) Value {
	m := make(map[string]Value, len(entries))
	maps.Copy(m, entries)
	return Value{kind: KindMap, m: m}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool  { return v.kind == KindAbsent }
func (v Value) IsBoolean() bool { return v.kind == KindBoolean }
func (v Value) IsNumber() bool  { return v.kind == KindNumber }
func (v Value) IsString() bool  { return v.kind == KindString }
func (v Value) IsArray() bool   { return v.kind == KindArray }
func (v Value) IsMap() bool     { return v.kind == KindMap }

// AsBoolean returns the boolean payload and whether v is a Boolean.
func (v Value) AsBoolean() (bool, bool) {
	return v.b, v.kind == KindBoolean
}

// AsNumber returns the numeric payload and whether v is a Number.
func (v Value) AsNumber() (float64, bool) {
	return v.n, v.kind == KindNumber
}

// AsString returns the string payload and whether v is a String.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsArray returns a copy of the elements and whether v is an Array.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return slices.Clone(v.arr), true
}

// AsMap returns a copy of the entries and whether v is a Map.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	m := make(map[string]Value, len(v.m))
	maps.Copy(m, v.m)
	return m, true
}

// Len returns the element count of an Array or Map and zero otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindMap:
		return len(v.m)
	}
	return 0
}

// Index returns the i-th Array element, or Absent when out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Get returns the Map entry for key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	e, ok := v.m[key]
	return e, ok
}

// Keys returns the Map keys in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	return slices.Sorted(maps.Keys(v.m))
}

// Equal reports structural equality. Map entry order is irrelevant and NaN
// never equals itself.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindAbsent:
		return true
	case KindBoolean:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindArray:
		return slices.EqualFunc(v.arr, o.arr, Value.Equal)
	case KindMap:
		return maps.EqualFunc(v.m, o.m, Value.Equal)
	}
	return false
}

// String renders v for diagnostics, e.g. Number(4) or String("a").
func (v Value) String() string {
	var b strings.Builder
	v.writeDebug(&b)
	return b.String()
}

func (v Value) writeDebug(b *strings.Builder) {
	switch v.kind {
	case KindAbsent:
		b.WriteString("Absent")
	case KindBoolean:
		b.WriteString("Boolean(")
		b.WriteString(strconv.FormatBool(v.b))
		b.WriteByte(')')
	case KindNumber:
		b.WriteString("Number(")
		b.WriteString(formatNumber(v.n))
		b.WriteByte(')')
	case KindString:
		b.WriteString("String(")
		b.WriteString(strconv.Quote(v.s))
		b.WriteByte(')')
	case KindArray:
		b.WriteString("Array[")
		for i, e := range v.arr {
			if i > 0 {
				b.WriteString(", ")
			}
			e.writeDebug(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteString("Map{")
		for i, k := range v.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			v.m[k].writeDebug(b)
		}
		b.WriteByte('}')
	}
}
