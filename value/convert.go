package value

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/wippyai/duk-runtime/errors"
)

// Integer is the set of Go integer types a Number can be built from.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Float is the set of Go floating point types.
type Float interface {
	~float32 | ~float64
}

// Int returns a Number holding n. Magnitudes above 2^53 lose precision.
func Int[N Integer](n N) Value {
	return Number(float64(n))
}

// FloatOf returns a Number holding f.
func FloatOf[F Float](f F) Value {
	return Number(float64(f))
}

// ArrayOf converts every element with conv and wraps the result in an Array.
func ArrayOf[T any](items []T, conv func(T) Value) Value {
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = conv(item)
	}
	return Value{kind: KindArray, arr: out}
}

// MapOf converts every entry with conv and wraps the result in a Map.
func MapOf[T any](entries map[string]T, conv func(T) Value) Value {
	out := make(map[string]Value, len(entries))
	for k, e := range entries {
		out[k] = conv(e)
	}
	return Value{kind: KindMap, m: out}
}

// Of converts decoded data (JSON, TOML and similar) into a Value. It accepts
// booleans, every integer and float kind, strings, slices and arrays, and
// maps keyed by strings. Other inputs yield an unsupported error naming the
// path to the offending element.
func Of(x any) (Value, error) {
	return of(nil, x)
}

func of(path []string, x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case int64:
		return Int(t), nil
	case int:
		return Int(t), nil
	case time.Time:
		return Value{}, errors.New(errors.PhaseConvert, errors.KindUnsupported).
			Path(path...).
			GoType("time.Time").
			Detail("timestamps have no script representation").
			Build()
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Int(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		out := make([]Value, rv.Len())
		for i := range out {
			e, err := of(append(path, fmt.Sprint(i)), rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			out[i] = e
		}
		return Value{kind: KindArray, arr: out}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, errors.TypeMismatch(errors.PhaseConvert, path, rv.Type().String(), "map")
		}
		out := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			e, err := of(append(path, k), iter.Value().Interface())
			if err != nil {
				return Value{}, err
			}
			out[k] = e
		}
		return Value{kind: KindMap, m: out}, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}, nil
		}
		return of(path, rv.Elem().Interface())
	}

	return Value{}, errors.New(errors.PhaseConvert, errors.KindUnsupported).
		Path(path...).
		GoType(fmt.Sprintf("%T", x)).
		Detail("no script representation").
		Build()
}

// Interface converts v back into plain Go data: nil, bool, float64, string,
// []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Interface()
		}
		return out
	}
	return nil
}

func (v Value) mismatch(goType string) *errors.Error {
	return errors.TypeMismatch(errors.PhaseConvert, nil, goType, v.kind.String())
}

// Bool returns the boolean payload. It panics when v is not a Boolean.
func (v Value) Bool() bool {
	if v.kind != KindBoolean {
		panic(v.mismatch("bool"))
	}
	return v.b
}

// Float returns the numeric payload. It panics when v is not a Number.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		panic(v.mismatch("float64"))
	}
	return v.n
}

// Int returns the numeric payload truncated toward zero. It panics when v is
// not a Number or when the number does not fit an int.
func (v Value) Int() int {
	f := v.Float()
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		panic(errors.Overflow(errors.PhaseConvert, nil, f, "int"))
	}
	return int(f)
}

// Text returns the string payload. It panics when v is not a String.
func (v Value) Text() string {
	if v.kind != KindString {
		panic(v.mismatch("string"))
	}
	return v.s
}

// Slice returns a copy of the elements. It panics when v is not an Array.
func (v Value) Slice() []Value {
	out, ok := v.AsArray()
	if !ok {
		panic(v.mismatch("[]value.Value"))
	}
	return out
}

// Entries returns a copy of the entries. It panics when v is not a Map.
func (v Value) Entries() map[string]Value {
	out, ok := v.AsMap()
	if !ok {
		panic(v.mismatch("map[string]value.Value"))
	}
	return out
}
