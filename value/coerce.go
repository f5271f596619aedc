package value

import (
	"math"
	"strconv"
	"strings"
)

// CoerceString renders any value as text. It never fails.
//
// Absent renders as "None". Numbers use the shortest decimal text that
// round-trips, with NaN, Infinity and -Infinity spelled the way script code
// prints them. Arrays join their coerced elements with commas and maps render
// as "[object Object]".
func (v Value) CoerceString() string {
	switch v.kind {
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n)
	case KindString:
		return v.s
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			// nested absent elements print empty, as Array.prototype.join does
			if !e.IsAbsent() {
				parts[i] = e.CoerceString()
			}
		}
		return strings.Join(parts, ",")
	case KindMap:
		return "[object Object]"
	}
	return "None"
}

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}

	abs := math.Abs(n)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}

	// exponent form without zero padding: 1e+21, 1.5e-7
	s := strconv.FormatFloat(n, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
