package gcode

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NaN is the text written wherever a value could not be formatted.
const NaN = "nan"

// Number is a decimal token taken from a G-code line. An invalid Number
// formats as NaN and stays invalid through arithmetic.
type Number struct {
	d  decimal.Decimal
	ok bool
}

// ParseNumber parses a decimal token. Leading '+', a bare leading '.'
// and trailing zeros are accepted as the slicers write them.
func ParseNumber(text string) Number {
	text = strings.TrimSpace(text)
	if text == "" {
		return Number{}
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Number{}
	}
	return Number{d: d, ok: true}
}

// NumberFromInt returns a valid Number holding n.
func NumberFromInt(n int64) Number {
	return Number{d: decimal.NewFromInt(n), ok: true}
}

// Valid reports whether the number parsed.
func (n Number) Valid() bool { return n.ok }

// Decimal returns the underlying value; zero when invalid.
func (n Number) Decimal() decimal.Decimal { return n.d }

// Mul multiplies by an integer factor.
func (n Number) Mul(factor int64) Number {
	if !n.ok {
		return n
	}
	return Number{d: n.d.Mul(decimal.NewFromInt(factor)), ok: true}
}

// Div divides by an integer, rounding to places fractional digits.
// Division by zero yields an invalid Number.
func (n Number) Div(divisor int64, places int32) Number {
	if !n.ok || divisor == 0 {
		return Number{}
	}
	return Number{d: n.d.DivRound(decimal.NewFromInt(divisor), places), ok: true}
}

// Add returns n + o.
func (n Number) Add(o Number) Number {
	if !n.ok || !o.ok {
		return Number{}
	}
	return Number{d: n.d.Add(o.d), ok: true}
}

// Sub returns n - o.
func (n Number) Sub(o Number) Number {
	if !n.ok || !o.ok {
		return Number{}
	}
	return Number{d: n.d.Sub(o.d), ok: true}
}

// Cmp compares two valid numbers like decimal.Cmp. Invalid numbers sort
// after every valid one.
func (n Number) Cmp(o Number) int {
	switch {
	case !n.ok && !o.ok:
		return 0
	case !n.ok:
		return 1
	case !o.ok:
		return -1
	}
	return n.d.Cmp(o.d)
}

// Equal reports numeric equality of two valid numbers.
func (n Number) Equal(o Number) bool {
	return n.ok && o.ok && n.d.Equal(o.d)
}

// String formats the number in its minimal decimal representation.
func (n Number) String() string {
	if !n.ok {
		return NaN
	}
	return minimal(n.d)
}

// FormatNumber renders a decimal token in minimal form: no exponent,
// no trailing fractional zeros, no trailing point, sign preserved.
// Text that is not a decimal renders as NaN.
func FormatNumber(text string) string {
	return ParseNumber(text).String()
}

func minimal(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
