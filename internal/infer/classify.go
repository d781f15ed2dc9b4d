package infer

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Recognized date/time layouts, tried in order. The first match wins and is
// reported as the cell's Layout.
var dateTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"02.01.2006",
	"02.01.2006 15:04:05",
	"02/01/2006",
	"01/02/2006",
}

// Classify decides the atomic kind of one raw cell string.
//
// Checks run in a fixed order: null, integer, decimal, date/time, text. A
// value without a decimal point is never Decimal, and anything that fails
// every numeric and date check (including numeric-looking strings with
// stray characters) is Text.
func Classify(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{Kind: KindNull}
	}

	v := Value{Text: s, Length: utf8.RuneCountInString(s)}

	if isIntegerLiteral(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// Outside int64: no integer type can hold it, keep the string.
			v.Kind = KindText
			return v
		}
		v.Kind = KindInteger
		v.Int = n
		v.Float = float64(n)
		v.IntegerDigits = significantDigits(strings.TrimPrefix(s, "-"))
		return v
	}

	if intPart, frac, ok := splitDecimalLiteral(s); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			v.Kind = KindDecimal
			v.Float = f
			v.IntegerDigits = significantDigits(intPart)
			v.Scale = len(frac)
			v.Precision = v.IntegerDigits + v.Scale
			if v.Precision == 0 {
				v.Precision = 1
			}
			return v
		}
	}

	if t, layout, ok := parseDateTime(s); ok {
		v.Kind = KindDateTime
		v.Time = t
		v.Layout = layout
		return v
	}

	v.Kind = KindText
	return v
}

// isIntegerLiteral reports whether s is an optional '-' followed by one or
// more ASCII digits.
func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// splitDecimalLiteral accepts an optional '-', digits, exactly one '.', and
// digits, with at least one digit overall. It returns the unsigned integer
// part and the fractional part.
func splitDecimalLiteral(s string) (intPart, frac string, ok bool) {
	s = strings.TrimPrefix(s, "-")
	dot := strings.IndexByte(s, '.')
	if dot < 0 || strings.IndexByte(s[dot+1:], '.') >= 0 {
		return "", "", false
	}
	intPart, frac = s[:dot], s[dot+1:]
	if intPart == "" && frac == "" {
		return "", "", false
	}
	if !allDigits(intPart) || !allDigits(frac) {
		return "", "", false
	}
	return intPart, frac, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// significantDigits counts digits after stripping leading zeros.
func significantDigits(digits string) int {
	return len(strings.TrimLeft(digits, "0"))
}

func parseDateTime(s string) (time.Time, string, bool) {
	for _, lay := range dateTimeLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, lay, true
		}
	}
	return time.Time{}, "", false
}
