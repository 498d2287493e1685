// Package cstr carries the conversion, searching and sorting routines of
// the string section whose behavior is subtle enough to pin down: numeric
// parsing with base auto-detection and a stable qsort.
package cstr

import (
	"math"
	"math/bits"

	"github.com/brianmayclone/anyos-userland/abi"
)

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func digitVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

// Strtol parses a signed integer. Base 0 auto-detects: "0x"/"0X" selects
// 16, a lone leading "0" selects 8, anything else 10. The returned rest is
// the unparsed tail; when no digits parse, rest is all of s and the value
// is 0. Overflow clamps to the int64 limit with ERANGE.
func Strtol(s string, base int) (v int64, rest string, err error) {
	u, neg, rest, perr := parsePrefix(s, base)
	if perr == abi.ERANGE {
		if neg {
			return math.MinInt64, rest, abi.ERANGE
		}
		return math.MaxInt64, rest, abi.ERANGE
	}
	if perr != nil {
		return 0, rest, perr
	}
	if neg {
		if u > uint64(math.MaxInt64)+1 {
			return math.MinInt64, rest, abi.ERANGE
		}
		return -int64(u), rest, nil
	}
	if u > math.MaxInt64 {
		return math.MaxInt64, rest, abi.ERANGE
	}
	return int64(u), rest, nil
}

// Strtoul parses an unsigned integer with the same base rules. A leading
// minus sign negates modulo 2^64, as the original does.
func Strtoul(s string, base int) (v uint64, rest string, err error) {
	u, neg, rest, perr := parsePrefix(s, base)
	if perr == abi.ERANGE {
		return math.MaxUint64, rest, abi.ERANGE
	}
	if perr != nil {
		return 0, rest, perr
	}
	if neg {
		return -u, rest, nil
	}
	return u, rest, nil
}

func parsePrefix(s string, base int) (u uint64, neg bool, rest string, err error) {
	if base != 0 && (base < 2 || base > 36) {
		return 0, false, s, abi.EINVAL
	}
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	if (base == 0 || base == 16) && i+1 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
		// only claim the prefix when a hex digit follows
		if d := digitValAt(s, i+2); d >= 0 && d < 16 {
			i += 2
			base = 16
		} else if base == 0 {
			base = 8
		}
	}
	if base == 0 {
		if i < len(s) && s[i] == '0' {
			base = 8
		} else {
			base = 10
		}
	}
	digits := 0
	overflow := false
	for i < len(s) {
		d := digitVal(s[i])
		if d < 0 || d >= base {
			break
		}
		hi, lo := bits.Mul64(u, uint64(base))
		if hi != 0 || lo+uint64(d) < lo {
			overflow = true
		}
		u = lo + uint64(d)
		digits++
		i++
	}
	if digits == 0 {
		return 0, false, s[start:], nil
	}
	if overflow {
		return math.MaxUint64, neg, s[i:], abi.ERANGE
	}
	return u, neg, s[i:], nil
}

func digitValAt(s string, i int) int {
	if i >= len(s) {
		return -1
	}
	return digitVal(s[i])
}

// Atoi is strtol base 10 with errors and the tail discarded.
func Atoi(s string) int {
	v, _, _ := Strtol(s, 10)
	return int(v)
}

// Strtod parses a decimal floating-point number with optional fraction and
// exponent. No hex floats and no inf/nan forms, matching the original's
// reduced parser.
func Strtod(s string) (v float64, rest string) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	sawDigit := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		v = v*10 + float64(s[i]-'0')
		sawDigit = true
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		scale := 0.1
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			v += float64(s[i]-'0') * scale
			scale /= 10
			sawDigit = true
			i++
		}
	}
	if !sawDigit {
		return 0, s[start:]
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		eneg := false
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			eneg = s[j] == '-'
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			exp := 0
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				exp = exp*10 + int(s[j]-'0')
				j++
			}
			for ; exp > 0; exp-- {
				if eneg {
					v /= 10
				} else {
					v *= 10
				}
			}
			i = j
		}
	}
	if neg {
		v = -v
	}
	return v, s[i:]
}
