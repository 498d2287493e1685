package stdio

import (
	"io"
	"strings"
)

// ScanEOF is the sentinel returned when input ends before the first
// assignment, the classic EOF return of the scanf family.
const ScanEOF = -1

// Fscanf scans the stream per the format and stores results through the
// pointer arguments. Supported pointer kinds: *int, *int8, *int16, *int32,
// *int64, *uint, *uint8, *uint16, *uint32, *uint64, *float32, *float64,
// *string, *byte for %c, and []byte for %s/%c/%[ when the caller owns the
// buffer. Returns the assignment count or ScanEOF.
func Fscanf(s *Stream, format string, args ...interface{}) int {
	return doScan(s, format, args)
}

// Sscanf scans from a string.
func Sscanf(src, format string, args ...interface{}) int {
	return doScan(strings.NewReader(src), format, args)
}

type scanSpec struct {
	suppress bool
	width    int // 0 = unlimited
	length   string
	verb     byte
	set      map[byte]bool
	negate   bool
}

func doScan(in io.ByteScanner, format string, args []interface{}) int {
	assigned := 0
	consumed := 0
	ai := 0
	next := func() interface{} {
		if ai >= len(args) {
			return nil
		}
		v := args[ai]
		ai++
		return v
	}

	i := 0
	for i < len(format) {
		c := format[i]
		switch {
		case isSpace(c):
			// a whitespace run in the format eats any run in the input
			i++
			for i < len(format) && isSpace(format[i]) {
				i++
			}
			skipSpace(in, &consumed)
		case c == '%':
			i++
			if i < len(format) && format[i] == '%' {
				i++
				if !matchLiteral(in, '%', &consumed) {
					return eofOr(assigned, in)
				}
				continue
			}
			sp, ni, ok := parseScanSpec(format, i)
			if !ok {
				return assigned
			}
			i = ni
			n, matched := scanOne(in, &sp, next, &consumed)
			if !matched {
				if n == ScanEOF && assigned == 0 {
					return ScanEOF
				}
				return assigned
			}
			if !sp.suppress && sp.verb != 'n' {
				assigned++
			}
			if sp.verb == 'n' {
				if p, ok := next().(*int); ok && p != nil && !sp.suppress {
					*p = consumed
				}
			}
		default:
			if !matchLiteral(in, c, &consumed) {
				return eofOr(assigned, in)
			}
			i++
		}
	}
	return assigned
}

func eofOr(assigned int, in io.ByteScanner) int {
	if assigned == 0 {
		if _, err := in.ReadByte(); err != nil {
			return ScanEOF
		}
		in.UnreadByte()
	}
	return assigned
}

func parseScanSpec(format string, i int) (scanSpec, int, bool) {
	var sp scanSpec
	if i < len(format) && format[i] == '*' {
		sp.suppress = true
		i++
	}
	for i < len(format) && format[i] >= '0' && format[i] <= '9' {
		sp.width = sp.width*10 + int(format[i]-'0')
		i++
	}
	for i < len(format) {
		switch format[i] {
		case 'h':
			if sp.length == "h" {
				sp.length = "hh"
			} else {
				sp.length = "h"
			}
		case 'l':
			if sp.length == "l" {
				sp.length = "ll"
			} else {
				sp.length = "l"
			}
		case 'z', 'j', 't':
			sp.length = string(format[i])
		default:
			goto verb
		}
		i++
	}
verb:
	if i >= len(format) {
		return sp, i, false
	}
	sp.verb = format[i]
	i++
	if sp.verb == '[' {
		set := make(map[byte]bool)
		if i < len(format) && format[i] == '^' {
			sp.negate = true
			i++
		}
		// a ] first in the set is a member
		if i < len(format) && format[i] == ']' {
			set[']'] = true
			i++
		}
		for i < len(format) && format[i] != ']' {
			c := format[i]
			if c == '-' && i+1 < len(format) && format[i+1] != ']' && len(set) > 0 {
				lo := format[i-1]
				hi := format[i+1]
				for b := lo; b <= hi && b >= lo; b++ {
					set[b] = true
				}
				i += 2
				continue
			}
			set[c] = true
			i++
		}
		if i >= len(format) {
			return sp, i, false
		}
		i++ // closing ]
		sp.set = set
	}
	return sp, i, true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func skipSpace(in io.ByteScanner, consumed *int) {
	for {
		c, err := in.ReadByte()
		if err != nil {
			return
		}
		if !isSpace(c) {
			in.UnreadByte()
			return
		}
		*consumed++
	}
}

func matchLiteral(in io.ByteScanner, want byte, consumed *int) bool {
	c, err := in.ReadByte()
	if err != nil {
		return false
	}
	if c != want {
		in.UnreadByte()
		return false
	}
	*consumed++
	return true
}

// scanOne converts one directive. The bool reports a successful match;
// ScanEOF in the int flags end of input before any byte matched.
func scanOne(in io.ByteScanner, sp *scanSpec, next func() interface{}, consumed *int) (int, bool) {
	switch sp.verb {
	case 'n':
		return 0, true
	case 'c':
		width := sp.width
		if width == 0 {
			width = 1
		}
		buf := make([]byte, 0, width)
		for len(buf) < width {
			c, err := in.ReadByte()
			if err != nil {
				if len(buf) == 0 {
					return ScanEOF, false
				}
				break
			}
			buf = append(buf, c)
			*consumed++
		}
		if !sp.suppress {
			storeBytes(next(), buf)
		}
		return 0, true
	case 's':
		skipSpace(in, consumed)
		tok, eof := readToken(in, sp.width, consumed, func(c byte) bool { return !isSpace(c) })
		if len(tok) == 0 {
			if eof {
				return ScanEOF, false
			}
			return 0, false
		}
		if !sp.suppress {
			storeBytes(next(), tok)
		}
		return 0, true
	case '[':
		tok, eof := readToken(in, sp.width, consumed, func(c byte) bool {
			return sp.set[c] != sp.negate
		})
		if len(tok) == 0 {
			if eof {
				return ScanEOF, false
			}
			return 0, false
		}
		if !sp.suppress {
			storeBytes(next(), tok)
		}
		return 0, true
	case 'd', 'i', 'u', 'o', 'x', 'X', 'p':
		skipSpace(in, consumed)
		base := 10
		switch sp.verb {
		case 'i':
			base = 0
		case 'o':
			base = 8
		case 'x', 'X', 'p':
			base = 16
		}
		text, eof := readNumber(in, sp.width, base, consumed)
		if text == "" {
			if eof {
				return ScanEOF, false
			}
			return 0, false
		}
		val, ok := parseInt(text, base)
		if !ok {
			return 0, false
		}
		if !sp.suppress {
			storeInt(next(), val)
		}
		return 0, true
	case 'f', 'e', 'E', 'g', 'G':
		skipSpace(in, consumed)
		text, eof := readFloat(in, sp.width, consumed)
		if text == "" {
			if eof {
				return ScanEOF, false
			}
			return 0, false
		}
		val, ok := parseFloat(text)
		if !ok {
			return 0, false
		}
		if !sp.suppress {
			storeFloat(next(), val)
		}
		return 0, true
	}
	return 0, false
}

// readToken collects bytes accepted by keep, honoring the width limit.
func readToken(in io.ByteScanner, width int, consumed *int, keep func(byte) bool) ([]byte, bool) {
	var tok []byte
	for width == 0 || len(tok) < width {
		c, err := in.ReadByte()
		if err != nil {
			return tok, len(tok) == 0
		}
		if !keep(c) {
			in.UnreadByte()
			break
		}
		tok = append(tok, c)
		*consumed++
	}
	return tok, false
}

// readNumber collects the longest prefix that still parses in the base.
// base 0 sniffs 0x/0 the way strtol does.
func readNumber(in io.ByteScanner, width int, base int, consumed *int) (string, bool) {
	var text []byte
	take := func() (byte, bool) {
		if width != 0 && len(text) >= width {
			return 0, false
		}
		c, err := in.ReadByte()
		if err != nil {
			return 0, false
		}
		return c, true
	}
	c, ok := take()
	if !ok {
		return "", true
	}
	if c == '+' || c == '-' {
		text = append(text, c)
		*consumed++
		c, ok = take()
		if !ok {
			return "", false
		}
	}
	sawDigit := false
	hex := base == 16
	if (base == 0 || base == 16) && c == '0' {
		text = append(text, c)
		*consumed++
		sawDigit = true
		c2, ok2 := take()
		if ok2 {
			if c2 == 'x' || c2 == 'X' {
				text = append(text, c2)
				*consumed++
				hex = true
				c, ok = take()
				if !ok {
					return string(text), false
				}
			} else {
				c = c2
			}
		} else {
			return string(text), false
		}
	}
	for {
		if !digitOK(c, base, hex) {
			in.UnreadByte()
			break
		}
		text = append(text, c)
		*consumed++
		sawDigit = true
		c, ok = take()
		if !ok {
			break
		}
	}
	if !sawDigit {
		return "", false
	}
	return string(text), false
}

func digitOK(c byte, base int, hex bool) bool {
	switch {
	case c >= '0' && c <= '9':
		if base == 8 && !hex {
			return c <= '7'
		}
		return true
	case hex && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
		return true
	}
	return false
}

func readFloat(in io.ByteScanner, width int, consumed *int) (string, bool) {
	var text []byte
	take := func() (byte, bool) {
		if width != 0 && len(text) >= width {
			return 0, false
		}
		c, err := in.ReadByte()
		if err != nil {
			return 0, false
		}
		return c, true
	}
	sawDigit, sawDot, sawExp := false, false, false
	c, ok := take()
	if !ok {
		return "", true
	}
	if c == '+' || c == '-' {
		text = append(text, c)
		*consumed++
		c, ok = take()
		if !ok {
			return "", false
		}
	}
	for {
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
		case c == '.' && !sawDot && !sawExp:
			sawDot = true
		case (c == 'e' || c == 'E') && sawDigit && !sawExp:
			sawExp = true
			text = append(text, c)
			*consumed++
			c, ok = take()
			if !ok {
				goto done
			}
			if c != '+' && c != '-' && (c < '0' || c > '9') {
				in.UnreadByte()
				goto done
			}
		default:
			in.UnreadByte()
			goto done
		}
		text = append(text, c)
		*consumed++
		c, ok = take()
		if !ok {
			break
		}
	}
done:
	if !sawDigit {
		return "", false
	}
	return string(text), false
}

func parseInt(text string, base int) (int64, bool) {
	neg := false
	s := text
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if base == 0 || base == 16 {
		if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			s = s[2:]
			base = 16
		} else if base == 0 {
			if len(s) > 1 && s[0] == '0' {
				base = 8
			} else {
				base = 10
			}
		}
	}
	if s == "" {
		return 0, false
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		d := digitVal(s[i])
		if d < 0 || d >= base {
			return 0, false
		}
		v = v*uint64(base) + uint64(d)
	}
	if neg {
		return -int64(v), true
	}
	return int64(v), true
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

func parseFloat(text string) (float64, bool) {
	// hand-rolled so partial forms like "3." parse the way the stream
	// reader accepted them
	neg := false
	s := text
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var mant float64
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		mant = mant*10 + float64(s[i]-'0')
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		scale := 0.1
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			mant += float64(s[i]-'0') * scale
			scale /= 10
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		eneg := false
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			eneg = s[i] == '-'
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			exp = exp*10 + int(s[i]-'0')
			i++
		}
		for ; exp > 0; exp-- {
			if eneg {
				mant /= 10
			} else {
				mant *= 10
			}
		}
	}
	if i != len(s) {
		return 0, false
	}
	if neg {
		mant = -mant
	}
	return mant, true
}

func storeInt(dst interface{}, v int64) {
	switch p := dst.(type) {
	case *int:
		*p = int(v)
	case *int8:
		*p = int8(v)
	case *int16:
		*p = int16(v)
	case *int32:
		*p = int32(v)
	case *int64:
		*p = v
	case *uint:
		*p = uint(v)
	case *uint8:
		*p = uint8(v)
	case *uint16:
		*p = uint16(v)
	case *uint32:
		*p = uint32(v)
	case *uint64:
		*p = uint64(v)
	}
}

func storeFloat(dst interface{}, v float64) {
	switch p := dst.(type) {
	case *float32:
		*p = float32(v)
	case *float64:
		*p = v
	}
}

func storeBytes(dst interface{}, tok []byte) {
	switch p := dst.(type) {
	case *string:
		*p = string(tok)
	case *byte:
		if len(tok) > 0 {
			*p = tok[0]
		}
	case []byte:
		n := copy(p, tok)
		if n < len(p) {
			p[n] = 0
		}
	}
}
