package stdio

import "strconv"

// The format engine renders into a sink and reports the byte count an
// unbounded sink would have received, which is what the printf return
// contract needs even when snprintf truncates.

type sink interface {
	writeByte(c byte)
	writeString(s string)
}

type streamSink struct {
	s   *Stream
	err bool
}

func (w *streamSink) writeByte(c byte) {
	if !w.err && w.s.Putc(c) != nil {
		w.err = true
	}
}

func (w *streamSink) writeString(s string) {
	if w.err {
		return
	}
	if _, err := w.s.WriteString(s); err != nil {
		w.err = true
	}
}

type stringSink struct {
	b []byte
}

func (w *stringSink) writeByte(c byte)     { w.b = append(w.b, c) }
func (w *stringSink) writeString(s string) { w.b = append(w.b, s...) }

// boundedSink truncates at cap(b)-1 and NUL-terminates, snprintf style.
type boundedSink struct {
	b []byte
	n int
}

func (w *boundedSink) writeByte(c byte) {
	if w.n < len(w.b)-1 {
		w.b[w.n] = c
	}
	w.n++
}

func (w *boundedSink) writeString(s string) {
	for i := 0; i < len(s); i++ {
		w.writeByte(s[i])
	}
}

func (w *boundedSink) terminate() {
	if len(w.b) == 0 {
		return
	}
	end := w.n
	if end > len(w.b)-1 {
		end = len(w.b) - 1
	}
	w.b[end] = 0
}

// Fprintf formats into the stream and returns the byte count, or -1 once
// the stream errors.
func Fprintf(s *Stream, format string, args ...interface{}) int {
	w := &streamSink{s: s}
	n := doFormat(w, format, args)
	if w.err {
		return -1
	}
	return n
}

// Printf writes the formatted text to the given stream; kept distinct so
// the runtime can route the classic printf surface at its stdout.
func Printf(s *Stream, format string, args ...interface{}) int {
	return Fprintf(s, format, args...)
}

// Sprintf formats into a Go string.
func Sprintf(format string, args ...interface{}) string {
	w := &stringSink{}
	doFormat(w, format, args)
	return string(w.b)
}

// Snprintf formats into buf, truncating with a NUL like C snprintf, and
// returns the untruncated length.
func Snprintf(buf []byte, format string, args ...interface{}) int {
	w := &boundedSink{b: buf}
	n := doFormat(w, format, args)
	w.terminate()
	return n
}

type fmtSpec struct {
	minus, plus, space, hash, zero bool

	width   int
	hasPrec bool
	prec    int
	length  string // "", "hh", "h", "l", "ll", "z", "j", "t"
	verb    byte
}

type counter struct {
	w sink
	n int
}

func (c *counter) writeByte(b byte) {
	c.w.writeByte(b)
	c.n++
}

func (c *counter) writeString(s string) {
	c.w.writeString(s)
	c.n += len(s)
}

func doFormat(w sink, format string, args []interface{}) int {
	out := &counter{w: w}
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
		if c != '%' {
			out.writeByte(c)
			i++
			continue
		}
		i++
		if i >= len(format) {
			out.writeByte('%')
			break
		}
		var sp fmtSpec
	flags:
		for i < len(format) {
			switch format[i] {
			case '-':
				sp.minus = true
			case '+':
				sp.plus = true
			case ' ':
				sp.space = true
			case '#':
				sp.hash = true
			case '0':
				sp.zero = true
			default:
				break flags
			}
			i++
		}
		if i < len(format) && format[i] == '*' {
			sp.width = argInt(next())
			if sp.width < 0 {
				sp.minus = true
				sp.width = -sp.width
			}
			i++
		} else {
			for i < len(format) && format[i] >= '0' && format[i] <= '9' {
				sp.width = sp.width*10 + int(format[i]-'0')
				i++
			}
		}
		if i < len(format) && format[i] == '.' {
			i++
			sp.hasPrec = true
			if i < len(format) && format[i] == '*' {
				sp.prec = argInt(next())
				if sp.prec < 0 {
					sp.hasPrec = false
					sp.prec = 0
				}
				i++
			} else {
				for i < len(format) && format[i] >= '0' && format[i] <= '9' {
					sp.prec = sp.prec*10 + int(format[i]-'0')
					i++
				}
			}
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
			break
		}
		sp.verb = format[i]
		i++
		formatOne(out, &sp, next)
	}
	return out.n
}

func formatOne(out *counter, sp *fmtSpec, next func() interface{}) {
	switch sp.verb {
	case '%':
		out.writeByte('%')
	case 'd', 'i':
		v := argSigned(next(), sp.length)
		pad(out, sp, signedText(v, 10, sp), false)
	case 'u':
		pad(out, sp, unsignedText(argUnsigned(next(), sp.length), 10, false, sp), false)
	case 'o':
		s := unsignedText(argUnsigned(next(), sp.length), 8, false, sp)
		if sp.hash && (len(s) == 0 || s[0] != '0') {
			s = "0" + s
		}
		pad(out, sp, s, false)
	case 'x':
		pad(out, sp, prefixHex(unsignedText(argUnsigned(next(), sp.length), 16, false, sp), sp, "0x"), false)
	case 'X':
		pad(out, sp, prefixHex(unsignedText(argUnsigned(next(), sp.length), 16, true, sp), sp, "0X"), false)
	case 'p':
		v := argUnsigned(next(), "ll")
		pad(out, sp, "0x"+strconv.FormatUint(v, 16), false)
	case 'c':
		pad(out, sp, string([]byte{byte(argUnsigned(next(), ""))}), true)
	case 's':
		s := argString(next())
		if sp.hasPrec && sp.prec < len(s) {
			s = s[:sp.prec]
		}
		pad(out, sp, s, true)
	case 'f', 'F', 'e', 'E', 'g', 'G':
		pad(out, sp, floatText(argFloat(next()), sp), false)
	case 'n':
		if p, ok := next().(*int); ok && p != nil {
			*p = out.n
		}
	default:
		// unknown verb is echoed, matching the original's permissive
		// worker
		out.writeByte('%')
		out.writeByte(sp.verb)
	}
}

// pad applies width, alignment and zero fill. Zero fill places the pad
// after any sign or base prefix; string padding never uses zeros.
func pad(out *counter, sp *fmtSpec, s string, isStr bool) {
	if len(s) >= sp.width {
		out.writeString(s)
		return
	}
	gap := sp.width - len(s)
	if sp.minus {
		out.writeString(s)
		for ; gap > 0; gap-- {
			out.writeByte(' ')
		}
		return
	}
	if sp.zero && !isStr && !sp.hasPrec {
		lead := 0
		if len(s) > 0 && (s[0] == '-' || s[0] == '+' || s[0] == ' ') {
			lead = 1
		} else if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			lead = 2
		}
		out.writeString(s[:lead])
		for ; gap > 0; gap-- {
			out.writeByte('0')
		}
		out.writeString(s[lead:])
		return
	}
	for ; gap > 0; gap-- {
		out.writeByte(' ')
	}
	out.writeString(s)
}

func signedText(v int64, base int, sp *fmtSpec) string {
	neg := v < 0
	var mag uint64
	if neg {
		mag = uint64(-v)
	} else {
		mag = uint64(v)
	}
	s := applyPrec(strconv.FormatUint(mag, base), sp)
	switch {
	case neg:
		return "-" + s
	case sp.plus:
		return "+" + s
	case sp.space:
		return " " + s
	}
	return s
}

func unsignedText(v uint64, base int, upper bool, sp *fmtSpec) string {
	s := strconv.FormatUint(v, base)
	if upper {
		s = toUpper(s)
	}
	return applyPrec(s, sp)
}

// applyPrec zero-extends per the integer precision rule; %.0d of zero is
// the empty string.
func applyPrec(s string, sp *fmtSpec) string {
	if !sp.hasPrec {
		return s
	}
	if sp.prec == 0 && s == "0" {
		return ""
	}
	for len(s) < sp.prec {
		s = "0" + s
	}
	return s
}

func prefixHex(s string, sp *fmtSpec, prefix string) string {
	if sp.hash && s != "" && s != "0" {
		return prefix + s
	}
	return s
}

func floatText(v float64, sp *fmtSpec) string {
	prec := 6
	if sp.hasPrec {
		prec = sp.prec
	}
	var verb byte
	switch sp.verb {
	case 'f', 'F':
		verb = 'f'
	case 'e':
		verb = 'e'
	case 'E':
		verb = 'E'
	case 'g':
		verb = 'g'
		if prec == 0 {
			prec = 1
		}
	case 'G':
		verb = 'G'
		if prec == 0 {
			prec = 1
		}
	}
	s := strconv.FormatFloat(v, verb, prec, 64)
	if v >= 0 {
		if sp.plus {
			s = "+" + s
		} else if sp.space {
			s = " " + s
		}
	}
	return s
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// Argument coercion. The C varargs contract is loose; the Go surface
// accepts any integer type for integer verbs and truncates per the length
// modifier.

func argInt(v interface{}) int {
	return int(argSigned(v, ""))
}

func argSigned(v interface{}, length string) int64 {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		n = int64(x)
	case uintptr:
		n = int64(x)
	case bool:
		if x {
			n = 1
		}
	}
	switch length {
	case "hh":
		n = int64(int8(n))
	case "h":
		n = int64(int16(n))
	}
	return n
}

func argUnsigned(v interface{}, length string) uint64 {
	var n uint64
	switch x := v.(type) {
	case int:
		n = uint64(x)
	case int8:
		n = uint64(uint8(x))
	case int16:
		n = uint64(uint16(x))
	case int32:
		n = uint64(uint32(x))
	case int64:
		n = uint64(x)
	case uint:
		n = uint64(x)
	case uint8:
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint32:
		n = uint64(x)
	case uint64:
		n = x
	case uintptr:
		n = uint64(x)
	}
	switch length {
	case "hh":
		n = uint64(uint8(n))
	case "h":
		n = uint64(uint16(n))
	case "":
		n = uint64(uint32(n))
	}
	return n
}

func argFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	}
	return 0
}

func argString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		// NUL-terminated buffers pass through here
		for i, c := range x {
			if c == 0 {
				return string(x[:i])
			}
		}
		return string(x)
	case nil:
		return "(null)"
	}
	return ""
}
