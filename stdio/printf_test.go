package stdio

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestSprintfVerbs(t *testing.T) {
	cases := []struct {
		want   string
		format string
		args   []interface{}
	}{
		{"42", "%d", []interface{}{42}},
		{"-42", "%d", []interface{}{-42}},
		{"+42", "%+d", []interface{}{42}},
		{" 42", "% d", []interface{}{42}},
		{"  42", "%4d", []interface{}{42}},
		{"0042", "%04d", []interface{}{42}},
		{"42  ", "%-4d", []interface{}{42}},
		{"002a", "%04x", []interface{}{42}},
		{"0x2a", "%#x", []interface{}{42}},
		{"0X2A", "%#X", []interface{}{42}},
		{"052", "%#o", []interface{}{42}},
		{"4294967254", "%u", []interface{}{-42}},
		{"c", "%c", []interface{}{'c'}},
		{"hello", "%s", []interface{}{"hello"}},
		{"hel", "%.3s", []interface{}{"hello"}},
		{"  hi", "%*s", []interface{}{4, "hi"}},
		{"3.140000", "%f", []interface{}{3.14}},
		{"3.14", "%.2f", []interface{}{3.14}},
		{"+3.14", "%+.2f", []interface{}{3.14}},
		{"1.5e+06", "%g", []interface{}{1.5e6}},
		{"100", "%g", []interface{}{100.0}},
		{"1.000000e+02", "%e", []interface{}{100.0}},
		{"%", "%%", nil},
		{"007", "%.3d", []interface{}{7}},
		{"", "%.0d", []interface{}{0}},
		{"-128", "%hhd", []interface{}{128}},
	}
	for _, c := range cases {
		if got := Sprintf(c.format, c.args...); got != c.want {
			t.Errorf("Sprintf(%q, %v) = %q, want %q", c.format, c.args, got, c.want)
		}
	}
}

func TestSprintfAgainstFmt(t *testing.T) {
	// the shared subset of the two languages must agree exactly
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := int32(rng.Uint32())
		for _, f := range []string{"%d", "%8d", "%-8d", "%08d", "%x", "%o"} {
			want := fmt.Sprintf(f, n)
			if f == "%x" || f == "%o" {
				want = fmt.Sprintf(f, uint32(n))
			}
			var got string
			if f == "%x" || f == "%o" {
				got = Sprintf(f, uint32(n))
			} else {
				got = Sprintf(f, n)
			}
			if got != want {
				t.Fatalf("Sprintf(%q, %d) = %q, fmt says %q", f, n, got, want)
			}
		}
	}
}

func TestSnprintfTruncation(t *testing.T) {
	buf := make([]byte, 8)
	n := Snprintf(buf, "%s", "hello world")
	if n != 11 {
		t.Fatalf("Snprintf reported %d, want the untruncated 11", n)
	}
	if string(buf[:7]) != "hello w" || buf[7] != 0 {
		t.Fatalf("Snprintf buffer = %q", buf)
	}
}

func TestPrintfCountN(t *testing.T) {
	var mid int
	got := Sprintf("ab%ncd", &mid)
	if got != "abcd" {
		t.Fatalf("output %q", got)
	}
	if mid != 2 {
		t.Fatalf("%%n captured %d, want 2", mid)
	}
}

func TestSprintfUnknownVerbEchoes(t *testing.T) {
	if got := Sprintf("100%q"); got != "100%q" {
		t.Fatalf("got %q", got)
	}
}
