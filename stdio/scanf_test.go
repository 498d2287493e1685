package stdio

import "testing"

func TestSscanfBasic(t *testing.T) {
	var a, b int
	if n := Sscanf("12 34", "%d %d", &a, &b); n != 2 {
		t.Fatalf("assigned %d, want 2", n)
	}
	if a != 12 || b != 34 {
		t.Fatalf("got %d %d", a, b)
	}
}

func TestSscanfBases(t *testing.T) {
	var hex, oct, auto1, auto2, auto3 int
	n := Sscanf("ff 17 0x10 010 9", "%x %o %i %i %i", &hex, &oct, &auto1, &auto2, &auto3)
	if n != 5 {
		t.Fatalf("assigned %d, want 5", n)
	}
	if hex != 255 || oct != 15 {
		t.Fatalf("hex %d oct %d", hex, oct)
	}
	if auto1 != 16 || auto2 != 8 || auto3 != 9 {
		t.Fatalf("%%i decoded %d %d %d, want 16 8 9", auto1, auto2, auto3)
	}
}

func TestSscanfStringsAndSets(t *testing.T) {
	var word, tail string
	if n := Sscanf("hello world", "%s %s", &word, &tail); n != 2 {
		t.Fatalf("assigned %d", n)
	}
	if word != "hello" || tail != "world" {
		t.Fatalf("got %q %q", word, tail)
	}

	var key, value string
	if n := Sscanf("name=value", "%[^=]=%s", &key, &value); n != 2 {
		t.Fatalf("set scan assigned %d", n)
	}
	if key != "name" || value != "value" {
		t.Fatalf("got %q %q", key, value)
	}

	var digits string
	if n := Sscanf("123abc", "%[0-9]", &digits); n != 1 || digits != "123" {
		t.Fatalf("range set got %q (n=%d)", digits, n)
	}
}

func TestSscanfWidthAndSuppress(t *testing.T) {
	var a int
	var rest string
	if n := Sscanf("123456", "%3d%s", &a, &rest); n != 2 {
		t.Fatalf("assigned %d", n)
	}
	if a != 123 || rest != "456" {
		t.Fatalf("got %d %q", a, rest)
	}

	var keep int
	if n := Sscanf("10 20", "%*d %d", &keep); n != 1 || keep != 20 {
		t.Fatalf("suppression got %d (n=%d)", keep, n)
	}
}

func TestSscanfFloats(t *testing.T) {
	var f float64
	if n := Sscanf("-3.5e2", "%f", &f); n != 1 {
		t.Fatalf("assigned %d", n)
	}
	if f != -350 {
		t.Fatalf("got %g", f)
	}
}

func TestSscanfChar(t *testing.T) {
	var c byte
	if n := Sscanf("xyz", "%c", &c); n != 1 || c != 'x' {
		t.Fatalf("got %q (n=%d)", c, n)
	}
}

func TestSscanfLiteralMismatchStops(t *testing.T) {
	var a, b int
	if n := Sscanf("12:34", "%d-%d", &a, &b); n != 1 {
		t.Fatalf("assigned %d, want 1", n)
	}
}

func TestSscanfEOF(t *testing.T) {
	var a int
	if n := Sscanf("", "%d", &a); n != ScanEOF {
		t.Fatalf("empty input returned %d, want %d", n, ScanEOF)
	}
	// once something assigned, the count is returned instead
	var b int
	if n := Sscanf("5", "%d %d", &a, &b); n != 1 {
		t.Fatalf("short input returned %d, want 1", n)
	}
}

func TestSscanfConsumedCount(t *testing.T) {
	var a, pos int
	if n := Sscanf("42 ", "%d%n", &a, &pos); n != 1 {
		t.Fatalf("assigned %d", n)
	}
	if pos != 2 {
		t.Fatalf("%%n captured %d, want 2", pos)
	}
}
