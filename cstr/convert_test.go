package cstr

import (
	"math"
	"math/rand"
	"testing"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/stdio"
)

func TestStrtolBaseDetection(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		rest string
	}{
		{"0x1f", 31, ""},
		{"0X1F", 31, ""},
		{"010", 8, ""},
		{"10", 10, ""},
		{"0", 0, ""},
		{"  -42junk", -42, "junk"},
		{"+7", 7, ""},
		{"0xZZ", 0, "xZZ"}, // no hex digit: the 0 parses alone in base 8
		{"junk", 0, "junk"},
	}
	for _, c := range cases {
		v, rest, err := Strtol(c.in, 0)
		if err != nil {
			t.Errorf("Strtol(%q, 0) error: %v", c.in, err)
			continue
		}
		if v != c.want || rest != c.rest {
			t.Errorf("Strtol(%q, 0) = %d,%q, want %d,%q", c.in, v, rest, c.want, c.rest)
		}
	}
}

func TestStrtolRange(t *testing.T) {
	if v, _, err := Strtol("99999999999999999999999999", 10); err != abi.ERANGE || v != math.MaxInt64 {
		t.Fatalf("overflow gave %d, %v", v, err)
	}
	if v, _, err := Strtol("-99999999999999999999999999", 10); err != abi.ERANGE || v != math.MinInt64 {
		t.Fatalf("underflow gave %d, %v", v, err)
	}
	if _, _, err := Strtol("1", 1); err != abi.EINVAL {
		t.Fatalf("base 1 accepted: %v", err)
	}
}

func TestStrtoulNegation(t *testing.T) {
	v, _, err := Strtoul("-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if v != math.MaxUint64 {
		t.Fatalf("Strtoul(-1) = %d", v)
	}
}

// Printing a number and parsing it back must be the identity, which ties
// the two subsystems together.
func TestPrintfStrtolRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		n := rng.Int63() - rng.Int63()
		s := stdio.Sprintf("%lld", n)
		back, rest, err := Strtol(s, 10)
		if err != nil || rest != "" || back != n {
			t.Fatalf("round trip %d -> %q -> %d (rest %q, err %v)", n, s, back, rest, err)
		}
	}
	for i := 0; i < 1000; i++ {
		u := rng.Uint64()
		s := stdio.Sprintf("%llx", u)
		back, rest, err := Strtoul(s, 16)
		if err != nil || rest != "" || back != u {
			t.Fatalf("hex round trip %d -> %q -> %d (rest %q, err %v)", u, s, back, rest, err)
		}
	}
}

func TestStrtod(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		rest string
	}{
		{"3.14", 3.14, ""},
		{"-2.5e3 tail", -2500, " tail"},
		{"  .5", 0.5, ""},
		{"1e-2", 0.01, ""},
		{"nope", 0, "nope"},
	}
	for _, c := range cases {
		v, rest := Strtod(c.in)
		if math.Abs(v-c.want) > 1e-12 || rest != c.rest {
			t.Errorf("Strtod(%q) = %g,%q, want %g,%q", c.in, v, rest, c.want, c.rest)
		}
	}
}

func TestAtoi(t *testing.T) {
	if Atoi("  -17xyz") != -17 {
		t.Fatal("Atoi ignores whitespace and tail")
	}
}

func TestQsortStable(t *testing.T) {
	type rec struct {
		key int
		id  int
	}
	recs := []rec{{2, 0}, {1, 1}, {2, 2}, {1, 3}, {0, 4}, {2, 5}}
	Qsort(len(recs),
		func(i, j int) bool { return recs[i].key < recs[j].key },
		func(i, j int) { recs[i], recs[j] = recs[j], recs[i] })

	want := []rec{{0, 4}, {1, 1}, {1, 3}, {2, 0}, {2, 2}, {2, 5}}
	for i := range want {
		if recs[i] != want[i] {
			t.Fatalf("position %d = %v, want %v (order %v)", i, recs[i], want[i], recs)
		}
	}
}

func TestBsearch(t *testing.T) {
	sorted := []int{1, 3, 5, 7, 9, 11}
	for i, v := range sorted {
		v := v
		got := Bsearch(len(sorted), func(j int) int { return v - sorted[j] })
		if got != i {
			t.Fatalf("Bsearch(%d) = %d, want %d", v, got, i)
		}
	}
	if got := Bsearch(len(sorted), func(j int) int { return 4 - sorted[j] }); got != -1 {
		t.Fatalf("Bsearch miss = %d, want -1", got)
	}
}
