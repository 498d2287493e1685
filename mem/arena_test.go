package mem

import (
	"math/rand"
	"testing"
)

// imgBrk satisfies Brker directly over an image, no kernel needed.
type imgBrk struct {
	*Image
}

func (b imgBrk) Yield() {}

func newTestArena(t *testing.T) (*Arena, *Image) {
	t.Helper()
	img := NewImage(0, 0)
	return NewArena(img, imgBrk{img}), img
}

func TestAllocAlignment(t *testing.T) {
	a, _ := newTestArena(t)
	for _, n := range []uint64{1, 7, 16, 17, 100, 4096} {
		addr := a.Alloc(n)
		if addr == 0 {
			t.Fatalf("Alloc(%d) failed", n)
		}
		if addr%16 != 0 {
			t.Fatalf("Alloc(%d) = %#x, not 16-byte aligned", n, addr)
		}
		if u := a.Usable(addr); u < n {
			t.Fatalf("Usable(%#x) = %d, want >= %d", addr, u, n)
		}
	}
}

func TestAllocZero(t *testing.T) {
	a, _ := newTestArena(t)
	before := a.Total()
	if addr := a.Alloc(0); addr != 0 {
		t.Fatalf("Alloc(0) = %#x, want 0", addr)
	}
	if a.Total() != before {
		t.Fatal("Alloc(0) disturbed the arena")
	}
}

func TestFreeReuse(t *testing.T) {
	a, _ := newTestArena(t)
	addr := a.Alloc(64)
	a.Free(addr)
	again := a.Alloc(64)
	if again != addr {
		t.Fatalf("freed block not reused: first %#x, second %#x", addr, again)
	}
}

func TestReallocPreservesPrefix(t *testing.T) {
	a, img := newTestArena(t)
	addr := a.Alloc(32)
	payload := []byte("prefix must survive a realloc...")
	if err := img.WriteAt(addr, payload); err != nil {
		t.Fatal(err)
	}

	grown := a.Realloc(addr, 4096)
	if grown == 0 {
		t.Fatal("Realloc grow failed")
	}
	got := make([]byte, len(payload))
	if err := img.ReadAt(grown, got); err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload lost: %q", got)
	}

	shrunk := a.Realloc(grown, 8)
	if shrunk != grown {
		t.Fatalf("shrink should stay in place: %#x -> %#x", grown, shrunk)
	}
}

func TestReallocEdges(t *testing.T) {
	a, _ := newTestArena(t)
	// nil -> malloc
	addr := a.Realloc(0, 64)
	if addr == 0 {
		t.Fatal("Realloc(0, n) should allocate")
	}
	// 0 -> free
	if ret := a.Realloc(addr, 0); ret != 0 {
		t.Fatalf("Realloc(p, 0) = %#x, want 0", ret)
	}
}

func TestCallocZeroes(t *testing.T) {
	a, img := newTestArena(t)
	// dirty a block, free it, then calloc over the same region
	addr := a.Alloc(128)
	img.WriteAt(addr, []byte("garbagegarbagegarbage"))
	a.Free(addr)

	caddr := a.Calloc(16, 8)
	if caddr == 0 {
		t.Fatal("Calloc failed")
	}
	got := make([]byte, 128)
	if err := img.ReadAt(caddr, got); err != nil {
		t.Fatal(err)
	}
	for i, c := range got {
		if c != 0 {
			t.Fatalf("Calloc memory dirty at %d: %#x", i, c)
		}
	}
}

// TestChurnAccounting hammers the allocator and checks the bookkeeping
// invariant after every step: live + free payload never exceeds the
// total sbrk'd arena.
func TestChurnAccounting(t *testing.T) {
	a, img := newTestArena(t)
	rng := rand.New(rand.NewSource(1))

	check := func() {
		live, free := a.Accounting()
		if live+free > a.Total() {
			t.Fatalf("accounting broken: live %d + free %d > total %d", live, free, a.Total())
		}
	}

	var held []uint64
	for i := 0; i < 2000; i++ {
		switch rng.Intn(3) {
		case 0, 1:
			n := uint64(rng.Intn(512) + 1)
			addr := a.Alloc(n)
			if addr == 0 {
				t.Fatalf("Alloc(%d) failed at step %d", n, i)
			}
			// touch both ends so a bad split would fault the image
			if err := img.WriteAt(addr, []byte{0xaa}); err != nil {
				t.Fatal(err)
			}
			if err := img.WriteAt(addr+n-1, []byte{0xbb}); err != nil {
				t.Fatal(err)
			}
			held = append(held, addr)
		case 2:
			if len(held) > 0 {
				j := rng.Intn(len(held))
				a.Free(held[j])
				held = append(held[:j], held[j+1:]...)
			}
		}
		check()
	}
	for _, addr := range held {
		a.Free(addr)
	}
	check()
}
