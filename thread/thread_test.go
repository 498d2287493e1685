package thread

import (
	"sync/atomic"
	"testing"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/kernel/anyos"
	"github.com/brianmayclone/anyos-userland/mem"
	"github.com/brianmayclone/anyos-userland/rt"
)

func bootProc(t *testing.T) *rt.Process {
	t.Helper()
	m := anyos.NewMachine()
	img := mem.NewImage(0, 0)
	k := anyos.NewKernel(m, img, anyos.Config{Root: t.TempDir()})
	return rt.Boot(k, img)
}

func TestCreateJoin(t *testing.T) {
	p := bootProc(t)
	th, err := Create(p.Sys, p.Heap, p.Mem, "worker", 128, func() interface{} {
		return 42
	})
	if err != nil {
		t.Fatal(err)
	}
	if th.Tid() == 0 {
		t.Fatal("tid is zero")
	}
	ret, err := th.Join()
	if err != nil {
		t.Fatal(err)
	}
	if ret != 42 {
		t.Fatalf("retval = %v, want 42", ret)
	}
}

func TestJoinDetached(t *testing.T) {
	p := bootProc(t)
	th, err := Create(p.Sys, p.Heap, p.Mem, "detached", 128, func() interface{} {
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	th.Detach()
	if _, err := th.Join(); err != abi.EINVAL {
		t.Fatalf("join on detached thread = %v, want EINVAL", err)
	}
}

func TestMutexCounter(t *testing.T) {
	p := bootProc(t)
	var (
		mu      Mutex
		counter int
	)
	const workers = 8
	const iters = 500

	threads := make([]*Thread, workers)
	for i := range threads {
		th, err := Create(p.Sys, p.Heap, p.Mem, "inc", 128, func() interface{} {
			for j := 0; j < iters; j++ {
				mu.Lock(p.Sys)
				counter++
				mu.Unlock()
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		threads[i] = th
	}
	for _, th := range threads {
		if _, err := th.Join(); err != nil {
			t.Fatal(err)
		}
	}
	if counter != workers*iters {
		t.Fatalf("counter = %d, want %d", counter, workers*iters)
	}
}

func TestTryLock(t *testing.T) {
	p := bootProc(t)
	var mu Mutex
	mu.Lock(p.Sys)
	if err := mu.TryLock(); err != abi.EBUSY {
		t.Fatalf("trylock on held mutex = %v, want EBUSY", err)
	}
	mu.Unlock()
	if err := mu.TryLock(); err != nil {
		t.Fatalf("trylock on free mutex = %v", err)
	}
}

func TestOnceAcrossThreads(t *testing.T) {
	p := bootProc(t)
	var (
		once Once
		runs int32
	)
	const workers = 16
	threads := make([]*Thread, workers)
	for i := range threads {
		th, err := Create(p.Sys, p.Heap, p.Mem, "once", 128, func() interface{} {
			once.Do(p.Sys, func() {
				atomic.AddInt32(&runs, 1)
			})
			// effects of the winner must be visible here
			if atomic.LoadInt32(&runs) != 1 {
				t.Error("Do returned before fn finished")
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		threads[i] = th
	}
	for _, th := range threads {
		if _, err := th.Join(); err != nil {
			t.Fatal(err)
		}
	}
	if runs != 1 {
		t.Fatalf("fn ran %d times", runs)
	}
}

func TestCondWakeup(t *testing.T) {
	p := bootProc(t)
	var (
		mu   Mutex
		cond Cond
		woke int32
	)
	th, err := Create(p.Sys, p.Heap, p.Mem, "waiter", 128, func() interface{} {
		mu.Lock(p.Sys)
		cond.Wait(p.Sys, &mu)
		mu.Unlock()
		atomic.StoreInt32(&woke, 1)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	// keep signaling until the waiter reports in; a signal issued before
	// the waiter samples the sequence would otherwise be lost
	var b Backoff
	for atomic.LoadInt32(&woke) == 0 {
		cond.Signal()
		b.Spin(p.Sys)
	}
	if _, err := th.Join(); err != nil {
		t.Fatal(err)
	}
}

func TestTLSDestructor(t *testing.T) {
	p := bootProc(t)
	var destroyed []interface{}
	key, err := KeyCreate(func(v interface{}) {
		destroyed = append(destroyed, v)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer KeyDelete(key)

	th, err := Create(p.Sys, p.Heap, p.Mem, "tls", 128, func() interface{} {
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := th.Set(key, "payload"); err != nil {
		t.Fatal(err)
	}
	if got := th.Get(key); got != "payload" {
		t.Fatalf("Get = %v", got)
	}
	if _, err := th.Join(); err != nil {
		t.Fatal(err)
	}
	if len(destroyed) != 1 || destroyed[0] != "payload" {
		t.Fatalf("destructor saw %v", destroyed)
	}
}

func TestSetUnusedKey(t *testing.T) {
	p := bootProc(t)
	th, err := Create(p.Sys, p.Heap, p.Mem, "tls", 128, func() interface{} {
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer th.Join()
	if err := th.Set(63, 1); err != abi.EINVAL {
		t.Fatalf("set on unreserved key = %v, want EINVAL", err)
	}
}
