package sig

import (
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

func TestHandlerDelivery(t *testing.T) {
	p := bootProc(t)
	tbl := Install(p.Sys)

	var got []int
	if _, err := tbl.Signal(abi.SIGUSR1, Handled, func(sig int) {
		got = append(got, sig)
	}); err != nil {
		t.Fatal(err)
	}
	// delivery happens on return from the raise trap itself
	if err := tbl.Raise(abi.SIGUSR1); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != abi.SIGUSR1 {
		t.Fatalf("handler saw %v", got)
	}
}

func TestSignalReturnsPrevious(t *testing.T) {
	p := bootProc(t)
	tbl := Install(p.Sys)

	old, err := tbl.Signal(abi.SIGTERM, Ignore, nil)
	if err != nil {
		t.Fatal(err)
	}
	if old != Default {
		t.Fatalf("first install returned %v", old)
	}
	old, err = tbl.Signal(abi.SIGTERM, Handled, func(int) {})
	if err != nil {
		t.Fatal(err)
	}
	if old != Ignore {
		t.Fatalf("second install returned %v", old)
	}
}

func TestIgnoreDropsSignal(t *testing.T) {
	p := bootProc(t)
	tbl := Install(p.Sys)
	if _, err := tbl.Signal(abi.SIGUSR2, Ignore, nil); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Raise(abi.SIGUSR2); err != nil {
		t.Fatal(err)
	}
	// nothing to assert beyond not having terminated
	if p.Getpid() <= 0 {
		t.Fatal("process gone")
	}
}

func TestDefaultTerminates(t *testing.T) {
	p := bootProc(t)
	tbl := Install(p.Sys)
	status := p.Run(func([]string) int {
		tbl.Raise(abi.SIGTERM)
		t.Error("raise with default disposition returned")
		return 0
	})
	if status != 128+abi.SIGTERM {
		t.Fatalf("exit status = %d, want %d", status, 128+abi.SIGTERM)
	}
}

func TestChldDefaultIgnored(t *testing.T) {
	p := bootProc(t)
	tbl := Install(p.Sys)
	if err := tbl.Raise(abi.SIGCHLD); err != nil {
		t.Fatal(err)
	}
	if p.Getpid() <= 0 {
		t.Fatal("process gone")
	}
}

func TestBadSignalNumbers(t *testing.T) {
	p := bootProc(t)
	tbl := Install(p.Sys)
	for _, sig := range []int{0, -1, abi.NumSignals, 99} {
		if _, err := tbl.Signal(sig, Ignore, nil); err != abi.EINVAL {
			t.Errorf("Signal(%d) = %v, want EINVAL", sig, err)
		}
	}
	if _, err := tbl.Signal(abi.SIGKILL, Handled, func(int) {}); err != abi.EINVAL {
		t.Errorf("catching SIGKILL = %v, want EINVAL", err)
	}
	if _, err := tbl.Signal(abi.SIGINT, Handled, nil); err != abi.EINVAL {
		t.Errorf("nil handler = %v, want EINVAL", err)
	}
}

func TestMaskDefersDelivery(t *testing.T) {
	p := bootProc(t)
	tbl := Install(p.Sys)

	var got []int
	if _, err := tbl.Signal(abi.SIGUSR1, Handled, func(sig int) {
		got = append(got, sig)
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Sigprocmask(Block, 1<<abi.SIGUSR1); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Raise(abi.SIGUSR1); err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("masked signal delivered: %v", got)
	}
	old, err := tbl.Sigprocmask(Unblock, 1<<abi.SIGUSR1)
	if err != nil {
		t.Fatal(err)
	}
	if old&(1<<abi.SIGUSR1) == 0 {
		t.Fatal("old mask lost the blocked bit")
	}
	// the unblock trap's own return delivers the held signal
	if len(got) != 1 || got[0] != abi.SIGUSR1 {
		t.Fatalf("after unblock handler saw %v", got)
	}
}

func TestUnimplementedCalls(t *testing.T) {
	p := bootProc(t)
	tbl := Install(p.Sys)
	if err := tbl.Sigsuspend(0); err != abi.ENOSYS {
		t.Fatalf("sigsuspend = %v", err)
	}
	if _, err := tbl.Sigpending(); err != abi.ENOSYS {
		t.Fatalf("sigpending = %v", err)
	}
	if p.Sys.Errno() != abi.ENOSYS {
		t.Fatal("errno not set")
	}
}
