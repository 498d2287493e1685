package clock

import (
	"testing"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/kernel/anyos"
	"github.com/brianmayclone/anyos-userland/mem"
	"github.com/brianmayclone/anyos-userland/sys"
)

func bootGateway(t *testing.T) *sys.Gateway {
	t.Helper()
	m := anyos.NewMachine()
	img := mem.NewImage(0, 0)
	k := anyos.NewKernel(m, img, anyos.Config{Root: t.TempDir()})
	return sys.Bind(k)
}

func TestTickRate(t *testing.T) {
	g := bootGateway(t)
	if hz := TickHz(g); hz != 1000 {
		t.Fatalf("tick rate = %d", hz)
	}
}

func TestUptimeMonotone(t *testing.T) {
	g := bootGateway(t)
	a := UptimeMs(g)
	Sleep(g, 5)
	b := UptimeMs(g)
	if b < a+5 {
		t.Fatalf("uptime went %d -> %d across a 5ms sleep", a, b)
	}
	if Uptime(g) > b/1000+1 {
		t.Fatal("seconds and milliseconds disagree")
	}
}

func TestGettimeofday(t *testing.T) {
	g := bootGateway(t)
	tv := Gettimeofday(g)
	if tv.Sec <= 0 {
		t.Fatalf("rtc seconds = %d", tv.Sec)
	}
	if tv.Usec < 0 || tv.Usec >= 1000000 {
		t.Fatalf("usec out of range: %d", tv.Usec)
	}
	if tv.Usec%1000 != 0 {
		t.Fatalf("usec has sub-millisecond digits: %d", tv.Usec)
	}
}

func TestNanosleepValidation(t *testing.T) {
	g := bootGateway(t)
	if err := Nanosleep(g, -1, 0); err != abi.EINVAL {
		t.Fatalf("negative seconds = %v", err)
	}
	if err := Nanosleep(g, 0, -1); err != abi.EINVAL {
		t.Fatalf("negative nanoseconds = %v", err)
	}
	if err := Nanosleep(g, 0, 1000000000); err != abi.EINVAL {
		t.Fatalf("overlong nanoseconds = %v", err)
	}
	a := UptimeMs(g)
	if err := Nanosleep(g, 0, 1); err != nil {
		t.Fatal(err)
	}
	// even 1ns waits a full tick
	if UptimeMs(g) == a {
		t.Fatal("sub-tick request did not sleep")
	}
}
