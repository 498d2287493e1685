// Package clock wraps the time and scheduling syscalls. The kernel clock
// is millisecond ticks since boot plus a seconds-resolution RTC.
package clock

import (
	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/sys"
)

// Time returns RTC seconds since the epoch. The value is wide even on
// 32-bit targets.
func Time(g *sys.Gateway) int64 {
	return g.Trap(abi.SysTime)
}

// Uptime returns whole seconds since boot.
func Uptime(g *sys.Gateway) int64 {
	return g.Trap(abi.SysUptime)
}

// UptimeMs returns milliseconds since boot.
func UptimeMs(g *sys.Gateway) int64 {
	return g.Trap(abi.SysUptimeMs)
}

// TickHz reports the scheduler tick rate.
func TickHz(g *sys.Gateway) int64 {
	return g.Trap(abi.SysTickHz)
}

// Timeval is the seconds/microseconds pair of gettimeofday.
type Timeval struct {
	Sec  int64
	Usec int64
}

// Gettimeofday synthesizes sub-second resolution from the millisecond
// uptime counter: the RTC gives the seconds, the uptime remainder the
// microseconds. The two reads are not atomic; a tick boundary between
// them costs at most a millisecond of skew.
func Gettimeofday(g *sys.Gateway) Timeval {
	sec := Time(g)
	ms := UptimeMs(g)
	return Timeval{Sec: sec, Usec: (ms % 1000) * 1000}
}

// Sleep blocks for ms milliseconds.
func Sleep(g *sys.Gateway, ms uint64) {
	g.SleepMs(ms)
}

// Nanosleep rounds the request up to the millisecond tick and sleeps.
// There is no sub-tick sleep; a 1 ns request still waits a full tick.
func Nanosleep(g *sys.Gateway, sec int64, nsec int64) error {
	if sec < 0 || nsec < 0 || nsec > 999999999 {
		return abi.EINVAL
	}
	ms := uint64(sec)*1000 + uint64((nsec+999999)/1000000)
	if ms == 0 && nsec > 0 {
		ms = 1
	}
	g.SleepMs(ms)
	return nil
}

// Yield surrenders the remainder of the time slice.
func Yield(g *sys.Gateway) {
	g.Yield()
}
