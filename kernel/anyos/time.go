package anyos

import "time"

// The hosted tick source runs at 1000 Hz: one tick per millisecond since
// machine boot.
const tickHz = 1000

func (k *Kernel) Time() int64 {
	return time.Now().Unix()
}

func (k *Kernel) Uptime() int64 {
	return int64(time.Since(k.M.boot) / time.Second)
}

func (k *Kernel) UptimeMs() int64 {
	return int64(time.Since(k.M.boot) / time.Millisecond)
}

func (k *Kernel) TickHz() int64 {
	return tickHz
}
