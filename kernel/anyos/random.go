package anyos

import (
	"crypto/rand"

	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
)

// Random fills the buffer with entropy and returns the byte count. The
// result is data, not an errno; callers must not run it through the errno
// rule.
func (k *Kernel) Random(buf co.Obuf, size co.Len) int64 {
	tmp := make([]byte, size)
	n, _ := rand.Read(tmp)
	if n > 0 {
		if err := buf.PutBytes(tmp[:n]); err != nil {
			return abi.Fail(abi.EINVAL)
		}
	}
	return int64(n)
}
