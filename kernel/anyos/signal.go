package anyos

import (
	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
)

// Sigaction stores the handler address for sig and returns the previous
// one. Addresses 0 and 1 are the SIG_DFL/SIG_IGN sentinels; the kernel
// never jumps to them.
func (k *Kernel) Sigaction(sig int, handler co.Ptr) int64 {
	if !abi.Catchable(sig) {
		return abi.Fail(abi.EINVAL)
	}
	k.sigMu.Lock()
	defer k.sigMu.Unlock()
	old := k.handlers[sig]
	k.handlers[sig] = uint64(handler)
	return int64(old)
}

const (
	sigBlock   = 0
	sigUnblock = 1
	sigSetmask = 2
)

// Sigprocmask applies the new mask and returns the old one.
func (k *Kernel) Sigprocmask(how int, mask uint32) int64 {
	k.sigMu.Lock()
	defer k.sigMu.Unlock()
	old := k.mask
	switch how {
	case sigBlock:
		k.mask |= mask
	case sigUnblock:
		k.mask &^= mask
	case sigSetmask:
		k.mask = mask
	default:
		return abi.Fail(abi.EINVAL)
	}
	return int64(old)
}

// Sigreturn exists for the hardware kernel's trampoline; the hosted kernel
// delivers signals between syscalls and has no frame to restore.
func (k *Kernel) Sigreturn() int64 {
	return 0
}
