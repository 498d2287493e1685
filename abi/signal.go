package abi

// Signal numbers occupy the fixed range [0, NumSignals). The kernel rejects
// anything outside it with EINVAL.
const NumSignals = 32

const (
	SIGHUP  = 1
	SIGINT  = 2
	SIGQUIT = 3
	SIGILL  = 4
	SIGABRT = 6
	SIGFPE  = 8
	SIGKILL = 9
	SIGUSR1 = 10
	SIGSEGV = 11
	SIGUSR2 = 12
	SIGPIPE = 13
	SIGALRM = 14
	SIGTERM = 15
	SIGCHLD = 17
)

// Handler address sentinels understood by the kernel side of sigaction.
// Anything else is a userland text address registered with the gateway.
const (
	SigDfl uint64 = 0
	SigIgn uint64 = 1
)

// SIGKILL and SIGSTOP-like signals cannot be caught on anyOS; the kernel
// refuses to install a handler for them.
func Catchable(sig int) bool {
	return sig > 0 && sig < NumSignals && sig != SIGKILL
}
