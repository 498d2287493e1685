// Package abi is the single source of truth for the anyOS syscall ABI:
// syscall numbers, errno values, signal numbers, and the packed record
// layouts that cross the trap boundary. Both the userland library and the
// hosted kernel build against this package; nothing here may depend on
// either side.
package abi

// Syscall numbers. The assignment must match kernel/src/syscall/mod.rs in
// the anyOS kernel; the kernel treats unknown numbers as -ENOSYS.
const (
	// Process management
	SysExit       = 1
	SysWrite      = 2
	SysRead       = 3
	SysOpen       = 4
	SysClose      = 5
	SysGetpid     = 6
	SysYield      = 7
	SysSleep      = 8
	SysSbrk       = 9
	SysFork       = 10
	SysExec       = 11
	SysWaitpid    = 12
	SysKill       = 13
	SysMmap       = 14
	SysMunmap     = 15
	SysSpawn      = 27
	SysGetargs    = 28
	SysTryWaitpid = 29
	SysGetppid    = 36

	// Device management
	SysDevlist  = 16
	SysDevopen  = 17
	SysDevclose = 18
	SysDevread  = 19
	SysDevwrite = 20
	SysDevioctl = 21
	SysIrqwait  = 22

	// Filesystem
	SysReaddir    = 23
	SysStat       = 24
	SysGetcwd     = 25
	SysChdir      = 26
	SysMkdir      = 90
	SysUnlink     = 91
	SysTruncate   = 92
	SysMount      = 93
	SysUmount     = 94
	SysListMounts = 95
	SysSymlink    = 96
	SysReadlink   = 97
	SysLstat      = 98
	SysRename     = 99
	SysLseek      = 105
	SysFstat      = 106
	SysFtruncate  = 107
	SysIsatty     = 108

	// System information
	SysTime     = 30
	SysUptime   = 31
	SysSysinfo  = 32
	SysDmesg    = 33
	SysTickHz   = 34
	SysUptimeMs = 35

	// Networking
	SysNetConfig = 40
	SysNetPing   = 41
	SysNetDhcp   = 42
	SysNetDns    = 43
	SysNetArp    = 44
	SysNetPoll   = 156

	// TCP
	SysTcpConnect       = 100
	SysTcpSend          = 101
	SysTcpRecv          = 102
	SysTcpClose         = 103
	SysTcpStatus        = 104
	SysTcpRecvAvailable = 130
	SysTcpShutdownWr    = 131
	SysTcpListen        = 132
	SysTcpAccept        = 133
	SysTcpList          = 134

	// UDP
	SysUdpBind     = 150
	SysUdpUnbind   = 151
	SysUdpSendto   = 152
	SysUdpRecvfrom = 153
	SysUdpSetOpt   = 154
	SysUdpList     = 155

	// Pipes (named IPC)
	SysPipeCreate         = 45
	SysPipeRead           = 46
	SysPipeClose          = 47
	SysPipeWrite          = 48
	SysPipeOpen           = 49
	SysPipeList           = 180
	SysPipeBytesAvailable = 181

	// Event bus
	SysEvtSysSubscribe    = 60
	SysEvtSysPoll         = 61
	SysEvtSysUnsubscribe  = 62
	SysEvtChanCreate      = 63
	SysEvtChanSubscribe   = 64
	SysEvtChanEmit        = 65
	SysEvtChanPoll        = 66
	SysEvtChanUnsubscribe = 67
	SysEvtChanDestroy     = 68
	SysEvtChanEmitTo      = 69
	SysEvtChanWait        = 70

	// Display and input
	SysScreenSize         = 72
	SysSetResolution      = 110
	SysListResolutions    = 111
	SysGpuInfo            = 112
	SysGpuHasAccel        = 135
	SysSetWallpaper       = 136
	SysBootReady          = 137
	SysGpuHasHwCursor     = 138
	SysMapFramebuffer     = 144
	SysGpuCommand         = 145
	SysInputPoll          = 146
	SysRegisterCompositor = 147
	SysCursorTakeover     = 148
	SysCaptureScreen      = 161

	// Shared memory
	SysShmCreate  = 140
	SysShmMap     = 141
	SysShmUnmap   = 142
	SysShmDestroy = 143

	// Audio
	SysAudioWrite = 120
	SysAudioCtl   = 121

	// Threads
	SysThreadCreate = 170
	SysSetPriority  = 171
	SysSetCritical  = 172
	SysThreadExit   = 173
	SysWaittid      = 174

	// Environment
	SysSetenv   = 182
	SysGetenv   = 183
	SysListenv  = 184
	SysUnsetenv = 185

	// DLL
	SysDllLoad   = 80
	SysSetDllU32 = 190

	// Keyboard layout
	SysKbdGetLayout   = 200
	SysKbdSetLayout   = 201
	SysKbdListLayouts = 202

	// Random
	SysRandom = 210

	// Identity and security
	SysGetCapabilities = 220
	SysGetuid          = 221
	SysGetgid          = 222
	SysAuthenticate    = 223
	SysChmod           = 224
	SysChown           = 225
	SysAdduser         = 226
	SysDeluser         = 227
	SysListusers       = 228
	SysAddgroup        = 229
	SysDelgroup        = 230
	SysListgroups      = 231
	SysGetusername     = 232
	SysSetIdentity     = 233
	SysChangePassword  = 236

	// Hostname / power
	SysHostnameGet = 234
	SysHostnameSet = 235
	SysShutdown    = 237

	// FD operations
	SysPipe2 = 240
	SysDup   = 241
	SysDup2  = 242
	SysFcntl = 243

	// Signals
	SysSigaction   = 244
	SysSigprocmask = 245
	SysSigreturn   = 246
)

// names maps syscall numbers to their snake_case kernel names. The hosted
// kernel dispatches on these: a kernel method FooBar serves syscall
// "foo_bar".
var names = map[uint32]string{
	SysExit:       "exit",
	SysWrite:      "write",
	SysRead:       "read",
	SysOpen:       "open",
	SysClose:      "close",
	SysGetpid:     "getpid",
	SysYield:      "yield",
	SysSleep:      "sleep",
	SysSbrk:       "sbrk",
	SysFork:       "fork",
	SysExec:       "exec",
	SysWaitpid:    "waitpid",
	SysKill:       "kill",
	SysMmap:       "mmap",
	SysMunmap:     "munmap",
	SysSpawn:      "spawn",
	SysGetargs:    "getargs",
	SysTryWaitpid: "try_waitpid",
	SysGetppid:    "getppid",

	SysReaddir:   "readdir",
	SysStat:      "stat",
	SysGetcwd:    "getcwd",
	SysChdir:     "chdir",
	SysMkdir:     "mkdir",
	SysUnlink:    "unlink",
	SysTruncate:  "truncate",
	SysSymlink:   "symlink",
	SysReadlink:  "readlink",
	SysLstat:     "lstat",
	SysRename:    "rename",
	SysLseek:     "lseek",
	SysFstat:     "fstat",
	SysFtruncate: "ftruncate",
	SysIsatty:    "isatty",

	SysTime:     "time",
	SysUptime:   "uptime",
	SysSysinfo:  "sysinfo",
	SysDmesg:    "dmesg",
	SysTickHz:   "tick_hz",
	SysUptimeMs: "uptime_ms",

	SysNetDns:           "net_dns",
	SysTcpConnect:       "tcp_connect",
	SysTcpSend:          "tcp_send",
	SysTcpRecv:          "tcp_recv",
	SysTcpClose:         "tcp_close",
	SysTcpStatus:        "tcp_status",
	SysTcpRecvAvailable: "tcp_recv_available",
	SysTcpShutdownWr:    "tcp_shutdown_wr",

	SysPipeCreate:         "pipe_create",
	SysPipeRead:           "pipe_read",
	SysPipeClose:          "pipe_close",
	SysPipeWrite:          "pipe_write",
	SysPipeOpen:           "pipe_open",
	SysPipeBytesAvailable: "pipe_bytes_available",

	SysThreadCreate: "thread_create",
	SysSetPriority:  "set_priority",
	SysSetCritical:  "set_critical",
	SysThreadExit:   "thread_exit",
	SysWaittid:      "waittid",

	SysSetenv:   "setenv",
	SysGetenv:   "getenv",
	SysListenv:  "listenv",
	SysUnsetenv: "unsetenv",

	SysRandom: "random",

	SysGetuid:      "getuid",
	SysGetgid:      "getgid",
	SysGetusername: "getusername",

	SysHostnameGet: "hostname_get",
	SysHostnameSet: "hostname_set",

	SysPipe2: "pipe2",
	SysDup:   "dup",
	SysDup2:  "dup2",
	SysFcntl: "fcntl",

	SysSigaction:   "sigaction",
	SysSigprocmask: "sigprocmask",
	SysSigreturn:   "sigreturn",
}

// Name returns the kernel name for a syscall number, or "" when the number
// is not part of the dispatchable table (the kernel then answers -ENOSYS).
func Name(num uint32) string {
	return names[num]
}
