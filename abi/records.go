package abi

// Packed record layouts crossing the trap. All records are little-endian;
// the struc tags are the wire truth.

// StatRec is the kernel stat record: six unsigned 32-bit fields.
// Type is 0 for a regular file, 1 for a directory, 2 for a character
// device. Mode is the permission bits only; 0 means "kernel default"
// (0644 file, 0755 dir, 0666 chardev).
type StatRec struct {
	Type  uint32 `struc:"uint32,little"`
	Size  uint32 `struc:"uint32,little"`
	Mode  uint32 `struc:"uint32,little"`
	Uid   uint32 `struc:"uint32,little"`
	Gid   uint32 `struc:"uint32,little"`
	Mtime uint32 `struc:"uint32,little"`
}

// File type tags used in StatRec.Type and DirEnt.Type.
const (
	FileTypeRegular = 0
	FileTypeDir     = 1
	FileTypeCharDev = 2
)

// DirEnt is one 64-byte readdir record:
// [type:u8, name_len:u8, pad:u16, size:u32, name:56 bytes].
type DirEnt struct {
	Type    uint8  `struc:"uint8"`
	NameLen uint8  `struc:"uint8"`
	Pad     uint16 `struc:"uint16,little"`
	Size    uint32 `struc:"uint32,little"`
	Name    [56]byte
}

// DirEntSize is the packed size of one readdir record.
const DirEntSize = 64

// TCPConnectReq is the argument block for tcp_connect: a numeric IPv4
// address, a port, and a connect timeout in milliseconds (0 = kernel
// default).
type TCPConnectReq struct {
	Addr      uint32 `struc:"uint32,little"`
	Port      uint16 `struc:"uint16,little"`
	Pad       uint16 `struc:"uint16,little"`
	TimeoutMs uint32 `struc:"uint32,little"`
}

// Open flags for SysOpen.
const (
	ORdonly = 0x0
	OWronly = 0x1
	ORdwr   = 0x2
	OCreat  = 0x40
	OTrunc  = 0x200
	OAppend = 0x400
)

// Whence values for SysLseek.
const (
	SeekSet = 0
	SeekCur = 1
	SeekEnd = 2
)

// Sysinfo record returned by SysSysinfo.
type SysinfoRec struct {
	TotalMem uint32 `struc:"uint32,little"` // KiB
	FreeMem  uint32 `struc:"uint32,little"` // KiB
	Procs    uint32 `struc:"uint32,little"`
	Threads  uint32 `struc:"uint32,little"`
	Cores    uint32 `struc:"uint32,little"`
	TickHz   uint32 `struc:"uint32,little"`
}
