package anyos

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/brianmayclone/anyos-userland/abi"
	co "github.com/brianmayclone/anyos-userland/kernel/common"
)

type tcpSock struct {
	conn net.Conn
}

// TcpConnect dials the packed request {addr, port, timeout} and returns a
// socket id.
func (k *Kernel) TcpConnect(req co.Buf) int64 {
	var r abi.TCPConnectReq
	if err := req.Unpack(&r); err != nil {
		return abi.Fail(abi.EINVAL)
	}
	ip := make(net.IP, 4)
	binary.BigEndian.PutUint32(ip, r.Addr)
	timeout := time.Duration(r.TimeoutMs) * time.Millisecond
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", ip, r.Port), timeout)
	if err != nil {
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			return abi.Fail(abi.ETIMEDOUT)
		}
		return abi.Fail(abi.EIO)
	}
	k.sockMu.Lock()
	k.nextSock++
	id := k.nextSock
	k.socks[id] = &tcpSock{conn: conn}
	k.sockMu.Unlock()
	return int64(id)
}

func (k *Kernel) sock(id int32) *tcpSock {
	k.sockMu.Lock()
	defer k.sockMu.Unlock()
	return k.socks[id]
}

func (k *Kernel) TcpSend(id int32, buf co.Buf, size co.Len) int64 {
	s := k.sock(id)
	if s == nil {
		return abi.Fail(abi.EBADF)
	}
	data, err := buf.Bytes(uint64(size))
	if err != nil {
		return abi.Fail(abi.EINVAL)
	}
	n, werr := s.conn.Write(data)
	if werr != nil && n == 0 {
		return abi.Fail(abi.EPIPE)
	}
	return int64(n)
}

func (k *Kernel) TcpRecv(id int32, buf co.Obuf, size co.Len) int64 {
	s := k.sock(id)
	if s == nil {
		return abi.Fail(abi.EBADF)
	}
	tmp := make([]byte, size)
	n, err := s.conn.Read(tmp)
	if n > 0 {
		if perr := buf.PutBytes(tmp[:n]); perr != nil {
			return abi.Fail(abi.EINVAL)
		}
		return int64(n)
	}
	if err != nil {
		return 0 // peer closed
	}
	return 0
}

func (k *Kernel) TcpClose(id int32) int64 {
	k.sockMu.Lock()
	s := k.socks[id]
	delete(k.socks, id)
	k.sockMu.Unlock()
	if s == nil {
		return abi.Fail(abi.EBADF)
	}
	s.conn.Close()
	return 0
}

const (
	tcpStatusClosed    = 0
	tcpStatusConnected = 1
)

func (k *Kernel) TcpStatus(id int32) int64 {
	if k.sock(id) == nil {
		return tcpStatusClosed
	}
	return tcpStatusConnected
}

func (k *Kernel) TcpShutdownWr(id int32) int64 {
	s := k.sock(id)
	if s == nil {
		return abi.Fail(abi.EBADF)
	}
	if tc, ok := s.conn.(*net.TCPConn); ok {
		tc.CloseWrite()
		return 0
	}
	return abi.Fail(abi.EINVAL)
}

func (k *Kernel) TcpRecvAvailable(id int32) int64 {
	// the host socket API exposes no reliable readable-byte count
	return abi.Fail(abi.ENOSYS)
}

// NetDns resolves a hostname to a numeric IPv4 address.
func (k *Kernel) NetDns(name string, out co.Obuf) int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	addrs, err := net.DefaultResolver.LookupIP(ctx, "ip4", name)
	if err != nil || len(addrs) == 0 {
		return abi.Fail(abi.ENOENT)
	}
	ip4 := addrs[0].To4()
	if ip4 == nil {
		return abi.Fail(abi.ENOENT)
	}
	if perr := out.PutBytes(ip4); perr != nil {
		return abi.Fail(abi.EINVAL)
	}
	return 0
}
