/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package netio

import (
	"net"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/evloop/errors"
	ioengine "github.com/nabbar/evloop/ioengine"
	loop "github.com/nabbar/evloop/loop"
)

// Stream is a connection-oriented socket: IPv4 TCP or UNIX-domain local
// stream, picked by whether the local Address carries a Path. It implements
// ioengine.Connectable and is driven entirely by an *ioengine.Engine.
type Stream struct {
	fd     int
	local  Address
	remote Address
	unix   bool

	Engine *ioengine.Engine
}

// NewStream creates a non-blocking stream socket and binds it to local
// (port/path 0 lets the OS assign one), ready for Connect or for wrapping
// an accepted connection's fd via adoptStream.
func NewStream(ctx *loop.Context, local Address) (*Stream, liberr.Error) {
	family := unix.AF_INET
	if local.IsLocal() {
		family = unix.AF_UNIX
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, liberr.Errno("socket", err)
	}
	if serr := unix.SetNonblock(fd, true); serr != nil {
		_ = unix.Close(fd)
		return nil, liberr.Errno("set nonblock", serr)
	}
	if family == unix.AF_INET {
		if aerr := applySocketOptions(fd); aerr != nil {
			_ = unix.Close(fd)
			return nil, aerr
		}
	}

	if berr := bindAddress(fd, family, local); berr != nil {
		_ = unix.Close(fd)
		return nil, berr
	}

	return adoptStream(ctx, fd, local, Address{}, family == unix.AF_UNIX)
}

// adoptStream wraps an already-open, already-non-blocking fd (from accept,
// or from a freshly created+bound socket) in a Stream and attaches it to
// the loop through a fresh Engine.
func adoptStream(ctx *loop.Context, fd int, local, remote Address, isUnix bool) (*Stream, liberr.Error) {
	s := &Stream{fd: fd, local: local, remote: remote, unix: isUnix}

	e, err := ioengine.New(ctx, s)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	s.Engine = e

	return s, nil
}

func bindAddress(fd, family int, a Address) liberr.Error {
	if family == unix.AF_UNIX {
		if a.Path == "" {
			return nil
		}
		if err := unix.Bind(fd, &unix.SockaddrUnix{Name: a.Path}); err != nil {
			return liberr.Errno("bind", err)
		}
		return nil
	}

	if a.Port == 0 && a.IP == "" {
		return nil
	}
	if err := parseIPv4(a.IP); err != nil {
		return err
	}

	sa := &unix.SockaddrInet4{Port: int(a.Port)}
	if a.IP != "" {
		ip := net.ParseIP(a.IP).To4()
		copy(sa.Addr[:], ip)
	}
	if err := unix.Bind(fd, sa); err != nil {
		return liberr.Errno("bind", err)
	}
	return nil
}

// Connect starts a non-blocking connect to remote. The success callback
// (cb) is always delivered through the engine's future-backed scheduling,
// never inline.
func (s *Stream) Connect(remote Address, cb ioengine.ConnectCallback) liberr.Error {
	s.remote = remote
	return s.Engine.Connect(s, cb)
}

// Connector performs the actual non-blocking connect(2) syscall.
func (s *Stream) Connector() (bool, liberr.Error) {
	var sa unix.Sockaddr

	if s.unix {
		sa = &unix.SockaddrUnix{Name: s.remote.Path}
	} else {
		if err := parseIPv4(s.remote.IP); err != nil {
			return false, err
		}
		addr := &unix.SockaddrInet4{Port: int(s.remote.Port)}
		copy(addr.Addr[:], net.ParseIP(s.remote.IP).To4())
		sa = addr
	}

	err := unix.Connect(s.fd, sa)
	if err == nil {
		return true, nil
	}
	if err == unix.EINPROGRESS {
		return false, nil
	}
	return false, liberr.Errno("connect", err)
}

// FinalizeConnect fetches and clears SO_ERROR once OUT readiness has been
// observed for a pending connect.
func (s *Stream) FinalizeConnect() liberr.Error {
	return socketError(s.fd)
}

func (s *Stream) Descriptor() int { return s.fd }

func (s *Stream) Read(buf []byte) (int, liberr.Error) {
	n, err := unix.Read(s.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, liberr.CodeAgain.Error()
		}
		if err == unix.EINTR {
			return 0, liberr.CodeInterrupted.Error()
		}
		return 0, liberr.Errno("read", err)
	}
	if n == 0 {
		return 0, liberr.CodeEOF.Error()
	}
	return n, nil
}

func (s *Stream) Write(buf []byte) (int, liberr.Error) {
	n, err := unix.Write(s.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, liberr.CodeAgain.Error()
		}
		if err == unix.EINTR {
			return 0, liberr.CodeInterrupted.Error()
		}
		return 0, liberr.Errno("write", err)
	}
	return n, nil
}

func (s *Stream) Close() error {
	return unix.Close(s.fd)
}
