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
	"syscall"

	"github.com/libp2p/go-reuseport"
	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/evloop/errors"
)

// socketFd extracts the raw file descriptor behind a net.Conn/net.Listener
// opened through reuseport, and switches it into non-blocking mode: every
// created or accepted stream is forced non-blocking, as spec.md §6 requires.
// The dup'd descriptor is independent of the net.Conn/Listener wrapper,
// which is discarded immediately after — the engine drives the raw fd
// directly from then on.
func socketFd(sc syscall.Conn) (int, liberr.Error) {
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, liberr.Errno("syscallconn", err)
	}

	var fd int
	cerr := raw.Control(func(f uintptr) { fd = int(f) })
	if cerr != nil {
		return -1, liberr.Errno("raw control", cerr)
	}

	dup, derr := unix.Dup(fd)
	if derr != nil {
		return -1, liberr.Errno("dup", derr)
	}

	if serr := unix.SetNonblock(dup, true); serr != nil {
		_ = unix.Close(dup)
		return -1, liberr.Errno("set nonblock", serr)
	}

	return dup, nil
}

// applySocketOptions sets the creation-time socket options spec.md §6
// documents for stream sockets: address reuse and keep-alive.
func applySocketOptions(fd int) liberr.Error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return liberr.Errno("so_reuseaddr", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		return liberr.Errno("so_keepalive", err)
	}
	return nil
}

// socketError fetches and clears a socket's pending error (SO_ERROR), the
// finalize_connect primitive spec.md §4.6 requires.
func socketError(fd int) liberr.Error {
	errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return liberr.Errno("so_error", err)
	}
	if errno != 0 {
		return liberr.Errno("connect", unix.Errno(errno))
	}
	return nil
}

// reuseportListen opens a tcp4 or unix listener with SO_REUSEADDR/SO_REUSEPORT via
// libp2p/go-reuseport, so multiple processes (or loops) can share a bind
// address the way the teacher's stack does for its own listeners.
func reuseportListen(network, addr string) (net.Listener, liberr.Error) {
	l, err := reuseport.Listen(network, addr)
	if err != nil {
		return nil, liberr.Errno("reuseport listen", err)
	}
	return l, nil
}

// reuseportDial opens an outbound connection with the same address-reuse
// semantics as reuseportListen.
func reuseportDial(network, addr string) (net.Conn, liberr.Error) {
	c, err := reuseport.Dial(network, addr)
	if err != nil {
		return nil, liberr.Errno("reuseport dial", err)
	}
	return c, nil
}
