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

// Datagram is the connectionless specialization from spec.md §4.7: bind to
// a local port (or port 0 to let the OS assign one), start_read delivers
// (sender_address, buffer, error), write targets an explicit destination.
// There is no connect-state machine, so Datagram implements ioengine.Conn
// and ioengine.DatagramConn but never ioengine.Connectable.
type Datagram struct {
	fd    int
	local Address

	Engine *ioengine.Engine
}

// NewDatagram opens a non-blocking UDP socket bound to local.
func NewDatagram(ctx *loop.Context, local Address) (*Datagram, liberr.Error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, liberr.Errno("socket", err)
	}
	if serr := unix.SetNonblock(fd, true); serr != nil {
		_ = unix.Close(fd)
		return nil, liberr.Errno("set nonblock", serr)
	}
	if aerr := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); aerr != nil {
		_ = unix.Close(fd)
		return nil, liberr.Errno("so_reuseaddr", aerr)
	}

	if berr := bindAddress(fd, unix.AF_INET, local); berr != nil {
		_ = unix.Close(fd)
		return nil, berr
	}

	d := &Datagram{fd: fd, local: local}

	e, eerr := ioengine.New(ctx, d)
	if eerr != nil {
		_ = unix.Close(fd)
		return nil, eerr
	}
	d.Engine = e

	return d, nil
}

func (d *Datagram) Descriptor() int { return d.fd }

// Read satisfies ioengine.Conn but is never exercised directly: the engine
// always prefers ReadFrom for a DatagramConn.
func (d *Datagram) Read(buf []byte) (int, liberr.Error) {
	n, _, err := d.ReadFrom(buf)
	return n, err
}

// Write satisfies ioengine.Conn but is never exercised directly: the engine
// always prefers WriteTo for a DatagramConn, which carries the destination.
func (d *Datagram) Write(buf []byte) (int, liberr.Error) {
	return d.WriteTo(buf, nil)
}

// ReadFrom receives one datagram, reporting the sender as an Address value.
func (d *Datagram) ReadFrom(buf []byte) (int, interface{}, liberr.Error) {
	n, from, err := unix.Recvfrom(d.fd, buf, 0)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil, liberr.CodeAgain.Error()
		}
		if err == unix.EINTR {
			return 0, nil, liberr.CodeInterrupted.Error()
		}
		return 0, nil, liberr.Errno("recvfrom", err)
	}

	sender := sockaddrToAddress(from)
	return n, sender, nil
}

// WriteTo sends one datagram to destination, which must be an Address (a
// nil destination is rejected: datagram writes have no implicit peer).
func (d *Datagram) WriteTo(buf []byte, destination interface{}) (int, liberr.Error) {
	a, ok := destination.(Address)
	if !ok {
		if pa, isPtr := destination.(*Address); isPtr && pa != nil {
			a = *pa
		} else {
			return 0, liberr.CodeInvalidState.Error()
		}
	}

	if err := parseIPv4(a.IP); err != nil {
		return 0, err
	}

	sa := &unix.SockaddrInet4{Port: int(a.Port)}
	if a.IP != "" {
		ip := net.ParseIP(a.IP).To4()
		copy(sa.Addr[:], ip)
	}

	if err := unix.Sendto(d.fd, buf, 0, sa); err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, liberr.CodeAgain.Error()
		}
		return 0, liberr.Errno("sendto", err)
	}

	return len(buf), nil
}

func (d *Datagram) Close() error {
	return unix.Close(d.fd)
}

func sockaddrToAddress(sa unix.Sockaddr) Address {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		ip := net.IPv4(v.Addr[0], v.Addr[1], v.Addr[2], v.Addr[3])
		return Address{IP: ip.String(), Port: uint16(v.Port)}
	default:
		return Address{}
	}
}
