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
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
	ospoll "github.com/nabbar/evloop/internal/ospoll"
	loop "github.com/nabbar/evloop/loop"
)

// AcceptCallback fires on every accept-descriptor readiness; the caller
// pulls exactly one connection per call via StreamServer.Accept.
type AcceptCallback func()

// StreamServer listens for inbound stream connections. Its listening
// socket is opened through github.com/libp2p/go-reuseport so SO_REUSEADDR/
// SO_REUSEPORT are set the way the rest of the pack's servers expect, then
// its descriptor is detached from Go's runtime poller and driven directly
// by the loop's epoll instance.
type StreamServer struct {
	fd       int
	local    Address
	unix     bool
	ctx      *loop.Context
	resource handle.Handle
	onAccept AcceptCallback
}

// NewStreamServer binds local and starts listening with the given backlog.
func NewStreamServer(ctx *loop.Context, local Address, backlog int) (*StreamServer, liberr.Error) {
	network := "tcp4"
	addr := net.JoinHostPort(local.IP, fmt.Sprintf("%d", local.Port))
	if local.IsLocal() {
		network = "unix"
		addr = local.Path
	}

	l, lerr := reuseportListen(network, addr)
	if lerr != nil {
		return nil, lerr
	}

	sc, ok := l.(syscall.Conn)
	if !ok {
		_ = l.Close()
		return nil, liberr.CodeOperationNotSupported.Error()
	}

	fd, ferr := socketFd(sc)
	if ul, isUnix := l.(*net.UnixListener); isUnix {
		// The dup'd descriptor keeps listening on path: leave the file.
		ul.SetUnlinkOnClose(false)
	}
	_ = l.Close()
	if ferr != nil {
		return nil, ferr
	}

	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.Errno("listen", err)
	}

	srv := &StreamServer{fd: fd, local: local, unix: local.IsLocal(), ctx: ctx}
	return srv, nil
}

// Listen subscribes IN on the accept descriptor; cb fires on every
// readiness, and the caller pulls one connection at a time with Accept.
func (s *StreamServer) Listen(cb AcceptCallback) liberr.Error {
	s.onAccept = cb

	h, err := s.ctx.AddResource(s.fd, ospoll.In, func(_ ospoll.Events) {
		if s.onAccept != nil {
			s.onAccept()
		}
	}, s)
	if err != nil {
		return err
	}
	s.resource = h

	return nil
}

// Accept pulls exactly one pending connection, wrapping it in a Stream
// already attached to the loop. Returns CodeAgain if nothing is pending.
func (s *StreamServer) Accept() (*Stream, liberr.Error) {
	nfd, _, err := unix.Accept4(s.fd, unix.SOCK_NONBLOCK)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, liberr.CodeAgain.Error()
		}
		return nil, liberr.Errno("accept4", err)
	}

	return adoptStream(s.ctx, nfd, s.local, Address{}, s.unix)
}

func (s *StreamServer) Close() liberr.Error {
	err := s.ctx.RemoveResource(s.resource)
	_ = unix.Close(s.fd)
	return err
}
