//go:build linux

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

package ioengine_test

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/evloop/errors"
	ioengine "github.com/nabbar/evloop/ioengine"
	loop "github.com/nabbar/evloop/loop"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// sockConn is the smallest possible ioengine.Conn, backed by a raw
// AF_UNIX socketpair fd, used to drive the engine without any netio
// dependency.
type sockConn struct {
	fd int
}

func (s *sockConn) Descriptor() int { return s.fd }

func (s *sockConn) Read(buf []byte) (int, liberr.Error) {
	n, err := unix.Read(s.fd, buf)
	if err != nil {
		if err == unix.EAGAIN {
			return 0, liberr.CodeAgain.Error()
		}
		return 0, liberr.Errno("read", err)
	}
	if n == 0 {
		return 0, liberr.CodeEOF.Error()
	}
	return n, nil
}

func (s *sockConn) Write(buf []byte) (int, liberr.Error) {
	n, err := unix.Write(s.fd, buf)
	if err != nil {
		if err == unix.EAGAIN {
			return 0, liberr.CodeAgain.Error()
		}
		return 0, liberr.Errno("write", err)
	}
	return n, nil
}

func (s *sockConn) Close() error { return unix.Close(s.fd) }

var _ = Describe("Engine", func() {
	var (
		ctx        *loop.Context
		engineFd   int
		peerFd     int
	)

	BeforeEach(func() {
		var err error
		ctx, err = loop.New(nil)
		Expect(err).To(BeNil())

		fds, serr := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
		Expect(serr).To(BeNil())
		Expect(unix.SetNonblock(fds[0], true)).To(BeNil())

		engineFd, peerFd = fds[0], fds[1]
	})

	AfterEach(func() {
		_ = unix.Close(peerFd)
		Expect(ctx.Destroy()).To(BeNil())
	})

	It("delivers a peer write to the read callback", func() {
		e, err := ioengine.New(ctx, &sockConn{fd: engineFd})
		Expect(err).To(BeNil())

		var got []byte
		Expect(e.StartRead(func(data []byte, sender interface{}, rerr liberr.Error) {
			got = append(got, data...)
		})).To(BeNil())

		_, werr := unix.Write(peerFd, []byte("hey jude"))
		Expect(werr).To(BeNil())

		_, _ = ctx.RunOnce()
		Expect(string(got)).To(Equal("hey jude"))
	})

	It("delivers a queued write and its completion callback", func() {
		e, err := ioengine.New(ctx, &sockConn{fd: engineFd})
		Expect(err).To(BeNil())

		var completed int32
		Expect(e.Write([]byte("ping"), nil, func(werr liberr.Error) {
			Expect(werr).To(BeNil())
			atomic.AddInt32(&completed, 1)
		})).To(BeNil())

		_, _ = ctx.RunOnce()

		buf := make([]byte, 16)
		n, rerr := unix.Read(peerFd, buf)
		Expect(rerr).To(BeNil())
		Expect(string(buf[:n])).To(Equal("ping"))
		Expect(atomic.LoadInt32(&completed)).To(Equal(int32(1)))
	})

	It("StopRead is idempotent", func() {
		e, err := ioengine.New(ctx, &sockConn{fd: engineFd})
		Expect(err).To(BeNil())

		Expect(e.StartRead(func([]byte, interface{}, liberr.Error) {})).To(BeNil())
		Expect(e.StopRead()).To(BeNil())
		Expect(e.StopRead()).To(BeNil())
	})

	It("marks errored and stops delivering once the peer closes", func() {
		e, err := ioengine.New(ctx, &sockConn{fd: engineFd})
		Expect(err).To(BeNil())

		var sawErr liberr.Error
		Expect(e.StartRead(func(data []byte, sender interface{}, rerr liberr.Error) {
			if rerr != nil {
				sawErr = rerr
			}
		})).To(BeNil())

		Expect(unix.Close(peerFd)).To(BeNil())
		peerFd = -1

		for i := 0; i < 5 && sawErr == nil; i++ {
			_, _ = ctx.RunOnce()
			time.Sleep(5 * time.Millisecond)
		}

		Expect(sawErr).ToNot(BeNil())
	})
})
