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

package loop_test

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	ospoll "github.com/nabbar/evloop/internal/ospoll"
	loop "github.com/nabbar/evloop/loop"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Context", func() {
	var c *loop.Context

	BeforeEach(func() {
		var e error
		c, e = loop.New(nil)
		Expect(e).To(BeNil())
	})

	AfterEach(func() {
		Expect(c.Destroy()).To(BeNil())
	})

	It("assigns the loop a non-zero registry index", func() {
		Expect(c.Index()).ToNot(Equal(uint16(0)))
	})

	It("dispatches readiness to an added resource and honours RunOnce's return", func() {
		fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
		Expect(err).To(BeNil())
		defer unix.Close(fds[1])

		var fired int32
		h, aerr := c.AddResource(fds[0], ospoll.In, func(ev ospoll.Events) {
			atomic.AddInt32(&fired, 1)
		}, nil)
		Expect(aerr).To(BeNil())
		defer c.RemoveResource(h)

		_, werr := unix.Write(fds[1], []byte("x"))
		Expect(werr).To(BeNil())

		stop, rerr := c.RunOnce()
		Expect(rerr).To(BeNil())
		Expect(stop).To(BeFalse())
		Expect(atomic.LoadInt32(&fired)).To(BeNumerically(">=", 1))
	})

	It("reports stop=true once Destroy/Stop has been requested", func() {
		go func() { time.Sleep(10 * time.Millisecond); _ = c.Stop() }()

		var stopped bool
		for i := 0; i < 50 && !stopped; i++ {
			s, rerr := c.RunOnce()
			Expect(rerr).To(BeNil())
			stopped = s
		}
		Expect(stopped).To(BeTrue())
	})
})

var _ = Describe("Timer", func() {
	var c *loop.Context

	BeforeEach(func() {
		var e error
		c, e = loop.New(nil)
		Expect(e).To(BeNil())
	})

	AfterEach(func() {
		Expect(c.Destroy()).To(BeNil())
	})

	It("rejects a timeout below the minimum poll interval", func() {
		_, err := c.CreateTimer(time.Millisecond, func() {})
		Expect(err).ToNot(BeNil())
	})

	It("refuses a second StartTimer while the timer is running", func() {
		h, err := c.CreateTimer(loop.MinTimerInterval, func() {})
		Expect(err).To(BeNil())
		Expect(c.StartTimer(h)).To(BeNil())

		Expect(c.StartTimer(h)).ToNot(BeNil())
	})
})

var _ = Describe("Future", func() {
	var c *loop.Context

	BeforeEach(func() {
		var e error
		c, e = loop.New(nil)
		Expect(e).To(BeNil())
	})

	AfterEach(func() {
		Expect(c.Destroy()).To(BeNil())
	})

	It("fires its callback once execute_time has elapsed and then allows re-execution", func() {
		var fired int32
		h, err := c.CreateFuture(func() { atomic.AddInt32(&fired, 1) })
		Expect(err).To(BeNil())

		Expect(c.Execute(h, 10*time.Millisecond)).To(BeNil())

		time.Sleep(20 * time.Millisecond)
		_, _ = c.RunOnce()

		Expect(atomic.LoadInt32(&fired)).To(Equal(int32(1)))

		Expect(c.Execute(h, time.Millisecond)).To(BeNil())
	})

	It("refuses Execute while a previous run has not finished", func() {
		h, err := c.CreateFuture(func() { time.Sleep(50 * time.Millisecond) })
		Expect(err).To(BeNil())
		Expect(c.Execute(h, 0)).To(BeNil())

		Expect(c.Execute(h, 0)).ToNot(BeNil())
	})
})

var _ = Describe("Event", func() {
	var c *loop.Context

	BeforeEach(func() {
		var e error
		c, e = loop.New(nil)
		Expect(e).To(BeNil())
	})

	AfterEach(func() {
		Expect(c.Destroy()).To(BeNil())
	})

	It("fires its callback once per Set after a poll iteration", func() {
		var fired int32
		h, err := c.CreateEvent(func() { atomic.AddInt32(&fired, 1) })
		Expect(err).To(BeNil())
		defer c.DestroyEvent(h)

		Expect(c.SetEvent(h)).To(BeNil())

		_, _ = c.RunOnce()
		Expect(atomic.LoadInt32(&fired)).To(BeNumerically(">=", 1))
	})

	It("is a no-op to Clear an already-clear event", func() {
		h, err := c.CreateEvent(func() {})
		Expect(err).To(BeNil())
		defer c.DestroyEvent(h)

		Expect(c.ClearEvent(h)).To(BeNil())
		Expect(c.ClearEvent(h)).To(BeNil())
	})
})
