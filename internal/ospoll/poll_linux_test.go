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

package ospoll_test

import (
	"time"

	"golang.org/x/sys/unix"

	ospoll "github.com/nabbar/evloop/internal/ospoll"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("epollPoller", func() {
	var (
		p          ospoll.Poller
		sockA      int
		sockB      int
	)

	BeforeEach(func() {
		var err error
		p, err = ospoll.Open()
		Expect(err).To(BeNil())

		fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
		Expect(err).To(BeNil())
		sockA, sockB = fds[0], fds[1]

		Expect(p.Add(sockA, ospoll.In)).To(Succeed())
	})

	AfterEach(func() {
		_ = unix.Close(sockA)
		_ = unix.Close(sockB)
		_ = p.Close()
	})

	It("reports readability after data is written to the peer", func() {
		_, err := unix.Write(sockB, []byte("hello"))
		Expect(err).To(BeNil())

		evs, err := p.Poll(8, time.Second)
		Expect(err).To(BeNil())
		Expect(evs).To(HaveLen(1))
		Expect(evs[0].Fd).To(Equal(sockA))
		Expect(evs[0].Events.Has(ospoll.In)).To(BeTrue())
	})

	It("returns no events before the timeout elapses with nothing ready", func() {
		evs, err := p.Poll(8, 50*time.Millisecond)
		Expect(err).To(BeNil())
		Expect(evs).To(BeEmpty())
	})

	It("reports hung-up once the peer closes", func() {
		Expect(unix.Close(sockB)).To(BeNil())

		evs, err := p.Poll(8, time.Second)
		Expect(err).To(BeNil())
		Expect(evs).To(HaveLen(1))
		Expect(evs[0].Events.Has(ospoll.Hung) || evs[0].Events.Has(ospoll.In)).To(BeTrue())
	})

	It("tolerates removing an fd it never added", func() {
		Expect(p.Remove(sockB)).To(Succeed())
	})
})

var _ = Describe("eventfdWaker", func() {
	It("wakes a blocked Poll call and is drainable", func() {
		p, err := ospoll.Open()
		Expect(err).To(BeNil())
		defer p.Close()

		w, err := ospoll.OpenWaker()
		Expect(err).To(BeNil())
		defer w.Close()

		Expect(p.Add(w.Fd(), ospoll.In)).To(Succeed())

		done := make(chan []ospoll.Event, 1)
		go func() {
			evs, _ := p.Poll(8, 5*time.Second)
			done <- evs
		}()

		time.Sleep(20 * time.Millisecond)
		Expect(w.Wake()).To(Succeed())

		select {
		case evs := <-done:
			Expect(evs).To(HaveLen(1))
			Expect(evs[0].Fd).To(Equal(w.Fd()))
		case <-time.After(time.Second):
			Fail("poll was not woken by eventfd")
		}

		Expect(w.Drain()).To(Succeed())
	})
})
