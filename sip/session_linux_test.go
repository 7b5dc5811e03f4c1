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

package sip_test

import (
	"sync/atomic"
	"time"

	liberr "github.com/nabbar/evloop/errors"
	loop "github.com/nabbar/evloop/loop"
	netio "github.com/nabbar/evloop/netio"
	sip "github.com/nabbar/evloop/sip"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func drainUntil(c *loop.Context, cond func() bool, attempts int) {
	for i := 0; i < attempts && !cond(); i++ {
		_, _ = c.RunOnce()
		time.Sleep(time.Millisecond)
	}
}

var _ = Describe("Session over UDP", func() {
	var c *loop.Context

	BeforeEach(func() {
		var e error
		c, e = loop.New(nil)
		Expect(e).To(BeNil())
	})

	AfterEach(func() {
		Expect(c.Destroy()).To(BeNil())
	})

	It("opens, requests, and receives a response", func() {
		uas, err := sip.NewUDP(c, nil)
		Expect(err).To(BeNil())

		var gotInvite *sip.Message
		uas.Listen("INVITE", func(msg *sip.Message) {
			gotInvite = msg
		})

		uasAddr := netio.Address{IP: "127.0.0.1", Port: 25060}
		Expect(uas.Open(uasAddr, func(oerr liberr.Error) {})).To(BeNil())

		uac, err := sip.NewUDP(c, nil)
		Expect(err).To(BeNil())

		var opened int32
		Expect(uac.Open(uasAddr, func(oerr liberr.Error) {
			atomic.AddInt32(&opened, 1)
		})).To(BeNil())

		drainUntil(c, func() bool { return atomic.LoadInt32(&opened) > 0 }, 200)
		Expect(uac.CurrentState()).To(Equal(sip.StateOpen))

		req := &sip.Message{IsRequest: true, Method: "INVITE", RequestURI: "sip:uas@127.0.0.1"}
		var resp *sip.Message
		var respErr liberr.Error
		var responded int32
		Expect(uac.Request(req, func(r *sip.Message, rerr liberr.Error) {
			resp = r
			respErr = rerr
			atomic.AddInt32(&responded, 1)
		})).To(BeNil())

		Expect(uac.CurrentState()).To(Equal(sip.StateInTransaction))

		drainUntil(c, func() bool { return gotInvite != nil }, 200)
		Expect(gotInvite).ToNot(BeNil())
		Expect(gotInvite.Method).To(Equal("INVITE"))

		ok := &sip.Message{IsRequest: false, StatusCode: 200, ReasonPhrase: "OK"}
		ok.AddHeader("CSeq", "1 INVITE")
		Expect(uas.Send(ok)).To(BeNil())

		drainUntil(c, func() bool { return atomic.LoadInt32(&responded) > 0 }, 200)
		Expect(respErr).To(BeNil())
		Expect(resp).ToNot(BeNil())
		Expect(resp.StatusCode).To(Equal(200))
		Expect(uac.CurrentState()).To(Equal(sip.StateOpen))
	})

	It("rejects Open from a non-ready state", func() {
		s, err := sip.NewUDP(c, nil)
		Expect(err).To(BeNil())

		Expect(s.Open(netio.Address{IP: "127.0.0.1", Port: 25061}, func(liberr.Error) {})).To(BeNil())
		drainUntil(c, func() bool { return s.CurrentState() == sip.StateOpen }, 200)

		rerr := s.Open(netio.Address{IP: "127.0.0.1", Port: 25062}, func(liberr.Error) {})
		Expect(rerr).ToNot(BeNil())
	})

	It("moves to errored on Close and rejects further requests", func() {
		a, err := sip.NewUDP(c, nil)
		Expect(err).To(BeNil())
		Expect(a.Open(netio.Address{IP: "127.0.0.1", Port: 25063}, func(liberr.Error) {})).To(BeNil())
		drainUntil(c, func() bool { return a.CurrentState() == sip.StateOpen }, 200)

		Expect(a.Close()).To(BeNil())
		Expect(a.CurrentState()).To(Equal(sip.StateErrored))

		req := &sip.Message{IsRequest: true, Method: "BYE", RequestURI: "sip:x@127.0.0.1"}
		rerr := a.Request(req, func(*sip.Message, liberr.Error) {})
		Expect(rerr).ToNot(BeNil())
	})
})
