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
	sip "github.com/nabbar/evloop/sip"
	sipreg "github.com/nabbar/evloop/sip/registry"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Message parsing and serialization", func() {
	It("reports incomplete until the header block terminator is seen", func() {
		msg, n, state := sip.ParseMessage([]byte("REGISTER sip:example.com SIP/2.0\r\nVia: SIP/2.0/UDP host"))
		Expect(msg).To(BeNil())
		Expect(n).To(Equal(0))
		Expect(state).To(Equal(sip.ParseIncomplete))
	})

	It("reports malformed on a header line with no colon", func() {
		_, _, state := sip.ParseMessage([]byte("REGISTER sip:example.com SIP/2.0\r\nnonsense\r\n\r\n"))
		Expect(state).To(Equal(sip.ParseMalformed))
	})

	It("parses a request with no body", func() {
		raw := "OPTIONS sip:example.com SIP/2.0\r\n" +
			"Via: SIP/2.0/UDP 10.0.0.1:5060;branch=z9hG4bK776\r\n" +
			"Call-ID: abc123@evloop\r\n" +
			"CSeq: 1 OPTIONS\r\n" +
			"\r\n"

		msg, n, state := sip.ParseMessage([]byte(raw))
		Expect(state).To(Equal(sip.ParseComplete))
		Expect(n).To(Equal(len(raw)))
		Expect(msg.IsRequest).To(BeTrue())
		Expect(msg.Method).To(Equal("OPTIONS"))
		Expect(msg.RequestURI).To(Equal("sip:example.com"))

		via, ok := msg.Header("Via").(*sipreg.Via)
		Expect(ok).To(BeTrue())
		Expect(via.Branch).To(Equal("z9hG4bK776"))

		cseq, ok := msg.Header("CSeq").(*sipreg.CSeq)
		Expect(ok).To(BeTrue())
		Expect(cseq.Seq).To(Equal(uint32(1)))
		Expect(cseq.Method).To(Equal("OPTIONS"))
	})

	It("waits for the declared Content-Length body bytes", func() {
		head := "SIP/2.0 200 OK\r\nContent-Length: 10\r\n\r\n"
		msg, n, state := sip.ParseMessage([]byte(head + "12345"))
		Expect(msg).To(BeNil())
		Expect(n).To(Equal(0))
		Expect(state).To(Equal(sip.ParseIncomplete))

		msg, n, state = sip.ParseMessage([]byte(head + "1234567890"))
		Expect(state).To(Equal(sip.ParseComplete))
		Expect(n).To(Equal(len(head) + 10))
		Expect(msg.IsRequest).To(BeFalse())
		Expect(msg.StatusCode).To(Equal(200))
		Expect(msg.ReasonPhrase).To(Equal("OK"))
	})

	It("round-trips a request with an SDP body through Serialize", func() {
		msg := &sip.Message{IsRequest: true, Method: "INVITE", RequestURI: "sip:bob@example.com"}
		msg.AddHeader("Call-ID", "xyz@evloop")
		msg.AddHeader("CSeq", "1 INVITE")
		msg.Body = sipreg.NewBody("application/sdp", []byte("v=0\r\no=- 1 1 IN IP4 127.0.0.1\r\n"))

		out := sip.Serialize(msg)
		parsed, n, state := sip.ParseMessage(out)
		Expect(state).To(Equal(sip.ParseComplete))
		Expect(n).To(Equal(len(out)))
		Expect(parsed.Method).To(Equal("INVITE"))

		sdp, ok := parsed.Body.(*sipreg.SDPBody)
		Expect(ok).To(BeTrue())
		Expect(sdp.Version).To(Equal("0"))
	})

	It("writes into a caller-provided buffer via WriteMessage", func() {
		msg := &sip.Message{IsRequest: false, StatusCode: 404, ReasonPhrase: "Not Found"}
		buf := make([]byte, 256)
		n := sip.WriteMessage(buf, msg)
		Expect(n).To(BeNumerically(">", 0))
		Expect(string(buf[:n])).To(ContainSubstring("SIP/2.0 404 Not Found"))
	})
})
