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

package registry_test

import (
	registry "github.com/nabbar/evloop/sip/registry"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Header registry", func() {
	It("parses a registered Call-ID header by name", func() {
		h := registry.NewHeader("Call-ID", "abc123@evloop")
		cid, ok := h.(*registry.CallID)
		Expect(ok).To(BeTrue())
		Expect(cid.Value).To(Equal("abc123@evloop"))
	})

	It("is case-insensitive on lookup", func() {
		h := registry.NewHeader("call-id", "xyz")
		_, ok := h.(*registry.CallID)
		Expect(ok).To(BeTrue())
	})

	It("parses CSeq into sequence and method", func() {
		h := registry.NewHeader("CSeq", "1 INVITE")
		cs, ok := h.(*registry.CSeq)
		Expect(ok).To(BeTrue())
		Expect(cs.Seq).To(Equal(uint32(1)))
		Expect(cs.Method).To(Equal("INVITE"))
	})

	It("falls back to a generic textual holder for unknown headers", func() {
		h := registry.NewHeader("X-Custom", "value")
		_, ok := h.(*registry.GenericHeader)
		Expect(ok).To(BeTrue())
		Expect(h.Name()).To(Equal("X-Custom"))
		Expect(h.String()).To(Equal("value"))
	})

	It("round-trips a Via header's branch parameter", func() {
		h := registry.NewHeader("Via", "SIP/2.0/UDP 127.0.0.1:5060;branch=z9hG4bK776asdhds")
		via, ok := h.(*registry.Via)
		Expect(ok).To(BeTrue())
		Expect(via.Branch).To(Equal("z9hG4bK776asdhds"))
		Expect(via.String()).To(ContainSubstring("branch=z9hG4bK776asdhds"))
	})
})

var _ = Describe("Body registry", func() {
	It("parses a registered SDP body by content-type", func() {
		raw := "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=-\r\nc=IN IP4 127.0.0.1\r\nt=0 0\r\nm=audio 49170 RTP/AVP 0\r\n"
		b := registry.NewBody("application/sdp", []byte(raw))
		sdp, ok := b.(*registry.SDPBody)
		Expect(ok).To(BeTrue())
		Expect(sdp.Version).To(Equal("0"))
		Expect(sdp.Media).To(ContainElement("audio 49170 RTP/AVP 0"))
	})

	It("falls back to raw bytes for an unknown content-type", func() {
		b := registry.NewBody("text/plain", []byte("hello"))
		_, ok := b.(*registry.RawBody)
		Expect(ok).To(BeTrue())
		Expect(b.Bytes()).To(Equal([]byte("hello")))
	})
})
