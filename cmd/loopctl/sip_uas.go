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

package main

import (
	liberr "github.com/nabbar/evloop/errors"
	facade "github.com/nabbar/evloop/facade"
	handle "github.com/nabbar/evloop/handle"
	liblog "github.com/nabbar/evloop/logger"
	netio "github.com/nabbar/evloop/netio"
	sip "github.com/nabbar/evloop/sip"
)

// sipMethods is the set of request methods the demo UAS answers; anything
// else is left unhandled (no listener registered, so the session silently
// drops it, matching sip.Session.dispatch's documented behaviour).
var sipMethods = []string{"REGISTER", "INVITE", "OPTIONS", "BYE"}

// startSIPUAS opens a UDP SIP session bound to addr and answers every
// request on sipMethods with a 200 OK carrying the request's own CSeq.
func startSIPUAS(loopH handle.Handle, logFn liblog.FuncLog, addr netio.Address) liberr.Error {
	uas, err := facade.CreateSIPSessionUDP(loopH, logFn)
	if err != nil {
		return err
	}

	for _, method := range sipMethods {
		m := method
		if lerr := facade.SIPListen(uas, m, func(req *sip.Message) {
			resp := &sip.Message{IsRequest: false, StatusCode: 200, ReasonPhrase: "OK"}
			if cseq := req.Header("CSeq"); cseq != nil {
				resp.AddHeader("CSeq", cseq.String())
			}
			if callID := req.Header("Call-ID"); callID != nil {
				resp.AddHeader("Call-ID", callID.String())
			}
			_ = facade.SIPSend(uas, resp)
		}); lerr != nil {
			return lerr
		}
	}

	return facade.SIPOpen(uas, addr, func(liberr.Error) {})
}
