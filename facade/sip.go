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

package facade

import (
	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
	liblog "github.com/nabbar/evloop/logger"
	netio "github.com/nabbar/evloop/netio"
	sip "github.com/nabbar/evloop/sip"
)

// CreateSIPSessionTCP opens a fresh TCP-transport SIP session on loopH.
func CreateSIPSessionTCP(loopH handle.Handle, log liblog.FuncLog) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}

	s, serr := sip.NewTCP(st.ctx, log)
	if serr != nil {
		return handle.Empty, serr
	}
	return assignSIPSession(st, s)
}

// CreateSIPSessionUDP opens a fresh UDP-transport SIP session on loopH.
func CreateSIPSessionUDP(loopH handle.Handle, log liblog.FuncLog) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}

	s, serr := sip.NewUDP(st.ctx, log)
	if serr != nil {
		return handle.Empty, serr
	}
	return assignSIPSession(st, s)
}

func assignSIPSession(st *loopState, s *sip.Session) (handle.Handle, liberr.Error) {
	h, _, aerr := st.sipSessions.AssignNew(func(handle.Handle) *sip.Session { return s })
	if aerr != nil {
		_ = s.Close()
		return handle.Empty, aerr
	}
	s.Handle = h
	return h, nil
}

// SIPListen registers method's inbound-request dispatcher on the session
// named by h.
func SIPListen(h handle.Handle, method string, cb sip.RequestListener) liberr.Error {
	_, s, err := lookupSIPSession(h)
	if err != nil {
		return err
	}
	s.Listen(method, cb)
	return nil
}

// SIPOpen binds/connects the session named by h to remote.
func SIPOpen(h handle.Handle, remote netio.Address, cb func(err liberr.Error)) liberr.Error {
	_, s, err := lookupSIPSession(h)
	if err != nil {
		return err
	}
	return s.Open(remote, cb)
}

// SIPRequest sends msg on the session named by h and delivers its response
// (or error) to cb exactly once.
func SIPRequest(h handle.Handle, msg *sip.Message, cb sip.ResponseCallback) liberr.Error {
	_, s, err := lookupSIPSession(h)
	if err != nil {
		return err
	}
	return s.Request(msg, cb)
}

// SIPSend transmits msg on the session named by h without expecting a
// matched response.
func SIPSend(h handle.Handle, msg *sip.Message) liberr.Error {
	_, s, err := lookupSIPSession(h)
	if err != nil {
		return err
	}
	return s.Send(msg)
}

// CloseSIPSession tears down and releases the session named by h.
func CloseSIPSession(h handle.Handle) liberr.Error {
	st, s, err := lookupSIPSession(h)
	if err != nil {
		return err
	}
	if cerr := s.Close(); cerr != nil {
		return cerr
	}
	_, _ = st.sipSessions.Release(h)
	return nil
}

func lookupSIPSession(h handle.Handle) (*loopState, *sip.Session, liberr.Error) {
	st, err := stateFor(h.Parent())
	if err != nil {
		return nil, nil, err
	}
	s, ok := st.sipSessions.Get(h)
	if !ok {
		return nil, nil, liberr.CodeNoSuchHandle.Error()
	}
	return st, s, nil
}
