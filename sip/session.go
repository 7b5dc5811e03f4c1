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

package sip

import (
	"strconv"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bitset"

	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
	liblog "github.com/nabbar/evloop/logger"
	loop "github.com/nabbar/evloop/loop"
	netio "github.com/nabbar/evloop/netio"
)

// State is a SIP session's place in spec.md §4.8's state machine.
type State uint8

const (
	StateReady State = iota
	StateOpening
	StateOpen
	StateInTransaction
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateInTransaction:
		return "in_transaction"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// RequestListener is invoked for an inbound request matching its
// registered method.
type RequestListener func(msg *Message)

// ResponseCallback is invoked exactly once with the response to a
// request() call, or with an error if the transaction failed.
type ResponseCallback func(resp *Message, err liberr.Error)

// methodBits maps the well-known SIP methods to a listener-presence
// bitmap index, letting hasListener (the hot path checked on every
// inbound request) test one bit before ever touching the listener map.
var methodBits = map[string]uint{
	"INVITE": 0, "ACK": 1, "BYE": 2, "CANCEL": 3, "OPTIONS": 4,
	"REGISTER": 5, "PRACK": 6, "SUBSCRIBE": 7, "NOTIFY": 8,
	"PUBLISH": 9, "INFO": 10, "REFER": 11, "MESSAGE": 12, "UPDATE": 13,
}

// Session is a stateful SIP conversation over a single transport
// (spec.md §4.8).
type Session struct {
	mu sync.Mutex

	Handle handle.Handle
	ctx    *loop.Context
	log    liblog.FuncLog

	tp    transport
	state State
	callID string

	listeners     map[string]RequestListener
	listenerBits  *bitset.BitSet

	connectCallback  func(err liberr.Error)
	requestCallback  ResponseCallback
	cseq             uint32

	readBuf []byte
}

func newSession(ctx *loop.Context, log liblog.FuncLog, tp transport, state State) *Session {
	id, _ := handle.NewNonce()

	return &Session{
		ctx:          ctx,
		log:          log,
		tp:           tp,
		state:        state,
		callID:       id + "@evloop",
		listeners:    map[string]RequestListener{},
		listenerBits: bitset.New(uint(len(methodBits))),
	}
}

// NewTCP creates a fresh TCP-transport session in state ready.
func NewTCP(ctx *loop.Context, log liblog.FuncLog) (*Session, liberr.Error) {
	s, err := netio.NewStream(ctx, netio.Address{})
	if err != nil {
		return nil, err
	}
	return newSession(ctx, log, &tcpTransport{stream: s}, StateReady), nil
}

// NewUDP creates a fresh UDP-transport session in state ready.
func NewUDP(ctx *loop.Context, log liblog.FuncLog) (*Session, liberr.Error) {
	d, err := netio.NewDatagram(ctx, netio.Address{})
	if err != nil {
		return nil, err
	}
	return newSession(ctx, log, &udpTransport{dgram: d}, StateReady), nil
}

// AdoptTCP wraps an existing stream. connected reports whether it is
// already in the connected substate (accepted server-side connections
// always are); such sessions start reading immediately and enter open.
func AdoptTCP(ctx *loop.Context, log liblog.FuncLog, s *netio.Stream, connected bool) *Session {
	state := StateReady
	if connected {
		state = StateOpen
	}

	sess := newSession(ctx, log, &tcpTransport{stream: s}, state)
	if connected {
		_ = sess.beginReading()
	}
	return sess
}

// AdoptUDP wraps an existing datagram socket in state ready.
func AdoptUDP(ctx *loop.Context, log liblog.FuncLog, d *netio.Datagram) *Session {
	return newSession(ctx, log, &udpTransport{dgram: d}, StateReady)
}

// Listen registers method's inbound-request dispatcher. Valid in any state.
func (s *Session) Listen(method string, cb RequestListener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	method = strings.ToUpper(method)
	s.listeners[method] = cb
	if bit, ok := methodBits[method]; ok {
		s.listenerBits.Set(bit)
	}
}

func (s *Session) hasListener(method string) (RequestListener, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bit, ok := methodBits[method]; ok && !s.listenerBits.Test(bit) {
		return nil, false
	}
	cb, ok := s.listeners[method]
	return cb, ok
}

// Open requires state ready; binds/connects the transport and transitions
// to opening, then to open (or errored) once the transport confirms.
func (s *Session) Open(remote netio.Address, cb func(err liberr.Error)) liberr.Error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return liberr.CodeInvalidState.Error()
	}
	s.state = StateOpening
	s.connectCallback = cb
	s.mu.Unlock()

	wrapped := func(err liberr.Error) {
		s.mu.Lock()
		if err != nil {
			s.state = StateErrored
		} else {
			s.state = StateOpen
		}
		done := s.connectCallback
		s.connectCallback = nil
		s.mu.Unlock()

		if err == nil {
			_ = s.beginReading()
		}
		if done != nil {
			done(err)
		}
	}

	if s.tp.connectionOriented() {
		return s.tp.connect(remote, wrapped)
	}

	if err := s.tp.connect(remote, nil); err != nil {
		return err
	}
	_, ferr := loop.ExecuteLater(s.ctx, 0, func() { wrapped(nil) })
	return ferr
}

func (s *Session) beginReading() liberr.Error {
	return s.tp.startRead(func(data []byte, sender interface{}, rerr liberr.Error) {
		if rerr != nil {
			s.fail(rerr)
			return
		}
		s.feed(data)
	})
}

// feed appends newly read bytes to the session buffer and drains as many
// complete messages as it can, per spec.md §4.8's framing algorithm.
func (s *Session) feed(data []byte) {
	s.mu.Lock()
	s.readBuf = append(s.readBuf, data...)
	buf := s.readBuf
	s.mu.Unlock()

	offset := 0
	for {
		msg, n, state := ParseMessage(buf[offset:])
		if state == ParseMalformed {
			if s.log != nil {
				s.log().Warning("sip: malformed message, dropping read buffer", nil)
			}
			s.mu.Lock()
			s.readBuf = nil
			s.mu.Unlock()
			return
		}
		if state == ParseIncomplete {
			break
		}
		offset += n
		s.dispatch(msg)
	}

	s.mu.Lock()
	s.readBuf = append([]byte{}, s.readBuf[offset:]...)
	s.mu.Unlock()
}

func (s *Session) dispatch(msg *Message) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	if state == StateInTransaction {
		if msg.IsRequest {
			return
		}
		s.mu.Lock()
		s.state = StateOpen
		cb := s.requestCallback
		s.requestCallback = nil
		s.mu.Unlock()
		if cb != nil {
			cb(msg, nil)
		}
		return
	}

	if !msg.IsRequest {
		return
	}
	if cb, ok := s.hasListener(strings.ToUpper(msg.Method)); ok {
		cb(msg)
	}
}

// Request requires state open; transitions to in_transaction and delivers
// the response (or error) to cb exactly once.
func (s *Session) Request(msg *Message, cb ResponseCallback) liberr.Error {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return liberr.CodeInvalidState.Error()
	}
	s.cseq++
	cseq := s.cseq
	s.mu.Unlock()

	msg.AddHeader("Call-ID", s.callID)
	msg.AddHeader("CSeq", strconv.FormatUint(uint64(cseq), 10)+" "+msg.Method)

	s.mu.Lock()
	s.state = StateInTransaction
	s.requestCallback = cb
	s.mu.Unlock()

	return s.send(msg)
}

// Send transmits msg without expecting a response; allowed in open or
// in_transaction.
func (s *Session) Send(msg *Message) liberr.Error {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	if st != StateOpen && st != StateInTransaction {
		return liberr.CodeInvalidState.Error()
	}
	return s.send(msg)
}

func (s *Session) send(msg *Message) liberr.Error {
	out := Serialize(msg)
	return s.tp.write(out, nil, func(werr liberr.Error) {
		if werr != nil {
			s.fail(werr)
		}
	})
}

func (s *Session) fail(err liberr.Error) {
	s.mu.Lock()
	s.state = StateErrored
	cb := s.requestCallback
	s.requestCallback = nil
	s.mu.Unlock()

	if cb != nil {
		cb(nil, err)
	}
	_ = s.tp.close()
}

// Close tears down the transport unconditionally.
func (s *Session) Close() liberr.Error {
	s.mu.Lock()
	s.state = StateErrored
	s.mu.Unlock()

	if err := s.tp.close(); err != nil {
		return liberr.Errno("close", err)
	}
	return nil
}

// CurrentState reports the session's current state.
func (s *Session) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
