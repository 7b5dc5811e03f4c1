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
	liberr "github.com/nabbar/evloop/errors"
	netio "github.com/nabbar/evloop/netio"
)

// transport is the TCP/UDP abstraction a Session drives: both sides of
// spec.md §4.8's "owns a transport (TCP or UDP adapter)" record.
type transport interface {
	connectionOriented() bool
	connect(remote netio.Address, cb func(err liberr.Error)) liberr.Error
	startRead(cb func(data []byte, sender interface{}, err liberr.Error)) liberr.Error
	write(buf []byte, destination interface{}, completion func(err liberr.Error)) liberr.Error
	close() error
}

type tcpTransport struct {
	stream *netio.Stream
}

func (t *tcpTransport) connectionOriented() bool { return true }

func (t *tcpTransport) connect(remote netio.Address, cb func(err liberr.Error)) liberr.Error {
	return t.stream.Connect(remote, cb)
}

func (t *tcpTransport) startRead(cb func(data []byte, sender interface{}, err liberr.Error)) liberr.Error {
	return t.stream.Engine.StartRead(cb)
}

func (t *tcpTransport) write(buf []byte, _ interface{}, completion func(err liberr.Error)) liberr.Error {
	return t.stream.Engine.Write(buf, nil, completion)
}

func (t *tcpTransport) close() error { return t.stream.Engine.Close() }

type udpTransport struct {
	dgram  *netio.Datagram
	remote netio.Address
}

func (t *udpTransport) connectionOriented() bool { return false }

// connect for UDP only records the implicit peer; there is no handshake,
// so the caller (Session.Open) is responsible for scheduling its own
// completion callback through the loop rather than relying on this
// returning asynchronously.
func (t *udpTransport) connect(remote netio.Address, _ func(err liberr.Error)) liberr.Error {
	t.remote = remote
	return nil
}

func (t *udpTransport) startRead(cb func(data []byte, sender interface{}, err liberr.Error)) liberr.Error {
	return t.dgram.Engine.StartRead(cb)
}

func (t *udpTransport) write(buf []byte, destination interface{}, completion func(err liberr.Error)) liberr.Error {
	dest := destination
	if dest == nil {
		dest = t.remote
	}
	return t.dgram.Engine.Write(buf, dest, completion)
}

func (t *udpTransport) close() error { return t.dgram.Engine.Close() }
