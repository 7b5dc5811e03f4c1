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

package ioengine

import liberr "github.com/nabbar/evloop/errors"

// Conn is the I/O trait the engine drives: descriptor, non-blocking read,
// non-blocking write, close. Read/Write classify their own outcome into the
// evloop error taxonomy (again/in_progress are transient and expected).
type Conn interface {
	Descriptor() int
	Read(buf []byte) (n int, err liberr.Error)
	Write(buf []byte) (n int, err liberr.Error)
	Close() error
}

// DatagramConn is the optional trait a Conn implements when reads need to
// report a sender and writes need to target a destination (spec.md §4.7's
// datagram specialization has no connect-state machine). The engine probes
// for this trait via a type assertion and falls back to the plain Conn
// Read/Write path when it is absent.
type DatagramConn interface {
	Conn
	ReadFrom(buf []byte) (n int, sender interface{}, err liberr.Error)
	WriteTo(buf []byte, destination interface{}) (n int, err liberr.Error)
}

// Connectable is a Conn that supports non-blocking connect completion.
type Connectable interface {
	Conn
	// Connector performs the actual connect(2)-equivalent syscall. It
	// returns (true, nil) for an immediate success, (false, nil) for
	// in_progress, or (false, err) for a hard failure.
	Connector() (immediate bool, err liberr.Error)
	// FinalizeConnect fetches and clears the socket's pending error
	// (SO_ERROR-equivalent) once OUT readiness is observed.
	FinalizeConnect() liberr.Error
}

// ReadCallback receives one read_data record per successful or failed read.
// Sender is non-nil only for datagram-style Conns.
type ReadCallback func(data []byte, sender interface{}, err liberr.Error)

// WriteRequest is a single queued write: a heap-owned buffer copy, its
// cursor, an optional datagram destination, and its completion callback.
type WriteRequest struct {
	Buffer      []byte
	Pos         int
	Destination interface{}
	Completion  func(err liberr.Error)
	Error       liberr.Error
}

func (w *WriteRequest) remaining() []byte { return w.Buffer[w.Pos:] }

func (w *WriteRequest) done() bool { return w.Pos >= len(w.Buffer) }

// ConnectCallback is invoked exactly once with the connect outcome, always
// scheduled from the loop thread (never inline from the caller's goroutine).
type ConnectCallback func(err liberr.Error)
