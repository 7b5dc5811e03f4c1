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

import (
	"sync"
	"sync/atomic"

	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
	ospoll "github.com/nabbar/evloop/internal/ospoll"
	loop "github.com/nabbar/evloop/loop"
)

// maxWriteDrain bounds how many queued requests one handleWrite invocation
// services, so one chatty writer cannot starve the rest of the loop.
const maxWriteDrain = 16

// defaultReadBufferSize is the scratch buffer size used for each read
// attempt until SetReadBufferSize overrides it.
const defaultReadBufferSize = 1024

var readBufferSize int64 = defaultReadBufferSize

// SetReadBufferSize changes the scratch buffer every Engine allocates on
// its next read. Sizes below 1 are ignored. Safe to call from any
// goroutine; like every other evloop tunable it only affects reads that
// start after the call, never one already in flight.
func SetReadBufferSize(n int) {
	if n < 1 {
		return
	}
	atomic.StoreInt64(&readBufferSize, int64(n))
}

// ReadBufferSize returns the scratch buffer size currently in effect.
func ReadBufferSize() int {
	return int(atomic.LoadInt64(&readBufferSize))
}

// Engine is the generic I/O state machine from spec.md §4.5-§4.6, shared by
// every stream, datagram, and local-stream specialization in netio.
type Engine struct {
	mu sync.Mutex

	ctx      *loop.Context
	conn     Conn
	resource handle.Handle

	reading            bool
	canRead            bool
	canWrite           bool
	errored            bool
	writePending       bool
	connectionPending  bool
	connected          bool

	readCallback    ReadCallback
	writeQueue      []*WriteRequest
	connectCallback ConnectCallback
}

// New attaches conn to the loop with no subscribed events (StartRead,
// Write and Connect ask for IN/OUT later) and returns a ready Engine.
func New(ctx *loop.Context, conn Conn) (*Engine, liberr.Error) {
	e := &Engine{ctx: ctx, conn: conn, canRead: true, canWrite: true}

	h, err := ctx.AddResource(conn.Descriptor(), 0, func(ev ospoll.Events) {
		e.handleEvents(ev)
	}, e)
	if err != nil {
		return nil, err
	}
	e.resource = h

	return e, nil
}

// StartRead subscribes IN and begins delivering read_data to cb.
func (e *Engine) StartRead(cb ReadCallback) liberr.Error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.errored {
		return liberr.CodeInvalidState.Error()
	}
	if e.reading {
		return liberr.CodeAlreadyRunning.Error()
	}
	if !e.canRead {
		return liberr.CodeOperationNotSupported.Error()
	}

	e.reading = true
	e.readCallback = cb

	return e.ctx.RequestEvents(e.resource, ospoll.In, loop.Append)
}

// StopRead clears the read subscription. Idempotent.
func (e *Engine) StopRead() liberr.Error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.reading {
		return nil
	}
	e.reading = false

	return e.ctx.RequestEvents(e.resource, ospoll.In, loop.Remove)
}

// Write enqueues a write request. If no write is currently pending, OUT is
// requested and write_pending is set.
func (e *Engine) Write(buf []byte, destination interface{}, completion func(liberr.Error)) liberr.Error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.errored {
		return liberr.CodeInvalidState.Error()
	}

	cp := make([]byte, len(buf))
	copy(cp, buf)

	req := &WriteRequest{Buffer: cp, Destination: destination, Completion: completion}
	e.writeQueue = append(e.writeQueue, req)

	if !e.writePending {
		e.writePending = true
		return e.ctx.RequestEvents(e.resource, ospoll.Out, loop.Append)
	}

	return nil
}

// Close detaches the descriptor from the loop and closes it.
func (e *Engine) Close() liberr.Error {
	e.mu.Lock()
	e.errored = true
	e.mu.Unlock()

	err := e.ctx.RemoveResource(e.resource)
	_ = e.conn.Close()

	return err
}

// handleEvents is the single readiness fan-out from spec.md §4.5.
func (e *Engine) handleEvents(events ospoll.Events) {
	e.mu.Lock()
	alreadyErrored := e.errored
	connectionPending := e.connectionPending
	e.mu.Unlock()

	// The loop context re-OR's a resource's subscribed in/out bits onto any
	// error|hung report before dispatch, so a fresh error surfaces through
	// the ordinary read/write path (conn.Read/Write returns the OS error).
	// Only an error|hung on an object already marked errored short-circuits
	// straight to teardown.
	if alreadyErrored && (events.Has(ospoll.Error) || events.Has(ospoll.Hung)) {
		_ = e.ctx.RequestEvents(e.resource, 0, loop.Override)
		_ = e.Close()
		return
	}

	if connectionPending && events.Has(ospoll.Out) {
		e.finalizeConnect()
		return
	}

	if events.Has(ospoll.In) {
		e.handleRead()
	}
	if events.Has(ospoll.Out) {
		e.handleWrite()
	}
}

// handleRead reads into a fixed scratch buffer and delivers it to the read
// callback. eof is mapped to an error, not silently absorbed.
func (e *Engine) handleRead() {
	buf := make([]byte, ReadBufferSize())

	var n int
	var sender interface{}
	var err liberr.Error

	if dc, ok := e.conn.(DatagramConn); ok {
		n, sender, err = dc.ReadFrom(buf[:])
	} else {
		n, err = e.conn.Read(buf[:])
	}

	e.mu.Lock()
	cb := e.readCallback
	e.mu.Unlock()

	if err != nil {
		if err.IsCode(liberr.CodeAgain) || err.IsCode(liberr.CodeInterrupted) {
			return
		}

		e.mu.Lock()
		e.errored = true
		e.mu.Unlock()

		if cb != nil {
			cb(nil, sender, err)
		}
		return
	}

	if n == 0 {
		return
	}
	if cb != nil {
		cb(buf[:n], sender, nil)
	}
}

// handleWrite drains at most maxWriteDrain requests per invocation, moving
// each finished or failed request to a completed batch delivered in FIFO
// order with the loop mutex released.
func (e *Engine) handleWrite() {
	e.mu.Lock()

	var completed []*WriteRequest

	for i := 0; i < maxWriteDrain && len(e.writeQueue) > 0; i++ {
		req := e.writeQueue[0]

		var n int
		var err liberr.Error
		if dc, ok := e.conn.(DatagramConn); ok {
			n, err = dc.WriteTo(req.remaining(), req.Destination)
		} else {
			n, err = e.conn.Write(req.remaining())
		}
		if err != nil {
			if err.IsCode(liberr.CodeAgain) || err.IsCode(liberr.CodeInProgress) {
				break
			}

			req.Error = err
			completed = append(completed, req)
			e.writeQueue = e.writeQueue[1:]
			e.errored = true
			break
		}

		req.Pos += n
		if !req.done() {
			break
		}

		completed = append(completed, req)
		e.writeQueue = e.writeQueue[1:]
	}

	if len(e.writeQueue) == 0 {
		e.writePending = false
	}
	errored := e.errored

	e.mu.Unlock()

	if errored {
		_ = e.ctx.RequestEvents(e.resource, 0, loop.Override)
	} else if len(completed) > 0 && !e.hasPendingWrite() {
		_ = e.ctx.RequestEvents(e.resource, ospoll.Out, loop.Remove)
	}

	for _, req := range completed {
		if req.Completion != nil {
			req.Completion(req.Error)
		}
	}
}

func (e *Engine) hasPendingWrite() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writePending
}

// Connect drives the non-blocking connect state machine (spec.md §4.6).
// connectable.Connector() performs the underlying syscall. A success is
// always delivered via a one-shot future, never inline, so the caller never
// re-enters user code while holding any partial state.
func (e *Engine) Connect(connectable Connectable, cb ConnectCallback) liberr.Error {
	e.mu.Lock()
	if e.errored || e.connected {
		e.mu.Unlock()
		return liberr.CodeInvalidState.Error()
	}
	e.connectCallback = cb
	e.mu.Unlock()

	immediate, err := connectable.Connector()
	if err != nil {
		e.mu.Lock()
		e.errored = true
		e.mu.Unlock()
		e.scheduleConnectCallback(err)
		return nil
	}

	if immediate {
		e.mu.Lock()
		e.connected = true
		e.canRead = true
		e.canWrite = true
		e.mu.Unlock()
		e.scheduleConnectCallback(nil)
		return nil
	}

	e.mu.Lock()
	e.connectionPending = true
	e.mu.Unlock()

	return e.ctx.RequestEvents(e.resource, ospoll.Out, loop.Append)
}

func (e *Engine) finalizeConnect() {
	connectable, ok := e.conn.(Connectable)
	if !ok {
		return
	}

	ferr := connectable.FinalizeConnect()

	e.mu.Lock()
	e.connectionPending = false
	if ferr == nil {
		e.connected = true
		e.canRead = true
		e.canWrite = true
	} else {
		e.errored = true
	}
	e.mu.Unlock()

	e.scheduleConnectCallback(ferr)
}

// scheduleConnectCallback is the spec.md §9 open-question resolution:
// connect-success (and failure) callbacks always run from the loop thread
// through a one-shot future, never inline from the caller's goroutine.
func (e *Engine) scheduleConnectCallback(err liberr.Error) {
	e.mu.Lock()
	cb := e.connectCallback
	e.mu.Unlock()

	if cb == nil {
		return
	}

	_, _ = loop.ExecuteLater(e.ctx, 0, func() { cb(err) })
}
