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

// Package ospoll is the OS readiness primitive collaborator: a small,
// platform-specific wrapper around epoll (Linux) exposing exactly the
// contract spec.md §6 requires, plus an eventfd-backed wake-up signal. The
// core loop package depends only on the Poller and Waker interfaces here,
// never on golang.org/x/sys/unix directly.
package ospoll

import "time"

// Events is the poller's readiness bitset: {in, out, error, hung}.
type Events uint8

const (
	In Events = 1 << iota
	Out
	Error
	Hung
)

// Has reports whether all bits of o are set in e.
func (e Events) Has(o Events) bool { return e&o == o }

// Event is one readiness report: the descriptor and the events observed.
type Event struct {
	Fd     int
	Events Events
}

// Poller is the polling contract of spec.md §6: create, close, add, set,
// remove, poll(max_events, timeout, out events[], out count) -> error.
type Poller interface {
	// Add subscribes fd with the given event interest.
	Add(fd int, ev Events) error
	// Set replaces fd's event interest.
	Set(fd int, ev Events) error
	// Remove unsubscribes fd. Idempotent: removing an unknown fd is not an error.
	Remove(fd int) error
	// Poll blocks up to timeout (0 means return immediately, <0 means block
	// forever) and returns at most maxEvents readiness reports.
	Poll(maxEvents int, timeout time.Duration) ([]Event, error)
	// Close releases the underlying OS poller descriptor.
	Close() error
}

// Waker is a counter-style cross-thread event: one descriptor, always
// subscribed IN, that a concurrent goroutine can use to interrupt a blocking
// Poll call. Wake is safe to call from any goroutine; Drain is called from
// the poller's own goroutine once IN readiness is observed.
type Waker interface {
	Fd() int
	Wake() error
	Drain() error
	Close() error
}
