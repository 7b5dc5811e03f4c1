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

// Package handle implements the composite handle identity and the
// fixed-capacity handle tables that own every object an evloop loop hands
// out to callers.
package handle

import "fmt"

// Kind tags the object family a Handle refers to.
type Kind uint8

const (
	KindLoop Kind = iota + 1
	KindResource
	KindEvent
	KindTimer
	KindFuture
	KindStreamSocket
	KindStreamServer
	KindDatagramSocket
	KindFile
	KindLocalStream
	KindLocalStreamServer
	KindSIPSession
)

//nolint:exhaustive
func (k Kind) String() string {
	switch k {
	case KindLoop:
		return "loop"
	case KindResource:
		return "resource"
	case KindEvent:
		return "event"
	case KindTimer:
		return "timer"
	case KindFuture:
		return "future"
	case KindStreamSocket:
		return "stream-socket"
	case KindStreamServer:
		return "stream-server"
	case KindDatagramSocket:
		return "datagram-socket"
	case KindFile:
		return "file"
	case KindLocalStream:
		return "local-stream"
	case KindLocalStreamServer:
		return "local-stream-server"
	case KindSIPSession:
		return "sip-session"
	default:
		return "unknown"
	}
}

// Handle is a composite identity (parent loop index, type tag, slot index)
// packed into a single uint64: parent occupies bits 48-63, kind occupies
// bits 40-47, index occupies bits 0-39. Empty is the reserved "none" value.
type Handle uint64

// Empty is the handle value meaning "none". Parent 0 identifies loop-level
// handles themselves, so a loop handle never collides with Empty as long as
// its index is non-zero; loop index 0 is never issued by the registry.
const Empty Handle = 0

// New packs a parent index, kind, and slot index into a Handle.
func New(parent uint16, kind Kind, index uint32) Handle {
	return Handle(uint64(parent)<<48 | uint64(kind)<<40 | uint64(index))
}

// Parent returns the owning loop's index. Parent 0 identifies a loop-level
// handle (the loop handle itself has no owning loop other than itself).
func (h Handle) Parent() uint16 {
	return uint16(h >> 48)
}

// Kind returns the handle's object family.
func (h Handle) Kind() Kind {
	return Kind(h >> 40 & 0xFF)
}

// Index returns the slot index within the owning table.
func (h Handle) Index() uint32 {
	return uint32(h & 0xFFFFFFFFFF)
}

// IsEmpty reports whether h is the reserved "none" value.
func (h Handle) IsEmpty() bool {
	return h == Empty
}

// Match reports whether h belongs to the given parent and kind, the two
// fields a table checks before trusting the index into its own slots.
func (h Handle) Match(parent uint16, kind Kind) bool {
	return !h.IsEmpty() && h.Parent() == parent && h.Kind() == kind
}

func (h Handle) String() string {
	if h.IsEmpty() {
		return "handle(empty)"
	}
	return fmt.Sprintf("handle(parent=%d,kind=%s,index=%d)", h.Parent(), h.Kind(), h.Index())
}
