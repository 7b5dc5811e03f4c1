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

// Package handle defines the composite Handle identity shared by every
// object kind the runtime exposes (loop, resource, event, timer, future,
// stream/datagram sockets, files, local-stream sockets, SIP sessions), the
// generic fixed-capacity Table that owns slots of a given kind, and the
// process-wide Registry of live loops.
//
// A Handle packs three fields into a uint64: the owning loop's index, the
// object's Kind, and its slot index within that loop's Table for that kind.
// Two handles are equal only if all three fields match; Empty is the
// reserved "none" value. A Handle carries no generation counter: a slot
// freed by Release is handed out again with the same handle value. A stale
// handle is reported as CodeNoSuchHandle only while its slot stays free;
// once the slot is reassigned, the old handle refers to the new object.
package handle
