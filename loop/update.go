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

package loop

import (
	handle "github.com/nabbar/evloop/handle"
	ospoll "github.com/nabbar/evloop/internal/ospoll"
)

// Mode selects how RequestEvents combines new interest with a resource's
// current subscription.
type Mode uint8

const (
	// Override replaces the resource's subscribed events outright.
	Override Mode = iota
	// Append ORs the new events into the current subscription.
	Append
	// Remove clears the given bits from the current subscription.
	Remove
)

// mustHave is re-OR'd into every poller Add/Set so error/hung are never
// missed regardless of what the caller subscribed to (spec: "must-have
// events re-assertion").
const mustHave = ospoll.Error | ospoll.Hung

// update is one queued modification to a resource's poller subscription.
// Updates are never applied in the caller's goroutine; they are appended
// here and drained at the top of the next RunOnce.
type update struct {
	resource handle.Handle
	mode     Mode
	events   ospoll.Events
}
