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

import "time"

// Reconfigure queues a new poll timeout and/or max-events-per-poll value.
// Like every other poller mutation (loop/update.go), the new values are
// never applied from the calling goroutine: they are picked up at the top
// of the next RunOnce, alongside the resource-update queue. Either argument
// may be zero to leave that tunable unchanged.
func (c *Context) Reconfigure(pollTimeout time.Duration, maxEventsPerPoll int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pollTimeout > 0 {
		t := pollTimeout
		c.pendingTimeout = &t
	}
	if maxEventsPerPoll > 0 {
		m := maxEventsPerPoll
		c.pendingMaxEvts = &m
	}
}
