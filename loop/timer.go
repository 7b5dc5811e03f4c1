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
	"time"

	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
)

// MinTimerInterval is the minimum allowable timer timeout; CreateTimer
// rejects shorter timeouts with CodeTimeoutTooSmall.
const MinTimerInterval = 100 * time.Millisecond

// TimerCallback is invoked with the loop mutex released when a timer fires.
type TimerCallback func()

// Timer is the record described in spec.md §3: a one-shot alarm that the
// caller (or a wrapper) must Reset to re-arm.
type Timer struct {
	Handle       handle.Handle
	running      bool
	hit          bool
	timeout      time.Duration
	nextDeadline time.Time
	callback     TimerCallback
}

// CreateTimer allocates a new, stopped timer.
func (c *Context) CreateTimer(timeout time.Duration, cb TimerCallback) (handle.Handle, liberr.Error) {
	if timeout < MinTimerInterval {
		return handle.Empty, liberr.CodeTimeoutTooSmall.Error()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	h, _, err := c.timers.AssignNew(func(h handle.Handle) *Timer {
		return &Timer{Handle: h, timeout: timeout, callback: cb}
	})
	return h, err
}

// StartTimer arms a stopped timer. Returns CodeAlreadyRunning if it is
// already running.
func (c *Context) StartTimer(h handle.Handle) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.timers.Get(h)
	if !ok {
		return liberr.CodeNoSuchHandle.Error()
	}
	if t.running {
		return liberr.CodeAlreadyRunning.Error()
	}

	t.running = true
	t.hit = false
	t.nextDeadline = time.Now().Add(t.timeout)

	return nil
}

// ResetTimer re-arms a timer for another single fire, regardless of whether
// it already fired; this is the caller's mechanism for periodic behaviour.
func (c *Context) ResetTimer(h handle.Handle) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.timers.Get(h)
	if !ok {
		return liberr.CodeNoSuchHandle.Error()
	}

	t.nextDeadline = time.Now().Add(t.timeout)
	t.hit = false
	t.running = true

	return nil
}

// StopTimer unthreads a timer from the active scan without destroying it.
func (c *Context) StopTimer(h handle.Handle) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.timers.Get(h)
	if !ok {
		return liberr.CodeNoSuchHandle.Error()
	}

	t.running = false

	return nil
}

// DestroyTimer stops and frees a timer's slot.
func (c *Context) DestroyTimer(h handle.Handle) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.timers.Release(h)
	return err
}

// dueTimers returns the callbacks of every timer that should fire now,
// marking each hit so it is not fired again until Reset. Must be called
// with c.mu held.
func (c *Context) dueTimers(now time.Time) []TimerCallback {
	var due []TimerCallback

	c.timers.Range(func(_ handle.Handle, t *Timer) bool {
		if t.running && !t.hit && !t.nextDeadline.After(now) {
			t.hit = true
			due = append(due, t.callback)
		}
		return true
	})

	return due
}

// nextTimerDeadline returns the loop's poll timeout tightened to the
// smallest active timer's remaining interval, or def if no timer is active
// or none is sooner. Must be called with c.mu held.
func (c *Context) nextTimerDeadline(now time.Time, def time.Duration) time.Duration {
	out := def

	c.timers.Range(func(_ handle.Handle, t *Timer) bool {
		if !t.running || t.hit {
			return true
		}
		remaining := t.nextDeadline.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		if remaining < out {
			out = remaining
		}
		return true
	})

	return out
}
