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
	"sync"
	"time"

	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
)

// FutureCallback is invoked with the loop mutex released when a future's
// execute_time has elapsed.
type FutureCallback func()

// Future is a one-shot deferred call (spec.md §4.3). Re-firing requires a
// new Execute after the previous run has finished.
type Future struct {
	Handle      handle.Handle
	finished    bool
	executeTime time.Time
	callback    FutureCallback
	cond        *sync.Cond
}

// CreateFuture allocates a future in the finished state (ready to Execute).
func (c *Context) CreateFuture(cb FutureCallback) (handle.Handle, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, _, err := c.futures.AssignNew(func(h handle.Handle) *Future {
		return &Future{Handle: h, finished: true, callback: cb, cond: sync.NewCond(&c.mu)}
	})
	return h, err
}

// Execute schedules the future's callback after delay. Fails with
// CodeInvalidState if a previous execution has not finished yet.
func (c *Context) Execute(h handle.Handle, delay time.Duration) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.futures.Get(h)
	if !ok {
		return liberr.CodeNoSuchHandle.Error()
	}
	if !f.finished {
		return liberr.CodeInvalidState.Error()
	}

	f.finished = false
	f.executeTime = time.Now().Add(delay)

	return c.signalRunLocked()
}

// WaitFor blocks the caller on the future's condvar until it finishes or
// timeout elapses, returning whether it completed in time.
func (c *Context) WaitFor(h handle.Handle, timeout time.Duration) (bool, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.futures.Get(h)
	if !ok {
		return false, liberr.CodeNoSuchHandle.Error()
	}

	deadline := time.Now().Add(timeout)

	for !f.finished {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}

		done := make(chan struct{})
		timer := time.AfterFunc(remaining, func() {
			c.mu.Lock()
			f.cond.Broadcast()
			c.mu.Unlock()
			close(done)
		})

		f.cond.Wait()
		timer.Stop()

		select {
		case <-done:
		default:
		}
	}

	return true, nil
}

// DestroyFuture frees a future's slot. Per spec.md §5, a future may only be
// destroyed after it has fired (or during loop teardown).
func (c *Context) DestroyFuture(h handle.Handle) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.futures.Get(h)
	if !ok {
		return liberr.CodeNoSuchHandle.Error()
	}
	if !f.finished {
		return liberr.CodeInvalidState.Error()
	}

	_, err := c.futures.Release(h)
	return err
}

// dueFutures returns every unfinished future whose execute_time has
// elapsed. Must be called with c.mu held; the caller is responsible for
// marking each returned future finished after its callback runs.
func (c *Context) dueFutures(now time.Time) []*Future {
	var due []*Future

	c.futures.Range(func(_ handle.Handle, f *Future) bool {
		if !f.finished && !f.executeTime.After(now) {
			due = append(due, f)
		}
		return true
	})

	return due
}

// finish marks a future complete and wakes any WaitFor callers. Must be
// called with c.mu held.
func (f *Future) finish() {
	f.finished = true
	f.cond.Broadcast()
}

// ExecuteLater is the convenience constructor from spec.md §4.3: it creates
// a future that destroys itself from within its own callback, which is safe
// because callback execution happens outside the loop mutex.
func ExecuteLater(c *Context, delay time.Duration, cb FutureCallback) (handle.Handle, liberr.Error) {
	var h handle.Handle

	// RunOnce marks a future finished only after its callback returns, and
	// DestroyFuture refuses an unfinished one, so the wrapper finishes and
	// releases its own record directly.
	wrapped := func() {
		cb()
		c.mu.Lock()
		if f, ok := c.futures.Get(h); ok {
			f.finish()
			_, _ = c.futures.Release(h)
		}
		c.mu.Unlock()
	}

	var err liberr.Error
	h, err = c.CreateFuture(wrapped)
	if err != nil {
		return handle.Empty, err
	}

	if err = c.Execute(h, delay); err != nil {
		_ = c.DestroyFuture(h)
		return handle.Empty, err
	}

	return h, nil
}
