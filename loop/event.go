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
	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
	ospoll "github.com/nabbar/evloop/internal/ospoll"
)

// EventCallback is invoked with the loop mutex released once per poll
// iteration in which the event is signalled.
type EventCallback func()

// Event wraps a counter-style OS signal (spec.md §4.4): Set is
// edge-triggered, Clear drains it. Its descriptor is attached IN for its
// whole lifetime.
type Event struct {
	Handle   handle.Handle
	resource handle.Handle
	waker    ospoll.Waker
	callback EventCallback
}

// CreateEvent allocates a new cross-thread signal and attaches its
// descriptor to the poller in IN mode.
func (c *Context) CreateEvent(cb EventCallback) (handle.Handle, liberr.Error) {
	w, err := ospoll.OpenWaker()
	if err != nil {
		return handle.Empty, liberr.CodePollerFailure.Error(err)
	}

	c.mu.Lock()
	h, _, aerr := c.events.AssignNew(func(h handle.Handle) *Event {
		return &Event{Handle: h, waker: w, callback: cb}
	})
	c.mu.Unlock()

	if aerr != nil {
		_ = w.Close()
		return handle.Empty, aerr
	}

	ev, _ := c.events.Get(h)

	rh, rerr := c.AddResource(w.Fd(), ospoll.In, func(_ ospoll.Events) {
		_ = w.Drain()
		if ev.callback != nil {
			ev.callback()
		}
	}, h)
	if rerr != nil {
		c.mu.Lock()
		_, _ = c.events.Release(h)
		c.mu.Unlock()
		_ = w.Close()
		return handle.Empty, rerr
	}

	c.mu.Lock()
	ev.resource = rh
	c.mu.Unlock()

	return h, nil
}

// Set raises the event; its callback fires on the next poll iteration that
// observes the descriptor's IN readiness.
func (c *Context) SetEvent(h handle.Handle) liberr.Error {
	c.mu.Lock()
	ev, ok := c.events.Get(h)
	c.mu.Unlock()

	if !ok {
		return liberr.CodeNoSuchHandle.Error()
	}
	if err := ev.waker.Wake(); err != nil {
		return liberr.CodePollerFailure.Error(err)
	}
	return nil
}

// Clear drains the event's signal without waiting for a poll iteration.
func (c *Context) ClearEvent(h handle.Handle) liberr.Error {
	c.mu.Lock()
	ev, ok := c.events.Get(h)
	c.mu.Unlock()

	if !ok {
		return liberr.CodeNoSuchHandle.Error()
	}
	if err := ev.waker.Drain(); err != nil {
		return liberr.CodePollerFailure.Error(err)
	}
	return nil
}

// DestroyEvent detaches and releases an event.
func (c *Context) DestroyEvent(h handle.Handle) liberr.Error {
	c.mu.Lock()
	ev, ok := c.events.Get(h)
	c.mu.Unlock()

	if !ok {
		return liberr.CodeNoSuchHandle.Error()
	}

	_ = c.RemoveResource(ev.resource)

	c.mu.Lock()
	_, err := c.events.Release(h)
	c.mu.Unlock()

	_ = ev.waker.Close()

	return err
}
