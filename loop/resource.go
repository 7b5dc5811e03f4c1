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

// ResourceCallback is invoked with the loop mutex released whenever the
// poller reports readiness for a resource's descriptor.
type ResourceCallback func(events ospoll.Events)

// Resource is the loop's record of one polled descriptor: the fields spec.md
// §3 lists, own_handle/descriptor/subscribed_events/callback, plus an
// arbitrary user pointer higher packages use to stash their own state.
type Resource struct {
	Handle    handle.Handle
	Fd        int
	UserPtr   interface{}
	Events    ospoll.Events
	Callback  ResourceCallback
}

// AddResource attaches descriptor to the poller with the given initial
// interest and returns its handle. The must-have events are re-OR'd here and
// on every subsequent RequestEvents.
func (c *Context) AddResource(fd int, events ospoll.Events, cb ResourceCallback, userPtr interface{}) (handle.Handle, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events |= mustHave

	h, _, err := c.resources.AssignNew(func(h handle.Handle) *Resource {
		return &Resource{Handle: h, Fd: fd, UserPtr: userPtr, Events: events, Callback: cb}
	})
	if err != nil {
		return handle.Empty, err
	}

	c.fdIndex[fd] = h

	if addErr := c.poller.Add(fd, events); addErr != nil {
		_, _ = c.resources.Release(h)
		delete(c.fdIndex, fd)
		return handle.Empty, liberr.CodePollerFailure.Error(addErr)
	}

	return h, nil
}

// RemoveResource detaches and destroys a resource. Its descriptor is removed
// from the poller immediately; it is not deferred through the update queue,
// since removal never needs must-have re-assertion.
func (c *Context) RemoveResource(h handle.Handle) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.resources.Release(h)
	if err != nil {
		return err
	}

	delete(c.fdIndex, r.Fd)
	_ = c.poller.Remove(r.Fd)

	return nil
}

// RequestEvents queues an interest-set change for h. It is never applied in
// the caller's goroutine: it is appended to the update queue and the loop is
// signalled, so the next RunOnce drains it before polling.
func (c *Context) RequestEvents(h handle.Handle, events ospoll.Events, mode Mode) liberr.Error {
	c.mu.Lock()
	if !c.resources.Has(h) {
		c.mu.Unlock()
		return liberr.CodeNoSuchHandle.Error()
	}
	c.updates = append(c.updates, update{resource: h, mode: mode, events: events})
	c.mu.Unlock()

	return c.SignalRun()
}

// applyUpdate mutates a resource's subscribed events and re-applies the
// subscription to the poller. Called only from the loop thread, with c.mu
// held, at the top of RunOnce.
func (c *Context) applyUpdate(u update) {
	r, ok := c.resources.Get(u.resource)
	if !ok {
		return
	}

	switch u.mode {
	case Append:
		r.Events |= u.events
	case Remove:
		r.Events &^= u.events
	default:
		r.Events = u.events
	}
	r.Events |= mustHave

	_ = c.poller.Set(r.Fd, r.Events)
}
