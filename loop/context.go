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
	ospoll "github.com/nabbar/evloop/internal/ospoll"
	liblog "github.com/nabbar/evloop/logger"
)

// State is the loop context's lifecycle: fresh -> running <-> idle-inside-
// poll -> stopping -> stopped. idle-inside-poll is not modelled as a
// distinct value since it is just "running" with the mutex released.
type State uint8

const (
	StateFresh State = iota
	StateRunning
	StateStopping
	StateStopped
)

const (
	// DefaultPollTimeout bounds how long a single poll blocks when no timer
	// is sooner.
	DefaultPollTimeout = time.Second
	// MaxEventsPerPoll is the cap on readiness entries processed in one
	// poll cycle (spec.md §8: max_events_for_process).
	MaxEventsPerPoll = 20

	defaultResourceCapacity = 4096
	defaultTimerCapacity    = 1024
	defaultFutureCapacity   = 1024
	defaultEventCapacity    = 256
)

// Context is the event loop: one poller, one wake-up event, one resource
// table, one timer list, one future list, one pending-updates queue, and the
// liveness flags spec.md §3 requires. Every public method acquires mu; the
// loop releases it across the blocking poll call and every user callback.
type Context struct {
	mu    sync.Mutex
	cond  *sync.Cond
	idx   uint16
	state State
	stop  bool

	poller ospoll.Poller
	waker  ospoll.Waker
	wake   handle.Handle

	resources *handle.Table[*Resource]
	timers    *handle.Table[*Timer]
	futures   *handle.Table[*Future]
	events    *handle.Table[*Event]

	fdIndex map[int]handle.Handle
	updates []update

	defaultTimeout time.Duration
	maxEvents      int
	pendingTimeout *time.Duration
	pendingMaxEvts *int
	log            liblog.FuncLog
}

// New creates a loop context: opens the OS poller and the wake-up event,
// registers the loop in the process-wide registry, and attaches the
// wake-up descriptor in IN mode.
func New(log liblog.FuncLog) (*Context, liberr.Error) {
	p, err := ospoll.Open()
	if err != nil {
		return nil, liberr.CodePollerFailure.Error(err)
	}

	w, err := ospoll.OpenWaker()
	if err != nil {
		_ = p.Close()
		return nil, liberr.CodePollerFailure.Error(err)
	}

	c := &Context{
		poller:         p,
		waker:          w,
		fdIndex:        make(map[int]handle.Handle),
		defaultTimeout: DefaultPollTimeout,
		maxEvents:      MaxEventsPerPoll,
		log:            log,
		state:          StateFresh,
	}
	c.cond = sync.NewCond(&c.mu)
	c.idx = processLoops.Register(c)

	c.resources = handle.NewTable[*Resource](c.idx, handle.KindResource, defaultResourceCapacity)
	c.timers = handle.NewTable[*Timer](c.idx, handle.KindTimer, defaultTimerCapacity)
	c.futures = handle.NewTable[*Future](c.idx, handle.KindFuture, defaultFutureCapacity)
	c.events = handle.NewTable[*Event](c.idx, handle.KindEvent, defaultEventCapacity)

	wh, werr := c.AddResource(w.Fd(), ospoll.In, func(_ ospoll.Events) { _ = w.Drain() }, nil)
	if werr != nil {
		processLoops.Unregister(c.idx)
		_ = w.Close()
		_ = p.Close()
		return nil, werr
	}
	c.wake = wh

	return c, nil
}

// Index returns the loop's process-registry index, the value every handle
// this loop hands out carries as its Parent().
func (c *Context) Index() uint16 { return c.idx }

// SignalRun wakes a blocking poll so pending mutations are observed promptly.
func (c *Context) SignalRun() liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signalRunLocked()
}

func (c *Context) signalRunLocked() liberr.Error {
	if err := c.waker.Wake(); err != nil {
		return liberr.CodePollerFailure.Error(err)
	}
	return nil
}

// safeCall invokes cb, recovering and logging any panic so user-code
// failure never aborts the loop thread (spec.md §7).
func (c *Context) safeCall(cb func()) {
	defer func() {
		if r := recover(); r != nil && c.log != nil {
			if l := c.log(); l != nil {
				l.Error("loop callback panicked", map[string]interface{}{"recover": r})
			}
		}
	}()
	cb()
}

type dispatch struct {
	r  *Resource
	ev ospoll.Events
}

// RunOnce drains the update queue, polls once, dispatches readiness to
// resources, fires due timers, runs eligible futures, and returns whether
// the loop has been asked to stop.
func (c *Context) RunOnce() (bool, liberr.Error) {
	c.mu.Lock()

	if c.stop {
		c.state = StateStopped
		c.mu.Unlock()
		c.cond.Broadcast()
		return true, nil
	}

	c.state = StateRunning

	pending := c.updates
	c.updates = nil
	for _, u := range pending {
		c.applyUpdate(u)
	}

	if c.pendingTimeout != nil {
		c.defaultTimeout = *c.pendingTimeout
		c.pendingTimeout = nil
	}
	if c.pendingMaxEvts != nil {
		c.maxEvents = *c.pendingMaxEvts
		c.pendingMaxEvts = nil
	}

	now := time.Now()
	timeout := c.nextTimerDeadline(now, c.defaultTimeout)
	maxEvents := c.maxEvents
	c.mu.Unlock()

	raw, perr := c.poller.Poll(maxEvents, timeout)
	if perr != nil {
		return false, liberr.CodePollerFailure.Error(perr)
	}

	c.mu.Lock()

	dispatches := make([]dispatch, 0, len(raw))
	for _, ev := range raw {
		h, ok := c.fdIndex[ev.Fd]
		if !ok {
			_ = c.poller.Remove(ev.Fd)
			continue
		}

		r, ok := c.resources.Get(h)
		if !ok {
			_ = c.poller.Remove(ev.Fd)
			delete(c.fdIndex, ev.Fd)
			continue
		}

		e := ev.Events
		if e.Has(ospoll.Error) || e.Has(ospoll.Hung) {
			e |= r.Events & (ospoll.In | ospoll.Out)
		}

		dispatches = append(dispatches, dispatch{r: r, ev: e})
	}

	now = time.Now()
	dueTimerCb := c.dueTimers(now)
	dueFuture := c.dueFutures(now)

	c.mu.Unlock()

	for _, d := range dispatches {
		r := d.r
		ev := d.ev
		c.safeCall(func() { r.Callback(ev) })
	}

	for _, cb := range dueTimerCb {
		c.safeCall(cb)
	}

	for _, f := range dueFuture {
		fut := f
		c.safeCall(fut.callback)

		c.mu.Lock()
		fut.finish()
		c.mu.Unlock()
	}

	c.mu.Lock()
	stopped := c.stop
	c.mu.Unlock()

	return stopped, nil
}

// Run drives RunOnce in the calling goroutine until the loop stops.
func (c *Context) Run() liberr.Error {
	for {
		stop, err := c.RunOnce()
		if err != nil && c.log != nil {
			if l := c.log(); l != nil {
				l.Error("loop poll failed", map[string]interface{}{"error": err.Error()})
			}
		}
		if stop {
			return nil
		}
	}
}

// ExecInThread runs the loop on its own goroutine ("owned worker thread")
// and returns immediately.
func (c *Context) ExecInThread() {
	go func() { _ = c.Run() }()
}

// Stop requests the loop to finish after its current (or next) RunOnce.
func (c *Context) Stop() liberr.Error {
	c.mu.Lock()
	c.stop = true
	c.state = StateStopping
	c.mu.Unlock()

	return c.SignalRun()
}

// Destroy stops the loop, blocks the caller until RunOnce has observed stop
// and finished, then releases the poller and wake-up descriptors and
// removes the loop from the process registry.
func (c *Context) Destroy() liberr.Error {
	if err := c.Stop(); err != nil {
		return err
	}

	processLoops.MarkClosing(c.idx)

	c.mu.Lock()
	for c.state != StateStopped {
		c.cond.Wait()
	}
	c.mu.Unlock()

	_ = c.RemoveResource(c.wake)
	_ = c.waker.Close()
	_ = c.poller.Close()

	processLoops.Unregister(c.idx)

	return nil
}
