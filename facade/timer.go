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

package facade

import (
	"time"

	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
	loop "github.com/nabbar/evloop/loop"
)

// ctxForObject resolves any non-loop handle back to its owning loop's
// *loop.Context via its Parent() field.
func ctxForObject(h handle.Handle) (*loop.Context, liberr.Error) {
	st, err := stateFor(h.Parent())
	if err != nil {
		return nil, err
	}
	return st.ctx, nil
}

// CreateTimer, StartTimer, StopTimer, ResetTimer and DestroyTimer are thin
// pass-throughs: timer.Handle already carries the owning loop's index as
// its Parent, so the facade only needs to translate loopH into a
// *loop.Context once per call.

func CreateTimer(loopH handle.Handle, timeout time.Duration, cb loop.TimerCallback) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}
	return st.ctx.CreateTimer(timeout, cb)
}

func StartTimer(h handle.Handle) liberr.Error {
	ctx, err := ctxForObject(h)
	if err != nil {
		return err
	}
	return ctx.StartTimer(h)
}

func StopTimer(h handle.Handle) liberr.Error {
	ctx, err := ctxForObject(h)
	if err != nil {
		return err
	}
	return ctx.StopTimer(h)
}

func ResetTimer(h handle.Handle) liberr.Error {
	ctx, err := ctxForObject(h)
	if err != nil {
		return err
	}
	return ctx.ResetTimer(h)
}

func DestroyTimer(h handle.Handle) liberr.Error {
	ctx, err := ctxForObject(h)
	if err != nil {
		return err
	}
	return ctx.DestroyTimer(h)
}

// CreateFuture, Execute, WaitFor and DestroyFuture mirror the timer
// pass-throughs for spec.md §4.3's deferred-execution records.

func CreateFuture(loopH handle.Handle, cb loop.FutureCallback) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}
	return st.ctx.CreateFuture(cb)
}

func ExecuteFuture(h handle.Handle, delay time.Duration) liberr.Error {
	ctx, err := ctxForObject(h)
	if err != nil {
		return err
	}
	return ctx.Execute(h, delay)
}

func WaitFuture(h handle.Handle, timeout time.Duration) (bool, liberr.Error) {
	ctx, err := ctxForObject(h)
	if err != nil {
		return false, err
	}
	return ctx.WaitFor(h, timeout)
}

func DestroyFuture(h handle.Handle) liberr.Error {
	ctx, err := ctxForObject(h)
	if err != nil {
		return err
	}
	return ctx.DestroyFuture(h)
}

// CreateEvent, SetEvent, ClearEvent and DestroyEvent mirror the same
// pattern for spec.md §4.4's cross-thread signals.

func CreateEvent(loopH handle.Handle, cb loop.EventCallback) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}
	return st.ctx.CreateEvent(cb)
}

func SetEvent(h handle.Handle) liberr.Error {
	ctx, err := ctxForObject(h)
	if err != nil {
		return err
	}
	return ctx.SetEvent(h)
}

func ClearEvent(h handle.Handle) liberr.Error {
	ctx, err := ctxForObject(h)
	if err != nil {
		return err
	}
	return ctx.ClearEvent(h)
}

func DestroyEvent(h handle.Handle) liberr.Error {
	ctx, err := ctxForObject(h)
	if err != nil {
		return err
	}
	return ctx.DestroyEvent(h)
}
