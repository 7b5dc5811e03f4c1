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
	liblog "github.com/nabbar/evloop/logger"
	loop "github.com/nabbar/evloop/loop"
)

// CreateLoop opens a new event loop and its facade-side object tables,
// returning its handle.
func CreateLoop(log liblog.FuncLog) (handle.Handle, liberr.Error) {
	ctx, err := loop.New(log)
	if err != nil {
		return handle.Empty, err
	}
	return registerLoop(ctx), nil
}

// DestroyLoop stops and tears down the loop named by h, releasing its
// facade-side tables. Any handle still outstanding into this loop's object
// tables becomes invalid.
func DestroyLoop(h handle.Handle) liberr.Error {
	st, err := stateForLoopHandle(h)
	if err != nil {
		return err
	}

	if derr := st.ctx.Destroy(); derr != nil {
		return derr
	}

	unregisterLoop(st.ctx.Index())
	return nil
}

// RunOnce drives one iteration of the named loop: see loop.Context.RunOnce.
func RunOnce(h handle.Handle) (bool, liberr.Error) {
	st, err := stateForLoopHandle(h)
	if err != nil {
		return false, err
	}
	return st.ctx.RunOnce()
}

// Run drives the named loop until Stop is requested.
func Run(h handle.Handle) liberr.Error {
	st, err := stateForLoopHandle(h)
	if err != nil {
		return err
	}
	return st.ctx.Run()
}

// Stop requests the named loop's run loop to return after its current
// iteration.
func Stop(h handle.Handle) liberr.Error {
	st, err := stateForLoopHandle(h)
	if err != nil {
		return err
	}
	return st.ctx.Stop()
}

// Reconfigure queues a new poll timeout and/or max-events-per-poll value
// for the named loop: see loop.Context.Reconfigure. Either argument may be
// zero to leave that tunable unchanged.
func Reconfigure(h handle.Handle, pollTimeout time.Duration, maxEventsPerPoll int) liberr.Error {
	st, err := stateForLoopHandle(h)
	if err != nil {
		return err
	}
	st.ctx.Reconfigure(pollTimeout, maxEventsPerPoll)
	return nil
}
