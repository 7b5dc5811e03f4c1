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

package runtimeconfig

import (
	"time"

	liberr "github.com/nabbar/evloop/errors"
	netio "github.com/nabbar/evloop/netio"
)

const (
	keyPollTimeout      = "loop.poll_timeout"
	keyMinTimerInterval = "loop.min_timer_interval"
	keyReadBufferSize   = "loop.read_buffer_size"
	keyMaxEventsPerPoll = "loop.max_events_per_poll"
	keySIPListenTCP     = "sip.listen_tcp"
	keySIPListenUDP     = "sip.listen_udp"

	// DefaultPollTimeout mirrors loop.DefaultPollTimeout: runtimeconfig
	// cannot import loop (loop does not depend on runtimeconfig, but the
	// reverse would be a one-off import just for a constant), so the
	// default is restated here and exercised by the "unchanged from
	// defaults" test.
	DefaultPollTimeout      = time.Second
	DefaultMinTimerInterval = 100 * time.Millisecond
	DefaultReadBufferSize   = 1024
	DefaultMaxEventsPerPoll = 20
)

// Tunables is the set of loop knobs runtimeconfig reads, validates, and
// republishes on every reload.
type Tunables struct {
	PollTimeout      time.Duration
	MinTimerInterval time.Duration
	ReadBufferSize   int
	MaxEventsPerPoll int

	SIPListenTCP netio.Address
	SIPListenUDP netio.Address
}

// ReconfigureFunc is handed the freshly-loaded, validated Tunables on
// startup and again on every config-file change. It is the caller's job to
// apply PollTimeout/MaxEventsPerPoll to a *loop.Context (directly, or via
// facade.Reconfigure) and ReadBufferSize to ioengine.SetReadBufferSize;
// runtimeconfig never imports loop or ioengine itself so it stays usable
// from either layer.
type ReconfigureFunc func(Tunables)

func validate(t Tunables) liberr.Error {
	if t.PollTimeout <= 0 {
		return liberr.CodeConfigInvalid.Error()
	}
	if t.MinTimerInterval <= 0 {
		return liberr.CodeConfigInvalid.Error()
	}
	if t.ReadBufferSize < 1 {
		return liberr.CodeConfigInvalid.Error()
	}
	if t.MaxEventsPerPoll < 1 {
		return liberr.CodeConfigInvalid.Error()
	}
	return nil
}
