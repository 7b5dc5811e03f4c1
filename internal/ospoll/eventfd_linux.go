//go:build linux

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

package ospoll

import (
	"encoding/binary"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/evloop/errors"
)

// eventfdWaker is the counter-style cross-thread signal spec.md §4.1/§4.4
// describes: one eventfd, attached IN for its whole lifetime, that Wake sets
// and Drain clears.
type eventfdWaker struct {
	fd int
}

// OpenWaker creates a new eventfd-backed Waker in non-blocking, counter
// mode (EFD_NONBLOCK so a racing Drain never blocks the loop thread).
func OpenWaker() (Waker, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, liberr.Errno("eventfd", err)
	}
	return &eventfdWaker{fd: fd}, nil
}

func (w *eventfdWaker) Fd() int { return w.fd }

// Wake writes 1 to the counter, waking any goroutine blocked in epoll_wait
// with this descriptor's fd subscribed IN.
func (w *eventfdWaker) Wake() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)

	if _, err := unix.Write(w.fd, buf[:]); err != nil && err != unix.EAGAIN {
		return liberr.Errno("eventfd write", err)
	}
	return nil
}

// Drain resets the counter to zero so the next Wake re-signals readiness.
func (w *eventfdWaker) Drain() error {
	var buf [8]byte

	if _, err := unix.Read(w.fd, buf[:]); err != nil && err != unix.EAGAIN {
		return liberr.Errno("eventfd read", err)
	}
	return nil
}

func (w *eventfdWaker) Close() error {
	if err := unix.Close(w.fd); err != nil {
		return liberr.Errno("close(eventfd)", err)
	}
	return nil
}
