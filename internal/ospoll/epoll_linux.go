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
	"sync"
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/evloop/errors"
)

// epollPoller wraps an epoll instance. Must-have events (error|hung) are
// implicit on Linux (EPOLLERR/EPOLLHUP are always reported), so Add/Set only
// translate the caller's in/out interest.
type epollPoller struct {
	mu sync.Mutex
	fd int
}

// Open creates a new epoll-backed Poller.
func Open() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, liberr.Errno("epoll_create1", err)
	}
	return &epollPoller{fd: fd}, nil
}

func toEpollEvents(ev Events) uint32 {
	var m uint32
	if ev.Has(In) {
		m |= unix.EPOLLIN
	}
	if ev.Has(Out) {
		m |= unix.EPOLLOUT
	}
	// EPOLLERR and EPOLLHUP are reported by the kernel unconditionally; no
	// bit needs to be requested for them.
	return m
}

func fromEpollEvents(m uint32) Events {
	var ev Events
	if m&unix.EPOLLIN != 0 {
		ev |= In
	}
	if m&unix.EPOLLOUT != 0 {
		ev |= Out
	}
	if m&unix.EPOLLERR != 0 {
		ev |= Error
	}
	if m&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		ev |= Hung
	}
	return ev
}

func (p *epollPoller) Add(fd int, ev Events) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	event := unix.EpollEvent{Events: toEpollEvents(ev), Fd: int32(fd)}
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
		return liberr.Errno("epoll_ctl(add)", err)
	}
	return nil
}

func (p *epollPoller) Set(fd int, ev Events) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	event := unix.EpollEvent{Events: toEpollEvents(ev), Fd: int32(fd)}
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &event); err != nil {
		return liberr.Errno("epoll_ctl(mod)", err)
	}
	return nil
}

func (p *epollPoller) Remove(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil); err != nil && err != unix.ENOENT {
		return liberr.Errno("epoll_ctl(del)", err)
	}
	return nil
}

func (p *epollPoller) Poll(maxEvents int, timeout time.Duration) ([]Event, error) {
	raw := make([]unix.EpollEvent, maxEvents)

	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	n, err := unix.EpollWait(p.fd, raw, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, liberr.Errno("epoll_wait", err)
	}

	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Event{Fd: int(raw[i].Fd), Events: fromEpollEvents(raw[i].Events)})
	}

	return out, nil
}

func (p *epollPoller) Close() error {
	if err := unix.Close(p.fd); err != nil {
		return liberr.Errno("close(epoll)", err)
	}
	return nil
}
