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
	"sync"

	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
	loop "github.com/nabbar/evloop/loop"
	netio "github.com/nabbar/evloop/netio"
	sip "github.com/nabbar/evloop/sip"
)

const (
	capStreams       = 4096
	capStreamServers = 256
	capDatagrams     = 1024
	capFiles         = 256
	capLocalStreams  = 256
	capLocalServers  = 64
	capSIPSessions   = 1024
)

// loopState is everything the facade keeps on top of a *loop.Context: one
// handle.Table per object kind the loop/netio/sip packages themselves have
// no notion of owning by handle.
type loopState struct {
	ctx *loop.Context

	streams       *handle.Table[*netio.Stream]
	streamServers *handle.Table[*netio.StreamServer]
	datagrams     *handle.Table[*netio.Datagram]
	files         *handle.Table[*netio.File]
	localStreams  *handle.Table[*netio.Stream]
	localServers  *handle.Table[*netio.StreamServer]
	sipSessions   *handle.Table[*sip.Session]
}

var (
	mu    sync.Mutex
	loops = map[uint16]*loopState{}
)

func newLoopState(ctx *loop.Context) *loopState {
	idx := ctx.Index()
	return &loopState{
		ctx:           ctx,
		streams:       handle.NewTable[*netio.Stream](idx, handle.KindStreamSocket, capStreams),
		streamServers: handle.NewTable[*netio.StreamServer](idx, handle.KindStreamServer, capStreamServers),
		datagrams:     handle.NewTable[*netio.Datagram](idx, handle.KindDatagramSocket, capDatagrams),
		files:         handle.NewTable[*netio.File](idx, handle.KindFile, capFiles),
		localStreams:  handle.NewTable[*netio.Stream](idx, handle.KindLocalStream, capLocalStreams),
		localServers:  handle.NewTable[*netio.StreamServer](idx, handle.KindLocalStreamServer, capLocalServers),
		sipSessions:   handle.NewTable[*sip.Session](idx, handle.KindSIPSession, capSIPSessions),
	}
}

// loopHandle packs a loop's registry index into the handle form spec.md §6
// uses for the loop object itself: a loop has no owning loop other than
// itself, so Parent is 0 and Index carries the registry index.
func loopHandle(idx uint16) handle.Handle {
	return handle.New(0, handle.KindLoop, uint32(idx))
}

func registerLoop(ctx *loop.Context) handle.Handle {
	st := newLoopState(ctx)

	mu.Lock()
	loops[ctx.Index()] = st
	mu.Unlock()

	return loopHandle(ctx.Index())
}

func unregisterLoop(idx uint16) {
	mu.Lock()
	delete(loops, idx)
	mu.Unlock()
}

// stateFor resolves a loop handle (or any handle carrying that loop as its
// Parent) back to its loopState.
func stateFor(parent uint16) (*loopState, liberr.Error) {
	mu.Lock()
	st, ok := loops[parent]
	mu.Unlock()

	if !ok {
		return nil, liberr.CodeNoSuchHandle.Error()
	}
	return st, nil
}

func stateForLoopHandle(h handle.Handle) (*loopState, liberr.Error) {
	if !h.Match(0, handle.KindLoop) {
		return nil, liberr.CodeBadHandle.Error()
	}
	return stateFor(uint16(h.Index()))
}
