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
	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
	ioengine "github.com/nabbar/evloop/ioengine"
	netio "github.com/nabbar/evloop/netio"
)

// CreateStream opens a fresh TCP (or, when local is a path, UNIX-domain)
// stream socket on loopH and returns its handle.
func CreateStream(loopH handle.Handle, local netio.Address) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}

	s, serr := netio.NewStream(st.ctx, local)
	if serr != nil {
		return handle.Empty, serr
	}

	h, _, aerr := st.streams.AssignNew(func(handle.Handle) *netio.Stream { return s })
	if aerr != nil {
		_ = s.Close()
		return handle.Empty, aerr
	}
	return h, nil
}

// Connect begins a non-blocking connect on the stream named by h (works for
// both KindStreamSocket and KindLocalStream handles).
func Connect(h handle.Handle, remote netio.Address, cb ioengine.ConnectCallback) liberr.Error {
	_, s, err := lookupStream(h, h.Kind())
	if err != nil {
		return err
	}
	return s.Connect(remote, cb)
}

// StreamStartRead arms continuous reads on the stream named by h.
func StreamStartRead(h handle.Handle, cb ioengine.ReadCallback) liberr.Error {
	_, s, err := lookupStream(h, h.Kind())
	if err != nil {
		return err
	}
	return s.Engine.StartRead(cb)
}

// StreamStopRead disarms reads on the stream named by h.
func StreamStopRead(h handle.Handle) liberr.Error {
	_, s, err := lookupStream(h, h.Kind())
	if err != nil {
		return err
	}
	return s.Engine.StopRead()
}

// StreamWrite enqueues buf for writing on the stream named by h.
func StreamWrite(h handle.Handle, buf []byte, completion func(err liberr.Error)) liberr.Error {
	_, s, err := lookupStream(h, h.Kind())
	if err != nil {
		return err
	}
	return s.Engine.Write(buf, nil, completion)
}

// CloseStream closes and releases the stream (or local stream) named by h.
func CloseStream(h handle.Handle) liberr.Error {
	return closeStream(h, h.Kind())
}

// CreateStreamServer binds and listens for local with the given backlog.
func CreateStreamServer(loopH handle.Handle, local netio.Address, backlog int) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}

	s, serr := netio.NewStreamServer(st.ctx, local, backlog)
	if serr != nil {
		return handle.Empty, serr
	}

	h, _, aerr := st.streamServers.AssignNew(func(handle.Handle) *netio.StreamServer { return s })
	if aerr != nil {
		_ = s.Close()
		return handle.Empty, aerr
	}
	return h, nil
}

// ServerListen registers the accept-readiness callback for the server
// named by h.
func ServerListen(h handle.Handle, cb netio.AcceptCallback) liberr.Error {
	_, s, err := lookupStreamServer(h, h.Kind())
	if err != nil {
		return err
	}
	return s.Listen(cb)
}

// Accept pulls one pending connection off the server named by h and
// registers it as a new stream handle (in the matching kind: a
// KindLocalStreamServer accepts into KindLocalStream) in the same loop.
func Accept(h handle.Handle) (handle.Handle, liberr.Error) {
	st, srv, err := lookupStreamServer(h, h.Kind())
	if err != nil {
		return handle.Empty, err
	}

	accepted, aerr := srv.Accept()
	if aerr != nil {
		return handle.Empty, aerr
	}

	table := st.streams
	if h.Kind() == handle.KindLocalStreamServer {
		table = st.localStreams
	}

	nh, _, terr := table.AssignNew(func(handle.Handle) *netio.Stream { return accepted })
	if terr != nil {
		_ = accepted.Close()
		return handle.Empty, terr
	}
	return nh, nil
}

// CloseStreamServer closes and releases the server named by h.
func CloseStreamServer(h handle.Handle) liberr.Error {
	st, s, err := lookupStreamServer(h, h.Kind())
	if err != nil {
		return err
	}
	if cerr := s.Close(); cerr != nil {
		return cerr
	}

	table := st.streamServers
	if h.Kind() == handle.KindLocalStreamServer {
		table = st.localServers
	}
	_, _ = table.Release(h)
	return nil
}

// CreateLocalStream and CreateLocalStreamServer mirror CreateStream and
// CreateStreamServer for spec.md §9's local (UNIX-domain) sockets, kept as
// a distinct handle kind (KindLocalStream/KindLocalStreamServer) even
// though both share the same *netio.Stream/*netio.StreamServer Go type.

func CreateLocalStream(loopH handle.Handle, path string) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}

	s, serr := netio.NewLocalStream(st.ctx, path)
	if serr != nil {
		return handle.Empty, serr
	}

	h, _, aerr := st.localStreams.AssignNew(func(handle.Handle) *netio.Stream { return s })
	if aerr != nil {
		_ = s.Close()
		return handle.Empty, aerr
	}
	return h, nil
}

func CreateLocalStreamServer(loopH handle.Handle, path string, backlog int) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}

	s, serr := netio.NewLocalStreamServer(st.ctx, path, backlog)
	if serr != nil {
		return handle.Empty, serr
	}

	h, _, aerr := st.localServers.AssignNew(func(handle.Handle) *netio.StreamServer { return s })
	if aerr != nil {
		_ = s.Close()
		return handle.Empty, aerr
	}
	return h, nil
}

func lookupStream(h handle.Handle, kind handle.Kind) (*loopState, *netio.Stream, liberr.Error) {
	st, err := stateFor(h.Parent())
	if err != nil {
		return nil, nil, err
	}

	table := st.streams
	if kind == handle.KindLocalStream {
		table = st.localStreams
	}

	s, ok := table.Get(h)
	if !ok {
		return nil, nil, liberr.CodeNoSuchHandle.Error()
	}
	return st, s, nil
}

func lookupStreamServer(h handle.Handle, kind handle.Kind) (*loopState, *netio.StreamServer, liberr.Error) {
	st, err := stateFor(h.Parent())
	if err != nil {
		return nil, nil, err
	}

	table := st.streamServers
	if kind == handle.KindLocalStreamServer {
		table = st.localServers
	}

	s, ok := table.Get(h)
	if !ok {
		return nil, nil, liberr.CodeNoSuchHandle.Error()
	}
	return st, s, nil
}

func closeStream(h handle.Handle, kind handle.Kind) liberr.Error {
	st, s, err := lookupStream(h, kind)
	if err != nil {
		return err
	}
	if cerr := s.Engine.Close(); cerr != nil {
		return cerr
	}

	table := st.streams
	if kind == handle.KindLocalStream {
		table = st.localStreams
	}
	_, _ = table.Release(h)
	return nil
}
