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

// CreateDatagram opens a UDP socket bound to local and returns its handle.
func CreateDatagram(loopH handle.Handle, local netio.Address) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}

	d, derr := netio.NewDatagram(st.ctx, local)
	if derr != nil {
		return handle.Empty, derr
	}

	h, _, aerr := st.datagrams.AssignNew(func(handle.Handle) *netio.Datagram { return d })
	if aerr != nil {
		_ = d.Close()
		return handle.Empty, aerr
	}
	return h, nil
}

// DatagramStartRead arms continuous reads on the datagram socket named by
// h; each delivery's sender is a netio.Address.
func DatagramStartRead(h handle.Handle, cb ioengine.ReadCallback) liberr.Error {
	_, d, err := lookupDatagram(h)
	if err != nil {
		return err
	}
	return d.Engine.StartRead(cb)
}

// DatagramWrite sends buf to destination (a netio.Address) on the socket
// named by h.
func DatagramWrite(h handle.Handle, buf []byte, destination netio.Address, completion func(err liberr.Error)) liberr.Error {
	_, d, err := lookupDatagram(h)
	if err != nil {
		return err
	}
	return d.Engine.Write(buf, destination, completion)
}

// CloseDatagram closes and releases the datagram socket named by h.
func CloseDatagram(h handle.Handle) liberr.Error {
	st, d, err := lookupDatagram(h)
	if err != nil {
		return err
	}
	if cerr := d.Engine.Close(); cerr != nil {
		return cerr
	}
	_, _ = st.datagrams.Release(h)
	return nil
}

func lookupDatagram(h handle.Handle) (*loopState, *netio.Datagram, liberr.Error) {
	st, err := stateFor(h.Parent())
	if err != nil {
		return nil, nil, err
	}
	d, ok := st.datagrams.Get(h)
	if !ok {
		return nil, nil, liberr.CodeNoSuchHandle.Error()
	}
	return st, d, nil
}
