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

package main

import (
	liberr "github.com/nabbar/evloop/errors"
	facade "github.com/nabbar/evloop/facade"
	handle "github.com/nabbar/evloop/handle"
	netio "github.com/nabbar/evloop/netio"
)

const echoServerBacklog = 64

// startEchoStreamServer binds a TCP listener on addr and echoes every byte
// read on an accepted connection back to its sender, one facade.Stream*
// call at a time, for manual exercise of the stream facade.
func startEchoStreamServer(loopH handle.Handle, addr netio.Address) liberr.Error {
	srv, err := facade.CreateStreamServer(loopH, addr, echoServerBacklog)
	if err != nil {
		return err
	}

	return facade.ServerListen(srv, func() {
		for {
			conn, aerr := facade.Accept(srv)
			if aerr != nil {
				return
			}
			_ = facade.StreamStartRead(conn, func(data []byte, _ interface{}, rerr liberr.Error) {
				if rerr != nil {
					_ = facade.CloseStream(conn)
					return
				}
				_ = facade.StreamWrite(conn, data, nil)
			})
		}
	})
}

// startEchoDatagram binds a UDP socket on addr and echoes every received
// datagram back to its sender.
func startEchoDatagram(loopH handle.Handle, addr netio.Address) liberr.Error {
	dg, err := facade.CreateDatagram(loopH, addr)
	if err != nil {
		return err
	}

	return facade.DatagramStartRead(dg, func(data []byte, sender interface{}, rerr liberr.Error) {
		if rerr != nil {
			return
		}
		from, ok := sender.(netio.Address)
		if !ok {
			return
		}
		_ = facade.DatagramWrite(dg, data, from, nil)
	})
}
