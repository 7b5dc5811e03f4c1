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

package netio

import (
	"fmt"
	"net"
	"strconv"

	liberr "github.com/nabbar/evloop/errors"
)

// Address is the wire address form spec.md §6 requires: an IPv4
// dotted-quad string plus port for IP transports, or a filesystem path for
// local transports. Port 0 is permitted only for bind (the OS assigns one).
type Address struct {
	IP   string
	Port uint16
	Path string
}

// IsLocal reports whether this address names a filesystem path rather than
// an IPv4 endpoint.
func (a Address) IsLocal() bool { return a.Path != "" }

func (a Address) String() string {
	if a.IsLocal() {
		return a.Path
	}
	return net.JoinHostPort(a.IP, fmt.Sprintf("%d", a.Port))
}

// network returns the dial/listen network string for tcp/udp addresses.
func (a Address) network(base string) string {
	if a.IsLocal() {
		return "unix"
	}
	return base
}

// ParseAddress parses a "host:port" string into an IPv4 Address. It never
// produces a local (Path) address: callers that need a UNIX-domain socket
// build an Address literal directly.
func ParseAddress(s string) (Address, liberr.Error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return Address{}, liberr.CodeConfigInvalid.Error(err)
	}

	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return Address{}, liberr.CodeConfigInvalid.Error(err)
	}

	if verr := parseIPv4(host); verr != nil {
		return Address{}, verr
	}

	return Address{IP: host, Port: uint16(p)}, nil
}

func parseIPv4(ip string) liberr.Error {
	if ip == "" {
		return nil
	}
	if p := net.ParseIP(ip); p == nil || p.To4() == nil {
		return liberr.CodeInvalidState.Error()
	}
	return nil
}
