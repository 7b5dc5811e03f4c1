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

package registry

import (
	"strconv"
	"strings"
)

func init() {
	RegisterHeader("Via", func(v string) Header { return parseVia(v) })
	RegisterHeader("From", func(v string) Header { return parseAddrHeader("From", v) })
	RegisterHeader("To", func(v string) Header { return parseAddrHeader("To", v) })
	RegisterHeader("Call-ID", func(v string) Header { return &CallID{Value: strings.TrimSpace(v)} })
	RegisterHeader("CSeq", func(v string) Header { return parseCSeq(v) })
	RegisterHeader("Content-Length", func(v string) Header { return parseContentLength(v) })
	RegisterHeader("Content-Type", func(v string) Header { return &ContentType{Value: strings.TrimSpace(v)} })
	RegisterHeader("Max-Forwards", func(v string) Header { return parseMaxForwards(v) })
}

// Via is the topmost-entry-only holder for the Via header: protocol
// ("SIP/2.0/TCP"), sent-by host:port, and a branch parameter if present.
type Via struct {
	Protocol string
	SentBy   string
	Branch   string
}

func parseVia(v string) *Via {
	v = strings.TrimSpace(v)
	parts := strings.SplitN(v, ";", 2)
	head := strings.Fields(parts[0])

	via := &Via{}
	if len(head) >= 1 {
		via.Protocol = head[0]
	}
	if len(head) >= 2 {
		via.SentBy = head[1]
	}
	if len(parts) == 2 {
		for _, p := range strings.Split(parts[1], ";") {
			kv := strings.SplitN(strings.TrimSpace(p), "=", 2)
			if len(kv) == 2 && strings.EqualFold(kv[0], "branch") {
				via.Branch = kv[1]
			}
		}
	}
	return via
}

func (v *Via) Name() string { return "Via" }
func (v *Via) String() string {
	s := v.Protocol + " " + v.SentBy
	if v.Branch != "" {
		s += ";branch=" + v.Branch
	}
	return s
}

// AddrHeader covers From/To: an optional display name, a URI, and an
// optional tag parameter.
type AddrHeader struct {
	headerName  string
	DisplayName string
	URI         string
	Tag         string
}

func parseAddrHeader(name, v string) *AddrHeader {
	v = strings.TrimSpace(v)
	parts := strings.SplitN(v, ";", 2)
	uriPart := strings.TrimSpace(parts[0])

	ah := &AddrHeader{headerName: name}

	if i := strings.Index(uriPart, "<"); i >= 0 {
		ah.DisplayName = strings.Trim(uriPart[:i], `" `)
		if j := strings.Index(uriPart, ">"); j > i {
			ah.URI = uriPart[i+1 : j]
		}
	} else {
		ah.URI = uriPart
	}

	if len(parts) == 2 {
		for _, p := range strings.Split(parts[1], ";") {
			kv := strings.SplitN(strings.TrimSpace(p), "=", 2)
			if len(kv) == 2 && strings.EqualFold(kv[0], "tag") {
				ah.Tag = kv[1]
			}
		}
	}

	return ah
}

func (a *AddrHeader) Name() string { return a.headerName }
func (a *AddrHeader) String() string {
	s := ""
	if a.DisplayName != "" {
		s += `"` + a.DisplayName + `" `
	}
	s += "<" + a.URI + ">"
	if a.Tag != "" {
		s += ";tag=" + a.Tag
	}
	return s
}

// CallID holds a session's Call-ID value.
type CallID struct {
	Value string
}

func (c *CallID) Name() string   { return "Call-ID" }
func (c *CallID) String() string { return c.Value }

// CSeq holds a request's sequence number and method.
type CSeq struct {
	Seq    uint32
	Method string
}

func parseCSeq(v string) *CSeq {
	fields := strings.Fields(strings.TrimSpace(v))
	c := &CSeq{}
	if len(fields) >= 1 {
		if n, err := strconv.ParseUint(fields[0], 10, 32); err == nil {
			c.Seq = uint32(n)
		}
	}
	if len(fields) >= 2 {
		c.Method = fields[1]
	}
	return c
}

func (c *CSeq) Name() string   { return "CSeq" }
func (c *CSeq) String() string { return strconv.FormatUint(uint64(c.Seq), 10) + " " + c.Method }

// ContentLength holds the declared body byte count.
type ContentLength struct {
	Value int
}

func parseContentLength(v string) *ContentLength {
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return &ContentLength{Value: n}
}

func (c *ContentLength) Name() string   { return "Content-Length" }
func (c *ContentLength) String() string { return strconv.Itoa(c.Value) }

// ContentType holds the body's declared media type.
type ContentType struct {
	Value string
}

func (c *ContentType) Name() string   { return "Content-Type" }
func (c *ContentType) String() string { return c.Value }

// MaxForwards holds the request's remaining hop count.
type MaxForwards struct {
	Value int
}

func parseMaxForwards(v string) *MaxForwards {
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return &MaxForwards{Value: n}
}

func (m *MaxForwards) Name() string   { return "Max-Forwards" }
func (m *MaxForwards) String() string { return strconv.Itoa(m.Value) }
