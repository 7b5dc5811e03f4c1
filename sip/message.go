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

package sip

import (
	"strconv"
	"strings"

	sipreg "github.com/nabbar/evloop/sip/registry"
)

// ParseState classifies the outcome of ParseMessage.
type ParseState uint8

const (
	ParseIncomplete ParseState = iota
	ParseMalformed
	ParseComplete
)

// HeaderEntry is one parsed header occurrence, preserving wire order; a
// name may repeat, each occurrence kept as its own entry.
type HeaderEntry struct {
	Name   string
	Holder sipreg.Header
}

// Message is a parsed (or to-be-serialized) SIP request or response.
type Message struct {
	IsRequest bool

	Method        string
	RequestURI    string
	StatusCode    int
	ReasonPhrase  string

	Headers []HeaderEntry
	Body    sipreg.Body
}

// Header returns the first header holder matching name (case-insensitive),
// or nil if absent.
func (m *Message) Header(name string) sipreg.Header {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Holder
		}
	}
	return nil
}

// AddHeader appends a header built through the registry.
func (m *Message) AddHeader(name, value string) {
	h := sipreg.NewHeader(name, value)
	m.Headers = append(m.Headers, HeaderEntry{Name: h.Name(), Holder: h})
}

const crlfcrlf = "\r\n\r\n"

// ParseMessage implements spec.md §4.8's framing contract: search for
// CRLF-CRLF, parse the headers, require Content-Length further bytes if
// declared, and report how many leading bytes of buf were consumed.
func ParseMessage(buf []byte) (msg *Message, consumed int, state ParseState) {
	idx := strings.Index(string(buf), crlfcrlf)
	if idx < 0 {
		return nil, 0, ParseIncomplete
	}

	headEnd := idx + len(crlfcrlf)
	lines := strings.Split(string(buf[:idx]), "\r\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, 0, ParseMalformed
	}

	m := &Message{}
	if !parseStartLine(lines[0], m) {
		return nil, 0, ParseMalformed
	}

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		colon := strings.Index(line, ":")
		if colon < 0 {
			return nil, 0, ParseMalformed
		}
		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		h := sipreg.NewHeader(name, value)
		m.Headers = append(m.Headers, HeaderEntry{Name: h.Name(), Holder: h})
	}

	bodyLen := 0
	if cl, ok := m.Header("Content-Length").(*sipreg.ContentLength); ok {
		bodyLen = cl.Value
	}

	if len(buf) < headEnd+bodyLen {
		return nil, 0, ParseIncomplete
	}

	if bodyLen > 0 {
		contentType := "application/octet-stream"
		if ct, ok := m.Header("Content-Type").(*sipreg.ContentType); ok {
			contentType = ct.Value
		}
		m.Body = sipreg.NewBody(contentType, buf[headEnd:headEnd+bodyLen])
	}

	return m, headEnd + bodyLen, ParseComplete
}

func parseStartLine(line string, m *Message) bool {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return false
	}

	if strings.HasPrefix(fields[0], "SIP/") {
		m.IsRequest = false
		code, err := strconv.Atoi(fields[1])
		if err != nil {
			return false
		}
		m.StatusCode = code
		m.ReasonPhrase = strings.Join(fields[2:], " ")
		return true
	}

	if !strings.HasPrefix(fields[2], "SIP/") {
		return false
	}
	m.IsRequest = true
	m.Method = fields[0]
	m.RequestURI = fields[1]
	return true
}

// Serialize renders msg to its wire form.
func Serialize(msg *Message) []byte {
	var b strings.Builder

	if msg.IsRequest {
		b.WriteString(msg.Method + " " + msg.RequestURI + " SIP/2.0\r\n")
	} else {
		b.WriteString("SIP/2.0 " + strconv.Itoa(msg.StatusCode) + " " + msg.ReasonPhrase + "\r\n")
	}

	var bodyBytes []byte
	if msg.Body != nil {
		bodyBytes = msg.Body.Bytes()
	}

	wroteContentLength := false
	for _, h := range msg.Headers {
		if strings.EqualFold(h.Name, "Content-Length") {
			wroteContentLength = true
		}
		b.WriteString(h.Name + ": " + h.Holder.String() + "\r\n")
	}
	if !wroteContentLength {
		b.WriteString("Content-Length: " + strconv.Itoa(len(bodyBytes)) + "\r\n")
	}

	b.WriteString("\r\n")
	b.Write(bodyBytes)

	return []byte(b.String())
}

// WriteMessage serializes msg into buffer, spec.md §4.9's write_message
// contract, returning the bytes written (truncated to len(buffer) if the
// serialized form is larger).
func WriteMessage(buffer []byte, msg *Message) int {
	return copy(buffer, Serialize(msg))
}
