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

import "strings"

func init() {
	RegisterBody("application/sdp", func(raw []byte) Body { return parseSDP(raw) })
}

// SDPBody is a minimal Session Description Protocol body: the handful of
// top-level lines a SIP stack needs to round-trip (v=, o=, s=, c=, t=, m=).
// Lines of a kind not in this set are kept verbatim in Other, in order,
// so a message still round-trips byte-for-byte even with fields this
// holder doesn't break out individually.
type SDPBody struct {
	Version   string
	Origin    string
	Session   string
	Connection string
	Timing    string
	Media     []string
	Other     []string
	raw       []byte
}

func parseSDP(raw []byte) *SDPBody {
	s := &SDPBody{raw: raw}

	for _, line := range strings.Split(string(raw), "\r\n") {
		if line == "" {
			continue
		}
		if len(line) < 2 || line[1] != '=' {
			s.Other = append(s.Other, line)
			continue
		}
		switch line[0] {
		case 'v':
			s.Version = line[2:]
		case 'o':
			s.Origin = line[2:]
		case 's':
			s.Session = line[2:]
		case 'c':
			s.Connection = line[2:]
		case 't':
			s.Timing = line[2:]
		case 'm':
			s.Media = append(s.Media, line[2:])
		default:
			s.Other = append(s.Other, line)
		}
	}

	return s
}

func (s *SDPBody) ContentType() string { return "application/sdp" }

func (s *SDPBody) Bytes() []byte {
	if s.raw != nil {
		return s.raw
	}

	var b strings.Builder
	if s.Version != "" {
		b.WriteString("v=" + s.Version + "\r\n")
	}
	if s.Origin != "" {
		b.WriteString("o=" + s.Origin + "\r\n")
	}
	if s.Session != "" {
		b.WriteString("s=" + s.Session + "\r\n")
	}
	if s.Connection != "" {
		b.WriteString("c=" + s.Connection + "\r\n")
	}
	if s.Timing != "" {
		b.WriteString("t=" + s.Timing + "\r\n")
	}
	for _, m := range s.Media {
		b.WriteString("m=" + m + "\r\n")
	}
	for _, o := range s.Other {
		b.WriteString(o + "\r\n")
	}
	return []byte(b.String())
}
