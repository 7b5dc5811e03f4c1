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
	"strings"
	"sync"
)

// Header is a typed holder for one header value. Name returns the
// canonical (mixed-case, e.g. "Call-ID") wire name; String renders the
// header's value back to its wire form.
type Header interface {
	Name() string
	String() string
}

// Body is a typed holder for a message body, keyed by content-type.
type Body interface {
	ContentType() string
	Bytes() []byte
}

// HeaderFactory builds a typed Header from a raw header value string.
type HeaderFactory func(value string) Header

// BodyFactory builds a typed Body from raw bytes.
type BodyFactory func(raw []byte) Body

var (
	mu        sync.RWMutex
	headerFac = map[string]HeaderFactory{}
	bodyFac   = map[string]BodyFactory{}
	canonical = map[string]string{}
)

// RegisterHeader associates name (case-insensitive) with f. canonicalName
// is the wire-form spelling returned by the built holder's Name().
func RegisterHeader(canonicalName string, f HeaderFactory) {
	mu.Lock()
	defer mu.Unlock()

	key := strings.ToLower(canonicalName)
	headerFac[key] = f
	canonical[key] = canonicalName
}

// RegisterBody associates contentType (case-insensitive) with f.
func RegisterBody(contentType string, f BodyFactory) {
	mu.Lock()
	defer mu.Unlock()

	bodyFac[strings.ToLower(contentType)] = f
}

// NewHeader builds a Header for name/value, falling back to a generic
// textual holder when name has no registered factory.
func NewHeader(name, value string) Header {
	mu.RLock()
	f, ok := headerFac[strings.ToLower(name)]
	canon, hasCanon := canonical[strings.ToLower(name)]
	mu.RUnlock()

	if ok {
		h := f(value)
		return h
	}

	if hasCanon {
		name = canon
	}
	return &GenericHeader{name: name, value: value}
}

// NewBody builds a Body for contentType/raw, falling back to a raw
// byte-passthrough holder when contentType has no registered factory.
func NewBody(contentType string, raw []byte) Body {
	mu.RLock()
	f, ok := bodyFac[strings.ToLower(contentType)]
	mu.RUnlock()

	if ok {
		return f(raw)
	}
	return &RawBody{contentType: contentType, raw: raw}
}

// GenericHeader is the fallback holder for any header name without a
// registered typed factory.
type GenericHeader struct {
	name  string
	value string
}

func (g *GenericHeader) Name() string   { return g.name }
func (g *GenericHeader) String() string { return g.value }
func (g *GenericHeader) Value() string  { return g.value }

// RawBody is the fallback holder for any content-type without a
// registered typed factory.
type RawBody struct {
	contentType string
	raw         []byte
}

func (r *RawBody) ContentType() string { return r.contentType }
func (r *RawBody) Bytes() []byte       { return r.raw }
