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

package logger

import (
	"bytes"
	"strings"

	loglvl "github.com/nabbar/evloop/logger/level"
)

// Close stops the logger's hooks and releases their resources. Always
// returns nil, satisfying io.Closer.
func (o *lgr) Close() error {
	if o == nil {
		return nil
	}

	o.m.Lock()
	clo := o.closer
	o.closer = nil
	o.m.Unlock()

	if clo != nil {
		return clo.Close()
	}

	return nil
}

// Write implements io.Writer by creating a log entry from p, logged at the
// level set by SetIOWriterLevel.
func (o *lgr) Write(p []byte) (n int, err error) {
	if o == nil {
		return 0, nil
	}

	val := strings.TrimSpace(string(o.IOWriterFilter(p)))

	if len(val) < 1 {
		return len(p), nil
	}

	o.newEntry(o.GetIOWriterLevel(), val, nil, o.GetFields(), nil).Log()
	return len(p), nil
}

// SetIOWriterLevel sets the log level used by Write.
func (o *lgr) SetIOWriterLevel(lvl loglvl.Level) {
	if o == nil {
		return
	}

	o.m.Lock()
	defer o.m.Unlock()
	o.wlvl = lvl
}

// GetIOWriterLevel returns the log level used by Write.
func (o *lgr) GetIOWriterLevel() loglvl.Level {
	if o == nil {
		return loglvl.NilLevel
	}

	o.m.RLock()
	defer o.m.RUnlock()
	return o.wlvl
}

// SetIOWriterFilter replaces the filter pattern list. Any Write message
// containing a pattern is dropped.
func (o *lgr) SetIOWriterFilter(pattern ...string) {
	if o == nil {
		return
	}

	p := make([][]byte, 0, len(pattern))
	for _, s := range pattern {
		p = append(p, []byte(s))
	}

	o.m.Lock()
	defer o.m.Unlock()
	o.wfltr = p
}

// AddIOWriterFilter appends patterns to the existing filter list.
func (o *lgr) AddIOWriterFilter(pattern ...string) {
	if o == nil {
		return
	}

	o.m.Lock()
	defer o.m.Unlock()

	for _, s := range pattern {
		o.wfltr = append(o.wfltr, []byte(s))
	}
}

// IOWriterFilter returns an empty slice if p matches any registered filter
// pattern, p otherwise.
func (o *lgr) IOWriterFilter(p []byte) []byte {
	if o == nil {
		return p
	}

	o.m.RLock()
	defer o.m.RUnlock()

	for _, b := range o.wfltr {
		if bytes.Contains(p, b) {
			return make([]byte, 0)
		}
	}

	return p
}
