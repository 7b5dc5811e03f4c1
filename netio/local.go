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
	liberr "github.com/nabbar/evloop/errors"
	loop "github.com/nabbar/evloop/loop"
)

// NewLocalStream creates a UNIX-domain stream socket bound to path (empty
// path lets the OS pick an abstract/anonymous one on platforms that support
// it). It is a thin, explicitly-named entry point over Stream's existing
// local-vs-IP branching on Address.Path, kept separate so callers reading
// for the local-stream specialization don't have to rediscover the
// branching condition in Stream itself.
func NewLocalStream(ctx *loop.Context, path string) (*Stream, liberr.Error) {
	return NewStream(ctx, Address{Path: path})
}

// NewLocalStreamServer listens on a UNIX-domain socket at path.
func NewLocalStreamServer(ctx *loop.Context, path string, backlog int) (*StreamServer, liberr.Error) {
	return NewStreamServer(ctx, Address{Path: path}, backlog)
}
