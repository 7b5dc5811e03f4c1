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
	"io"
	"os"
	"sync"

	"github.com/bits-and-blooms/bitset"

	liberr "github.com/nabbar/evloop/errors"
	loop "github.com/nabbar/evloop/loop"
)

// OpenMode is the set of flags a File is opened with, the supplemented
// counterpart to spec.md §4.7's socket open_mode. It is a plain bitmask
// whose bits map onto os.O_RDONLY/O_WRONLY/O_RDWR/O_CREATE/O_APPEND/O_TRUNC;
// a File records the bits it was opened with in a bits-and-blooms/bitset
// BitSet (fileAttributes), the same type handle.Table uses for its slots.
type OpenMode uint

const (
	ModeRead OpenMode = 1 << iota
	ModeWrite
	ModeCreate
	ModeAppend
	ModeTruncate
)

func (m OpenMode) toOsFlags() int {
	flags := os.O_RDONLY
	switch {
	case m&ModeRead != 0 && m&ModeWrite != 0:
		flags = os.O_RDWR
	case m&ModeWrite != 0:
		flags = os.O_WRONLY
	}
	if m&ModeCreate != 0 {
		flags |= os.O_CREATE
	}
	if m&ModeAppend != 0 {
		flags |= os.O_APPEND
	}
	if m&ModeTruncate != 0 {
		flags |= os.O_TRUNC
	}
	return flags
}

// SeekWhence mirrors io.Seeker's three origins, named per spec.md §9's
// file-I/O supplement.
type SeekWhence int

const (
	SeekStart   SeekWhence = 0
	SeekCurrent SeekWhence = 1
	SeekEnd     SeekWhence = 2
)

// fileAttributes tracks which OpenMode bits a File was opened with, using a
// bitset so the attribute set can grow without reshaping File's layout.
type fileAttributes struct {
	bits *bitset.BitSet
}

func newFileAttributes(m OpenMode) fileAttributes {
	b := bitset.New(8)
	for i := uint(0); i < 8; i++ {
		if m&(1<<i) != 0 {
			b.Set(i)
		}
	}
	return fileAttributes{bits: b}
}

func (a fileAttributes) has(bit uint) bool { return a.bits.Test(bit) }

// ReadCompletion delivers a file read's outcome on the loop thread.
type ReadCompletion func(data []byte, err liberr.Error)

// WriteCompletion delivers a file write's outcome on the loop thread.
type WriteCompletion func(n int, err liberr.Error)

// File is synchronous file I/O driven from a dedicated goroutine per
// operation, with every completion delivered back on the loop thread through
// a one-shot future (loop.ExecuteLater) — the same connect-completion
// discipline ioengine.Engine uses for sockets, applied here because os.File
// offers no readiness notification to plug into the poller.
type File struct {
	mu   sync.Mutex
	ctx  *loop.Context
	f    *os.File
	attr fileAttributes
	pos  int64
}

// OpenFile opens path with mode and returns a File ready for ReadAt/WriteAt.
func OpenFile(ctx *loop.Context, path string, mode OpenMode, perm os.FileMode) (*File, liberr.Error) {
	f, err := os.OpenFile(path, mode.toOsFlags(), perm)
	if err != nil {
		return nil, liberr.Errno("open", err)
	}

	return &File{ctx: ctx, f: f, attr: newFileAttributes(mode)}, nil
}

// Seek repositions the file's cursor, used by subsequent ReadAt/WriteAt
// calls that pass offset -1 (meaning "current position").
func (file *File) Seek(offset int64, whence SeekWhence) (int64, liberr.Error) {
	file.mu.Lock()
	defer file.mu.Unlock()

	n, err := file.f.Seek(offset, int(whence))
	if err != nil {
		return 0, liberr.Errno("seek", err)
	}
	file.pos = n
	return n, nil
}

// ReadAt issues a read on a dedicated goroutine and delivers the result on
// the loop thread via a one-shot future. offset -1 reads from the file's
// current position and advances it.
func (file *File) ReadAt(buf []byte, offset int64, cb ReadCompletion) liberr.Error {
	if !file.attr.has(0) {
		return liberr.CodeOperationNotSupported.Error()
	}

	go func() {
		var n int
		var rerr error

		if offset < 0 {
			file.mu.Lock()
			n, rerr = file.f.Read(buf)
			if n > 0 {
				file.pos += int64(n)
			}
			file.mu.Unlock()
		} else {
			n, rerr = file.f.ReadAt(buf, offset)
		}

		// A short read that hit end of file still delivers its bytes
		// without an error; EOF is reported only when nothing was read.
		var lerr liberr.Error
		if rerr != nil && (rerr != io.EOF || n == 0) {
			lerr = liberr.Errno("read", rerr)
		}

		data := buf[:n]
		_, _ = loop.ExecuteLater(file.ctx, 0, func() {
			if cb != nil {
				cb(data, lerr)
			}
		})
	}()

	return nil
}

// WriteAt issues a write on a dedicated goroutine and delivers the result on
// the loop thread via a one-shot future. offset -1 writes at the file's
// current position (or appends, if opened with ModeAppend) and advances it.
func (file *File) WriteAt(buf []byte, offset int64, cb WriteCompletion) liberr.Error {
	if !file.attr.has(1) {
		return liberr.CodeOperationNotSupported.Error()
	}

	cp := make([]byte, len(buf))
	copy(cp, buf)

	go func() {
		var n int
		var werr error

		if offset < 0 {
			file.mu.Lock()
			n, werr = file.f.Write(cp)
			if n > 0 {
				file.pos += int64(n)
			}
			file.mu.Unlock()
		} else {
			n, werr = file.f.WriteAt(cp, offset)
		}

		var lerr liberr.Error
		if werr != nil {
			lerr = liberr.Errno("write", werr)
		}

		_, _ = loop.ExecuteLater(file.ctx, 0, func() {
			if cb != nil {
				cb(n, lerr)
			}
		})
	}()

	return nil
}

// Close closes the underlying file descriptor synchronously; there is no
// readiness state to tear down since File never registers with the poller.
func (file *File) Close() error {
	file.mu.Lock()
	defer file.mu.Unlock()
	return file.f.Close()
}
