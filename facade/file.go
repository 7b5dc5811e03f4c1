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
	"os"

	liberr "github.com/nabbar/evloop/errors"
	handle "github.com/nabbar/evloop/handle"
	netio "github.com/nabbar/evloop/netio"
)

// OpenFile opens path under mode/perm and returns its handle, the
// supplemented file-I/O counterpart to the socket create calls.
func OpenFile(loopH handle.Handle, path string, mode netio.OpenMode, perm os.FileMode) (handle.Handle, liberr.Error) {
	st, err := stateForLoopHandle(loopH)
	if err != nil {
		return handle.Empty, err
	}

	f, ferr := netio.OpenFile(st.ctx, path, mode, perm)
	if ferr != nil {
		return handle.Empty, ferr
	}

	h, _, aerr := st.files.AssignNew(func(handle.Handle) *netio.File { return f })
	if aerr != nil {
		_ = f.Close()
		return handle.Empty, aerr
	}
	return h, nil
}

// FileSeek repositions the file named by h.
func FileSeek(h handle.Handle, offset int64, whence netio.SeekWhence) (int64, liberr.Error) {
	_, f, err := lookupFile(h)
	if err != nil {
		return 0, err
	}
	return f.Seek(offset, whence)
}

// FileReadAt issues an asynchronous read of len(buf) bytes at offset on the
// file named by h; cb fires on the loop thread once the read completes.
func FileReadAt(h handle.Handle, buf []byte, offset int64, cb netio.ReadCompletion) liberr.Error {
	_, f, err := lookupFile(h)
	if err != nil {
		return err
	}
	return f.ReadAt(buf, offset, cb)
}

// FileWriteAt issues an asynchronous write of buf at offset on the file
// named by h; cb fires on the loop thread once the write completes.
func FileWriteAt(h handle.Handle, buf []byte, offset int64, cb netio.WriteCompletion) liberr.Error {
	_, f, err := lookupFile(h)
	if err != nil {
		return err
	}
	return f.WriteAt(buf, offset, cb)
}

// CloseFile closes and releases the file named by h.
func CloseFile(h handle.Handle) liberr.Error {
	st, f, err := lookupFile(h)
	if err != nil {
		return err
	}
	if cerr := f.Close(); cerr != nil {
		return liberr.Errno("close", cerr)
	}
	_, _ = st.files.Release(h)
	return nil
}

func lookupFile(h handle.Handle) (*loopState, *netio.File, liberr.Error) {
	st, err := stateFor(h.Parent())
	if err != nil {
		return nil, nil, err
	}
	f, ok := st.files.Get(h)
	if !ok {
		return nil, nil, liberr.CodeNoSuchHandle.Error()
	}
	return st, f, nil
}
