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

package errors

// Loop-wide error taxonomy. Every code here is >= MinPkgLoop so it can
// never collide with a CodeError registered by another evloop package.
const (
	CodeAgain CodeError = MinPkgLoop + iota
	CodeInProgress
	CodeInterrupted
	CodeEOF
	CodeFDClosed
	CodeBadHandle
	CodeNoSuchHandle
	CodeNoSpace
	CodeInvalidState
	CodeAlreadyRunning
	CodeTimeoutTooSmall
	CodeOperationNotSupported
	CodeInvalidFilemode
	CodeAllocation
	CodePollerFailure
	CodeConfigInvalid
)

func init() {
	RegisterIdFctMessage(CodeAgain, msgEvloop)
}

//nolint:exhaustive
func msgEvloop(code CodeError) string {
	switch code {
	case CodeAgain:
		return "operation would block, retry later"
	case CodeInProgress:
		return "operation already in progress"
	case CodeInterrupted:
		return "operation interrupted by signal"
	case CodeEOF:
		return "end of stream reached"
	case CodeFDClosed:
		return "descriptor is closed"
	case CodeBadHandle:
		return "handle is malformed or of the wrong type"
	case CodeNoSuchHandle:
		return "handle does not reference a live resource"
	case CodeNoSpace:
		return "handle table has no free slot"
	case CodeInvalidState:
		return "operation not valid in current state"
	case CodeAlreadyRunning:
		return "resource is already running"
	case CodeTimeoutTooSmall:
		return "timeout is smaller than the minimum poll interval"
	case CodeOperationNotSupported:
		return "operation not supported by this resource"
	case CodeInvalidFilemode:
		return "invalid file open mode"
	case CodeAllocation:
		return "allocation failure"
	case CodePollerFailure:
		return "OS readiness poller reported a fatal failure"
	case CodeConfigInvalid:
		return "configuration value is missing or out of range"
	}

	return UnknownMessage
}

// Errno wraps an OS errno-equivalent (as returned by golang.org/x/sys/unix
// calls) into an evloop Error without consuming a taxonomy slot: the errno
// itself becomes the message and the parent, and the code is always
// CodeInvalidState. Transient errnos are not classified here; callers map
// EAGAIN/EINTR to CodeAgain/CodeInterrupted themselves before calling Errno.
func Errno(op string, err error) Error {
	if err == nil {
		return nil
	}
	return New(CodeInvalidState.Uint16(), op+": "+err.Error(), err)
}
