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

package handle

import (
	"sync"

	uuid "github.com/hashicorp/go-uuid"

	liberr "github.com/nabbar/evloop/errors"
)

// Registry is the process-wide table of live loops, guarded by one coarse
// mutex as spec.md §5 requires. It is generic over the concrete loop type so
// this package never imports the loop package (which imports handle).
type Registry[T any] struct {
	mu      sync.Mutex
	next    uint16
	items   map[uint16]T
	closing map[uint16]bool
}

// NewRegistry creates an empty loop registry. Index 0 is never issued so a
// zero-value loop index can never be mistaken for a registered loop.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		next:    1,
		items:   make(map[uint16]T),
		closing: make(map[uint16]bool),
	}
}

// Register assigns the next free loop index and stores v under it.
func (r *Registry[T]) Register(v T) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.next
	r.next++
	r.items[idx] = v

	return idx
}

// TryGet returns the loop registered at idx. It observes the closing flag:
// once MarkClosing(idx) has been called, TryGet reports "no such loop" even
// though the entry has not been Unregistered yet.
func (r *Registry[T]) TryGet(idx uint16) (T, liberr.Error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T

	if r.closing[idx] {
		return zero, liberr.CodeNoSuchHandle.Error()
	}

	v, ok := r.items[idx]
	if !ok {
		return zero, liberr.CodeNoSuchHandle.Error()
	}

	return v, nil
}

// MarkClosing flags idx so new lookups fail fast while teardown proceeds.
func (r *Registry[T]) MarkClosing(idx uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closing[idx] = true
}

// Unregister removes idx entirely once its loop has finished tearing down.
func (r *Registry[T]) Unregister(idx uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, idx)
	delete(r.closing, idx)
}

// NewNonce returns a process-unique random string used for SIP Call-ID
// values and per-loop trace correlation, backed by github.com/hashicorp/go-uuid.
func NewNonce() (string, error) {
	return uuid.GenerateUUID()
}
