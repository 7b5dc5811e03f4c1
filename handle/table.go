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

	"github.com/bits-and-blooms/bitset"

	liberr "github.com/nabbar/evloop/errors"
)

// slot tracks occupancy independently from the stored value so a reserved
// slot can be told apart from an assigned one without a pointer/nil check
// on T (T may be a non-pointer struct).
type slot[T any] struct {
	reserved bool
	occupied bool
	value    T
}

// Table is a fixed-capacity slotted map keyed by a composite Handle. It owns
// every object it stores: Release is the only way a value leaves the table.
type Table[T any] struct {
	mu       sync.Mutex
	parent   uint16
	kind     Kind
	capacity uint32
	used     *bitset.BitSet
	slots    []slot[T]
}

// NewTable allocates a handle table for the given owning loop index and
// object kind, with room for capacity objects.
func NewTable[T any](parent uint16, kind Kind, capacity uint32) *Table[T] {
	return &Table[T]{
		parent:   parent,
		kind:     kind,
		capacity: capacity,
		used:     bitset.New(uint(capacity)),
		slots:    make([]slot[T], capacity),
	}
}

func (t *Table[T]) findFree() (uint32, bool) {
	idx, ok := t.used.NextClear(0)
	if !ok || idx >= uint(t.capacity) {
		return 0, false
	}
	return uint32(idx), true
}

// Reserve returns a prospective handle for a free slot without storing
// anything there. The slot is marked reserved so a concurrent Reserve/
// AssignNew cannot claim it.
func (t *Table[T]) Reserve() (Handle, liberr.Error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.findFree()
	if !ok {
		return Empty, liberr.CodeNoSpace.Error()
	}

	t.used.Set(uint(idx))
	t.slots[idx] = slot[T]{reserved: true}

	return New(t.parent, t.kind, idx), nil
}

// AssignNew atomically finds an empty slot and builds a T whose first
// constructor argument is the new handle, storing the result in that slot.
func (t *Table[T]) AssignNew(ctor func(h Handle) T) (Handle, T, liberr.Error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T

	idx, ok := t.findFree()
	if !ok {
		return Empty, zero, liberr.CodeNoSpace.Error()
	}

	h := New(t.parent, t.kind, idx)
	v := ctor(h)

	t.used.Set(uint(idx))
	t.slots[idx] = slot[T]{occupied: true, value: v}

	return h, v, nil
}

// Assign stores v at a previously Reserve'd slot. It fails if the slot is
// already occupied or was never reserved for this handle.
func (t *Table[T]) Assign(h Handle, v T) liberr.Error {
	if !h.Match(t.parent, t.kind) {
		return liberr.CodeBadHandle.Error()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := h.Index()
	if idx >= uint32(len(t.slots)) {
		return liberr.CodeBadHandle.Error()
	}

	s := &t.slots[idx]
	if s.occupied || !s.reserved {
		return liberr.CodeInvalidState.Error()
	}

	s.reserved = false
	s.occupied = true
	s.value = v

	return nil
}

// Release removes the slot for h and returns the value that owned it. It
// returns CodeNoSuchHandle if h is not currently occupied in this table.
func (t *Table[T]) Release(h Handle) (T, liberr.Error) {
	var zero T

	if !h.Match(t.parent, t.kind) {
		return zero, liberr.CodeBadHandle.Error()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := h.Index()
	if idx >= uint32(len(t.slots)) || !t.slots[idx].occupied {
		return zero, liberr.CodeNoSuchHandle.Error()
	}

	v := t.slots[idx].value
	t.slots[idx] = slot[T]{}
	t.used.Clear(uint(idx))

	return v, nil
}

// Has reports whether h references a currently occupied slot in this table.
func (t *Table[T]) Has(h Handle) bool {
	if !h.Match(t.parent, t.kind) {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := h.Index()
	return idx < uint32(len(t.slots)) && t.slots[idx].occupied
}

// Get is the table's "operator[]": it returns the value stored for h and
// whether h is valid.
func (t *Table[T]) Get(h Handle) (T, bool) {
	var zero T

	if !h.Match(t.parent, t.kind) {
		return zero, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := h.Index()
	if idx >= uint32(len(t.slots)) || !t.slots[idx].occupied {
		return zero, false
	}

	return t.slots[idx].value, true
}

// Len returns the number of slots in use: occupied slots plus slots
// reserved by Reserve and not yet assigned or released.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return int(t.used.Count())
}

// Range calls f for every occupied slot, in index order, stopping early if
// f returns false.
func (t *Table[T]) Range(f func(h Handle, v T) bool) {
	t.mu.Lock()
	snapshot := make([]slot[T], len(t.slots))
	copy(snapshot, t.slots)
	t.mu.Unlock()

	for idx, s := range snapshot {
		if !s.occupied {
			continue
		}
		if !f(New(t.parent, t.kind, uint32(idx)), s.value) {
			return
		}
	}
}
