package host

import (
	"sync/atomic"
)

// DefaultRingSize is the ring capacity used when none is configured
const DefaultRingSize = 256

// Ring is a lock-free MPSC ring buffer of host events
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK (backend goroutines)
//   - PollEvent: Single consumer (translator run loop)
//   - Published flags prevent reading partial writes
//
// Overflow: Oldest events overwritten when full
type Ring struct {
	events    []Event
	published []atomic.Bool // True = slot fully written
	mask      uint64
	head      atomic.Uint64 // Read index
	tail      atomic.Uint64 // Write index
	dropped   atomic.Uint64
}

// NewRing creates a ring with capacity rounded up to a power of two
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	n := 1
	for n < size {
		n <<= 1
	}
	return &Ring{
		events:    make([]Event, n),
		published: make([]atomic.Bool, n),
		mask:      uint64(n - 1),
	}
}

// Cap returns the ring capacity
func (r *Ring) Cap() int {
	return len(r.events)
}

// Push adds event using lock-free CAS with published flags pattern
// Safe for concurrent producers. O(1) amortized
func (r *Ring) Push(ev Event) {
	size := uint64(len(r.events))
	for {
		currentTail := r.tail.Load()
		nextTail := currentTail + 1

		if r.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & r.mask

			r.events[idx] = ev
			r.published[idx].Store(true) // MUST be after write

			// Advance head if overwriting unread events
			currentHead := r.head.Load()
			if nextTail-currentHead > size {
				if r.head.CompareAndSwap(currentHead, nextTail-size) {
					r.dropped.Add(1)
				}
			}
			return
		}
	}
}

// PollEvent implements Source
// Single consumer; returns false when empty or the next slot is still being written
func (r *Ring) PollEvent(ev *Event) bool {
	for {
		currentHead := r.head.Load()
		currentTail := r.tail.Load()
		if currentTail == currentHead {
			return false
		}

		idx := currentHead & r.mask
		if !r.published[idx].Load() {
			return false // Writer incomplete
		}
		out := r.events[idx]

		if r.head.CompareAndSwap(currentHead, currentHead+1) {
			r.published[idx].Store(false)
			*ev = out
			return true
		}
		// Producer lapped us, retry from the new head
	}
}

// Len returns approximate pending event count
func (r *Ring) Len() int {
	head := r.head.Load()
	tail := r.tail.Load()
	if tail <= head {
		return 0
	}
	diff := int(tail - head)
	if diff > len(r.events) {
		return len(r.events)
	}
	return diff
}

// Dropped returns how many unread events were overwritten
func (r *Ring) Dropped() uint64 {
	return r.dropped.Load()
}
