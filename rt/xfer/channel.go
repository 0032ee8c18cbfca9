// Package xfer provides the lock-free primitives that cross the boundary
// between the control context and the audio context: a fixed-capacity
// single-producer single-consumer channel of fixed-length float vectors, and
// an atomic scalar cell.
//
// Neither side ever blocks or allocates after construction. Exactly one
// goroutine may write and exactly one may read a given instance; the roles
// are fixed for the instance's lifetime.
package xfer

import (
	"fmt"
	"sync/atomic"
)

// Policy selects what a full channel does with a new write.
type Policy int

const (
	// PolicyDropOldest overwrites the oldest unread vector. The consumer
	// always sees the freshest data; stale control values are discarded.
	// This is the default.
	PolicyDropOldest Policy = iota
	// PolicyDropNewest discards the incoming vector instead.
	PolicyDropNewest
)

// slot holds one vector plus a sequence word. The sequence is odd while a
// write is in progress and even once the slot contents are stable, so a
// reader can detect an overwrite that raced with its copy.
type slot struct {
	seq  atomic.Uint64
	data []float64
}

// VecChan is a fixed-capacity SPSC queue of fixed-length float vectors.
//
// The producer publishes the write index only after the slot contents are
// fully written; the consumer loads the write index before touching slot
// contents and validates the slot sequence after copying. A read therefore
// returns either a complete old vector or a complete new one, never a mix.
type VecChan struct {
	dim      int
	capacity uint64
	policy   Policy

	slots []slot

	head    atomic.Uint64 // next unread slot
	tail    atomic.Uint64 // next slot to write
	dropped atomic.Uint64

	// Consumer-owned staging area so dst is only written after a copy has
	// been validated against the slot sequence.
	readScratch []float64
}

// ChanOption configures a VecChan.
type ChanOption func(*VecChan)

// WithPolicy selects the overflow policy, fixed for the channel's lifetime.
func WithPolicy(policy Policy) ChanOption {
	return func(c *VecChan) {
		c.policy = policy
	}
}

// NewVecChan creates a channel with the given slot count and vector length.
func NewVecChan(capacity, dim int, opts ...ChanOption) (*VecChan, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("channel capacity must be > 0: %d", capacity)
	}

	if dim <= 0 {
		return nil, fmt.Errorf("channel vector length must be > 0: %d", dim)
	}

	c := &VecChan{
		dim:         dim,
		capacity:    uint64(capacity),
		slots:       make([]slot, capacity),
		readScratch: make([]float64, dim),
	}
	for i := range c.slots {
		c.slots[i].data = make([]float64, dim)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

// Dim returns the vector length.
func (c *VecChan) Dim() int { return c.dim }

// Cap returns the slot count.
func (c *VecChan) Cap() int { return int(c.capacity) }

// OverflowPolicy returns the configured overflow policy.
func (c *VecChan) OverflowPolicy() Policy { return c.policy }

// Dropped returns the number of vectors discarded by the overflow policy.
// Diagnostic only.
func (c *VecChan) Dropped() uint64 { return c.dropped.Load() }

// Len returns the number of unread vectors. Approximate under concurrency.
func (c *VecChan) Len() int {
	head := c.head.Load()
	tail := c.tail.Load()
	if tail < head {
		return 0
	}
	n := tail - head
	if n > c.capacity {
		n = c.capacity
	}
	return int(n)
}

// Write copies v into the channel without blocking or allocating. Extra
// elements beyond the vector length are ignored; a short v fills the slot
// prefix. When the channel is full the configured policy applies. Producer
// side only.
func (c *VecChan) Write(v []float64) {
	tail := c.tail.Load()
	head := c.head.Load()

	if tail-head >= c.capacity {
		if c.policy == PolicyDropNewest {
			c.dropped.Add(1)
			return
		}

		// Reclaim the oldest slot. The CAS loses only if the consumer just
		// read that slot, in which case there is room and nothing dropped.
		if c.head.CompareAndSwap(head, head+1) {
			c.dropped.Add(1)
		}
	}

	s := &c.slots[tail%c.capacity]
	s.seq.Add(1) // odd: write in progress
	n := copy(s.data, v)
	for i := n; i < c.dim; i++ {
		s.data[i] = 0
	}
	s.seq.Add(1) // even: stable
	c.tail.Store(tail + 1)
}

// TryRead copies the oldest unread vector into dst and reports whether new
// data was available. When it returns false dst is untouched, so the caller
// keeps its previous values. Consumer side only.
func (c *VecChan) TryRead(dst []float64) bool {
	for {
		head := c.head.Load()
		if head == c.tail.Load() {
			return false
		}

		s := &c.slots[head%c.capacity]

		seq := s.seq.Load()
		if seq&1 == 1 {
			// The producer is overwriting this slot right now, which can
			// only happen when the queue is full; the producer has already
			// moved head past it. Reload and retry.
			continue
		}

		copy(c.readScratch, s.data)

		if s.seq.Load() != seq {
			// Torn by an overwrite mid-copy; loop and take a newer slot.
			continue
		}

		if c.head.CompareAndSwap(head, head+1) {
			copy(dst, c.readScratch[:minInt(len(dst), c.dim)])
			return true
		}
		// The producer reclaimed this slot first; retry on fresher data.
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
