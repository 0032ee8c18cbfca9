package xfer

import (
	"math"
	"sync/atomic"
)

// FloatCell is a lock-free scalar cell shared between two execution
// contexts. The value is stored as a float64 bit pattern inside an atomic
// word, so reads on the audio path never take a lock.
type FloatCell struct {
	bits atomic.Uint64
}

// Store publishes a new value.
func (c *FloatCell) Store(v float64) {
	c.bits.Store(math.Float64bits(v))
}

// Load returns the most recently published value.
func (c *FloatCell) Load() float64 {
	return math.Float64frombits(c.bits.Load())
}
