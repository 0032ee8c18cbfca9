// Package delay implements a fixed-size circular delay line with integer and
// fractional taps. The line allocates only at construction and is safe for
// per-sample use from a single owner.
package delay

import (
	"fmt"

	"github.com/cwbudde/algo-fxcore/dsp/interp"
)

// Line is a circular delay line.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// Option configures a Line.
type Option func(*Line)

// WithMode selects the interpolation kernel for fractional reads.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) {
		d.mode = mode
	}
}

// New returns a delay line of fixed size in samples.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	d := &Line{
		buffer: make([]float64, size),
		mode:   interp.Hermite,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d, nil
}

// Len returns the internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample and advances the write head.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. delay=1 is the most recently
// written sample.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if delay < 1 {
		delay = 1
	}
	if delay > size {
		delay = size
	}
	readPos := (d.writePos - delay + size) % size
	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay in samples using the configured
// interpolation kernel.
func (d *Line) ReadFractional(delay float64) float64 {
	size := len(d.buffer)

	if delay < 1 {
		delay = 1
	}
	maxDelay := float64(size - 2)
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(delay)
	t := delay - float64(p)

	if d.mode == interp.Linear {
		return interp.Linear2(t, d.Read(p), d.Read(p+1))
	}

	xm1 := d.Read(maxInt(1, p-1))
	return interp.Hermite4(t, xm1, d.Read(p), d.Read(p+1), d.Read(p+2))
}

// Process runs one sample through the line as a tapped delay: it reads the
// tap at the given delay, writes in plus feedback times the tap, and returns
// the tap value. feedback magnitudes at or above 1 are folded back under
// unity to keep the loop stable.
func (d *Line) Process(in float64, tap int, feedback float64) float64 {
	const maxFeedback = 0.999

	if feedback > maxFeedback {
		feedback = maxFeedback
	} else if feedback < -maxFeedback {
		feedback = -maxFeedback
	}

	out := d.Read(tap)
	d.Write(in + out*feedback)

	return out
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
