// Package boot implements the two-phase startup handshake between the
// control context and the audio context. Four write-once flags are published
// through atomic cells; each is written by exactly one context and polled by
// the other. After both contexts report ready no further coordination
// happens on the steady-state paths.
//
// The waits poll forever: a peer that never becomes ready stalls startup
// indefinitely. That can only happen on an init fault, and there is no
// meaningful recovery. Tests and demo binaries can use the bounded WaitFor
// variants instead.
package boot

import (
	"sync/atomic"
	"time"
)

// Phase is the monotonic startup progress of one context.
type Phase int32

const (
	PhaseNotStarted Phase = iota
	PhaseSerialReady
	PhaseInterfaceReady
	PhaseCoreReady
	PhaseRunning
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseSerialReady:
		return "serial-ready"
	case PhaseInterfaceReady:
		return "interface-ready"
	case PhaseCoreReady:
		return "core-ready"
	case PhaseRunning:
		return "running"
	default:
		return "invalid"
	}
}

// DefaultPollInterval is the sleep between readiness polls.
const DefaultPollInterval = 100 * time.Microsecond

// Snapshot is a read-only view of the handshake for presentation surfaces.
// No invariant depends on its freshness.
type Snapshot struct {
	SerialReady    bool
	InterfaceReady bool
	ControlReady   bool
	AudioReady     bool
	ControlPhase   Phase
	AudioPhase     Phase
}

// Sequencer orders startup across the two contexts. The control context owns
// the serial, interface, and control-ready flags; the audio context owns the
// audio-ready flag. Flags transition false to true exactly once and never
// regress.
type Sequencer struct {
	serialReady    atomic.Bool
	interfaceReady atomic.Bool
	controlReady   atomic.Bool
	audioReady     atomic.Bool

	controlPhase atomic.Int32
	audioPhase   atomic.Int32

	pollInterval time.Duration
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithPollInterval sets the sleep between readiness polls.
func WithPollInterval(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// New creates a sequencer with all flags down.
func New(opts ...Option) *Sequencer {
	s := &Sequencer{pollInterval: DefaultPollInterval}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// --- control context side ---

// MarkSerialReady publishes that the debug/serial surface is usable.
func (s *Sequencer) MarkSerialReady() {
	s.serialReady.Store(true)
	advance(&s.controlPhase, PhaseSerialReady)
}

// MarkInterfaceReady publishes that the interface layer is constructed and
// bound. Must follow MarkSerialReady.
func (s *Sequencer) MarkInterfaceReady() {
	s.interfaceReady.Store(true)
	advance(&s.controlPhase, PhaseInterfaceReady)
}

// MarkControlReady publishes that the control context finished its setup.
func (s *Sequencer) MarkControlReady() {
	s.controlReady.Store(true)
	advance(&s.controlPhase, PhaseCoreReady)
}

// MarkControlRunning records entry into the control steady-state loop.
func (s *Sequencer) MarkControlRunning() {
	advance(&s.controlPhase, PhaseRunning)
}

// --- audio context side ---

// MarkAudioReady publishes that the audio engine is constructed and bound.
func (s *Sequencer) MarkAudioReady() {
	s.audioReady.Store(true)
	advance(&s.audioPhase, PhaseCoreReady)
}

// MarkAudioRunning records entry into the audio steady-state loop.
func (s *Sequencer) MarkAudioRunning() {
	advance(&s.audioPhase, PhaseRunning)
}

// --- waits ---

// WaitSerialReady blocks until the serial flag is up, then records the
// audio context's progress past that point.
func (s *Sequencer) WaitSerialReady() {
	s.poll(func() bool { return s.serialReady.Load() })
	advance(&s.audioPhase, PhaseSerialReady)
}

// WaitInterfaceReady blocks until the interface flag is up, then records the
// audio context's progress past that point.
func (s *Sequencer) WaitInterfaceReady() {
	s.poll(func() bool { return s.interfaceReady.Load() })
	advance(&s.audioPhase, PhaseInterfaceReady)
}

// WaitControlReady blocks until the control context reports ready.
func (s *Sequencer) WaitControlReady() {
	s.poll(func() bool { return s.controlReady.Load() })
}

// WaitAudioReady blocks until the audio context reports ready.
func (s *Sequencer) WaitAudioReady() {
	s.poll(func() bool { return s.audioReady.Load() })
}

// WaitForAudioReady polls until the audio context reports ready or the
// timeout elapses; it reports whether the flag came up.
func (s *Sequencer) WaitForAudioReady(timeout time.Duration) bool {
	return s.pollFor(func() bool { return s.audioReady.Load() }, timeout)
}

// WaitForControlReady polls until the control context reports ready or the
// timeout elapses; it reports whether the flag came up.
func (s *Sequencer) WaitForControlReady(timeout time.Duration) bool {
	return s.pollFor(func() bool { return s.controlReady.Load() }, timeout)
}

// --- observation ---

// SerialReady reports the serial flag.
func (s *Sequencer) SerialReady() bool { return s.serialReady.Load() }

// InterfaceReady reports the interface flag.
func (s *Sequencer) InterfaceReady() bool { return s.interfaceReady.Load() }

// ControlReady reports the control-ready flag.
func (s *Sequencer) ControlReady() bool { return s.controlReady.Load() }

// AudioReady reports the audio-ready flag.
func (s *Sequencer) AudioReady() bool { return s.audioReady.Load() }

// ControlPhase returns the control context's startup phase.
func (s *Sequencer) ControlPhase() Phase { return Phase(s.controlPhase.Load()) }

// AudioPhase returns the audio context's startup phase.
func (s *Sequencer) AudioPhase() Phase { return Phase(s.audioPhase.Load()) }

// Snapshot returns a point-in-time view of the handshake.
func (s *Sequencer) Snapshot() Snapshot {
	return Snapshot{
		SerialReady:    s.serialReady.Load(),
		InterfaceReady: s.interfaceReady.Load(),
		ControlReady:   s.controlReady.Load(),
		AudioReady:     s.audioReady.Load(),
		ControlPhase:   s.ControlPhase(),
		AudioPhase:     s.AudioPhase(),
	}
}

func (s *Sequencer) poll(ready func() bool) {
	for !ready() {
		time.Sleep(s.pollInterval)
	}
}

func (s *Sequencer) pollFor(ready func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for !ready() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(s.pollInterval)
	}
	return true
}

// advance moves a phase cell forward, never backward.
func advance(cell *atomic.Int32, next Phase) {
	for {
		cur := cell.Load()
		if cur >= int32(next) {
			return
		}
		if cell.CompareAndSwap(cur, int32(next)) {
			return
		}
	}
}
