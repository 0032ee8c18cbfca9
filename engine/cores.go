// Package engine wires the two execution contexts of the effects core
// together: a control context that produces parameter vectors on a fixed
// tick, and an audio context that conditions those parameters and renders
// samples under a hard per-sample deadline. The contexts share nothing but
// two lock-free vector channels, one atomic bias cell, and the startup
// sequencer.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/algo-fxcore/analysis"
	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/rt/boot"
	"github.com/cwbudde/algo-fxcore/rt/xfer"
)

// Engine runs the control context on its own goroutine and exposes the audio
// context as a pull interface: the owner of the sample clock (a playback
// callback or an offline render loop) calls ProcessSample once per frame.
//
// Start performs the full boot handshake before returning, so after a
// successful Start the audio path is ready. All audio-side methods must be
// called from a single goroutine.
type Engine struct {
	cfg    Config
	source ParamSource

	seq        *boot.Sequencer
	paramCh    *xfer.VecChan // control -> audio
	analysisCh *xfer.VecChan // audio -> control
	pitchBias  *xfer.FloatCell

	graph     *Graph
	extractor *analysis.Extractor

	paramBuf   []float64
	featureBuf []float64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an engine around the given parameter source.
func New(source ParamSource, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("engine needs a parameter source")
	}

	cfg := ApplyOptions(opts...)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	paramCh, err := xfer.NewVecChan(cfg.ChannelCapacity, ParamCount)
	if err != nil {
		return nil, err
	}

	analysisCh, err := xfer.NewVecChan(cfg.ChannelCapacity, analysis.FeatureCount)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:        cfg,
		source:     source,
		seq:        boot.New(),
		paramCh:    paramCh,
		analysisCh: analysisCh,
		pitchBias:  &xfer.FloatCell{},
		paramBuf:   make([]float64, ParamCount),
		featureBuf: make([]float64, analysis.FeatureCount),
	}, nil
}

// Start boots both contexts and blocks until the handshake completes. The
// control goroutine keeps running until ctx is cancelled or Close is called.
// Start must run on the goroutine that will own the audio path.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		return fmt.Errorf("engine already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	e.mu.Unlock()

	go e.runControl(runCtx)

	// Audio-side boot: the effect graph is only built once the control
	// context has its interface layer up, matching the hardware bring-up
	// order.
	e.seq.WaitSerialReady()
	e.seq.WaitInterfaceReady()

	graph, err := NewGraph(e.cfg, e.pitchBias)
	if err != nil {
		cancel()
		return err
	}

	extractor, err := analysis.New(e.cfg.SampleRate, core.WithBlockSize(e.cfg.BlockSize))
	if err != nil {
		cancel()
		return err
	}

	e.graph = graph
	e.extractor = extractor

	e.seq.MarkAudioReady()
	e.seq.WaitControlReady()
	e.seq.MarkAudioRunning()

	return nil
}

// Close stops the control goroutine and waits for it to exit.
func (e *Engine) Close() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (e *Engine) runControl(ctx context.Context) {
	defer close(e.done)

	e.seq.MarkSerialReady()
	e.seq.MarkInterfaceReady()
	e.seq.MarkControlReady()
	e.seq.WaitAudioReady()
	e.seq.MarkControlRunning()

	ticker := time.NewTicker(e.cfg.ControlInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.analysisCh.TryRead(e.featureBuf) {
				e.source.Observe(e.featureBuf)
			}
			e.paramCh.Write(e.source.Next())
		}
	}
}

// ProcessSample renders one stereo frame. It drains at most one parameter
// vector, runs the effect graph, and feeds the analysis front end. Audio
// context only; Start must have returned.
func (e *Engine) ProcessSample(left, right float64) (float64, float64) {
	if e.paramCh.TryRead(e.paramBuf) {
		e.graph.SetParameters(e.paramBuf)
	}

	outL, outR := e.graph.ProcessSample(left, right)

	if features, ok := e.extractor.Push(outL); ok {
		e.analysisCh.Write(features)
	}

	return outL, outR
}

// ProcessBuffer renders a stereo buffer in place, one frame at a time.
// Audio context only.
func (e *Engine) ProcessBuffer(left, right []float64) {
	n := minInt(len(left), len(right))
	for i := 0; i < n; i++ {
		left[i], right[i] = e.ProcessSample(left[i], right[i])
	}
}

// SetPitchBias publishes a new mode-switch bias. Safe from any goroutine.
func (e *Engine) SetPitchBias(v float64) {
	e.pitchBias.Store(core.ClampUnit(v))
}

// Sequencer exposes the boot handshake for observation.
func (e *Engine) Sequencer() *boot.Sequencer { return e.seq }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// DroppedParams returns the number of parameter vectors discarded by the
// overflow policy. Diagnostic only.
func (e *Engine) DroppedParams() uint64 { return e.paramCh.Dropped() }

// DroppedFeatures returns the number of analysis vectors discarded by the
// overflow policy. Diagnostic only.
func (e *Engine) DroppedFeatures() uint64 { return e.analysisCh.Dropped() }

// GraphSnapshot returns the effect graph's presentation state. Call from the
// audio context or after Close.
func (e *Engine) GraphSnapshot() Snapshot {
	if e.graph == nil {
		return Snapshot{}
	}
	return e.graph.Snapshot()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
