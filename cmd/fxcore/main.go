// Command fxcore runs the effects core against a synthesized guitar-like
// test signal, either rendering to a WAV file or playing back live.
package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-fxcore/engine"
)

func main() {
	sampleRate := flag.Int("sample-rate", 48000, "Sample rate in Hz")
	duration := flag.Float64("duration", 8.0, "Render/playback duration in seconds")
	sourceKind := flag.String("source", "walk", "Parameter source: constant, walk or reactive")
	seed := flag.Int64("seed", 1, "Random seed for the walk sources")
	step := flag.Float64("step", 0.02, "Walk step size per control tick")
	bias := flag.Float64("bias", 0.5, "Pitch-switch bias in [0,1]")
	play := flag.Bool("play", false, "Play live instead of rendering to a file")
	outPath := flag.String("out", "fxcore.wav", "Output WAV path (render mode)")
	flag.Parse()

	if *sampleRate < 8000 {
		die("sample-rate must be >= 8000")
	}
	if *duration <= 0 {
		die("duration must be > 0")
	}

	source, err := buildSource(*sourceKind, *seed, *step)
	if err != nil {
		die("source: %v", err)
	}

	eng, err := engine.New(source, engine.WithSampleRate(float64(*sampleRate)))
	if err != nil {
		die("engine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		die("start: %v", err)
	}
	defer eng.Close()

	eng.SetPitchBias(*bias)

	input := newTestSignal(float64(*sampleRate))

	if *play {
		if err := playLive(eng, input, *sampleRate, *duration); err != nil {
			die("playback: %v", err)
		}
		return
	}

	frames := int(*duration * float64(*sampleRate))
	if err := renderWAV(*outPath, eng, input, *sampleRate, frames); err != nil {
		die("render: %v", err)
	}

	fmt.Printf("Rendered %d frames to %s (dropped params=%d features=%d)\n",
		frames, *outPath, eng.DroppedParams(), eng.DroppedFeatures())
}

func buildSource(kind string, seed int64, step float64) (engine.ParamSource, error) {
	switch kind {
	case "constant":
		var v [engine.ParamCount]float64
		v[engine.ParamWahLevel] = 0.8
		v[engine.ParamWahDryWet] = 0.6
		v[engine.ParamWahWah] = 0.7
		v[engine.ParamShift] = 0.5
		return engine.NewConstantSource(v[:]), nil
	case "walk":
		return engine.NewRandomWalkSource(seed, engine.WithWalkStep(step))
	case "reactive":
		return engine.NewRandomWalkSource(seed, engine.WithWalkStep(step), engine.WithReactiveWalk(true))
	default:
		return nil, fmt.Errorf("unknown source %q", kind)
	}
}

// testSignal produces a plucked pentatonic pattern, enough spectral movement
// to hear every stage of the chain.
type testSignal struct {
	sampleRate float64
	phase      float64
	pos        int
	note       int
}

var pentatonic = []float64{110, 130.81, 146.83, 164.81, 196}

func newTestSignal(sampleRate float64) *testSignal {
	return &testSignal{sampleRate: sampleRate}
}

func (s *testSignal) next() float64 {
	noteLen := int(s.sampleRate / 2)
	if s.pos >= noteLen {
		s.pos = 0
		s.note = (s.note + 1) % len(pentatonic)
	}

	freq := pentatonic[s.note]
	s.phase += 2 * math.Pi * freq / s.sampleRate
	if s.phase > 2*math.Pi {
		s.phase -= 2 * math.Pi
	}

	env := math.Exp(-4 * float64(s.pos) / s.sampleRate)
	s.pos++

	// Fundamental plus a touch of second harmonic for bite.
	return env * (0.7*math.Sin(s.phase) + 0.2*math.Sin(2*s.phase))
}

// engineReader adapts the engine to oto's pull model: stereo float32 LE.
type engineReader struct {
	eng   *engine.Engine
	input *testSignal
}

func (r *engineReader) Read(p []byte) (int, error) {
	const frameBytes = 8

	frames := len(p) / frameBytes
	for i := 0; i < frames; i++ {
		x := r.input.next()
		l, rr := r.eng.ProcessSample(x, x)

		binary.LittleEndian.PutUint32(p[i*frameBytes:], math.Float32bits(float32(l)))
		binary.LittleEndian.PutUint32(p[i*frameBytes+4:], math.Float32bits(float32(rr)))
	}

	return frames * frameBytes, nil
}

func playLive(eng *engine.Engine, input *testSignal, sampleRate int, duration float64) error {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}

	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return err
	}
	<-ready

	player := otoCtx.NewPlayer(&engineReader{eng: eng, input: input})
	player.Play()
	defer player.Close()

	time.Sleep(time.Duration(duration * float64(time.Second)))

	return nil
}

func renderWAV(path string, eng *engine.Engine, input *testSignal, sampleRate, frames int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	if err := writeWAVHeader(w, sampleRate, frames); err != nil {
		return err
	}

	var buf [4]byte
	for i := 0; i < frames; i++ {
		x := input.next()
		l, r := eng.ProcessSample(x, x)

		binary.LittleEndian.PutUint16(buf[0:], uint16(int16(math.Round(clampUnit(l)*32767))))
		binary.LittleEndian.PutUint16(buf[2:], uint16(int16(math.Round(clampUnit(r)*32767))))
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}

	return w.Flush()
}

// writeWAVHeader emits a canonical 44-byte PCM header for 16-bit stereo.
func writeWAVHeader(w io.Writer, sampleRate, frames int) error {
	const (
		channels      = 2
		bitsPerSample = 16
	)

	blockAlign := channels * bitsPerSample / 8
	dataBytes := frames * blockAlign

	var buf [44]byte
	copy(buf[0:], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], uint32(36+dataBytes))
	copy(buf[8:], "WAVE")
	copy(buf[12:], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16)
	binary.LittleEndian.PutUint16(buf[20:], 1)
	binary.LittleEndian.PutUint16(buf[22:], channels)
	binary.LittleEndian.PutUint32(buf[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(buf[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:], bitsPerSample)
	copy(buf[36:], "data")
	binary.LittleEndian.PutUint32(buf[40:], uint32(dataBytes))

	_, err := w.Write(buf[:])
	return err
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
