package engine

import (
	"fmt"
	"time"
)

// Defaults mirror the hardware build this core derives from.
const (
	DefaultSampleRate      = 48000.0
	DefaultChannelCapacity = 8
	DefaultBlockSize       = 512

	DefaultParamSmoothingMs  = 150.0
	DefaultBiasSmoothingMs   = 150.0
	DefaultSwitchSmoothingMs = 400.0
	DefaultSwitchHoldMs      = 150.0

	DefaultDelaySeconds = 1.0

	DefaultControlInterval = 10 * time.Millisecond
)

// DefaultSemitoneSeries is the transposition ladder for the single-voice
// mode.
var DefaultSemitoneSeries = []float64{2, 5, 7, 10, 12}

// Config holds the per-application constants. Everything here is fixed at
// initialization and never mutated at runtime.
type Config struct {
	SampleRate      float64
	ChannelCapacity int
	BlockSize       int

	ParamSmoothingMs  float64
	BiasSmoothingMs   float64
	SwitchSmoothingMs float64
	SwitchHoldMs      float64

	DelaySeconds float64

	SemitoneSeries []float64

	ControlInterval time.Duration
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the hardware-equivalent defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:        DefaultSampleRate,
		ChannelCapacity:   DefaultChannelCapacity,
		BlockSize:         DefaultBlockSize,
		ParamSmoothingMs:  DefaultParamSmoothingMs,
		BiasSmoothingMs:   DefaultBiasSmoothingMs,
		SwitchSmoothingMs: DefaultSwitchSmoothingMs,
		SwitchHoldMs:      DefaultSwitchHoldMs,
		DelaySeconds:      DefaultDelaySeconds,
		SemitoneSeries:    DefaultSemitoneSeries,
		ControlInterval:   DefaultControlInterval,
	}
}

// WithSampleRate sets the audio sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithChannelCapacity sets the slot count of both cross-context channels.
func WithChannelCapacity(capacity int) Option {
	return func(cfg *Config) {
		if capacity > 0 {
			cfg.ChannelCapacity = capacity
		}
	}
}

// WithBlockSize sets the analysis block size (power of two).
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithParamSmoothingMs sets the parameter-vector smoothing time constant.
func WithParamSmoothingMs(timeMs float64) Option {
	return func(cfg *Config) {
		if timeMs >= 0 {
			cfg.ParamSmoothingMs = timeMs
		}
	}
}

// WithSwitchTiming sets the mode-switch smoothing and hold times.
func WithSwitchTiming(smoothingMs, holdMs float64) Option {
	return func(cfg *Config) {
		if smoothingMs >= 0 {
			cfg.SwitchSmoothingMs = smoothingMs
		}
		if holdMs >= 0 {
			cfg.SwitchHoldMs = holdMs
		}
	}
}

// WithDelaySeconds sets the tempo-locked delay length.
func WithDelaySeconds(seconds float64) Option {
	return func(cfg *Config) {
		if seconds > 0 {
			cfg.DelaySeconds = seconds
		}
	}
}

// WithSemitoneSeries sets the single-voice transposition ladder.
func WithSemitoneSeries(series []float64) Option {
	return func(cfg *Config) {
		if len(series) > 0 {
			cfg.SemitoneSeries = series
		}
	}
}

// WithControlInterval sets the control context's polling cadence.
func WithControlInterval(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.ControlInterval = d
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg Config) validate() error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0: %f", cfg.SampleRate)
	}

	if cfg.ChannelCapacity <= 0 {
		return fmt.Errorf("channel capacity must be > 0: %d", cfg.ChannelCapacity)
	}

	if cfg.DelaySeconds <= 0 {
		return fmt.Errorf("delay length must be > 0: %f", cfg.DelaySeconds)
	}

	if len(cfg.SemitoneSeries) == 0 {
		return fmt.Errorf("semitone series must not be empty")
	}

	return nil
}
