package core

import (
	"fmt"
	"math"
)

// ProcessorConfig describes the fixed shape of a processing graph: every
// effect and chain is built for one sample rate, block size, and channel count.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	Channels   int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for streaming use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  1024,
		Channels:   1,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size in frames.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithChannels sets the number of audio channels.
func WithChannels(channels int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if channels > 0 {
			cfg.Channels = channels
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports whether cfg describes a usable processing graph.
func (cfg ProcessorConfig) Validate() error {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return fmt.Errorf("sample rate must be > 0 and finite: %f: %w", cfg.SampleRate, ErrInvalidParameter)
	}
	if cfg.BlockSize <= 0 {
		return fmt.Errorf("block size must be > 0: %d: %w", cfg.BlockSize, ErrInvalidParameter)
	}
	if cfg.Channels <= 0 {
		return fmt.Errorf("channel count must be > 0: %d: %w", cfg.Channels, ErrInvalidParameter)
	}
	return nil
}

// SecondsToSamples converts a duration in seconds to a (fractional) sample count.
func (cfg ProcessorConfig) SecondsToSamples(seconds float64) float64 {
	return seconds * cfg.SampleRate
}
