package core

import (
	"errors"
	"math"
	"testing"
)

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(96000), WithBlockSize(2048), WithChannels(2))
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}
	if cfg.BlockSize != 2048 {
		t.Fatalf("block size = %d, want 2048", cfg.BlockSize)
	}
	if cfg.Channels != 2 {
		t.Fatalf("channels = %d, want 2", cfg.Channels)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithBlockSize(-1), WithChannels(0), WithSampleRate(math.Inf(1)), nil)
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProcessorConfig
		ok   bool
	}{
		{name: "default", cfg: DefaultProcessorConfig(), ok: true},
		{name: "zero rate", cfg: ProcessorConfig{SampleRate: 0, BlockSize: 1, Channels: 1}},
		{name: "nan rate", cfg: ProcessorConfig{SampleRate: math.NaN(), BlockSize: 1, Channels: 1}},
		{name: "zero block", cfg: ProcessorConfig{SampleRate: 48000, BlockSize: 0, Channels: 1}},
		{name: "zero channels", cfg: ProcessorConfig{SampleRate: 48000, BlockSize: 64, Channels: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("Validate() = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestSecondsToSamples(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(48000))
	if got := cfg.SecondsToSamples(0.01); !NearlyEqual(got, 480, 1e-12) {
		t.Fatalf("SecondsToSamples(0.01) = %v, want 480", got)
	}
}
