package buffer

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// Block is one planar block of multichannel audio: a slice of samples per
// channel, all the same length. Consecutive blocks of a stream are
// contiguous in time.
type Block struct {
	data     []float64
	channels [][]float64
	frames   int
	wrapped  bool
}

// NewBlock returns a silent block of the given shape. Negative sizes are
// treated as zero.
func NewBlock(channels, frames int) *Block {
	b := &Block{}
	b.Resize(channels, frames)
	return b
}

// FromChannels wraps existing channel slices without copying. Mutations
// through the Block are visible to the caller and vice versa.
func FromChannels(channels [][]float64) (*Block, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("buffer: block needs at least one channel: %w", core.ErrInvalidParameter)
	}

	frames := len(channels[0])
	for ch, s := range channels {
		if len(s) != frames {
			return nil, fmt.Errorf("buffer: channel %d has %d frames, channel 0 has %d: %w",
				ch, len(s), frames, core.ErrInvalidParameter)
		}
	}

	return &Block{channels: channels, frames: frames, wrapped: true}, nil
}

// Channels returns the channel count.
func (b *Block) Channels() int {
	return len(b.channels)
}

// Frames returns the number of samples per channel.
func (b *Block) Frames() int {
	return b.frames
}

// Channel returns the samples of channel ch.
func (b *Block) Channel(ch int) []float64 {
	return b.channels[ch]
}

// Data returns the per-channel slices.
func (b *Block) Data() [][]float64 {
	return b.channels
}

// Resize sets the block shape, reusing the backing array when it is large
// enough. All samples are zeroed. A block from FromChannels gets fresh
// storage and stops aliasing the caller's slices.
func (b *Block) Resize(channels, frames int) {
	if b.wrapped {
		b.channels = nil
		b.wrapped = false
	}
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}

	b.data = core.EnsureLen(b.data, channels*frames)
	core.Zero(b.data)

	if cap(b.channels) >= channels {
		b.channels = b.channels[:channels]
	} else {
		b.channels = make([][]float64, channels)
	}
	for ch := range b.channels {
		b.channels[ch] = b.data[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}
	b.frames = frames
}

// Zero silences every channel.
func (b *Block) Zero() {
	for _, s := range b.channels {
		core.Zero(s)
	}
}

// CopyFrom copies src into b. Both blocks must have the same shape.
func (b *Block) CopyFrom(src *Block) error {
	if err := b.CheckShape(src.Channels(), src.Frames()); err != nil {
		return err
	}
	for ch, s := range src.channels {
		copy(b.channels[ch], s)
	}
	return nil
}

// Clone returns a deep copy of b.
func (b *Block) Clone() *Block {
	c := NewBlock(b.Channels(), b.Frames())
	for ch, s := range b.channels {
		copy(c.channels[ch], s)
	}
	return c
}

// CheckShape reports ErrInvalidParameter unless b has exactly the given
// channel and frame counts.
func (b *Block) CheckShape(channels, frames int) error {
	if b.Channels() != channels || b.Frames() != frames {
		return fmt.Errorf("buffer: block shape %dx%d, want %dx%d: %w",
			b.Channels(), b.Frames(), channels, frames, core.ErrInvalidParameter)
	}
	return nil
}

// CheckFormat reports ErrInvalidParameter unless b has exactly channels
// channels and at most maxFrames frames. Processors size their scratch
// space for maxFrames, so shorter blocks are fine.
func (b *Block) CheckFormat(channels, maxFrames int) error {
	if b.Channels() != channels {
		return fmt.Errorf("buffer: block has %d channels, want %d: %w", b.Channels(), channels, core.ErrInvalidParameter)
	}
	if b.Frames() > maxFrames {
		return fmt.Errorf("buffer: block has %d frames, max %d: %w", b.Frames(), maxFrames, core.ErrInvalidParameter)
	}
	return nil
}

// CheckFinite reports ErrInvalidParameter naming the first NaN or Inf sample.
func (b *Block) CheckFinite() error {
	for ch, s := range b.channels {
		// A NaN or Inf anywhere poisons the sum, so the scan below only runs
		// for bad channels or finite values whose sum overflows.
		if sum := vecmath.Sum(s); !math.IsNaN(sum) && !math.IsInf(sum, 0) {
			continue
		}
		for i, v := range s {
			if !core.IsFinite(v) {
				return fmt.Errorf("buffer: non-finite sample %v at channel %d frame %d: %w",
					v, ch, i, core.ErrInvalidParameter)
			}
		}
	}
	return nil
}

// Peak returns the largest absolute sample over all channels.
func (b *Block) Peak() float64 {
	peak := 0.0
	for _, s := range b.channels {
		if p := vecmath.MaxAbs(s); p > peak {
			peak = p
		}
	}
	return peak
}
