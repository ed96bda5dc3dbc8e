package buffer

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"

	"github.com/cwbudde/algo-afx/dsp/core"
)

// FromAudioBuffer de-interleaves a go-audio buffer into a new Block.
// Integer PCM is scaled to [-1, 1) by its source bit depth (16 when unset).
func FromAudioBuffer(src audio.Buffer) (*Block, error) {
	if src == nil {
		return nil, fmt.Errorf("buffer: nil audio buffer: %w", core.ErrInvalidParameter)
	}
	format := src.PCMFormat()
	if format == nil || format.NumChannels <= 0 {
		return nil, fmt.Errorf("buffer: audio buffer has no channel format: %w", core.ErrInvalidParameter)
	}

	channels := format.NumChannels
	frames := src.NumFrames()
	b := NewBlock(channels, frames)

	switch buf := src.(type) {
	case *audio.FloatBuffer:
		deinterleave(b, buf.Data, 1)
	case *audio.IntBuffer:
		depth := buf.SourceBitDepth
		if depth <= 0 {
			depth = 16
		}
		deinterleave(b, intsToFloats(buf.Data), 1/math.Exp2(float64(depth-1)))
	default:
		deinterleave(b, src.AsFloatBuffer().Data, 1)
	}

	return b, nil
}

// ToFloatBuffer interleaves b into a new go-audio FloatBuffer.
func (b *Block) ToFloatBuffer(sampleRate int) *audio.FloatBuffer {
	fb := &audio.FloatBuffer{
		Format: &audio.Format{
			NumChannels: b.Channels(),
			SampleRate:  sampleRate,
		},
		Data: make([]float64, b.Channels()*b.Frames()),
	}
	interleave(fb.Data, b)
	return fb
}

// WriteFloatBuffer interleaves b into dst without allocating. dst must
// already have b's channel count and frame count.
func (b *Block) WriteFloatBuffer(dst *audio.FloatBuffer) error {
	if dst == nil || dst.Format == nil {
		return fmt.Errorf("buffer: destination has no format: %w", core.ErrInvalidParameter)
	}
	if dst.Format.NumChannels != b.Channels() || len(dst.Data) != b.Channels()*b.Frames() {
		return fmt.Errorf("buffer: destination holds %d samples in %d channels, block is %dx%d: %w",
			len(dst.Data), dst.Format.NumChannels, b.Channels(), b.Frames(), core.ErrInvalidParameter)
	}
	interleave(dst.Data, b)
	return nil
}

// ToIntBuffer quantises b to bitDepth-bit integer PCM in a new go-audio
// IntBuffer. Samples are rounded and clipped to the integer range. A
// non-nil dither state adds TPDF dither of one LSB before rounding.
func (b *Block) ToIntBuffer(sampleRate, bitDepth int, dither *vecmath.DitherState) (*audio.IntBuffer, error) {
	if bitDepth < 2 || bitDepth > 32 {
		return nil, fmt.Errorf("buffer: bit depth must be in [2, 32]: %d: %w", bitDepth, core.ErrInvalidParameter)
	}

	scaled := make([]float64, b.Channels()*b.Frames())
	interleave(scaled, b)

	full := math.Exp2(float64(bitDepth - 1))
	vecmath.ScaleBlockInPlace(scaled, full)
	if dither != nil {
		vecmath.AddDitherTPDF(scaled, 1, dither)
	}

	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: b.Channels(),
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(scaled)),
		SourceBitDepth: bitDepth,
	}
	for i, v := range scaled {
		ib.Data[i] = int(core.Clamp(math.Round(v), -full, full-1))
	}

	return ib, nil
}

func deinterleave(b *Block, data []float64, scale float64) {
	n := b.Channels()
	for ch, s := range b.channels {
		for i := range s {
			if j := i*n + ch; j < len(data) {
				s[i] = data[j] * scale
			}
		}
	}
}

func interleave(dst []float64, b *Block) {
	n := b.Channels()
	for ch, s := range b.channels {
		for i, v := range s {
			dst[i*n+ch] = v
		}
	}
}

func intsToFloats(data []int) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}
