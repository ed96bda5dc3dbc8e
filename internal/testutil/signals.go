package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-afx/dsp/buffer"
)

// BlockProcessor is anything that filters a Block in place.
type BlockProcessor interface {
	ProcessBlock(block *buffer.Block) error
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Sine generates a deterministic sine wave starting at phase 0.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise generates white noise with a fixed seed for reproducibility.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Stream pushes a planar signal through p in consecutive blocks of
// blockSize frames and returns the concatenated output. The input is not
// modified. A trailing partial block is processed at its shorter length.
func Stream(p BlockProcessor, signal [][]float64, blockSize int) ([][]float64, error) {
	out := make([][]float64, len(signal))
	for ch := range signal {
		out[ch] = make([]float64, 0, len(signal[ch]))
	}
	if len(signal) == 0 {
		return out, nil
	}

	total := len(signal[0])
	for start := 0; start < total; start += blockSize {
		end := min(start+blockSize, total)

		block := buffer.NewBlock(len(signal), end-start)
		for ch := range signal {
			copy(block.Channel(ch), signal[ch][start:end])
		}
		if err := p.ProcessBlock(block); err != nil {
			return nil, err
		}
		for ch := range signal {
			out[ch] = append(out[ch], block.Channel(ch)...)
		}
	}

	return out, nil
}
